// Package views holds the django templates rendered by the auth screen.
package views

import (
	"embed"
	"net/http"

	"github.com/gofiber/template/django/v3"
)

//go:embed *.html
var FS embed.FS

// NewEngine returns a django engine reading the embedded templates
func NewEngine() *django.Engine {
	return django.NewFileSystem(http.FS(FS), ".html")
}
