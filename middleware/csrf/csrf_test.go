package csrf

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/require"
)

func newTestSecureKey() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

func newTestApp(cfg Config) *fiber.App {
	srv := router.NewFiberAdapter(func(_ *fiber.App) *fiber.App {
		return fiber.New()
	})

	r := srv.Router()
	r.Use(New(cfg))
	r.Get("/form", func(ctx router.Context) error {
		return ctx.SendString(Token(ctx))
	})
	r.Get("/helpers", func(ctx router.Context) error {
		helpers := TemplateHelpers(ctx)
		helpers["locals"] = ctx.Locals(configDefault(cfg).ContextKey)
		return ctx.JSON(router.StatusOK, helpers)
	})
	r.Post("/form", func(ctx router.Context) error {
		return ctx.SendString("ok")
	})

	return srv.WrappedRouter()
}

func fetchToken(t *testing.T, app *fiber.App) string {
	t.Helper()

	res, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/form", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NotEmpty(t, body)
	return string(body)
}

func postToken(t *testing.T, app *fiber.App, field, token string) int {
	t.Helper()

	form := url.Values{}
	if token != "" {
		form.Set(field, token)
	}

	req := httptest.NewRequest(fiber.MethodPost, "/form", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	res, err := app.Test(req)
	require.NoError(t, err)
	return res.StatusCode
}

func TestStatelessTokenValidationSuccess(t *testing.T) {
	app := newTestApp(Config{SecureKey: newTestSecureKey()})

	token := fetchToken(t, app)
	require.Equal(t, fiber.StatusOK, postToken(t, app, DefaultFormFieldName, token))
}

func TestTokenFromHeader(t *testing.T) {
	app := newTestApp(Config{SecureKey: newTestSecureKey()})
	token := fetchToken(t, app)

	req := httptest.NewRequest(fiber.MethodPost, "/form", nil)
	req.Header.Set(DefaultHeaderName, token)

	res, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
}

func TestStatelessTokenValidationMismatch(t *testing.T) {
	var captured error
	app := newTestApp(Config{
		SecureKey: newTestSecureKey(),
		ErrorHandler: func(ctx router.Context, err error) error {
			captured = err
			return ctx.Status(router.StatusForbidden).SendString(err.Error())
		},
	})

	require.Equal(t, fiber.StatusForbidden, postToken(t, app, DefaultFormFieldName, "tampered"))
	require.ErrorIs(t, captured, ErrTokenMismatch)
}

func TestTokenSignedWithOtherKey(t *testing.T) {
	other := newTestApp(Config{SecureKey: []byte("ffffffffffffffffffffffffffffffff")})
	app := newTestApp(Config{SecureKey: newTestSecureKey()})

	require.Equal(t, fiber.StatusForbidden, postToken(t, app, DefaultFormFieldName, fetchToken(t, other)))
}

func TestTokenMissing(t *testing.T) {
	app := newTestApp(Config{SecureKey: newTestSecureKey()})
	require.Equal(t, fiber.StatusBadRequest, postToken(t, app, DefaultFormFieldName, ""))
}

func TestStatelessTokenExpiration(t *testing.T) {
	now := time.Now()
	cfg := Config{
		SecureKey:  newTestSecureKey(),
		Expiration: time.Minute,
		now:        func() time.Time { return now },
	}
	app := newTestApp(cfg)
	token := fetchToken(t, app)

	cfg.now = func() time.Time { return now.Add(2 * time.Minute) }
	later := newTestApp(cfg)

	require.Equal(t, fiber.StatusForbidden, postToken(t, later, DefaultFormFieldName, token))
}

func TestShortSecureKeyPanics(t *testing.T) {
	require.Panics(t, func() {
		New(Config{SecureKey: []byte("short")})
	})
}

func TestSkip(t *testing.T) {
	app := newTestApp(Config{
		SecureKey: newTestSecureKey(),
		Skip:      func(router.Context) bool { return true },
	})
	require.Equal(t, fiber.StatusOK, postToken(t, app, DefaultFormFieldName, ""))
}

func TestTemplateHelpersFollowCustomKeys(t *testing.T) {
	app := newTestApp(Config{
		SecureKey:     newTestSecureKey(),
		ContextKey:    "my_csrf",
		FormFieldName: "_csrf",
		HeaderName:    "X-My-CSRF",
	})

	res, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/helpers", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	helpers := map[string]any{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&helpers))

	token, _ := helpers["csrf_token"].(string)
	require.NotEmpty(t, token)
	require.Equal(t, token, helpers["locals"])
	require.Equal(t, "_csrf", helpers["csrf_field_name"])
	require.Equal(t, "X-My-CSRF", helpers["csrf_header_name"])

	require.Equal(t, fiber.StatusOK, postToken(t, app, "_csrf", token))
	require.Equal(t, fiber.StatusBadRequest, postToken(t, app, DefaultFormFieldName, token))

	req := httptest.NewRequest(fiber.MethodPost, "/form", nil)
	req.Header.Set("X-My-CSRF", token)
	res, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
}

func TestTemplateHelpersWithoutMiddleware(t *testing.T) {
	srv := router.NewFiberAdapter(func(_ *fiber.App) *fiber.App {
		return fiber.New()
	})
	srv.Router().Get("/", func(ctx router.Context) error {
		return ctx.JSON(router.StatusOK, TemplateHelpers(ctx))
	})

	res, err := srv.WrappedRouter().Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)

	helpers := map[string]any{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&helpers))
	require.Equal(t, "", helpers["csrf_token"])
	require.Equal(t, DefaultFormFieldName, helpers["csrf_field_name"])
	require.Equal(t, DefaultHeaderName, helpers["csrf_header_name"])
}
