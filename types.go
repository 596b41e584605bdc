package authscreen

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// IdentityService is the remote authority that verifies credentials and
// issues session tokens
type IdentityService interface {
	Verify(ctx context.Context, email, password string) (*Account, error)
	CreateAccount(ctx context.Context, email, password string) (*Account, error)
	SetDisplayName(ctx context.Context, account *Account, name string) error
}

// TokenVerifier checks a session token issued by an IdentityService and
// returns the user ID it was issued for
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// SessionStore persists the session token for the rest of the browser session
type SessionStore interface {
	Set(ctx context.Context, key, value string) error
}

// Navigator moves the client to another view
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// UserState is the application wide record of the authenticated user
type UserState interface {
	Dispatch(ctx context.Context, action UserAction) error
	Lookup(ctx context.Context, uid string) (*UserIdentity, error)
}

// SessionStoreFunc adapts a function to the SessionStore interface.
type SessionStoreFunc func(ctx context.Context, key, value string) error

func (f SessionStoreFunc) Set(ctx context.Context, key, value string) error {
	if f == nil {
		return nil
	}
	return f(ctx, key, value)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(ctx context.Context, path string) error

func (f NavigatorFunc) Navigate(ctx context.Context, path string) error {
	if f == nil {
		return nil
	}
	return f(ctx, path)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTHSCREEN "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTHSCREEN "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTHSCREEN "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTHSCREEN "+newline(format), args...)
}

// DefaultLogger returns the printf logger used when none is configured
func DefaultLogger() Logger {
	return defLogger{}
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
