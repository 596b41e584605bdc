package authscreen

import (
	"context"
	"time"

	"github.com/goliatone/go-router"
)

// CookieOptions controls the session token cookie
type CookieOptions struct {
	Duration time.Duration
	Secure   bool
}

// DefaultCookieOptions keeps the token for a day over HTTPS only
func DefaultCookieOptions() CookieOptions {
	return CookieOptions{
		Duration: 24 * time.Hour,
		Secure:   true,
	}
}

// CookieSessionStore keeps session values in the browser as HTTPOnly cookies
type CookieSessionStore struct {
	ctx  router.Context
	opts CookieOptions
}

var _ SessionStore = (*CookieSessionStore)(nil)

// NewCookieSessionStore binds a store to the current request
func NewCookieSessionStore(ctx router.Context, opts CookieOptions) *CookieSessionStore {
	if opts.Duration <= 0 {
		opts.Duration = DefaultCookieOptions().Duration
	}
	return &CookieSessionStore{ctx: ctx, opts: opts}
}

// Set implements SessionStore.
func (s *CookieSessionStore) Set(_ context.Context, key, value string) error {
	s.ctx.Cookie(&router.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(s.opts.Duration),
		HTTPOnly: true,
		Secure:   s.opts.Secure,
		SameSite: "Lax",
	})
	return nil
}

// Get returns the value sent by the browser for key
func (s *CookieSessionStore) Get(key string) string {
	return s.ctx.Cookies(key)
}

// Delete expires the cookie for key
func (s *CookieSessionStore) Delete(key string) {
	s.ctx.Cookie(&router.Cookie{
		Name:     key,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   s.opts.Secure,
		SameSite: "Lax",
	})
}

// routeNavigator answers the request with a 303 to the target path
type routeNavigator struct {
	ctx router.Context
}

func (n routeNavigator) Navigate(_ context.Context, path string) error {
	return n.ctx.Redirect(path, router.StatusSeeOther)
}
