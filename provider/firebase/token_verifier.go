package firebase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-authscreen"
)

// IDTokenClaims are the claims carried by a Firebase ID token
type IDTokenClaims struct {
	jwt.RegisteredClaims
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// TokenVerifier checks Firebase ID tokens against the published signing keys
type TokenVerifier struct {
	cfg     Config
	keyfunc jwt.Keyfunc
	now     func() time.Time
}

var _ authscreen.TokenVerifier = (*TokenVerifier)(nil)

// NewTokenVerifier fetches the JWKS and keeps it refreshed in the background
// for the lifetime of cfg.ContextFunc's context
func NewTokenVerifier(cfg Config) (*TokenVerifier, error) {
	kf, err := keyfunc.NewDefaultCtx(cfg.context(), []string{cfg.jwksURL()})
	if err != nil {
		return nil, fmt.Errorf("firebase: load signing keys: %w", err)
	}
	return NewTokenVerifierWithKeyfunc(cfg, kf.Keyfunc)
}

// NewTokenVerifierWithKeyfunc uses the given key lookup instead of the JWKS
func NewTokenVerifierWithKeyfunc(cfg Config, kf jwt.Keyfunc) (*TokenVerifier, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("firebase: project id is required")
	}
	if kf == nil {
		return nil, fmt.Errorf("firebase: keyfunc is required")
	}
	return &TokenVerifier{
		cfg:     cfg,
		keyfunc: kf,
		now:     time.Now,
	}, nil
}

// VerifyToken implements authscreen.TokenVerifier. It returns the token subject,
// which Firebase sets to the user UID.
func (v *TokenVerifier) VerifyToken(_ context.Context, raw string) (string, error) {
	claims, err := v.Claims(raw)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Claims parses and validates raw, returning its claims
func (v *TokenVerifier) Claims(raw string) (*IDTokenClaims, error) {
	if raw == "" {
		return nil, authscreen.ErrMissingToken
	}

	claims := &IDTokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, v.keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.cfg.issuer()),
		jwt.WithAudience(v.cfg.ProjectID),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", authscreen.ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: %v", authscreen.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", authscreen.ErrInvalidToken)
	}

	return claims, nil
}
