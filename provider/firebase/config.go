package firebase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the Identity Toolkit v1 base URL
	DefaultEndpoint = "https://identitytoolkit.googleapis.com/v1"
	// DefaultJWKSURL publishes the keys signing Firebase ID tokens
	DefaultJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
	// IssuerPrefix is followed by the project ID in the iss claim
	IssuerPrefix = "https://securetoken.google.com/"
)

// Config holds Firebase configuration for the client and token verifier.
type Config struct {
	// APIKey is the web API key of the Firebase project.
	APIKey string

	// ProjectID is used as token audience and issuer suffix.
	ProjectID string

	// Endpoint overrides the Identity Toolkit base URL (optional).
	// Default: DefaultEndpoint.
	Endpoint string

	// JWKSURL overrides where signing keys are fetched from (optional).
	// Default: DefaultJWKSURL.
	JWKSURL string

	// HTTPClient is used for REST calls (optional).
	// Default: a client with a 10 second timeout.
	HTTPClient *http.Client

	// ContextFunc provides a context for JWKS fetches.
	// Default: context.Background.
	ContextFunc func() context.Context
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(apiKey, projectID string) Config {
	return Config{
		APIKey:    apiKey,
		ProjectID: projectID,
		Endpoint:  DefaultEndpoint,
		JWKSURL:   DefaultJWKSURL,
	}
}

func (c Config) endpoint() string {
	endpoint := strings.TrimSpace(c.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return strings.TrimSuffix(endpoint, "/")
}

func (c Config) jwksURL() string {
	if c.JWKSURL != "" {
		return c.JWKSURL
	}
	return DefaultJWKSURL
}

func (c Config) issuer() string {
	return IssuerPrefix + c.ProjectID
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (c Config) context() context.Context {
	if c.ContextFunc != nil {
		return c.ContextFunc()
	}
	return context.Background()
}

func (c Config) validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("firebase: api key is required")
	}
	if strings.TrimSpace(c.ProjectID) == "" {
		return fmt.Errorf("firebase: project id is required")
	}
	return nil
}
