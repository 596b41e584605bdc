package firebase

import "github.com/goliatone/go-authscreen"

// Provider bundles the REST client and the ID token verifier
type Provider struct {
	*Client
	*TokenVerifier
}

var (
	_ authscreen.IdentityService = (*Provider)(nil)
	_ authscreen.TokenVerifier   = (*Provider)(nil)
)

// New builds a Provider for cfg. It fetches the signing keys before returning.
func New(cfg Config) (*Provider, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	verifier, err := NewTokenVerifier(cfg)
	if err != nil {
		return nil, err
	}

	return &Provider{
		Client:        client,
		TokenVerifier: verifier,
	}, nil
}
