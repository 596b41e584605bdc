package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/goliatone/go-authscreen"
)

const (
	methodSignIn = "accounts:signInWithPassword"
	methodSignUp = "accounts:signUp"
	methodUpdate = "accounts:update"
)

// Client implements authscreen.IdentityService over the Identity Toolkit REST API
type Client struct {
	cfg    Config
	http   *http.Client
	logger authscreen.Logger
}

var _ authscreen.IdentityService = (*Client)(nil)

// NewClient returns a REST client for the configured project
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Client{
		cfg:    cfg,
		http:   cfg.httpClient(),
		logger: authscreen.DefaultLogger(),
	}, nil
}

func (c *Client) WithLogger(logger authscreen.Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type updateRequest struct {
	IDToken           string `json:"idToken"`
	DisplayName       string `json:"displayName"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type authResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Verify implements authscreen.IdentityService.
func (c *Client) Verify(ctx context.Context, email, password string) (*authscreen.Account, error) {
	resp := &authResponse{}
	if err := c.post(ctx, methodSignIn, passwordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, resp); err != nil {
		return nil, err
	}
	return resp.account(), nil
}

// CreateAccount implements authscreen.IdentityService.
func (c *Client) CreateAccount(ctx context.Context, email, password string) (*authscreen.Account, error) {
	resp := &authResponse{}
	if err := c.post(ctx, methodSignUp, passwordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, resp); err != nil {
		return nil, err
	}
	return resp.account(), nil
}

// SetDisplayName implements authscreen.IdentityService. When Firebase hands
// back a fresh ID token the account is updated with it.
func (c *Client) SetDisplayName(ctx context.Context, account *authscreen.Account, name string) error {
	if account == nil || account.Token == "" {
		return &Error{Code: "auth/invalid-user-token"}
	}

	resp := &authResponse{}
	if err := c.post(ctx, methodUpdate, updateRequest{
		IDToken:           account.Token,
		DisplayName:       name,
		ReturnSecureToken: true,
	}, resp); err != nil {
		return err
	}

	account.DisplayName = name
	if resp.IDToken != "" {
		account.Token = resp.IDToken
	}
	return nil
}

func (c *Client) post(ctx context.Context, method string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("firebase: encode %s: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/%s?key=%s", c.cfg.endpoint(), method, url.QueryEscape(c.cfg.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("firebase: build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("firebase %s: %v", method, err)
		return newNetworkError(err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return newNetworkError(err)
	}

	if res.StatusCode >= http.StatusBadRequest {
		apiErr := errorResponse{}
		if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.Error.Message == "" {
			c.logger.Error("firebase %s: unexpected status %d", method, res.StatusCode)
			return &Error{Code: "auth/internal-error", Status: res.StatusCode}
		}
		return newServerError(res.StatusCode, apiErr.Error.Message)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Code: "auth/internal-error", Status: res.StatusCode, cause: err}
	}

	return nil
}

func (r *authResponse) account() *authscreen.Account {
	return &authscreen.Account{
		UID:         r.LocalID,
		Email:       r.Email,
		DisplayName: r.DisplayName,
		Token:       r.IDToken,
	}
}
