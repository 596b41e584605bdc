package local

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-authscreen"
)

// MinPasswordLength is the shortest password accepted at sign-up
const MinPasswordLength = 6

// Config holds the local provider options
type Config struct {
	SigningKey string
	Issuer     string
	// TokenTTL is the session token lifetime
	TokenTTL   time.Duration
	BcryptCost int
	// UseHashid derives user IDs from the email so they are stable across
	// databases
	UseHashid bool
}

// Provider implements authscreen.IdentityService and authscreen.TokenVerifier
type Provider struct {
	users    *Users
	tokens   *TokenService
	register *RegisterAccountHandler
	cfg      Config
	logger   authscreen.Logger
}

var (
	_ authscreen.IdentityService = (*Provider)(nil)
	_ authscreen.TokenVerifier   = (*Provider)(nil)
)

// New returns a provider storing accounts in db
func New(db *bun.DB, cfg Config) (*Provider, error) {
	if db == nil {
		return nil, fmt.Errorf("local: database is required")
	}

	if cfg.SigningKey == "" {
		return nil, fmt.Errorf("local: signing key is required")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	users := NewUsersRepository(db)

	return &Provider{
		users:    users,
		tokens:   NewTokenService([]byte(cfg.SigningKey), cfg.TokenTTL, cfg.Issuer),
		register: NewRegisterAccountHandler(users, cfg.BcryptCost),
		cfg:      cfg,
		logger:   authscreen.DefaultLogger(),
	}, nil
}

func (p *Provider) WithLogger(logger authscreen.Logger) *Provider {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// Users exposes the account repository
func (p *Provider) Users() *Users {
	return p.users
}

// Tokens exposes the token service
func (p *Provider) Tokens() *TokenService {
	return p.tokens
}

// Migrate creates the tables the provider needs
func (p *Provider) Migrate(ctx context.Context) error {
	return p.users.Migrate(ctx)
}

// Verify implements authscreen.IdentityService.
func (p *Provider) Verify(ctx context.Context, email, password string) (*authscreen.Account, error) {
	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if IsRecordNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		p.logger.Error("local verify lookup %s: %v", email, err)
		return nil, fmt.Errorf("local: lookup user: %w", err)
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := p.users.TrackSuccessfulLogin(ctx, user.ID); err != nil {
		p.logger.Warn("local track login %s: %v", user.ID, err)
	}

	token, err := p.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	return user.Account(token), nil
}

// CreateAccount implements authscreen.IdentityService. The account is
// stored by the RegisterAccountHandler command.
func (p *Provider) CreateAccount(ctx context.Context, email, password string) (*authscreen.Account, error) {
	var user *User

	if err := p.register.Execute(ctx, RegisterAccountMessage{
		Email:     email,
		Password:  password,
		UseHashid: p.cfg.UseHashid,
		OnResponse: func(u *User) {
			user = u
		},
	}); err != nil {
		return nil, err
	}

	token, err := p.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	return user.Account(token), nil
}

// SetDisplayName implements authscreen.IdentityService. The account gets a
// fresh token carrying the new name.
func (p *Provider) SetDisplayName(ctx context.Context, account *authscreen.Account, name string) error {
	if account == nil {
		return ErrAccountNotFound
	}

	if err := validation.Validate(name, authscreen.DisplayNameRules()...); err != nil {
		return err
	}

	id, err := uuid.Parse(account.UID)
	if err != nil {
		return ErrAccountNotFound
	}

	if err := p.users.UpdateDisplayName(ctx, id, name); err != nil {
		return err
	}

	user, err := p.users.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("local: reload user: %w", err)
	}

	token, err := p.tokens.Generate(user)
	if err != nil {
		return err
	}

	account.DisplayName = user.DisplayName
	account.Token = token
	return nil
}

// VerifyToken implements authscreen.TokenVerifier.
func (p *Provider) VerifyToken(_ context.Context, token string) (string, error) {
	claims, err := p.tokens.Validate(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
