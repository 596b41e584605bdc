package authscreen

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/joeshaw/envdecode"
)

const (
	ProviderLocal    = "local"
	ProviderFirebase = "firebase"

	UserStateMemory = "memory"
	UserStateRedis  = "redis"
	UserStateBolt   = "bolt"
)

// Config holds the server options. Defaults come from the env struct tags.
type Config struct {
	ListenAddr string `env:"AUTHSCREEN_ADDR,default=:8080"`
	Brand      string `env:"AUTHSCREEN_BRAND,default=Netflix"`
	Debug      bool   `env:"AUTHSCREEN_DEBUG,default=false"`

	Provider  string `env:"AUTHSCREEN_PROVIDER,default=local"`
	UserState string `env:"AUTHSCREEN_USER_STATE,default=memory"`

	// local provider
	DatabaseDSN     string `env:"AUTHSCREEN_DSN,default=file:authscreen.db?cache=shared"`
	SigningKey      string `env:"AUTHSCREEN_SIGNING_KEY"`
	Issuer          string `env:"AUTHSCREEN_ISSUER,default=authscreen"`
	TokenExpiration int    `env:"AUTHSCREEN_TOKEN_EXPIRATION,default=24"`
	BcryptCost      int    `env:"AUTHSCREEN_BCRYPT_COST,default=12"`
	UseHashid       bool   `env:"AUTHSCREEN_USE_HASHID,default=false"`

	// firebase provider
	FirebaseAPIKey    string `env:"FIREBASE_API_KEY"`
	FirebaseProjectID string `env:"FIREBASE_PROJECT_ID"`
	FirebaseEndpoint  string `env:"FIREBASE_AUTH_ENDPOINT,default=https://identitytoolkit.googleapis.com/v1"`

	// user state backends
	RedisAddr   string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisPrefix string `env:"AUTHSCREEN_REDIS_PREFIX,default=authscreen:"`
	BoltPath    string `env:"AUTHSCREEN_BOLT_PATH,default=authscreen.bolt"`

	SecureCookies bool `env:"AUTHSCREEN_SECURE_COOKIES,default=true"`

	// CSRFKey signs login form tokens. Random per process when empty.
	CSRFKey string `env:"AUTHSCREEN_CSRF_KEY"`
}

// LoadConfig reads the environment and validates the result
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the options needed by the selected provider and backend
func (c Config) Validate() error {
	fields := []*validation.FieldRules{
		validation.Field(&c.ListenAddr, validation.Required),
		validation.Field(&c.Provider, validation.Required, validation.In(ProviderLocal, ProviderFirebase)),
		validation.Field(&c.UserState, validation.Required, validation.In(UserStateMemory, UserStateRedis, UserStateBolt)),
		validation.Field(&c.TokenExpiration, validation.Required, validation.Min(1)),
		validation.Field(&c.CSRFKey, validation.Length(32, 0)),
	}

	switch c.Provider {
	case ProviderLocal:
		fields = append(fields,
			validation.Field(&c.SigningKey, validation.Required, validation.Length(16, 0)),
			validation.Field(&c.DatabaseDSN, validation.Required),
		)
	case ProviderFirebase:
		fields = append(fields,
			validation.Field(&c.FirebaseAPIKey, validation.Required),
			validation.Field(&c.FirebaseProjectID, validation.Required),
			validation.Field(&c.FirebaseEndpoint, validation.Required),
		)
	}

	switch c.UserState {
	case UserStateRedis:
		fields = append(fields, validation.Field(&c.RedisAddr, validation.Required))
	case UserStateBolt:
		fields = append(fields, validation.Field(&c.BoltPath, validation.Required))
	}

	return validation.ValidateStruct(&c, fields...)
}

// TokenTTL returns the session lifetime
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenExpiration) * time.Hour
}

// CookieOptions returns the session cookie settings
func (c Config) CookieOptions() CookieOptions {
	return CookieOptions{
		Duration: c.TokenTTL(),
		Secure:   c.SecureCookies,
	}
}
