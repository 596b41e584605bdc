package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/goliatone/go-router"
	mflash "github.com/goliatone/go-router/middleware/flash"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/goliatone/go-authscreen"
	"github.com/goliatone/go-authscreen/middleware/csrf"
	"github.com/goliatone/go-authscreen/provider/firebase"
	"github.com/goliatone/go-authscreen/provider/local"
	"github.com/goliatone/go-authscreen/store/boltstore"
	"github.com/goliatone/go-authscreen/store/redisstore"
	"github.com/goliatone/go-authscreen/views"
)

type identityProvider interface {
	authscreen.IdentityService
	authscreen.TokenVerifier
}

type App struct {
	config   *authscreen.Config
	logger   authscreen.Logger
	provider identityProvider
	users    authscreen.UserState
	srv      router.Server[*fiber.App]
	closers  []io.Closer
}

func main() {
	cfg, err := authscreen.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
	defer stop()

	app := &App{
		config: cfg,
		logger: authscreen.DefaultLogger(),
	}
	defer app.Close()

	for _, setup := range []func(context.Context, *App) error{
		WithProvider,
		WithUserState,
		WithHTTPServer,
	} {
		if err := setup(ctx, app); err != nil {
			log.Fatalf("setup: %v", err)
		}
	}

	go func() {
		app.logger.Info("listening on %s", cfg.ListenAddr)
		if err := app.srv.Serve(cfg.ListenAddr); err != nil {
			app.logger.Error("server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	app.logger.Info("shutting down...")
	if err := app.srv.WrappedRouter().ShutdownWithTimeout(10 * time.Second); err != nil {
		app.logger.Error("shutdown: %v", err)
	}
}

// Close releases the backends opened during setup
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("close: %v", err)
		}
	}
}

func WithProvider(ctx context.Context, app *App) error {
	cfg := app.config

	switch cfg.Provider {
	case authscreen.ProviderFirebase:
		fbCfg := firebase.DefaultConfig(cfg.FirebaseAPIKey, cfg.FirebaseProjectID)
		fbCfg.Endpoint = cfg.FirebaseEndpoint
		fbCfg.ContextFunc = func() context.Context { return ctx }

		p, err := firebase.New(fbCfg)
		if err != nil {
			return err
		}
		p.WithLogger(app.logger)
		app.provider = p

	case authscreen.ProviderLocal:
		db, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
		if err != nil {
			return err
		}

		bunDB := bun.NewDB(db, sqlitedialect.New())
		app.closers = append(app.closers, bunDB)

		p, err := local.New(bunDB, local.Config{
			SigningKey: cfg.SigningKey,
			Issuer:     cfg.Issuer,
			TokenTTL:   cfg.TokenTTL(),
			BcryptCost: cfg.BcryptCost,
			UseHashid:  cfg.UseHashid,
		})
		if err != nil {
			return err
		}

		if err := p.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		app.provider = p.WithLogger(app.logger)

	default:
		return fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	app.logger.Info("identity provider: %s", cfg.Provider)
	return nil
}

func WithUserState(ctx context.Context, app *App) error {
	cfg := app.config

	switch cfg.UserState {
	case authscreen.UserStateRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}

		store, err := redisstore.New(redisstore.Config{
			Client:    client,
			KeyPrefix: cfg.RedisPrefix,
			TTL:       cfg.TokenTTL(),
		})
		if err != nil {
			return err
		}
		app.closers = append(app.closers, store)
		app.users = store

	case authscreen.UserStateBolt:
		store, err := boltstore.Open(cfg.BoltPath)
		if err != nil {
			return err
		}
		app.closers = append(app.closers, store)
		app.users = store

	default:
		app.users = authscreen.NewMemoryUserState()
	}

	app.logger.Info("user state: %s", cfg.UserState)
	return nil
}

func WithHTTPServer(_ context.Context, app *App) error {
	cfg := app.config

	app.srv = router.NewFiberAdapter(func(_ *fiber.App) *fiber.App {
		f := fiber.New(fiber.Config{
			AppName:               cfg.Brand,
			Views:                 views.NewEngine(),
			DisableStartupMessage: !cfg.Debug,
			ReadTimeout:           10 * time.Second,
			WriteTimeout:          10 * time.Second,
		})
		f.Use(recover.New())
		f.Use(logger.New(logger.Config{Output: os.Stdout}))
		return router.DefaultFiberOptions(f)
	})

	r := app.srv.Router()
	r.Use(mflash.New(mflash.ConfigDefault))

	screen := authscreen.NewAuthScreen(app.provider, app.users).
		WithLogger(app.logger).
		WithDebug(cfg.Debug)

	authscreen.RegisterAuthRoutes(r,
		authscreen.WithScreen(screen),
		authscreen.WithTokenVerifier(app.provider),
		authscreen.WithUserState(app.users),
		authscreen.WithControllerLogger(app.logger),
		authscreen.WithCookieOptions(cfg.CookieOptions()),
		authscreen.WithCSRF(csrf.New(csrf.Config{
			SecureKey:  []byte(cfg.CSRFKey),
			Expiration: cfg.TokenTTL(),
		})),
		authscreen.WithBrand(cfg.Brand),
		authscreen.WithDebug(cfg.Debug),
	)

	return nil
}
