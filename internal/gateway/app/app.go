package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/campusgate/internal/gateway/http"
	"github.com/aussiebroadwan/campusgate/internal/gateway/service"
	"github.com/aussiebroadwan/campusgate/internal/gateway/store"
	"github.com/aussiebroadwan/campusgate/internal/gateway/store/drivers/sqlite"
	"github.com/aussiebroadwan/campusgate/pkg/authgate"
	"github.com/aussiebroadwan/campusgate/pkg/cryptox"
	"github.com/aussiebroadwan/campusgate/pkg/jwtx"
	"github.com/aussiebroadwan/campusgate/pkg/slogx"
	"github.com/aussiebroadwan/campusgate/pkg/uis"
)

const (
	// BuildVersion is overridden at build time via ldflags.
	BuildVersion = "v0.1.0"

	masterKeyEnv = "GATEWAY_MASTER_KEY"
	tokenLeeway  = 30 * time.Second
)

// Application wires the gateway service together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	sealer *cryptox.Sealer
	keys   *jwtx.RemoteKeySet // nil when API authentication is disabled

	gateway             *authgate.Gateway
	credentialService   *service.CredentialService
	auditService        *service.AuditService
	housekeepingService *service.HousekeepingService

	server  *http.Server
	router  *httpapi.Router
	started bool
}

// New creates an Application with all dependencies initialised. Background
// work starts in Run.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "campusgate",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	sealer, err := LoadSealer(cfg, app.logger, cfg.IsDev())
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.sealer = sealer

	app.initServices()

	if err := app.initGateway(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	verifier, err := app.initAPIAuth()
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP(verifier)
	return app, nil
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()
	if app.keys != nil {
		app.keys.Start(app.cfg.JWKSRefresh)
	}
	app.started = true

	app.logger.Info("campusgate starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"idp", app.cfg.IdentityProviderHost,
		"auth_mode", app.cfg.AuthMode,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}
	return nil
}

// Shutdown drains in-flight requests, stops background work and closes the
// database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down campusgate...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.started {
		app.housekeepingService.Stop()
		if app.keys != nil {
			app.keys.Stop()
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("campusgate stopped")
	return nil
}

func (app *Application) initDatabase() error {
	db, err := OpenDatabase(app.cfg)
	if err != nil {
		return err
	}
	app.db = db
	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

// OpenDatabase opens the sqlite database named by cfg and applies migrations.
func OpenDatabase(cfg Config) (*sqlite.Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return db, nil
}

// LoadSealer loads the credential sealing key. With allowEphemeral a random
// key is used when none is configured; credentials stored under it are lost
// on restart.
func LoadSealer(cfg Config, logger *slog.Logger, allowEphemeral bool) (*cryptox.Sealer, error) {
	master, err := cryptox.LoadMasterKey(cfg.MasterKeyPath, masterKeyEnv)
	if errors.Is(err, cryptox.ErrNoMasterKey) && cfg.MasterKeyPath == "" && allowEphemeral {
		logger.Warn("no master key configured, using an ephemeral key; stored credentials will not survive a restart",
			"env", masterKeyEnv,
		)
		master, err = cryptox.EphemeralMasterKey()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load master key: %w", err)
	}
	return cryptox.NewSealer(master)
}

func (app *Application) initServices() {
	app.credentialService = &service.CredentialService{
		Store:  app.db,
		Sealer: app.sealer,
	}
	app.auditService = &service.AuditService{
		Store:  app.db,
		Logger: app.logger,
	}
	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.AuditRetention,
	)
}

func (app *Application) initGateway() error {
	transport, err := uis.NewTransport(uis.TransportConfig{
		Timeout:   app.cfg.RequestTimeout,
		UserAgent: app.cfg.UserAgent,
	})
	if err != nil {
		return err
	}

	login, err := uis.NewLogin(uis.LoginConfig{
		Transport:            transport,
		IdentityProviderHost: app.cfg.IdentityProviderHost,
		Interval:             app.cfg.LoginInterval,
		Logger:               app.logger,
	})
	if err != nil {
		return err
	}

	gw, err := authgate.New(authgate.Options{
		Login:         login,
		Requests:      transport,
		Forms:         uis.NewFormBuilder(),
		Credentials:   app.credentialService,
		Policy:        login.Policy(),
		Clock:         authgate.NewSessionClock(app.cfg.SessionTTL, nil),
		MaxConcurrent: app.cfg.MaxConcurrent,
		Recorder:      app.auditService,
		Logger:        app.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize gateway: %w", err)
	}
	app.gateway = gw
	return nil
}

// initAPIAuth returns the bearer token verifier, or nil when authentication
// is disabled.
func (app *Application) initAPIAuth() (jwtx.Verifier, error) {
	switch app.cfg.AuthMode {
	case AuthModeNone:
		if !app.cfg.IsDev() {
			app.logger.Warn("API authentication is disabled", "env", app.cfg.Env)
		}
		return nil, nil
	case AuthModeJWT:
	default:
		return nil, fmt.Errorf("unknown API_AUTH_MODE %q (want %s or %s)", app.cfg.AuthMode, AuthModeJWT, AuthModeNone)
	}

	if app.cfg.JWKSURL == "" {
		return nil, errors.New("API_JWKS_URL is required when API_AUTH_MODE=jwt")
	}

	app.keys = jwtx.NewRemoteKeySet(app.cfg.JWKSURL, nil, app.logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.keys.Refresh(ctx); err != nil {
		// Not fatal: the issuer may start after us. /readyz reports it.
		app.logger.Warn("initial jwks fetch failed", "url", app.cfg.JWKSURL, "error", err)
	}

	return jwtx.NewVerifier(app.keys.KeySet, jwtx.VerifyOptions{
		Issuer:   app.cfg.JWTIssuer,
		Audience: splitList(app.cfg.JWTAudience),
		Leeway:   tokenLeeway,
	}), nil
}

func (app *Application) initHTTP(verifier jwtx.Verifier) {
	var keys httpapi.KeyStatus
	if app.keys != nil {
		keys = app.keys
	}

	router := httpapi.NewRouter(verifier, keys, BuildVersion, app.db, app.logger)
	router.Gateway = app.gateway
	router.Credentials = app.credentialService
	router.Audit = app.auditService
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
