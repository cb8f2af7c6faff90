package uis

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/aussiebroadwan/campusgate/pkg/authgate"
	"golang.org/x/time/rate"
)

// DefaultIdentityProviderHost is the Fudan unified identity service.
const DefaultIdentityProviderHost = "uis.fudan.edu.cn"

// DefaultLoginInterval is the minimum spacing between credential
// submissions, keeping a misbehaving caller clear of account lockout.
const DefaultLoginInterval = 2 * time.Second

// LoginConfig configures a Login.
type LoginConfig struct {
	Transport *Transport
	Forms     authgate.FormBuilder

	// IdentityProviderHost defaults to DefaultIdentityProviderHost.
	IdentityProviderHost string

	// Interval between credential submissions. Negative disables throttling.
	Interval time.Duration

	Logger *slog.Logger
}

// Login performs the identity provider handshake over a shared Transport.
type Login struct {
	transport *Transport
	forms     authgate.FormBuilder
	policy    authgate.LoginRequiredFunc
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// NewLogin builds a Login. It implements authgate.LoginExecutor.
func NewLogin(cfg LoginConfig) (*Login, error) {
	if cfg.Transport == nil {
		return nil, fmt.Errorf("uis: transport is required")
	}

	forms := cfg.Forms
	if forms == nil {
		forms = NewFormBuilder()
	}

	idp := cfg.IdentityProviderHost
	if idp == "" {
		idp = DefaultIdentityProviderHost
	}

	limit := rate.Inf
	switch {
	case cfg.Interval == 0:
		limit = rate.Every(DefaultLoginInterval)
	case cfg.Interval > 0:
		limit = rate.Every(cfg.Interval)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Login{
		transport: cfg.Transport,
		forms:     forms,
		policy:    authgate.IdentityProviderHost(idp),
		limiter:   rate.NewLimiter(limit, 1),
		logger:    logger.With("component", "uis", "idp", idp),
	}, nil
}

// Policy reports whether a final host is the identity provider this Login
// talks to.
func (l *Login) Policy() authgate.LoginRequiredFunc { return l.policy }

// Login opens loginURL and, when it is diverted to the identity provider,
// submits creds through the login form. Landing on the identity provider
// again means the credentials were rejected.
func (l *Login) Login(ctx context.Context, loginURL *url.URL, creds authgate.Credentials) error {
	page, err := l.transport.Execute(ctx, authgate.Request{URL: loginURL, Method: http.MethodGet})
	if err != nil {
		return err
	}
	if !l.policy(page.FinalHost()) {
		l.logger.Debug("login url not diverted, session already established", "login_url", loginURL.String())
		return nil
	}

	form, err := l.forms.Build(page.FinalURL, page.Body, creds)
	if err != nil {
		return fmt.Errorf("failed to build login form: %w", err)
	}

	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("login throttle: %w", err)
	}

	result, err := l.transport.Execute(ctx, form)
	if err != nil {
		return err
	}
	if l.policy(result.FinalHost()) {
		return authgate.ErrLoginFailed
	}

	l.logger.Debug("credentials accepted", "landed_on", result.FinalHost())
	return nil
}
