package authgate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Options configures a Gateway. Login, Requests, Forms, Credentials and
// Policy are required.
type Options struct {
	Login       LoginExecutor
	Requests    RequestExecutor
	Forms       FormBuilder
	Credentials CredentialSource
	Policy      LoginRequiredFunc

	// Clock defaults to NewSessionClock(DefaultValidity, time.Now).
	Clock *SessionClock

	// MaxConcurrent caps simultaneous network operations. 0 is unbounded.
	MaxConcurrent int

	// Recorder is optional.
	Recorder LoginRecorder
	Logger   *slog.Logger
}

// Gateway authenticates requests against hosts protected by a central login
// service. It is safe for concurrent use; one long-lived instance should be
// shared by everything talking to the protected hosts.
type Gateway struct {
	login    LoginExecutor
	requests RequestExecutor
	forms    FormBuilder
	creds    CredentialSource
	policy   LoginRequiredFunc
	recorder LoginRecorder
	logger   *slog.Logger

	lanes *Coordinator

	clockMu sync.Mutex
	clock   *SessionClock
}

// New builds a Gateway from opts.
func New(opts Options) (*Gateway, error) {
	switch {
	case opts.Login == nil:
		return nil, errors.New("authgate: login executor is required")
	case opts.Requests == nil:
		return nil, errors.New("authgate: request executor is required")
	case opts.Forms == nil:
		return nil, errors.New("authgate: form builder is required")
	case opts.Credentials == nil:
		return nil, errors.New("authgate: credential source is required")
	case opts.Policy == nil:
		return nil, errors.New("authgate: login policy is required")
	}

	clock := opts.Clock
	if clock == nil {
		clock = NewSessionClock(DefaultValidity, nil)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Gateway{
		login:    opts.Login,
		requests: opts.Requests,
		forms:    opts.Forms,
		creds:    opts.Credentials,
		policy:   opts.Policy,
		recorder: opts.Recorder,
		logger:   logger.With("component", "authgate"),
		lanes:    NewCoordinator(opts.MaxConcurrent),
		clock:    clock,
	}, nil
}

// Fetch is Authenticate for a plain GET of rawURL.
func (g *Gateway) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	return g.Authenticate(ctx, Request{URL: u, Method: http.MethodGet})
}

// Authenticate performs req with an authenticated session and returns the
// response body, logging in first when needed.
//
// GET requests are allowed to discover a missing login through the identity
// provider redirect; other methods, and requests with a ManualLoginURL, log in
// before the request is attempted. At most one login per host is in flight,
// and requests for hosts already known to be logged in run in parallel.
// Failures are returned to the caller and never retried here.
func (g *Gateway) Authenticate(ctx context.Context, req Request) ([]byte, error) {
	host := req.Host()
	if host == "" || req.Method == "" {
		return nil, ErrMalformedRequest
	}

	log := g.logger.With("host", host, "method", req.Method)

	if !g.isLoggedIn(host) {
		if req.Method != http.MethodGet || req.ManualLoginURL != nil {
			if _, err := Exclusive(ctx, g.lanes, host, func(ctx context.Context) (struct{}, error) {
				return struct{}{}, g.prelogin(ctx, req)
			}); err != nil {
				return nil, err
			}
		}

		body, handled, err := g.probe(ctx, req)
		if err != nil {
			return nil, err
		}
		if handled {
			return body, nil
		}
	} else {
		log.Debug("session fresh, direct request")
	}

	return Concurrent(ctx, g.lanes, func(ctx context.Context) ([]byte, error) {
		resp, err := g.requests.Execute(ctx, req)
		if err != nil {
			return nil, err
		}
		if g.policy(resp.FinalHost()) {
			// The session went stale between the freshness check and this
			// request. Reported rather than retried.
			log.Warn("valid session redirected to identity provider")
			return nil, ErrLoginFailed
		}
		return resp.Body, nil
	})
}

// Sessions returns a snapshot of every host's login record.
func (g *Gateway) Sessions() []SessionRecord {
	g.clockMu.Lock()
	defer g.clockMu.Unlock()
	return g.clock.Snapshot()
}

// Pending returns how many exclusive units are queued or running for host.
func (g *Gateway) Pending(host string) int {
	return g.lanes.Pending(host)
}

// prelogin runs inside host's exclusive lane.
func (g *Gateway) prelogin(ctx context.Context, req Request) error {
	host := req.Host()

	// Another caller may have logged in while this unit was queued.
	if g.isLoggedIn(host) {
		return nil
	}

	loginURL := req.ManualLoginURL
	if loginURL == nil {
		loginURL = &url.URL{Scheme: req.URL.Scheme, Host: req.URL.Host, Path: "/"}
	}

	started := time.Now()
	creds, err := g.credentials(ctx)
	if err == nil {
		g.logger.Info("logging in before request", "host", host, "login_url", loginURL.String())
		err = g.login.Login(ctx, loginURL, creds)
	}
	g.record(ctx, host, TriggerPrelogin, started, err)
	if err != nil {
		return err
	}

	g.markLoggedIn(host)
	return nil
}

// probe runs the request inside host's exclusive lane and recovers from a
// login redirect. handled is false when the host turned out to be logged in
// and the caller should fetch on the concurrent lane instead.
func (g *Gateway) probe(ctx context.Context, req Request) (body []byte, handled bool, err error) {
	type outcome struct {
		body    []byte
		handled bool
	}

	res, err := Exclusive(ctx, g.lanes, req.Host(), func(ctx context.Context) (outcome, error) {
		host := req.Host()
		if g.isLoggedIn(host) {
			return outcome{}, nil
		}

		resp, err := g.requests.Execute(ctx, req)
		if err != nil {
			return outcome{}, err
		}
		if !g.policy(resp.FinalHost()) {
			return outcome{body: resp.Body, handled: true}, nil
		}

		started := time.Now()
		reloaded, err := g.submitLogin(ctx, resp)
		g.record(ctx, host, TriggerRedirect, started, err)
		if err != nil {
			return outcome{}, err
		}

		g.markLoggedIn(host)
		return outcome{body: reloaded, handled: true}, nil
	})
	return res.body, res.handled, err
}

// submitLogin completes the login page in resp and returns the body of the
// page the identity provider sends the client back to.
func (g *Gateway) submitLogin(ctx context.Context, resp *Response) ([]byte, error) {
	creds, err := g.credentials(ctx)
	if err != nil {
		return nil, err
	}

	g.logger.Info("redirected to identity provider, submitting credentials",
		"login_url", resp.FinalURL.String(),
	)

	form, err := g.forms.Build(resp.FinalURL, resp.Body, creds)
	if err != nil {
		return nil, fmt.Errorf("failed to build login form: %w", err)
	}

	reloaded, err := g.requests.Execute(ctx, form)
	if err != nil {
		return nil, err
	}
	if g.policy(reloaded.FinalHost()) {
		return nil, ErrLoginFailed
	}
	return reloaded.Body, nil
}

func (g *Gateway) credentials(ctx context.Context) (Credentials, error) {
	creds, ok, err := g.creds.Credentials(ctx)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to load credentials: %w", err)
	}
	if !ok {
		return Credentials{}, ErrCredentialsNotFound
	}
	return creds, nil
}

func (g *Gateway) isLoggedIn(host string) bool {
	g.clockMu.Lock()
	defer g.clockMu.Unlock()
	return g.clock.Valid(host)
}

func (g *Gateway) markLoggedIn(host string) {
	g.clockMu.Lock()
	defer g.clockMu.Unlock()
	g.clock.MarkAuthenticated(host, g.clock.Now())
}

func (g *Gateway) record(ctx context.Context, host string, trigger LoginTrigger, started time.Time, err error) {
	if err != nil {
		g.logger.Warn("login attempt failed", "host", host, "trigger", trigger, "error", err)
	} else {
		g.logger.Info("login attempt succeeded", "host", host, "trigger", trigger)
	}

	if g.recorder == nil {
		return
	}
	g.recorder.RecordLogin(ctx, LoginEvent{
		Host:       host,
		Trigger:    trigger,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Err:        err,
	})
}
