package uis

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/aussiebroadwan/campusgate/pkg/authgate"
	"golang.org/x/net/publicsuffix"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15"

	// maxBodyBytes bounds how much of a response is buffered.
	maxBodyBytes = 32 << 20
)

// TransportConfig configures a Transport. Zero values select the defaults.
type TransportConfig struct {
	Timeout   time.Duration
	UserAgent string

	// Jar replaces the default public-suffix aware cookie jar.
	Jar http.CookieJar
}

// Transport is the shared HTTP client every request and login goes through.
// Its cookie jar is the session: a login performed through one call is
// visible to all others.
type Transport struct {
	client    *http.Client
	userAgent string
}

// NewTransport builds a Transport with its own cookie jar.
func NewTransport(cfg TransportConfig) (*Transport, error) {
	jar := cfg.Jar
	if jar == nil {
		j, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		jar = j
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	return &Transport{
		client:    &http.Client{Jar: jar, Timeout: timeout},
		userAgent: ua,
	}, nil
}

// Client exposes the underlying client, e.g. for cookie inspection in tests.
func (t *Transport) Client() *http.Client { return t.client }

// Execute performs req, following redirects, and reports the body together
// with the URL it was finally served from. The status code is not inspected.
func (t *Transport) Execute(ctx context.Context, req authgate.Request) (*authgate.Response, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", authgate.ErrMalformedRequest, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, &authgate.NetworkError{Op: "request", URL: req.URL.String(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &authgate.NetworkError{Op: "read", URL: resp.Request.URL.String(), Err: err}
	}

	return &authgate.Response{Body: data, FinalURL: resp.Request.URL}, nil
}
