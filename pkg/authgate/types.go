package authgate

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Request describes one HTTP exchange the caller wants to perform with an
// authenticated session. It is treated as immutable.
type Request struct {
	URL    *url.URL
	Method string
	Header http.Header
	Body   []byte

	// ManualLoginURL overrides the login target for endpoints that cannot
	// rely on the identity provider's transparent redirect.
	ManualLoginURL *url.URL
}

// Host returns the URL authority used as the session key.
func (r Request) Host() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.Host
}

// Response is the terminal response of an exchange after redirects.
type Response struct {
	Body     []byte
	FinalURL *url.URL
}

// FinalHost returns the authority of the URL the response was served from.
func (r *Response) FinalHost() string {
	if r == nil || r.FinalURL == nil {
		return ""
	}
	return r.FinalURL.Host
}

// Credentials are the secrets submitted to the identity provider.
type Credentials struct {
	Username string
	Password string

	// TOTPSecret is optional; used when the login form asks for a one-time code.
	TOTPSecret string
}

// LoginExecutor performs the identity provider handshake for loginURL. On
// success the shared transport holds a valid session.
type LoginExecutor interface {
	Login(ctx context.Context, loginURL *url.URL, creds Credentials) error
}

// RequestExecutor performs one HTTP exchange with the ambient session,
// following redirects.
type RequestExecutor interface {
	Execute(ctx context.Context, req Request) (*Response, error)
}

// CredentialSource returns stored credentials. ok is false when none exist.
type CredentialSource interface {
	Credentials(ctx context.Context) (creds Credentials, ok bool, err error)
}

// FormBuilder turns an identity provider login page into the request that
// submits creds.
type FormBuilder interface {
	Build(pageURL *url.URL, page []byte, creds Credentials) (Request, error)
}

// LoginTrigger says which step of Authenticate started a login.
type LoginTrigger string

const (
	TriggerPrelogin LoginTrigger = "prelogin"
	TriggerRedirect LoginTrigger = "redirect"
)

// LoginEvent describes one finished login attempt.
type LoginEvent struct {
	Host       string
	Trigger    LoginTrigger
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

// LoginRecorder receives every login attempt the gateway makes.
type LoginRecorder interface {
	RecordLogin(ctx context.Context, ev LoginEvent)
}

// StaticCredentials is a CredentialSource with fixed values. An empty
// username reports no credentials.
type StaticCredentials Credentials

func (s StaticCredentials) Credentials(context.Context) (Credentials, bool, error) {
	if s.Username == "" {
		return Credentials{}, false, nil
	}
	return Credentials(s), true, nil
}
