package domain

import "time"

const (
	OutcomeSuccess            = "success"
	OutcomeLoginFailed        = "login_failed"
	OutcomeCredentialsMissing = "credentials_missing"
	OutcomeError              = "error"
)

type LoginAttempt struct {
	ID         string
	Host       string
	Trigger    string // prelogin | redirect
	Outcome    string
	Error      string // empty on success
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration is how long the identity provider handshake took.
func (a LoginAttempt) Duration() time.Duration {
	return a.FinishedAt.Sub(a.StartedAt)
}
