package domain

import "time"

// Credential is the single identity provider account the gateway logs in
// with. Secrets are stored sealed; see cryptox.Sealer.
type Credential struct {
	Username       string
	SealedPassword []byte
	SealedTOTP     []byte // nil when no one-time code secret is configured
	UpdatedAt      time.Time
}

// HasTOTP reports whether a one-time code secret is stored.
func (c Credential) HasTOTP() bool {
	return len(c.SealedTOTP) > 0
}
