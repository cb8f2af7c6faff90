package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/campusgate/internal/gateway/domain"
	"github.com/aussiebroadwan/campusgate/internal/gateway/store"
	"github.com/aussiebroadwan/campusgate/pkg/authgate"
	"github.com/aussiebroadwan/campusgate/pkg/cryptox"
	"github.com/pquerna/otp/totp"
)

var (
	ErrInvalidCredential = errors.New("username and password are required")
	ErrInvalidTOTPSecret = errors.New("totp secret is not valid base32")
)

// CredentialStatus describes the stored credential without its secrets.
type CredentialStatus struct {
	Configured bool
	Username   string
	HasTOTP    bool
	UpdatedAt  time.Time
}

// CredentialService stores the identity provider account sealed at rest and
// serves it to the gateway.
type CredentialService struct {
	Store  store.Store
	Sealer *cryptox.Sealer
	Now    func() time.Time // defaults to time.Now
}

var _ authgate.CredentialSource = (*CredentialService)(nil)

// Set replaces the stored credential. totpSecret may be empty.
func (s *CredentialService) Set(ctx context.Context, username, password, totpSecret string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrInvalidCredential
	}

	now := s.now()
	totpSecret = strings.ToUpper(strings.ReplaceAll(totpSecret, " ", ""))
	if totpSecret != "" {
		if _, err := totp.GenerateCode(totpSecret, now); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTOTPSecret, err)
		}
	}

	sealedPassword, err := s.Sealer.Seal([]byte(password), passwordAAD(username))
	if err != nil {
		return fmt.Errorf("failed to seal password: %w", err)
	}

	var sealedTOTP []byte
	if totpSecret != "" {
		sealedTOTP, err = s.Sealer.Seal([]byte(totpSecret), totpAAD(username))
		if err != nil {
			return fmt.Errorf("failed to seal totp secret: %w", err)
		}
	}

	if err := s.Store.Credentials().PutCredential(ctx, domain.Credential{
		Username:       username,
		SealedPassword: sealedPassword,
		SealedTOTP:     sealedTOTP,
		UpdatedAt:      now,
	}); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

// Clear removes the stored credential. Sessions already established stay
// valid until they expire.
func (s *CredentialService) Clear(ctx context.Context) error {
	if err := s.Store.Credentials().DeleteCredential(ctx); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

func (s *CredentialService) Status(ctx context.Context) (CredentialStatus, error) {
	c, err := s.Store.Credentials().GetCredential(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return CredentialStatus{}, nil
	}
	if err != nil {
		return CredentialStatus{}, fmt.Errorf("failed to get credential: %w", err)
	}
	return CredentialStatus{
		Configured: true,
		Username:   c.Username,
		HasTOTP:    c.HasTOTP(),
		UpdatedAt:  c.UpdatedAt,
	}, nil
}

// Credentials implements authgate.CredentialSource.
func (s *CredentialService) Credentials(ctx context.Context) (authgate.Credentials, bool, error) {
	c, err := s.Store.Credentials().GetCredential(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return authgate.Credentials{}, false, nil
	}
	if err != nil {
		return authgate.Credentials{}, false, fmt.Errorf("failed to get credential: %w", err)
	}

	password, err := s.Sealer.Open(c.SealedPassword, passwordAAD(c.Username))
	if err != nil {
		return authgate.Credentials{}, false, fmt.Errorf("failed to open password: %w", err)
	}

	creds := authgate.Credentials{Username: c.Username, Password: string(password)}
	if c.HasTOTP() {
		secret, err := s.Sealer.Open(c.SealedTOTP, totpAAD(c.Username))
		if err != nil {
			return authgate.Credentials{}, false, fmt.Errorf("failed to open totp secret: %w", err)
		}
		creds.TOTPSecret = string(secret)
	}
	return creds, true, nil
}

func (s *CredentialService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Secrets are bound to their field and username so a sealed value cannot be
// swapped into another slot.
func passwordAAD(username string) []byte { return []byte("credential:password:" + username) }
func totpAAD(username string) []byte     { return []byte("credential:totp:" + username) }
