package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/campusgate/internal/gateway/domain"
	"github.com/aussiebroadwan/campusgate/internal/gateway/store"
	"github.com/aussiebroadwan/campusgate/pkg/authgate"
	"github.com/aussiebroadwan/campusgate/pkg/idx"
)

const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 500

	recordTimeout = 5 * time.Second
)

// AuditService persists every login attempt the gateway makes.
type AuditService struct {
	Store  store.Store
	Logger *slog.Logger
}

var _ authgate.LoginRecorder = (*AuditService)(nil)

// RecordLogin implements authgate.LoginRecorder. Failures are logged; they
// never fail the request that triggered the login.
func (s *AuditService) RecordLogin(ctx context.Context, ev authgate.LoginEvent) {
	// The attempt happened whether or not the caller is still waiting.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	attempt := domain.LoginAttempt{
		ID:         idx.NewAt(ev.StartedAt).String(),
		Host:       ev.Host,
		Trigger:    string(ev.Trigger),
		Outcome:    Outcome(ev.Err),
		StartedAt:  ev.StartedAt,
		FinishedAt: ev.FinishedAt,
	}
	if ev.Err != nil {
		attempt.Error = ev.Err.Error()
	}

	if err := s.Store.LoginAttempts().CreateLoginAttempt(ctx, attempt); err != nil {
		s.Logger.Error("failed to record login attempt",
			"host", ev.Host,
			"trigger", ev.Trigger,
			"error", err,
		)
	}
}

// Recent returns up to limit attempts, newest first. limit is clamped to
// [1, MaxAuditLimit]; zero or less means DefaultAuditLimit.
func (s *AuditService) Recent(ctx context.Context, limit int) ([]domain.LoginAttempt, error) {
	switch {
	case limit <= 0:
		limit = DefaultAuditLimit
	case limit > MaxAuditLimit:
		limit = MaxAuditLimit
	}

	attempts, err := s.Store.LoginAttempts().ListRecentLoginAttempts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list login attempts: %w", err)
	}
	return attempts, nil
}

// Outcome classifies a login error for the audit log.
func Outcome(err error) string {
	switch {
	case err == nil:
		return domain.OutcomeSuccess
	case errors.Is(err, authgate.ErrLoginFailed):
		return domain.OutcomeLoginFailed
	case errors.Is(err, authgate.ErrCredentialsNotFound):
		return domain.OutcomeCredentialsMissing
	default:
		return domain.OutcomeError
	}
}
