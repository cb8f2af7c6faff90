package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/campusgate/internal/gateway/domain"
)

var (
	ErrNotFound = errors.New("store: not found")
)

// Store is the root data access interface. Concrete drivers implement it and
// expose one sub-repository per table.
type Store interface {
	Credentials() Credentials
	LoginAttempts() LoginAttempts

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Credentials interface {
	// GetCredential returns the stored credential or ErrNotFound.
	GetCredential(ctx context.Context) (domain.Credential, error)

	// PutCredential replaces the stored credential.
	PutCredential(ctx context.Context, c domain.Credential) error

	// DeleteCredential removes the stored credential. Deleting nothing is not
	// an error.
	DeleteCredential(ctx context.Context) error
}

type LoginAttempts interface {
	CreateLoginAttempt(ctx context.Context, a domain.LoginAttempt) error

	// ListRecentLoginAttempts returns up to limit attempts, newest first.
	ListRecentLoginAttempts(ctx context.Context, limit int) ([]domain.LoginAttempt, error)

	// DeleteLoginAttemptsBefore removes attempts started before cutoff and
	// returns how many were deleted.
	DeleteLoginAttemptsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
