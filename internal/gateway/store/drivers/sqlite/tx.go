package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/campusgate/internal/gateway/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the outer Store owns the connection.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

// Nested transactions are not supported.
func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Credentials() store.Credentials     { return &credentialsRepo{db: t.tx} }
func (t *txStore) LoginAttempts() store.LoginAttempts { return &loginAttemptsRepo{db: t.tx} }

// Migrations must be applied before a transaction is opened.
func (t *txStore) ApplyMigrations() error { return nil }
