package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/campusgate/internal/gateway/domain"
	"github.com/aussiebroadwan/campusgate/internal/gateway/store"
	"github.com/aussiebroadwan/campusgate/internal/gateway/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func TestCredentials(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	repo := s.Credentials()

	_, err := repo.GetCredential(ctx)
	require.ErrorIs(t, err, store.ErrNotFound)

	updated := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, repo.PutCredential(ctx, domain.Credential{
		Username:       "20300000001",
		SealedPassword: []byte{1, 2, 3},
		UpdatedAt:      updated,
	}))

	got, err := repo.GetCredential(ctx)
	require.NoError(t, err)
	require.Equal(t, "20300000001", got.Username)
	require.Equal(t, []byte{1, 2, 3}, got.SealedPassword)
	require.False(t, got.HasTOTP())
	require.True(t, updated.Equal(got.UpdatedAt))

	// A second put replaces the single row.
	require.NoError(t, repo.PutCredential(ctx, domain.Credential{
		Username:       "20300000002",
		SealedPassword: []byte{4},
		SealedTOTP:     []byte{5, 6},
		UpdatedAt:      updated.Add(time.Hour),
	}))
	got, err = repo.GetCredential(ctx)
	require.NoError(t, err)
	require.Equal(t, "20300000002", got.Username)
	require.Equal(t, []byte{5, 6}, got.SealedTOTP)

	require.NoError(t, repo.DeleteCredential(ctx))
	require.NoError(t, repo.DeleteCredential(ctx))
	_, err = repo.GetCredential(ctx)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestLoginAttempts(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	repo := s.LoginAttempts()

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"a1", "a2", "a3"} {
		start := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, repo.CreateLoginAttempt(ctx, domain.LoginAttempt{
			ID:         id,
			Host:       "jwfw.example.edu",
			Trigger:    "redirect",
			Outcome:    domain.OutcomeSuccess,
			StartedAt:  start,
			FinishedAt: start.Add(1500 * time.Millisecond),
		}))
	}

	recent, err := repo.ListRecentLoginAttempts(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "a3", recent[0].ID)
	require.Equal(t, "a2", recent[1].ID)
	require.Equal(t, 1500*time.Millisecond, recent[0].Duration())

	n, err := repo.DeleteLoginAttemptsBefore(ctx, base.Add(90*time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	recent, err = repo.ListRecentLoginAttempts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, "a3", recent[0].ID)
}

func TestLoginAttemptsRejectUnknownTrigger(t *testing.T) {
	s := newStore(t)
	err := s.LoginAttempts().CreateLoginAttempt(context.Background(), domain.LoginAttempt{
		ID:         "bad",
		Host:       "jwfw.example.edu",
		Trigger:    "sideways",
		Outcome:    domain.OutcomeError,
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
	})
	require.Error(t, err)
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Credentials().PutCredential(ctx, domain.Credential{
			Username:       "rolled-back",
			SealedPassword: []byte{1},
			UpdatedAt:      time.Now(),
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Credentials().GetCredential(ctx)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Tx(ctx)
		require.Error(t, err, "nested transactions are not supported")
		return tx.Credentials().PutCredential(ctx, domain.Credential{
			Username:       "committed",
			SealedPassword: []byte{1},
			UpdatedAt:      time.Now(),
		})
	}))

	got, err := s.Credentials().GetCredential(ctx)
	require.NoError(t, err)
	require.Equal(t, "committed", got.Username)
}
