package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/campusgate/internal/gateway/domain"
)

type loginAttemptsRepo struct {
	db dbtx
}

func (r *loginAttemptsRepo) CreateLoginAttempt(ctx context.Context, a domain.LoginAttempt) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO login_attempts (id, host, trigger_kind, outcome, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Host, a.Trigger, a.Outcome, a.Error, utc(a.StartedAt), utc(a.FinishedAt),
	)
	return err
}

func (r *loginAttemptsRepo) ListRecentLoginAttempts(
	ctx context.Context,
	limit int,
) ([]domain.LoginAttempt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, host, trigger_kind, outcome, error, started_at, finished_at
		FROM login_attempts
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LoginAttempt
	for rows.Next() {
		var a domain.LoginAttempt
		if err := rows.Scan(&a.ID, &a.Host, &a.Trigger, &a.Outcome, &a.Error, &a.StartedAt, &a.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *loginAttemptsRepo) DeleteLoginAttemptsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM login_attempts WHERE started_at < ?`, utc(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
