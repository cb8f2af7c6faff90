package sqlite

import (
	"context"

	"github.com/aussiebroadwan/campusgate/internal/gateway/domain"
)

type credentialsRepo struct {
	db dbtx
}

func (r *credentialsRepo) GetCredential(ctx context.Context) (domain.Credential, error) {
	var c domain.Credential
	err := r.db.QueryRowContext(ctx,
		`SELECT username, sealed_password, sealed_totp, updated_at FROM credentials WHERE id = 1`,
	).Scan(&c.Username, &c.SealedPassword, &c.SealedTOTP, &c.UpdatedAt)
	if err != nil {
		return domain.Credential{}, mapNotFound(err)
	}
	return c, nil
}

func (r *credentialsRepo) PutCredential(ctx context.Context, c domain.Credential) error {
	var totp any
	if c.HasTOTP() {
		totp = c.SealedTOTP
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO credentials (id, username, sealed_password, sealed_totp, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			username        = excluded.username,
			sealed_password = excluded.sealed_password,
			sealed_totp     = excluded.sealed_totp,
			updated_at      = excluded.updated_at`,
		c.Username, c.SealedPassword, totp, utc(c.UpdatedAt),
	)
	return err
}

func (r *credentialsRepo) DeleteCredential(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE id = 1`)
	return err
}
