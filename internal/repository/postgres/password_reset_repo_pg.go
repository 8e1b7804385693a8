package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/njprem/fitcity-password-reset/internal/domain"
	"github.com/njprem/fitcity-password-reset/internal/repository/ports"
)

type PasswordResetRepository struct {
	db    *sqlx.DB
	group string
}

func NewPasswordResetRepo(db *sqlx.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db, group: domain.PasswordResetGroup}
}

func (r *PasswordResetRepository) Create(ctx context.Context, token *domain.PasswordResetToken) (*domain.PasswordResetToken, error) {
	const query = `
        INSERT INTO password_reset_token (token_group, code, owner_id, email, created_at, expires_at, used)
        VALUES ($1, $2, $3, $4, $5, $6, FALSE)
        ON CONFLICT (token_group, code) DO NOTHING
        RETURNING code, owner_id, email, created_at, expires_at, used, version
    `
	row := r.db.QueryRowxContext(ctx, query, r.group, token.Code, token.OwnerID, token.Email, token.CreatedAt, token.ExpiresAt)
	var stored domain.PasswordResetToken
	if err := row.StructScan(&stored); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ports.ErrCodeTaken, token.Code)
		}
		return nil, err
	}
	return &stored, nil
}

func (r *PasswordResetRepository) FindByCode(ctx context.Context, code string) (*domain.PasswordResetToken, error) {
	const query = `
        SELECT code, owner_id, email, created_at, expires_at, used, version
        FROM password_reset_token
        WHERE token_group = $1 AND code = $2
    `
	var token domain.PasswordResetToken
	if err := r.db.GetContext(ctx, &token, query, r.group, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: reset code", ports.ErrNotFound)
		}
		return nil, err
	}
	return &token, nil
}

func (r *PasswordResetRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.PasswordResetToken, error) {
	const query = `
        SELECT code, owner_id, email, created_at, expires_at, used, version
        FROM password_reset_token
        WHERE token_group = $1 AND owner_id = $2
        ORDER BY created_at ASC
    `
	var tokens []domain.PasswordResetToken
	if err := r.db.SelectContext(ctx, &tokens, query, r.group, ownerID); err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *PasswordResetRepository) MarkUsed(ctx context.Context, code string, version int64) error {
	const query = `
        UPDATE password_reset_token
        SET used = TRUE,
            version = version + 1
        WHERE token_group = $1 AND code = $2 AND version = $3 AND used = FALSE
    `
	res, err := r.db.ExecContext(ctx, query, r.group, code, version)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: reset code at version %d", ports.ErrConflict, version)
	}
	return nil
}

func (r *PasswordResetRepository) DeleteStale(ctx context.Context, codes []string, now time.Time) error {
	if len(codes) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`
        DELETE FROM password_reset_token
        WHERE token_group = ? AND code IN (?) AND (used OR expires_at <= ?)
    `, r.group, codes, now)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	return err
}
