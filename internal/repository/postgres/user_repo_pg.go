package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/njprem/fitcity-password-reset/internal/domain"
	"github.com/njprem/fitcity-password-reset/internal/repository/ports"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id, email, password_hash, version, created_at, updated_at
        FROM user_account
        WHERE email = $1
    `
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", ports.ErrNotFound, email)
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) (*domain.User, error) {
	const query = `
        SELECT id, email, password_hash, version, created_at, updated_at
        FROM user_account
        WHERE id = $1
        ORDER BY created_at ASC
        LIMIT 1
    `
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: owner %s", ports.ErrNotFound, ownerID)
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, email string, passwordHash []byte, version int64) error {
	const query = `
        UPDATE user_account
        SET password_hash = $2,
            version = version + 1,
            updated_at = NOW()
        WHERE email = $1 AND version = $3
    `
	res, err := r.db.ExecContext(ctx, query, email, passwordHash, version)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: user %s at version %d", ports.ErrConflict, email, version)
	}
	return nil
}
