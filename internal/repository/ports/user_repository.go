package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/njprem/fitcity-password-reset/internal/domain"
)

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByOwnerID resolves a user through the owner id index. When more
	// than one row matches, the oldest one wins.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) (*domain.User, error)
	// UpdatePasswordHash replaces the hash of the user stored under email,
	// failing with ErrConflict when the stored version differs from version.
	UpdatePasswordHash(ctx context.Context, email string, passwordHash []byte, version int64) error
}
