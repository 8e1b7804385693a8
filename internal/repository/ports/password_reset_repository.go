package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/njprem/fitcity-password-reset/internal/domain"
)

type PasswordResetRepository interface {
	// Create persists a new token. It returns ErrCodeTaken when the code
	// already exists in the reset group.
	Create(ctx context.Context, token *domain.PasswordResetToken) (*domain.PasswordResetToken, error)
	FindByCode(ctx context.Context, code string) (*domain.PasswordResetToken, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.PasswordResetToken, error)
	// MarkUsed flips the used flag when the stored version still equals
	// version and the token is unused, otherwise it returns ErrConflict.
	MarkUsed(ctx context.Context, code string, version int64) error
	// DeleteStale removes those of codes that are used or expired at now.
	// A code that was re-minted and is active again is left in place.
	DeleteStale(ctx context.Context, codes []string, now time.Time) error
}
