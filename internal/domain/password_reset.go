package domain

import (
	"time"

	"github.com/google/uuid"
)

// PasswordResetGroup is the logical key group every reset code lives in.
const PasswordResetGroup = "reset"

type PasswordResetToken struct {
	Code      string    `db:"code" json:"code"`
	OwnerID   uuid.UUID `db:"owner_id" json:"owner_id"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	Used      bool      `db:"used" json:"used"`
	Version   int64     `db:"version" json:"version"`
}

// Expired reports whether the token is past its expiry at now. A token whose
// expiry equals now is already dead.
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// Active reports whether the token can still be redeemed.
func (t *PasswordResetToken) Active(now time.Time) bool {
	return !t.Used && !t.Expired(now)
}
