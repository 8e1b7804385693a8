package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the credential record a reset ultimately rewrites. Email is the
// store key and is always kept normalized.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash []byte    `db:"password_hash" json:"-"`
	Version      int64     `db:"version" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
