package user

import (
	"time"

	"github.com/google/uuid"

	"shopkeep/internal/identity"
)

// User is an account record. PasswordHash is write-only: it never leaves the
// service layer in responses or audit payloads.
type User struct {
	ID           uuid.UUID     `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"`
	Role         identity.Role `json:"role"`
	Image        string        `json:"image,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// CreateParams carries the fields for creating a user. Role defaults to
// CUSTOMER when empty.
type CreateParams struct {
	Name     string        `json:"name" validate:"required,notblank"`
	Email    string        `json:"email" validate:"required,email"`
	Password string        `json:"password" validate:"required"`
	Role     identity.Role `json:"role" validate:"omitempty,oneof=ADMIN SELLER CUSTOMER"`
	Image    string        `json:"image" validate:"omitempty,url"`
}

// UpdateParams carries a partial update. Empty fields are left untouched;
// in particular the password column is only rewritten when a new password is
// supplied.
type UpdateParams struct {
	Name     string        `json:"name" validate:"omitempty,notblank"`
	Email    string        `json:"email" validate:"omitempty,email"`
	Password string        `json:"password"`
	Role     identity.Role `json:"role" validate:"omitempty,oneof=ADMIN SELLER CUSTOMER"`
}
