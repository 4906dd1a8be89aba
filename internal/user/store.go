package user

import (
	"context"

	"github.com/google/uuid"

	"shopkeep/internal/audit"
	dErrors "shopkeep/pkg/domain-errors"
)

var (
	// ErrNotFound keeps storage-specific 404s consistent across implementations.
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "user not found")
	// ErrDuplicateEmail maps store-level uniqueness violations to the
	// user-facing conflict message.
	ErrDuplicateEmail = dErrors.New(dErrors.CodeConflict, "a user with this email already exists")
)

// Store is the persistence interface for user records.
// Error Contract: Find methods return ErrNotFound when the entity doesn't
// exist; Create and Update return ErrDuplicateEmail on email collisions.
type Store interface {
	List(ctx context.Context) ([]User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
	FindRefs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]audit.UserRef, error)
}
