package product

import (
	"context"

	"shopkeep/internal/audit"
	dErrors "shopkeep/pkg/domain-errors"
)

// ErrNotFound keeps storage-specific 404s consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "product not found")

// Store is the persistence interface for catalog items.
// Error Contract: FindByID returns ErrNotFound when the product doesn't
// exist, as do Update and Delete when no row matches.
type Store interface {
	List(ctx context.Context) ([]Product, error)
	ListByStatus(ctx context.Context, status Status) ([]Product, error)
	FindByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
	Truncate(ctx context.Context) error
	FindRefs(ctx context.Context, ids []int64) (map[int64]audit.ProductRef, error)
}
