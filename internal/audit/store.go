package audit

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
)

// Store is the persistence interface for audit entries. Entries are
// append-only: no update or single-row delete exists. Truncate is the one
// sanctioned bulk-administrative removal.
type Store interface {
	Append(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter Filter, limit, offset int) ([]Entry, error)
	Count(ctx context.Context, filter Filter) (int, error)
	Truncate(ctx context.Context) error
}
