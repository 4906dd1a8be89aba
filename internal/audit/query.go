package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	dErrors "shopkeep/pkg/domain-errors"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// UserRef is the denormalized slice of a user attached to query results.
// Never carries the password hash.
type UserRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// ProductRef is the denormalized slice of a product attached to query results.
type ProductRef struct {
	ID     int64           `json:"id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Status string          `json:"status"`
}

// UserDirectory resolves user references for display enrichment.
type UserDirectory interface {
	FindRefs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]UserRef, error)
}

// ProductDirectory resolves product references for display enrichment.
type ProductDirectory interface {
	FindRefs(ctx context.Context, ids []int64) (map[int64]ProductRef, error)
}

// Log is an entry enriched with references to the acting user, the affected
// user entity, and the affected product.
type Log struct {
	Entry
	User       *UserRef    `json:"user,omitempty"`
	UserEntity *UserRef    `json:"userEntity,omitempty"`
	Product    *ProductRef `json:"product,omitempty"`
}

// Pagination describes the page of results returned by List.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Page is one page of enriched audit logs.
type Page struct {
	Logs       []Log      `json:"logs"`
	Pagination Pagination `json:"pagination"`
}

// Query provides read-only, paginated, filterable access over audit entries.
// Who may call it is enforced by the surrounding transport layer, not here.
type Query struct {
	store    Store
	users    UserDirectory
	products ProductDirectory
}

// NewQuery constructs a Query over the given store and directories.
func NewQuery(store Store, users UserDirectory, products ProductDirectory) *Query {
	return &Query{store: store, users: users, products: products}
}

// List returns one page of audit logs matching the filter, ordered by
// timestamp descending. Filters are ANDed; absent filters impose no
// constraint. Pagination is offset-based: skip = (page-1)*limit.
func (q *Query) List(ctx context.Context, filter Filter, page, limit int) (*Page, error) {
	if filter.ActionType != "" && !filter.ActionType.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "action_type must be one of [CREATE UPDATE DELETE LOGIN LOGOUT]")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset := (page - 1) * limit

	var entries []Entry
	var total int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = q.store.List(gctx, filter, limit, offset)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = q.store.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch audit logs")
	}

	logs, err := q.enrich(ctx, entries)
	if err != nil {
		return nil, err
	}

	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return &Page{
		Logs: logs,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

func (q *Query) enrich(ctx context.Context, entries []Entry) ([]Log, error) {
	userIDs := make([]uuid.UUID, 0, len(entries))
	productIDs := make([]int64, 0, len(entries))
	seenUsers := make(map[uuid.UUID]bool)
	seenProducts := make(map[int64]bool)
	for _, entry := range entries {
		for _, ref := range []*uuid.UUID{entry.UserID, entry.UserEntityID} {
			if ref != nil && !seenUsers[*ref] {
				seenUsers[*ref] = true
				userIDs = append(userIDs, *ref)
			}
		}
		if entry.ProductID != nil && !seenProducts[*entry.ProductID] {
			seenProducts[*entry.ProductID] = true
			productIDs = append(productIDs, *entry.ProductID)
		}
	}

	userRefs := map[uuid.UUID]UserRef{}
	if len(userIDs) > 0 && q.users != nil {
		refs, err := q.users.FindRefs(ctx, userIDs)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve user references")
		}
		userRefs = refs
	}
	productRefs := map[int64]ProductRef{}
	if len(productIDs) > 0 && q.products != nil {
		refs, err := q.products.FindRefs(ctx, productIDs)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve product references")
		}
		productRefs = refs
	}

	logs := make([]Log, 0, len(entries))
	for _, entry := range entries {
		log := Log{Entry: entry}
		if entry.UserID != nil {
			if ref, ok := userRefs[*entry.UserID]; ok {
				refCopy := ref
				log.User = &refCopy
			}
		}
		if entry.UserEntityID != nil {
			if ref, ok := userRefs[*entry.UserEntityID]; ok {
				refCopy := ref
				log.UserEntity = &refCopy
			}
		}
		if entry.ProductID != nil {
			if ref, ok := productRefs[*entry.ProductID]; ok {
				refCopy := ref
				log.Product = &refCopy
			}
		}
		logs = append(logs, log)
	}
	return logs, nil
}
