package product

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shopkeep/internal/audit"
	"shopkeep/internal/cache"
	"shopkeep/internal/identity"
	"shopkeep/internal/platform/metrics"
	dErrors "shopkeep/pkg/domain-errors"
	"shopkeep/pkg/strutil"
	"shopkeep/pkg/validation"
)

const entityType = "Product"

// AuditRecorder captures one immutable entry per mutation. Recording is
// best-effort: implementations never return an error to the caller.
type AuditRecorder interface {
	Record(ctx context.Context, event audit.Event)
}

// Service implements the seller-gated catalog mutation actions. Any seller
// may mutate any product; there is no per-seller ownership.
type Service struct {
	products   Store
	recorder   AuditRecorder
	invalidate cache.Invalidator
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics enables mutation counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithInvalidator sets the cache invalidation signal.
func WithInvalidator(inv cache.Invalidator) Option {
	return func(s *Service) {
		s.invalidate = inv
	}
}

// NewService constructs a product service over the given store and recorder.
func NewService(products Store, recorder AuditRecorder, opts ...Option) *Service {
	s := &Service{
		products:   products,
		recorder:   recorder,
		invalidate: cache.Noop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// List returns the full catalog ordered by name. Seller only.
func (s *Service) List(ctx context.Context, p *identity.Principal) ([]Product, error) {
	if err := identity.Require(p, identity.RoleSeller); err != nil {
		return nil, err
	}
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch products")
	}
	return products, nil
}

// ListActive returns active products only. This is the customer-facing
// surface; no role is required.
func (s *Service) ListActive(ctx context.Context) ([]Product, error) {
	products, err := s.products.ListByStatus(ctx, StatusActive)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch products")
	}
	return products, nil
}

// Get returns a single product by id. Seller only.
func (s *Service) Get(ctx context.Context, p *identity.Principal, id int64) (*Product, error) {
	if err := identity.Require(p, identity.RoleSeller); err != nil {
		return nil, err
	}
	prod, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch product")
	}
	return prod, nil
}

// Create validates and persists a new product, then records one CREATE audit
// entry referencing the new row.
func (s *Service) Create(ctx context.Context, p *identity.Principal, form FormData) (*Product, error) {
	if err := identity.Require(p, identity.RoleSeller); err != nil {
		return nil, err
	}
	prepared, err := prepareForm(form)
	if err != nil {
		return nil, err
	}

	prod := &Product{
		Name:        prepared.Name,
		ImageURL:    prepared.ImageURL,
		Price:       prepared.Price,
		Stock:       prepared.Stock,
		Status:      prepared.Status,
		AvailableAt: prepared.AvailableAt,
	}
	if err := s.products.Create(ctx, prod); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create product")
	}

	actorID := p.ID
	productID := prod.ID
	s.recorder.Record(ctx, audit.Event{
		ActionType:  audit.ActionCreate,
		EntityType:  entityType,
		EntityID:    fmt.Sprintf("%d", prod.ID),
		Description: fmt.Sprintf("Product '%s' was created with price %s and status %s", prod.Name, prod.Price, prod.Status),
		UserID:      &actorID,
		ProductID:   &productID,
		Data:        snapshot(prod),
	})
	s.metrics.IncrementMutation(entityType, string(audit.ActionCreate))
	s.invalidate.Invalidate(ctx, "products")

	return prod, nil
}

// Update replaces every updatable field of an existing product and records
// one UPDATE audit entry carrying the before and after values.
func (s *Service) Update(ctx context.Context, p *identity.Principal, id int64, form FormData) (*Product, error) {
	if err := identity.Require(p, identity.RoleSeller); err != nil {
		return nil, err
	}
	prepared, err := prepareForm(form)
	if err != nil {
		return nil, err
	}

	existing, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch product")
	}

	updated := &Product{
		ID:          id,
		Name:        prepared.Name,
		ImageURL:    prepared.ImageURL,
		Price:       prepared.Price,
		Stock:       prepared.Stock,
		Status:      prepared.Status,
		AvailableAt: prepared.AvailableAt,
	}
	if err := s.products.Update(ctx, updated); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update product")
	}

	actorID := p.ID
	productID := updated.ID
	s.recorder.Record(ctx, audit.Event{
		ActionType:  audit.ActionUpdate,
		EntityType:  entityType,
		EntityID:    fmt.Sprintf("%d", updated.ID),
		Description: fmt.Sprintf("Product '%s' was updated", updated.Name),
		UserID:      &actorID,
		ProductID:   &productID,
		Data: map[string]any{
			"previousData": snapshot(existing),
			"newData":      snapshot(updated),
		},
	})
	s.metrics.IncrementMutation(entityType, string(audit.ActionUpdate))
	s.invalidate.Invalidate(ctx, "products")

	return updated, nil
}

// Delete removes a product and records one DELETE audit entry built from the
// pre-delete snapshot. The entry is recorded before the row is removed and
// carries no product reference, since the row it would point at is gone.
func (s *Service) Delete(ctx context.Context, p *identity.Principal, id int64) error {
	if err := identity.Require(p, identity.RoleSeller); err != nil {
		return err
	}

	existing, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch product")
	}

	actorID := p.ID
	s.recorder.Record(ctx, audit.Event{
		ActionType:  audit.ActionDelete,
		EntityType:  entityType,
		EntityID:    fmt.Sprintf("%d", id),
		Description: fmt.Sprintf("Product '%s' with price %s was deleted", existing.Name, existing.Price),
		UserID:      &actorID,
		Data: map[string]any{
			"deletedProduct": snapshot(existing),
		},
	})

	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete product")
	}

	s.metrics.IncrementMutation(entityType, string(audit.ActionDelete))
	s.invalidate.Invalidate(ctx, "products")

	return nil
}

// prepareForm trims, validates and applies defaults to incoming form data.
func prepareForm(form FormData) (FormData, error) {
	strutil.TrimAll(&form.Name, &form.ImageURL)
	if err := validation.Validate(form); err != nil {
		return form, err
	}
	if form.Price.IsNegative() {
		return form, dErrors.New(dErrors.CodeValidation, "price must not be negative")
	}
	if form.Status == "" {
		form.Status = StatusInactive
	}
	if form.AvailableAt.IsZero() {
		form.AvailableAt = time.Now()
	}
	return form, nil
}

func snapshot(p *Product) map[string]any {
	return map[string]any{
		"name":        p.Name,
		"price":       p.Price,
		"stock":       p.Stock,
		"status":      p.Status,
		"imageUrl":    p.ImageURL,
		"availableAt": p.AvailableAt,
	}
}
