package admin

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"shopkeep/internal/audit"
	"shopkeep/internal/cache"
	"shopkeep/internal/identity"
	"shopkeep/internal/product"
	"shopkeep/internal/user"
	dErrors "shopkeep/pkg/domain-errors"
)

// Stats is the dashboard counter set.
type Stats struct {
	Users     int            `json:"users"`
	Products  int            `json:"products"`
	AuditLogs int            `json:"auditLogs"`
	ByAction  map[string]int `json:"byAction"`
}

// Service implements operational admin endpoints: dashboard counters and the
// bulk truncation used to reset dev and staging environments.
type Service struct {
	users      user.Store
	products   product.Store
	audits     audit.Store
	invalidate cache.Invalidator
	logger     *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithInvalidator sets the cache invalidation signal.
func WithInvalidator(inv cache.Invalidator) Option {
	return func(s *Service) {
		s.invalidate = inv
	}
}

// NewService constructs an admin service over the given stores.
func NewService(users user.Store, products product.Store, audits audit.Store, opts ...Option) *Service {
	s := &Service{
		users:      users,
		products:   products,
		audits:     audits,
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

// Stats returns dashboard counters. Admin only.
func (s *Service) Stats(ctx context.Context, p *identity.Principal) (*Stats, error) {
	if err := identity.Require(p, identity.RoleAdmin); err != nil {
		return nil, err
	}

	stats := &Stats{ByAction: make(map[string]int)}
	actions := []audit.ActionType{
		audit.ActionCreate, audit.ActionUpdate, audit.ActionDelete,
		audit.ActionLogin, audit.ActionLogout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.Users, err = s.users.Count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.Products, err = s.products.Count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.AuditLogs, err = s.audits.Count(gctx, audit.Filter{})
		return err
	})
	counts := make([]int, len(actions))
	for i, action := range actions {
		g.Go(func() error {
			var err error
			counts[i], err = s.audits.Count(gctx, audit.Filter{ActionType: action})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to collect stats")
	}

	for i, action := range actions {
		stats.ByAction[string(action)] = counts[i]
	}
	return stats, nil
}

// Truncate wipes the audit trail and the product catalog. This is the only
// sanctioned path that deletes audit entries; application logic never removes
// them. Audit entries go first so product rows referenced by entries are
// never left dangling mid-wipe.
func (s *Service) Truncate(ctx context.Context, p *identity.Principal) error {
	if err := identity.Require(p, identity.RoleAdmin); err != nil {
		return err
	}

	if err := s.audits.Truncate(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to truncate audit logs")
	}
	if err := s.products.Truncate(ctx); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to truncate products")
	}

	s.logger.WarnContext(ctx, "tables truncated", "actor_id", p.ID)
	s.invalidate.Invalidate(ctx, "products", "audit-logs")
	return nil
}
