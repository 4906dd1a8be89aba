package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"shopkeep/internal/audit"
	"shopkeep/internal/cache"
	"shopkeep/internal/identity"
	"shopkeep/internal/platform/metrics"
	dErrors "shopkeep/pkg/domain-errors"
	"shopkeep/pkg/secrets"
	"shopkeep/pkg/strutil"
	"shopkeep/pkg/validation"
)

const entityType = "User"

// ErrSelfDeletion rejects a principal deleting its own account, regardless of
// role, so an admin cannot lock themselves out.
var ErrSelfDeletion = dErrors.New(dErrors.CodeForbidden, "cannot delete your own account")

// AuditRecorder captures one immutable entry per mutation. Recording is
// best-effort: implementations never return an error to the caller.
type AuditRecorder interface {
	Record(ctx context.Context, event audit.Event)
}

// Service implements the admin-gated user mutation actions. Every method
// takes the acting principal explicitly; there is no ambient session state.
type Service struct {
	users      Store
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

// NewService constructs a user service over the given store and recorder.
func NewService(users Store, recorder AuditRecorder, opts ...Option) *Service {
	s := &Service{
		users:      users,
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

// List returns all users, newest first. Admin only.
func (s *Service) List(ctx context.Context, p *identity.Principal) ([]User, error) {
	if err := identity.Require(p, identity.RoleAdmin); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch users")
	}
	return users, nil
}

// Get returns a single user by id. Admin only.
func (s *Service) Get(ctx context.Context, p *identity.Principal, id uuid.UUID) (*User, error) {
	if err := identity.Require(p, identity.RoleAdmin); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch user")
	}
	return u, nil
}

// Create validates and persists a new user, then records one CREATE audit
// entry. The duplicate-email pre-check runs before the insert so the caller
// sees a conflict rather than a bare storage error.
func (s *Service) Create(ctx context.Context, p *identity.Principal, params CreateParams) (*User, error) {
	if err := identity.Require(p, identity.RoleAdmin); err != nil {
		return nil, err
	}
	strutil.TrimAll(&params.Name, &params.Email)
	if err := validation.Validate(params); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, params.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing email")
	}

	hash, err := secrets.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	role := params.Role
	if role == "" {
		role = identity.RoleCustomer
	}

	u := &User{
		ID:           uuid.New(),
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: hash,
		Role:         role,
		Image:        params.Image,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	actorID := p.ID
	entityID := u.ID
	s.recorder.Record(ctx, audit.Event{
		ActionType:   audit.ActionCreate,
		EntityType:   entityType,
		EntityID:     u.ID.String(),
		Description:  fmt.Sprintf("User '%s' (%s) was created with role %s", u.Name, u.Email, u.Role),
		UserID:       &actorID,
		UserEntityID: &entityID,
		Data: map[string]any{
			"name":  u.Name,
			"email": u.Email,
			"role":  u.Role,
		},
	})
	s.metrics.IncrementMutation(entityType, string(audit.ActionCreate))
	s.invalidate.Invalidate(ctx, "users")

	return u, nil
}

// Update applies a partial update to an existing user and records one UPDATE
// audit entry carrying the before and after values. The password column is
// rewritten only when a new password was supplied; the audit payload notes
// the change without carrying either plaintext or hash.
func (s *Service) Update(ctx context.Context, p *identity.Principal, id uuid.UUID, params UpdateParams) (*User, error) {
	if err := identity.Require(p, identity.RoleAdmin); err != nil {
		return nil, err
	}
	strutil.TrimAll(&params.Name, &params.Email)
	if err := validation.Validate(params); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch user")
	}

	updated := *existing
	newData := map[string]any{}
	if params.Name != "" {
		updated.Name = params.Name
		newData["name"] = params.Name
	}
	if params.Email != "" {
		updated.Email = params.Email
		newData["email"] = params.Email
	}
	if params.Role != "" {
		updated.Role = params.Role
		newData["role"] = params.Role
	}
	passwordChanged := params.Password != ""
	if passwordChanged {
		hash, err := secrets.HashPassword(params.Password)
		if err != nil {
			return nil, err
		}
		updated.PasswordHash = hash
	}

	if err := s.users.Update(ctx, &updated); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}

	actorID := p.ID
	entityID := updated.ID
	s.recorder.Record(ctx, audit.Event{
		ActionType:   audit.ActionUpdate,
		EntityType:   entityType,
		EntityID:     updated.ID.String(),
		Description:  fmt.Sprintf("User '%s' was updated", updated.Name),
		UserID:       &actorID,
		UserEntityID: &entityID,
		Data: map[string]any{
			"previousData": map[string]any{
				"name":  existing.Name,
				"email": existing.Email,
				"role":  existing.Role,
			},
			"newData":         newData,
			"passwordChanged": passwordChanged,
		},
	})
	s.metrics.IncrementMutation(entityType, string(audit.ActionUpdate))
	s.invalidate.Invalidate(ctx, "users")

	return &updated, nil
}

// Delete removes a user and records one DELETE audit entry built from the
// pre-delete snapshot. The entry is recorded before the row is removed; a
// recording failure still must not block the delete, which the best-effort
// recorder guarantees. Self-deletion is always rejected, independent of role,
// and produces no audit entry.
func (s *Service) Delete(ctx context.Context, p *identity.Principal, id uuid.UUID) error {
	if err := identity.Require(p, identity.RoleAdmin); err != nil {
		return err
	}
	if p.ID == id {
		return ErrSelfDeletion
	}

	existing, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to fetch user")
	}

	actorID := p.ID
	s.recorder.Record(ctx, audit.Event{
		ActionType:  audit.ActionDelete,
		EntityType:  entityType,
		EntityID:    id.String(),
		Description: fmt.Sprintf("User '%s' (%s) with role %s was deleted", existing.Name, existing.Email, existing.Role),
		UserID:      &actorID,
		Data: map[string]any{
			"deletedUser": map[string]any{
				"name":  existing.Name,
				"email": existing.Email,
				"role":  existing.Role,
			},
		},
	})

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user")
	}

	s.metrics.IncrementMutation(entityType, string(audit.ActionDelete))
	s.invalidate.Invalidate(ctx, "users")

	return nil
}
