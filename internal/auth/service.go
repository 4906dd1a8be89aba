package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mssola/useragent"

	"shopkeep/internal/audit"
	"shopkeep/internal/identity"
	"shopkeep/internal/platform/metrics"
	"shopkeep/internal/user"
	dErrors "shopkeep/pkg/domain-errors"
	"shopkeep/pkg/secrets"
)

// ErrInvalidCredentials is returned for any login failure. Unknown email and
// wrong password are deliberately indistinguishable to the caller.
var ErrInvalidCredentials = dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")

// TokenIssuer mints an access token for an authenticated principal.
type TokenIssuer interface {
	Issue(p *identity.Principal) (string, error)
}

// AuditRecorder captures login and logout entries. Recording is best-effort
// and never blocks the auth response.
type AuditRecorder interface {
	Record(ctx context.Context, event audit.Event)
}

// Session is the result of a successful login.
type Session struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// Service authenticates credentials and issues access tokens.
type Service struct {
	users    user.Store
	tokens   TokenIssuer
	recorder AuditRecorder
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics enables login and auth-failure counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService constructs an auth service over the given user store and issuer.
func NewService(users user.Store, tokens TokenIssuer, recorder AuditRecorder, opts ...Option) *Service {
	s := &Service{
		users:    users,
		tokens:   tokens,
		recorder: recorder,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Login verifies the credentials and, on success, issues a token and records
// exactly one LOGIN audit entry attributed to the user who signed in. Failed
// attempts leave no audit trace.
func (s *Service) Login(ctx context.Context, email, password, userAgent string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		s.metrics.IncrementAuthFailures()
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.metrics.IncrementAuthFailures()
			return nil, ErrInvalidCredentials
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	if err := secrets.VerifyPassword(password, u.PasswordHash); err != nil {
		s.metrics.IncrementAuthFailures()
		return nil, ErrInvalidCredentials
	}

	p := &identity.Principal{
		ID:    u.ID,
		Role:  u.Role,
		Name:  u.Name,
		Email: u.Email,
	}
	token, err := s.tokens.Issue(p)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	userID := u.ID
	event := audit.Event{
		ActionType:   audit.ActionLogin,
		EntityType:   "User",
		EntityID:     u.ID.String(),
		Description:  fmt.Sprintf("User '%s' (%s) logged in", u.Name, u.Email),
		UserID:       &userID,
		UserEntityID: &userID,
	}
	if data := deviceData(userAgent); data != nil {
		event.Data = data
	}
	s.recorder.Record(ctx, event)
	s.metrics.IncrementLogins()

	return &Session{Token: token, User: u}, nil
}

// Logout records one LOGOUT audit entry for the principal. Token invalidation
// itself is out of scope with stateless tokens; the entry exists so the trail
// shows both ends of a session.
func (s *Service) Logout(ctx context.Context, p *identity.Principal) error {
	if p == nil {
		return dErrors.New(dErrors.CodeUnauthorized, "unauthorized: no authenticated user")
	}

	userID := p.ID
	s.recorder.Record(ctx, audit.Event{
		ActionType:   audit.ActionLogout,
		EntityType:   "User",
		EntityID:     p.ID.String(),
		Description:  fmt.Sprintf("User '%s' (%s) logged out", p.Name, p.Email),
		UserID:       &userID,
		UserEntityID: &userID,
	})
	return nil
}

// deviceData extracts coarse device metadata from the User-Agent header for
// the login audit payload. Returns nil when no header was sent.
func deviceData(rawUA string) map[string]any {
	if rawUA == "" {
		return nil
	}
	ua := useragent.New(rawUA)
	browser, version := ua.Browser()
	return map[string]any{
		"browser":        browser,
		"browserVersion": version,
		"os":             ua.OS(),
		"mobile":         ua.Mobile(),
	}
}
