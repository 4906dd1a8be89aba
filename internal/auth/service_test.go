package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopkeep/internal/audit"
	"shopkeep/internal/identity"
	"shopkeep/internal/token"
	"shopkeep/internal/user"
	dErrors "shopkeep/pkg/domain-errors"
	"shopkeep/pkg/secrets"
)

const chromeUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type fixture struct {
	service *Service
	users   *user.InMemoryStore
	audits  *audit.InMemoryStore
	tokens  *token.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := user.NewInMemoryStore()
	audits := audit.NewInMemoryStore()
	tokens := token.NewService("test-signing-key", time.Hour)
	return &fixture{
		service: NewService(users, tokens, audit.NewRecorder(audits)),
		users:   users,
		audits:  audits,
		tokens:  tokens,
	}
}

func (f *fixture) seedUser(t *testing.T, email, password string, role identity.Role) *user.User {
	t.Helper()
	hash, err := secrets.HashPassword(password)
	require.NoError(t, err)
	u := &user.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "admin@example.com", "correct-horse", identity.RoleAdmin)

	session, err := f.service.Login(ctx, "admin@example.com", "correct-horse", chromeUA)
	require.NoError(t, err)
	require.NotNil(t, session.User)
	assert.Equal(t, u.ID, session.User.ID)

	p, err := f.tokens.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.ID)
	assert.Equal(t, identity.RoleAdmin, p.Role)

	entries, err := f.audits.List(ctx, audit.Filter{ActionType: audit.ActionLogin}, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "User", entry.EntityType)
	assert.Equal(t, "User 'Test User' (admin@example.com) logged in", entry.Description)
	require.NotNil(t, entry.UserID)
	require.NotNil(t, entry.UserEntityID)
	assert.Equal(t, u.ID, *entry.UserID)
	assert.Equal(t, u.ID, *entry.UserEntityID, "login attributes actor and entity to the same user")
	assert.Contains(t, string(entry.Data), `"browser":"Chrome"`)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "admin@example.com", "correct-horse", identity.RoleAdmin)

	_, err := f.service.Login(ctx, "admin@example.com", "battery-staple", chromeUA)
	require.ErrorIs(t, err, ErrInvalidCredentials)

	count, err := f.audits.Count(ctx, audit.Filter{})
	require.NoError(t, err)
	assert.Zero(t, count, "failed attempts leave no audit trace")
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Login(context.Background(), "ghost@example.com", "whatever", chromeUA)
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestLoginEmptyCredentials(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Login(context.Background(), "", "", chromeUA)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWithoutUserAgent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "admin@example.com", "correct-horse", identity.RoleAdmin)

	_, err := f.service.Login(ctx, "admin@example.com", "correct-horse", "")
	require.NoError(t, err)

	entries, err := f.audits.List(ctx, audit.Filter{ActionType: audit.ActionLogin}, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Data)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := &identity.Principal{ID: uuid.New(), Role: identity.RoleSeller, Name: "Sam", Email: "sam@example.com"}

	require.NoError(t, f.service.Logout(ctx, p))

	entries, err := f.audits.List(ctx, audit.Filter{ActionType: audit.ActionLogout}, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "User 'Sam' (sam@example.com) logged out", entry.Description)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, p.ID, *entry.UserID)
}

func TestLogoutRequiresPrincipal(t *testing.T) {
	f := newFixture(t)
	err := f.service.Logout(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
