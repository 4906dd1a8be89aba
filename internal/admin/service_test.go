package admin

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopkeep/internal/audit"
	"shopkeep/internal/identity"
	"shopkeep/internal/product"
	"shopkeep/internal/user"
	dErrors "shopkeep/pkg/domain-errors"
)

func seed(t *testing.T) (*Service, *audit.InMemoryStore, *product.InMemoryStore) {
	t.Helper()
	ctx := context.Background()
	users := user.NewInMemoryStore()
	products := product.NewInMemoryStore()
	audits := audit.NewInMemoryStore()

	require.NoError(t, users.Create(ctx, &user.User{ID: uuid.New(), Name: "A", Email: "a@example.com", Role: identity.RoleAdmin}))
	require.NoError(t, products.Create(ctx, &product.Product{Name: "Mug", Price: decimal.NewFromInt(5), Status: product.StatusActive}))
	require.NoError(t, audits.Append(ctx, &audit.Entry{ID: uuid.New(), ActionType: audit.ActionCreate, EntityType: "Product"}))
	require.NoError(t, audits.Append(ctx, &audit.Entry{ID: uuid.New(), ActionType: audit.ActionLogin, EntityType: "User"}))

	return NewService(users, products, audits), audits, products
}

func TestStats(t *testing.T) {
	svc, _, _ := seed(t)
	admin := &identity.Principal{ID: uuid.New(), Role: identity.RoleAdmin}

	stats, err := svc.Stats(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Users)
	assert.Equal(t, 1, stats.Products)
	assert.Equal(t, 2, stats.AuditLogs)
	assert.Equal(t, 1, stats.ByAction["CREATE"])
	assert.Equal(t, 1, stats.ByAction["LOGIN"])
	assert.Zero(t, stats.ByAction["DELETE"])
}

func TestStatsRequiresAdmin(t *testing.T) {
	svc, _, _ := seed(t)
	seller := &identity.Principal{ID: uuid.New(), Role: identity.RoleSeller}

	_, err := svc.Stats(context.Background(), seller)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestTruncate(t *testing.T) {
	svc, audits, products := seed(t)
	ctx := context.Background()
	admin := &identity.Principal{ID: uuid.New(), Role: identity.RoleAdmin}

	require.NoError(t, svc.Truncate(ctx, admin))

	auditCount, err := audits.Count(ctx, audit.Filter{})
	require.NoError(t, err)
	assert.Zero(t, auditCount)

	productCount, err := products.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, productCount)
}

func TestTruncateRequiresAdmin(t *testing.T) {
	svc, audits, _ := seed(t)
	ctx := context.Background()

	err := svc.Truncate(ctx, nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	count, err := audits.Count(ctx, audit.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, count, "denied truncation must leave data intact")
}
