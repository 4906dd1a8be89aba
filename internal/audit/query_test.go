package audit_test

import (
	"context"
	"testing"
	"time"

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

type queryFixture struct {
	query    *audit.Query
	store    *audit.InMemoryStore
	users    *user.InMemoryStore
	products *product.InMemoryStore
}

func newQueryFixture(t *testing.T) *queryFixture {
	t.Helper()
	store := audit.NewInMemoryStore()
	users := user.NewInMemoryStore()
	products := product.NewInMemoryStore()
	return &queryFixture{
		query:    audit.NewQuery(store, users, products),
		store:    store,
		users:    users,
		products: products,
	}
}

func (f *queryFixture) appendEntries(t *testing.T, n int, entityType string, action audit.ActionType) {
	t.Helper()
	base := time.Now()
	for i := 0; i < n; i++ {
		require.NoError(t, f.store.Append(context.Background(), &audit.Entry{
			ID:         uuid.New(),
			Timestamp:  base.Add(time.Duration(i) * time.Second),
			ActionType: action,
			EntityType: entityType,
			EntityID:   uuid.NewString(),
		}))
	}
}

func TestQueryPagination(t *testing.T) {
	f := newQueryFixture(t)
	f.appendEntries(t, 25, "User", audit.ActionCreate)

	page, err := f.query.List(context.Background(), audit.Filter{}, 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Logs, 10)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, 10, page.Pagination.Limit)
	assert.Equal(t, 25, page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.Pages)

	last, err := f.query.List(context.Background(), audit.Filter{}, 3, 10)
	require.NoError(t, err)
	assert.Len(t, last.Logs, 5)

	beyond, err := f.query.List(context.Background(), audit.Filter{}, 9, 10)
	require.NoError(t, err)
	assert.Empty(t, beyond.Logs)
	assert.Equal(t, 25, beyond.Pagination.Total)
}

func TestQueryDefaults(t *testing.T) {
	f := newQueryFixture(t)
	f.appendEntries(t, 3, "User", audit.ActionCreate)

	page, err := f.query.List(context.Background(), audit.Filter{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, 20, page.Pagination.Limit)

	capped, err := f.query.List(context.Background(), audit.Filter{}, 1, 5000)
	require.NoError(t, err)
	assert.Equal(t, 100, capped.Pagination.Limit)
}

func TestQueryNewestFirst(t *testing.T) {
	f := newQueryFixture(t)
	f.appendEntries(t, 5, "User", audit.ActionCreate)

	page, err := f.query.List(context.Background(), audit.Filter{}, 1, 5)
	require.NoError(t, err)
	require.Len(t, page.Logs, 5)
	for i := 1; i < len(page.Logs); i++ {
		assert.False(t, page.Logs[i-1].Timestamp.Before(page.Logs[i].Timestamp),
			"logs must be ordered newest first")
	}
}

func TestQueryFiltersAreANDed(t *testing.T) {
	f := newQueryFixture(t)
	ctx := context.Background()
	f.appendEntries(t, 2, "User", audit.ActionCreate)
	f.appendEntries(t, 3, "Product", audit.ActionCreate)
	f.appendEntries(t, 4, "Product", audit.ActionDelete)

	page, err := f.query.List(ctx, audit.Filter{EntityType: "Product", ActionType: audit.ActionDelete}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Pagination.Total)
	for _, log := range page.Logs {
		assert.Equal(t, "Product", log.EntityType)
		assert.Equal(t, audit.ActionDelete, log.ActionType)
	}

	byEntity, err := f.query.List(ctx, audit.Filter{EntityType: "Product"}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 7, byEntity.Pagination.Total)
}

func TestQueryRejectsUnknownActionType(t *testing.T) {
	f := newQueryFixture(t)

	_, err := f.query.List(context.Background(), audit.Filter{ActionType: audit.ActionType("EXPLODE")}, 1, 20)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestQueryUnknownEntityTypeReturnsEmptyPage(t *testing.T) {
	f := newQueryFixture(t)
	f.appendEntries(t, 2, "User", audit.ActionCreate)

	page, err := f.query.List(context.Background(), audit.Filter{EntityType: "Warehouse"}, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, page.Logs)
	assert.Zero(t, page.Pagination.Total)
}

func TestQueryEnrichment(t *testing.T) {
	f := newQueryFixture(t)
	ctx := context.Background()

	actor := &user.User{ID: uuid.New(), Name: "Ada Admin", Email: "ada@example.com", Role: identity.RoleAdmin, CreatedAt: time.Now()}
	require.NoError(t, f.users.Create(ctx, actor))
	target := &user.User{ID: uuid.New(), Name: "Carl", Email: "carl@example.com", Role: identity.RoleCustomer, CreatedAt: time.Now()}
	require.NoError(t, f.users.Create(ctx, target))
	prod := &product.Product{Name: "Mug", Price: decimal.NewFromInt(5), Status: product.StatusActive}
	require.NoError(t, f.products.Create(ctx, prod))

	actorID := actor.ID
	targetID := target.ID
	productID := prod.ID
	require.NoError(t, f.store.Append(ctx, &audit.Entry{
		ID: uuid.New(), Timestamp: time.Now(),
		ActionType: audit.ActionUpdate, EntityType: "User", EntityID: target.ID.String(),
		UserID: &actorID, UserEntityID: &targetID,
	}))
	require.NoError(t, f.store.Append(ctx, &audit.Entry{
		ID: uuid.New(), Timestamp: time.Now().Add(time.Second),
		ActionType: audit.ActionCreate, EntityType: "Product", EntityID: "1",
		UserID: &actorID, ProductID: &productID,
	}))

	page, err := f.query.List(ctx, audit.Filter{}, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Logs, 2)

	productLog := page.Logs[0]
	require.NotNil(t, productLog.User)
	assert.Equal(t, "Ada Admin", productLog.User.Name)
	require.NotNil(t, productLog.Product)
	assert.Equal(t, "Mug", productLog.Product.Name)
	assert.Nil(t, productLog.UserEntity)

	userLog := page.Logs[1]
	require.NotNil(t, userLog.User)
	assert.Equal(t, "Ada Admin", userLog.User.Name)
	require.NotNil(t, userLog.UserEntity)
	assert.Equal(t, "Carl", userLog.UserEntity.Name)
	assert.Nil(t, userLog.Product)
}

func TestQueryMissingReferencesStayNil(t *testing.T) {
	f := newQueryFixture(t)
	ctx := context.Background()

	ghostID := uuid.New()
	require.NoError(t, f.store.Append(ctx, &audit.Entry{
		ID: uuid.New(), Timestamp: time.Now(),
		ActionType: audit.ActionDelete, EntityType: "User", EntityID: ghostID.String(),
		UserID: &ghostID,
	}))

	page, err := f.query.List(ctx, audit.Filter{}, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Logs, 1)
	assert.Nil(t, page.Logs[0].User, "references to deleted rows resolve to nil, not an error")
}
