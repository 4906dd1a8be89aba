//go:build integration

package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"shopkeep/internal/audit"
	"shopkeep/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *audit.PostgresStore
	ctx   context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.store = audit.NewPostgres(s.pg.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateAll(s.ctx))
}

func (s *PostgresStoreSuite) appendEntry(action audit.ActionType, entityType string, at time.Time) *audit.Entry {
	entry := &audit.Entry{
		ID:          uuid.New(),
		Timestamp:   at,
		ActionType:  action,
		EntityType:  entityType,
		EntityID:    uuid.NewString(),
		Description: "test entry",
	}
	s.Require().NoError(s.store.Append(s.ctx, entry))
	return entry
}

func (s *PostgresStoreSuite) TestAppendAndList() {
	base := time.Now().UTC().Truncate(time.Microsecond)
	oldest := s.appendEntry(audit.ActionCreate, "User", base)
	newest := s.appendEntry(audit.ActionUpdate, "User", base.Add(time.Minute))

	entries, err := s.store.List(s.ctx, audit.Filter{}, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(newest.ID, entries[0].ID, "newest first")
	s.Equal(oldest.ID, entries[1].ID)
}

func (s *PostgresStoreSuite) TestListFilters() {
	base := time.Now().UTC()
	s.appendEntry(audit.ActionCreate, "User", base)
	s.appendEntry(audit.ActionCreate, "Product", base.Add(time.Second))
	s.appendEntry(audit.ActionDelete, "Product", base.Add(2*time.Second))

	entries, err := s.store.List(s.ctx, audit.Filter{EntityType: "Product", ActionType: audit.ActionDelete}, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(audit.ActionDelete, entries[0].ActionType)

	count, err := s.store.Count(s.ctx, audit.Filter{EntityType: "Product"})
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *PostgresStoreSuite) TestListPagination() {
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		s.appendEntry(audit.ActionCreate, "User", base.Add(time.Duration(i)*time.Second))
	}

	page, err := s.store.List(s.ctx, audit.Filter{}, 2, 2)
	s.Require().NoError(err)
	s.Len(page, 2)

	tail, err := s.store.List(s.ctx, audit.Filter{}, 2, 4)
	s.Require().NoError(err)
	s.Len(tail, 1)
}

func (s *PostgresStoreSuite) TestDataRoundTrip() {
	entry := &audit.Entry{
		ID:          uuid.New(),
		Timestamp:   time.Now().UTC(),
		ActionType:  audit.ActionUpdate,
		EntityType:  "User",
		EntityID:    uuid.NewString(),
		Description: "User 'X' was updated",
		Data:        []byte(`{"previousData":{"name":"X"},"newData":{"name":"Y"},"passwordChanged":false}`),
	}
	s.Require().NoError(s.store.Append(s.ctx, entry))

	entries, err := s.store.List(s.ctx, audit.Filter{}, 1, 0)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.JSONEq(string(entry.Data), string(entries[0].Data))
}

func (s *PostgresStoreSuite) TestTruncate() {
	s.appendEntry(audit.ActionCreate, "User", time.Now().UTC())
	s.Require().NoError(s.store.Truncate(s.ctx))

	count, err := s.store.Count(s.ctx, audit.Filter{})
	s.Require().NoError(err)
	s.Zero(count)
}
