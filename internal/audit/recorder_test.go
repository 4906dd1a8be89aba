package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"shopkeep/internal/audit"
	"shopkeep/internal/audit/mocks"
	"shopkeep/internal/identity"
	"shopkeep/internal/platform/kafka/producer"
)

func TestRecordFillsIdentityFields(t *testing.T) {
	store := audit.NewInMemoryStore()
	recorder := audit.NewRecorder(store)
	ctx := context.Background()
	actorID := uuid.New()

	recorder.Record(ctx, audit.Event{
		ActionType:  audit.ActionCreate,
		EntityType:  "Product",
		EntityID:    "1",
		Description: "Product 'Mug' was created with price 5 and status active",
		UserID:      &actorID,
		Data:        map[string]any{"name": "Mug"},
	})

	entries, err := store.List(ctx, audit.Filter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.False(t, entry.Timestamp.IsZero())
	require.NotNil(t, entry.UserID)
	assert.Equal(t, actorID, *entry.UserID)
	assert.JSONEq(t, `{"name":"Mug"}`, string(entry.Data))
}

func TestRecordFallsBackToContextPrincipal(t *testing.T) {
	store := audit.NewInMemoryStore()
	recorder := audit.NewRecorder(store)
	p := &identity.Principal{ID: uuid.New(), Role: identity.RoleAdmin}
	ctx := identity.ContextWithPrincipal(context.Background(), p)

	recorder.Record(ctx, audit.Event{
		ActionType:  audit.ActionUpdate,
		EntityType:  "User",
		EntityID:    uuid.NewString(),
		Description: "User 'X' was updated",
	})

	entries, err := store.List(ctx, audit.Filter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].UserID)
	assert.Equal(t, p.ID, *entries[0].UserID)
}

func TestRecordWithoutActorIsSystemAttributed(t *testing.T) {
	store := audit.NewInMemoryStore()
	recorder := audit.NewRecorder(store)
	ctx := context.Background()

	recorder.Record(ctx, audit.Event{
		ActionType:  audit.ActionDelete,
		EntityType:  "Product",
		EntityID:    "9",
		Description: "Product 'Mug' with price 5 was deleted",
	})

	entries, err := store.List(ctx, audit.Filter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].UserID)
}

func TestRecordSwallowsStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		Return(errors.New("connection refused"))

	recorder := audit.NewRecorder(store)

	// Must not panic and must not propagate the failure in any form.
	recorder.Record(context.Background(), audit.Event{
		ActionType:  audit.ActionCreate,
		EntityType:  "User",
		EntityID:    uuid.NewString(),
		Description: "User 'X' (x@example.com) was created with role CUSTOMER",
	})
}

func TestRecordAttemptsExactlyOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		Return(errors.New("timeout")).
		Times(1)

	recorder := audit.NewRecorder(store)
	recorder.Record(context.Background(), audit.Event{
		ActionType: audit.ActionUpdate,
		EntityType: "Product",
		EntityID:   "3",
	})
}

type captureProducer struct {
	messages []*producer.Message
}

func (c *captureProducer) ProduceAsync(msg *producer.Message) error {
	c.messages = append(c.messages, msg)
	return nil
}

func TestRecordFansOutToProducer(t *testing.T) {
	store := audit.NewInMemoryStore()
	capture := &captureProducer{}
	recorder := audit.NewRecorder(store, audit.WithProducer(capture, "audit.topic"))

	recorder.Record(context.Background(), audit.Event{
		ActionType:  audit.ActionCreate,
		EntityType:  "Product",
		EntityID:    "1",
		Description: "Product 'Mug' was created with price 5 and status active",
	})

	require.Len(t, capture.messages, 1)
	msg := capture.messages[0]
	assert.Equal(t, "audit.topic", msg.Topic)
	assert.Equal(t, []byte("Product"), msg.Key)
	assert.Contains(t, string(msg.Value), `"actionType":"CREATE"`)
}

func TestRecordSkipsProducerOnStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		Return(errors.New("down"))

	capture := &captureProducer{}
	recorder := audit.NewRecorder(store, audit.WithProducer(capture, "audit.topic"))

	recorder.Record(context.Background(), audit.Event{
		ActionType: audit.ActionCreate,
		EntityType: "User",
		EntityID:   uuid.NewString(),
	})

	assert.Empty(t, capture.messages, "unpersisted entries must not be fanned out")
}
