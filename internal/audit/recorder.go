package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"shopkeep/internal/identity"
	"shopkeep/internal/platform/kafka/producer"
	"shopkeep/internal/platform/metrics"
)

// EventProducer fans recorded entries out to an external sink (compliance
// topic). Delivery is asynchronous and best-effort.
type EventProducer interface {
	ProduceAsync(msg *producer.Message) error
}

// Recorder appends one immutable entry per mutating action. Record never
// returns an error: audit completeness is sacrificed before primary-operation
// availability, so persistence failures are logged and swallowed. One attempt
// per call; no retry, no queue, no backpressure.
type Recorder struct {
	store    Store
	logger   *slog.Logger
	metrics  *metrics.Metrics
	producer EventProducer
	topic    string
}

// RecorderOption configures the Recorder.
type RecorderOption func(*Recorder)

// WithLogger sets the logger used for reporting swallowed write failures.
func WithLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithMetrics enables audit counters.
func WithMetrics(m *metrics.Metrics) RecorderOption {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// WithProducer enables fan-out of recorded entries to a Kafka topic.
func WithProducer(p EventProducer, topic string) RecorderOption {
	return func(r *Recorder) {
		r.producer = p
		r.topic = topic
	}
}

// NewRecorder constructs a Recorder backed by the given store.
func NewRecorder(store Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{store: store}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Record persists one audit entry for the given event. When the event names
// no actor, the principal on the request context is used; if that is also
// absent the entry is system-attributed (nil actor), which is intentional.
func (r *Recorder) Record(ctx context.Context, event Event) {
	entry := &Entry{
		ID:           uuid.New(),
		Timestamp:    time.Now(),
		ActionType:   event.ActionType,
		EntityType:   event.EntityType,
		EntityID:     event.EntityID,
		Description:  event.Description,
		UserID:       event.UserID,
		UserEntityID: event.UserEntityID,
		ProductID:    event.ProductID,
	}

	if entry.UserID == nil {
		if p := identity.PrincipalFromContext(ctx); p != nil {
			actorID := p.ID
			entry.UserID = &actorID
		}
	}

	if event.Data != nil {
		data, err := json.Marshal(event.Data)
		if err != nil {
			r.fail(ctx, entry, err)
			return
		}
		entry.Data = data
	}

	if err := r.store.Append(ctx, entry); err != nil {
		r.fail(ctx, entry, err)
		return
	}
	r.metrics.IncrementAuditEvent(string(entry.ActionType))

	if r.producer != nil {
		value, err := json.Marshal(entry)
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to marshal audit entry for fan-out",
				"error", err,
				"entry_id", entry.ID,
			)
			return
		}
		_ = r.producer.ProduceAsync(&producer.Message{
			Topic: r.topic,
			Key:   []byte(entry.EntityType),
			Value: value,
		})
	}
}

func (r *Recorder) fail(ctx context.Context, entry *Entry, err error) {
	r.logger.ErrorContext(ctx, "failed to record audit entry",
		"error", err,
		"action_type", entry.ActionType,
		"entity_type", entry.EntityType,
		"entity_id", entry.EntityID,
	)
	r.metrics.IncrementAuditWriteFailure()
}
