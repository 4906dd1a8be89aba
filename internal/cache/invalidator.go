package cache

import (
	"context"
	"log/slog"

	"shopkeep/internal/platform/redis"
)

// Invalidator signals downstream consumers that a collection changed.
// Implementations are best-effort: a failed signal is logged, never surfaced,
// so a cache hiccup cannot fail a mutation that already committed.
type Invalidator interface {
	Invalidate(ctx context.Context, collections ...string)
}

const (
	keyPrefix = "shopkeep:cache:"
	channel   = "shopkeep.invalidations"
)

// RedisInvalidator drops cached collections and publishes a change
// notification for any listening view layers.
type RedisInvalidator struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisInvalidator constructs a redis-backed invalidator.
func NewRedisInvalidator(client *redis.Client, logger *slog.Logger) *RedisInvalidator {
	return &RedisInvalidator{client: client, logger: logger}
}

func (r *RedisInvalidator) Invalidate(ctx context.Context, collections ...string) {
	for _, collection := range collections {
		if err := r.client.Del(ctx, keyPrefix+collection).Err(); err != nil {
			r.logger.WarnContext(ctx, "cache invalidation failed",
				"collection", collection,
				"error", err,
			)
			continue
		}
		if err := r.client.Publish(ctx, channel, collection).Err(); err != nil {
			r.logger.WarnContext(ctx, "cache invalidation publish failed",
				"collection", collection,
				"error", err,
			)
		}
	}
}

// Noop discards invalidation signals. Used when Redis is not configured.
type Noop struct{}

func (Noop) Invalidate(context.Context, ...string) {}
