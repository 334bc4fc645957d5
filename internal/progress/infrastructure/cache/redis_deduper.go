// Package cache holds the Redis-backed helpers of the progress context.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const dedupKeyPrefix = "progress:event:dedup:"

// RedisDeduper remembers handled event ids in Redis so that every worker
// replica skips redeliveries.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduper creates a deduper. Keys expire after ttl.
func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisDeduper{client: client, ttl: ttl}
}

// FirstSeen implements subscribers.EventDeduper.
func (d *RedisDeduper) FirstSeen(ctx context.Context, eventID uuid.UUID) (bool, error) {
	ok, err := d.client.SetNX(ctx, DedupKey(eventID), 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup %s: %w", eventID, err)
	}
	return ok, nil
}

// Forget implements subscribers.EventDeduper.
func (d *RedisDeduper) Forget(ctx context.Context, eventID uuid.UUID) error {
	if err := d.client.Del(ctx, DedupKey(eventID)).Err(); err != nil {
		return fmt.Errorf("forget %s: %w", eventID, err)
	}
	return nil
}

// DedupKey is the Redis key recorded for an event.
func DedupKey(eventID uuid.UUID) string {
	return dedupKeyPrefix + eventID.String()
}
