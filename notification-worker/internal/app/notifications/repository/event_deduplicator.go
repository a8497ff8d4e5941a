package repository

import (
	"context"
	"fmt"
	"time"

	"spectre/notification-worker/internal/app/notifications/entity"
	"spectre/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

type redisEventDeduplicator struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEventDeduplicator - отметка живёт ttl (по умолчанию 24h)
func NewEventDeduplicator(client *redis.Client, ttl time.Duration) EventDeduplicator {
	return &redisEventDeduplicator{client: client, ttl: ttl}
}

func (d *redisEventDeduplicator) Claim(ctx context.Context, eventID string) (bool, error) {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpSetNX)
	defer timer.ObserveDuration()

	ok, err := d.client.SetNX(ctx, entity.GetRedisKeyForEvent(eventID), time.Now().UTC().Format(time.RFC3339), d.ttl).Result()
	if err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpSetNX)
		return false, fmt.Errorf("failed to claim event %s: %w", eventID, err)
	}
	return ok, nil
}

func (d *redisEventDeduplicator) Release(ctx context.Context, eventID string) error {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpDel)
	defer timer.ObserveDuration()

	if err := d.client.Del(ctx, entity.GetRedisKeyForEvent(eventID)).Err(); err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpDel)
		return fmt.Errorf("failed to release event %s: %w", eventID, err)
	}
	return nil
}
