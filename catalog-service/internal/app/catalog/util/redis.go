package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"spectre/catalog-service/internal/app/catalog/entity"
	"spectre/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	categoriesCacheKey = "categories:all"
	metricsService     = "catalog-service"
)

// RedisClient кеширует плоский список категорий с метками
type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// NewRedisClientFromClient оборачивает уже созданный клиент (тесты с miniredis)
func NewRedisClientFromClient(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}

func (r *RedisClient) SetCategories(ctx context.Context, items []entity.CategoryListItem, ttl time.Duration) error {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}

	if err := r.client.Set(ctx, categoriesCacheKey, data, ttl).Err(); err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpSet)
		return fmt.Errorf("failed to set categories in cache: %w", err)
	}
	return nil
}

// GetCategories возвращает nil, nil при промахе
func (r *RedisClient) GetCategories(ctx context.Context) ([]entity.CategoryListItem, error) {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	data, err := r.client.Get(ctx, categoriesCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(metricsService, categoriesCacheKey)
			return nil, nil
		}
		metrics.RecordRedisError(metricsService, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get categories from cache: %w", err)
	}

	var items []entity.CategoryListItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal categories: %w", err)
	}

	metrics.RecordCacheHit(metricsService, categoriesCacheKey)
	return items, nil
}

func (r *RedisClient) DeleteCategories(ctx context.Context) error {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpDel)
	defer timer.ObserveDuration()

	if err := r.client.Del(ctx, categoriesCacheKey).Err(); err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpDel)
		return fmt.Errorf("failed to delete categories from cache: %w", err)
	}
	return nil
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
