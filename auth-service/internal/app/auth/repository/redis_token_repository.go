package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spectre/auth-service/internal/app/auth/entity"
	"spectre/pkg/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	refreshTokenPrefix = "refresh_token:"
	userTokensPrefix   = "user_tokens:"
	blacklistPrefix    = "blacklist:"
)

type redisTokenRepository struct {
	client *redis.Client
}

func NewRedisTokenRepository(client *redis.Client) TokenRepository {
	return &redisTokenRepository{client: client}
}

// SaveRefreshToken: refresh_token:<token> -> userID с TTL до истечения,
// плюс множество user_tokens:<userID> для отзыва всех токенов пользователя
func (r *redisTokenRepository) SaveRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return fmt.Errorf("refresh token already expired")
	}

	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	userKey := userTokensPrefix + userID.String()
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, refreshTokenPrefix+token, userID.String(), ttl)
	pipe.SAdd(ctx, userKey, token)
	pipe.Expire(ctx, userKey, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpSet)
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

func (r *redisTokenRepository) GetRefreshToken(ctx context.Context, token string) (*entity.RefreshToken, error) {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	key := refreshTokenPrefix + token
	userIDStr, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRefreshTokenNotFound
	}
	if err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid user id stored for refresh token: %w", err)
	}

	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get refresh token ttl: %w", err)
	}

	return &entity.RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

// DeleteRefreshToken возвращает ErrRefreshTokenNotFound, если токен уже удалён.
// Так два одновременных refresh одним токеном не получат две пары.
func (r *redisTokenRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpDel)
	defer timer.ObserveDuration()

	key := refreshTokenPrefix + token
	userIDStr, err := r.client.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrRefreshTokenNotFound
	}
	if err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpDel)
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	if err := r.client.SRem(ctx, userTokensPrefix+userIDStr, token).Err(); err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpDel)
	}
	return nil
}

func (r *redisTokenRepository) DeleteUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpDel)
	defer timer.ObserveDuration()

	userKey := userTokensPrefix + userID.String()
	tokens, err := r.client.SMembers(ctx, userKey).Result()
	if err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpDel)
		return fmt.Errorf("failed to get user tokens: %w", err)
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, refreshTokenPrefix+token)
	}
	keys = append(keys, userKey)

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpDel)
		return fmt.Errorf("failed to delete user tokens: %w", err)
	}
	return nil
}

// AddToBlacklist держит access токен в чёрном списке до его истечения
func (r *redisTokenRepository) AddToBlacklist(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	if err := r.client.Set(ctx, blacklistPrefix+token, "1", ttl).Err(); err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpSet)
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (r *redisTokenRepository) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	exists, err := r.client.Exists(ctx, blacklistPrefix+token).Result()
	if err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpGet)
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return exists > 0, nil
}
