package repository

import (
	"context"
	"fmt"
	"time"

	"roamstay/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

type redisTokenRepository struct {
	client *redis.Client
}

// NewRedisTokenRepository создает новый Redis репозиторий для токенов
func NewRedisTokenRepository(client *redis.Client) TokenRepository {
	return &redisTokenRepository{client: client}
}

// SaveRefreshToken сохраняет refresh токен в Redis с TTL
func (r *redisTokenRepository) SaveRefreshToken(ctx context.Context, userID string, token string, expiresAt time.Time) error {
	key := fmt.Sprintf("refresh_token:%s", token)

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return fmt.Errorf("token already expired")
	}

	timer := metrics.NewRedisTimer("listings", metrics.RedisOpSet)
	defer timer.ObserveDuration()

	if err := r.client.Set(ctx, key, userID, ttl).Err(); err != nil {
		metrics.RecordRedisError("listings", metrics.RedisOpSet)
		return fmt.Errorf("failed to save refresh token to Redis: %w", err)
	}

	// Токен также попадает в множество токенов пользователя,
	// чтобы при logout можно было удалить все его сессии
	userTokensKey := fmt.Sprintf("user_tokens:%s", userID)
	if err := r.client.SAdd(ctx, userTokensKey, token).Err(); err != nil {
		return fmt.Errorf("failed to add token to user tokens set: %w", err)
	}
	r.client.Expire(ctx, userTokensKey, ttl)

	return nil
}

// GetRefreshToken возвращает ID пользователя, которому принадлежит refresh токен
func (r *redisTokenRepository) GetRefreshToken(ctx context.Context, token string) (string, error) {
	key := fmt.Sprintf("refresh_token:%s", token)

	timer := metrics.NewRedisTimer("listings", metrics.RedisOpGet)
	defer timer.ObserveDuration()

	userID, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrTokenNotFound
	}
	if err != nil {
		metrics.RecordRedisError("listings", metrics.RedisOpGet)
		return "", fmt.Errorf("failed to get refresh token from Redis: %w", err)
	}

	return userID, nil
}

// DeleteRefreshToken удаляет refresh токен
func (r *redisTokenRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	key := fmt.Sprintf("refresh_token:%s", token)

	timer := metrics.NewRedisTimer("listings", metrics.RedisOpDel)
	defer timer.ObserveDuration()

	if err := r.client.Del(ctx, key).Err(); err != nil {
		metrics.RecordRedisError("listings", metrics.RedisOpDel)
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	return nil
}

// DeleteUserRefreshTokens удаляет все refresh токены пользователя
func (r *redisTokenRepository) DeleteUserRefreshTokens(ctx context.Context, userID string) error {
	userTokensKey := fmt.Sprintf("user_tokens:%s", userID)

	tokens, err := r.client.SMembers(ctx, userTokensKey).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to get user tokens: %w", err)
	}

	for _, token := range tokens {
		if err := r.client.Del(ctx, fmt.Sprintf("refresh_token:%s", token)).Err(); err != nil {
			return fmt.Errorf("failed to delete user refresh token: %w", err)
		}
	}

	if err := r.client.Del(ctx, userTokensKey).Err(); err != nil {
		return fmt.Errorf("failed to delete user tokens set: %w", err)
	}

	return nil
}

// AddToBlacklist добавляет access токен в черный список до его истечения
func (r *redisTokenRepository) AddToBlacklist(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Истекший токен не требует блокировки
		return nil
	}

	key := fmt.Sprintf("blacklist:%s", token)
	if err := r.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	return nil
}

// IsBlacklisted проверяет, находится ли access токен в черном списке
func (r *redisTokenRepository) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	key := fmt.Sprintf("blacklist:%s", token)

	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}

	return n > 0, nil
}

// SaveResetToken сохраняет токен сброса пароля с TTL (обычно 1 час)
func (r *redisTokenRepository) SaveResetToken(ctx context.Context, token string, userID string, ttl time.Duration) error {
	key := fmt.Sprintf("reset_token:%s", token)

	timer := metrics.NewRedisTimer("listings", metrics.RedisOpSet)
	defer timer.ObserveDuration()

	if err := r.client.Set(ctx, key, userID, ttl).Err(); err != nil {
		metrics.RecordRedisError("listings", metrics.RedisOpSet)
		return fmt.Errorf("failed to save reset token: %w", err)
	}

	return nil
}

// GetResetToken возвращает ID пользователя по токену сброса пароля
// Истекший токен удаляется из Redis самим TTL
func (r *redisTokenRepository) GetResetToken(ctx context.Context, token string) (string, error) {
	key := fmt.Sprintf("reset_token:%s", token)

	userID, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get reset token: %w", err)
	}

	return userID, nil
}

// DeleteResetToken удаляет использованный токен сброса пароля
func (r *redisTokenRepository) DeleteResetToken(ctx context.Context, token string) error {
	key := fmt.Sprintf("reset_token:%s", token)

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete reset token: %w", err)
	}

	return nil
}
