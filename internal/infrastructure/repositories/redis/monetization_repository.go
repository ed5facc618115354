package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"fluvid/internal/core/domain"

	"github.com/redis/go-redis/v9"
)

const monetizationKeyPrefix = KeyPrefix + "monetization:"

type RedisMonetizationRepository struct {
	client *redis.Client
}

func NewRedisMonetizationRepository(client *redis.Client) *RedisMonetizationRepository {
	return &RedisMonetizationRepository{client: client}
}

func (r *RedisMonetizationRepository) Get(ctx context.Context, owner domain.UserID) (*domain.MonetizationSettings, error) {
	var settings domain.MonetizationSettings

	data, err := r.client.Get(ctx, monetizationKeyPrefix+string(owner)).Bytes()
	if err == redis.Nil {
		return &settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get monetization settings from Redis: %w", err)
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal monetization settings: %w", err)
	}
	return &settings, nil
}

func (r *RedisMonetizationRepository) Save(ctx context.Context, owner domain.UserID, settings *domain.MonetizationSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal monetization settings: %w", err)
	}
	if err := r.client.Set(ctx, monetizationKeyPrefix+string(owner), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set monetization settings in Redis: %w", err)
	}
	return nil
}
