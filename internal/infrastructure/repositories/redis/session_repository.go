package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fluvid/internal/core/domain"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix  = KeyPrefix + "session:"
	defaultSessionTTL = 30 * 24 * time.Hour
)

// RedisSessionRepository stores each session as a JSON string under fluvid:session:<id>.
type RedisSessionRepository struct {
	client redis.Cmdable
}

func NewRedisSessionRepository(client redis.Cmdable) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

func SessionKey(id domain.SessionID) string {
	return sessionKeyPrefix + string(id)
}

func (r *RedisSessionRepository) Save(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, SessionKey(session.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session in Redis: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) Get(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	data, err := r.client.Get(ctx, SessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, id domain.SessionID) error {
	if err := r.client.Del(ctx, SessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session from Redis: %w", err)
	}
	return nil
}
