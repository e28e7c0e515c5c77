package authcode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "careernest:authcode:"

// RedisStore keeps codes in Redis so every API instance can redeem them
type RedisStore struct {
	client *redis.Client
}

// NewRedisClient parses url and pings the server
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewRedisStore wraps an existing client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Issue stores a fresh code with the given TTL
func (s *RedisStore) Issue(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error) {
	code, err := newCode()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, keyPrefix+code, userID.String(), ttl).Err(); err != nil {
		return "", fmt.Errorf("store auth code: %w", err)
	}
	return code, nil
}

// Consume atomically reads and deletes the code
func (s *RedisStore) Consume(ctx context.Context, code string) (uuid.UUID, error) {
	if code == "" {
		return uuid.Nil, ErrInvalidCode
	}

	val, err := s.client.GetDel(ctx, keyPrefix+code).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrInvalidCode
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("consume auth code: %w", err)
	}

	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, ErrInvalidCode
	}
	return id, nil
}
