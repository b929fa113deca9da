package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/TechX-demo/easy-pay-cart/internal/domain"
	"github.com/redis/go-redis/v9"
)

type redisRepo struct {
	client *redis.Client
	prefix string
}

// NewRedis stores each key as a plain string under "<prefix>:<key>" with no
// expiry.
func NewRedis(client *redis.Client, prefix string) Repository {
	if prefix == "" {
		prefix = "settings"
	}
	return &redisRepo{client: client, prefix: prefix}
}

func (r *redisRepo) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return v, nil
}

func (r *redisRepo) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *redisRepo) key(k string) string {
	return fmt.Sprintf("%s:%s", r.prefix, k)
}
