package credstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStorage persists the encrypted blob in Redis, for deployments that
// want the store to survive process restarts.
type RedisStorage struct {
	client *redis.Client
}

// NewRedisStorage wraps an established Redis client as blob Storage.
func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

func (r *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrBlobNotFound
	}
	if err != nil {
		return "", errors.Join(ErrStorageRead, err)
	}
	return value, nil
}

func (r *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return errors.Join(ErrStorageWrite, err)
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return errors.Join(ErrStorageWrite, err)
	}
	return nil
}
