package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "nutrisnap:"

// RedisStorage stores bucket documents as plain redis strings
type RedisStorage struct {
	client *redis.Client
}

// NewRedisStorage connects to the redis server at url (redis://...)
func NewRedisStorage(ctx context.Context, url string) (*RedisStorage, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisStorage{client: client}, nil
}

func (s *RedisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *RedisStorage) Put(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, redisKeyPrefix+key, value, 0).Err()
}

func (s *RedisStorage) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisKeyPrefix+key).Err()
}

func (s *RedisStorage) Close() error {
	return s.client.Close()
}
