package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pageza/snaptop/client/internal/session"
)

// RedisKeyPrefix namespaces session keys in a shared Redis
const RedisKeyPrefix = "snaptop:session:"

// NewRedisClient creates a Redis client from a redis:// URL and checks the
// connection
func NewRedisClient(redisURL string, log logrus.FieldLogger) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse Redis URL")
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "failed to connect to Redis")
	}

	log.WithField("addr", opts.Addr).Info("connected to Redis")
	return client, nil
}

// RedisStorage keeps values in Redis under RedisKeyPrefix
type RedisStorage struct {
	client *redis.Client
}

// NewRedisStorage wraps an existing client
func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

// Get returns the value for key or session.ErrKeyNotFound
func (s *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, RedisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", session.ErrKeyNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", key)
	}
	return val, nil
}

// Set stores value under key with no expiry
func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	err := s.client.Set(ctx, RedisKeyPrefix+key, value, 0).Err()
	return errors.Wrapf(err, "failed to write %s", key)
}

// Delete removes keys. Missing keys are ignored.
func (s *RedisStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = RedisKeyPrefix + k
	}
	return errors.Wrap(s.client.Del(ctx, prefixed...).Err(), "failed to delete keys")
}

// Close closes the underlying client
func (s *RedisStorage) Close() error {
	return s.client.Close()
}
