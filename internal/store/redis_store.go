package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements KeyValueStore on top of Redis.
// Keys are used verbatim so existing deployments keep working.
type RedisStore struct {
	client *redis.Client
}

// RedisOptions holds connection settings for NewRedisStore
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore creates a new Redis client and checks the connection
// Returns error if connection fails
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// GetString retrieves a value from Redis by key
func (s *RedisStore) GetString(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}

	return val, nil
}

// GetBool retrieves a value and parses it as a boolean ("1", "true", ...)
func (s *RedisStore) GetBool(ctx context.Context, key string) (bool, error) {
	val, err := s.client.Get(ctx, key).Bool()
	if errors.Is(err, redis.Nil) {
		return false, ErrKeyNotFound
	}
	if err != nil {
		return false, fmt.Errorf("redis get bool failed: %w", err)
	}

	return val, nil
}

// Exists checks if a key exists in Redis
func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	count, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists check failed: %w", err)
	}

	return count > 0, nil
}

// Increment atomically increments a counter with INCR
func (s *RedisStore) Increment(ctx context.Context, key string) (int64, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr failed: %w", err)
	}

	return count, nil
}

// Expire sets the TTL of key. Redis ignores sub-second precision here.
func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	ok, err := s.client.Expire(ctx, key, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis expire failed: %w", err)
	}
	if !ok {
		return ErrKeyNotFound
	}

	return nil
}

// Set stores a key-value pair without expiration
func (s *RedisStore) Set(ctx context.Context, key string, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// Ping checks the connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
