package store

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by reads of a key that is absent or expired
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore is the narrow facade the shortener talks to.
// Implementations must be safe for concurrent use and must make
// Increment atomic. No caching, batching or transactions.
type KeyValueStore interface {
	// GetString returns the value stored at key
	GetString(ctx context.Context, key string) (string, error)

	// GetBool returns the value stored at key parsed as a boolean
	GetBool(ctx context.Context, key string) (bool, error)

	// Exists checks if a key exists
	Exists(ctx context.Context, key string) (bool, error)

	// Increment adds one to the counter at key, creating it at 1 when
	// absent, and returns the new value
	Increment(ctx context.Context, key string) (int64, error)

	// Expire sets a time to live on an existing key
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Set stores value at key with no expiry
	Set(ctx context.Context, key string, value string) error
}

// Backend is a KeyValueStore owning a connection
type Backend interface {
	KeyValueStore

	// Ping verifies the backend is reachable
	Ping(ctx context.Context) error

	// Close closes the backend connection
	Close() error
}
