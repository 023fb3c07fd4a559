package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStoreFromClient(client), mr
}

func TestRedisStore_GetString(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("abc", "http://example.com"))

	val, err := s.GetString(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com", val)

	_, err = s.GetString(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisStore_GetBool(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("API_KEY_one", "1"))
	require.NoError(t, mr.Set("API_KEY_yes", "true"))
	require.NoError(t, mr.Set("API_KEY_no", "false"))
	require.NoError(t, mr.Set("API_KEY_junk", "maybe"))

	tests := []struct {
		key     string
		want    bool
		wantErr bool
	}{
		{"API_KEY_one", true, false},
		{"API_KEY_yes", true, false},
		{"API_KEY_no", false, false},
		{"API_KEY_junk", false, true},
		{"API_KEY_missing", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := s.GetBool(ctx, tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRedisStore_IncrementAndExpire(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	exists, err := s.Exists(ctx, "RATE_API_KEY_k")
	require.NoError(t, err)
	assert.False(t, exists)

	n, err := s.Increment(ctx, "RATE_API_KEY_k")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, s.Expire(ctx, "RATE_API_KEY_k", 600*time.Second))
	assert.Equal(t, 600*time.Second, mr.TTL("RATE_API_KEY_k"))

	n, err = s.Increment(ctx, "RATE_API_KEY_k")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 600*time.Second, mr.TTL("RATE_API_KEY_k"), "INCR keeps the TTL")

	mr.FastForward(601 * time.Second)

	exists, err = s.Exists(ctx, "RATE_API_KEY_k")
	require.NoError(t, err)
	assert.False(t, exists)

	n, err = s.Increment(ctx, "RATE_API_KEY_k")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRedisStore_ExpireMissingKey(t *testing.T) {
	s, _ := newTestRedisStore(t)

	err := s.Expire(context.Background(), "nope", time.Minute)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisStore_SetHasNoTTL(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "id", "http://a.com"))

	val, err := mr.Get("id")
	require.NoError(t, err)
	assert.Equal(t, "http://a.com", val)
	assert.Zero(t, mr.TTL("id"))
}

func TestRedisStore_Unavailable(t *testing.T) {
	s, mr := newTestRedisStore(t)
	mr.Close()
	ctx := context.Background()

	_, err := s.GetString(ctx, "id")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrKeyNotFound)

	_, err = s.Exists(ctx, "id")
	assert.Error(t, err)

	assert.Error(t, s.Set(ctx, "id", "x"))
	assert.Error(t, s.Ping(ctx))
}
