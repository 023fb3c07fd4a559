package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"shorty/internal/config"
	"shorty/internal/domain"
	"shorty/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		StoreBackend:            config.BackendRedis,
		RateLimitPeriod:         600,
		RateLimit:               10,
		IDLength:                7,
		IDGenerationMaxAttempts: 3,
	}
}

func TestOpenStoreAndShorten(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisHost = mr.Host()
	cfg.RedisPort = mr.Port()

	kv, err := OpenStore(cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	require.NoError(t, kv.Ping(context.Background()))

	svc, err := NewShortener(cfg, kv, logger.NewNop())
	require.NoError(t, err)

	res, err := svc.Shorten(context.Background(), domain.ShortenRequest{URL: "example.com"})
	require.NoError(t, err)
	assert.Len(t, res.ID, 7)

	stored, err := mr.Get(res.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com", stored)
}

func TestOpenStore_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisHost = mr.Host()
	cfg.RedisPort = mr.Port()
	mr.Close()

	_, err := OpenStore(cfg, logger.NewNop())
	assert.Error(t, err)
}

func TestNewShortener_InvalidSettings(t *testing.T) {
	cfg := testConfig()
	cfg.IDLength = 0

	_, err := NewShortener(cfg, nil, logger.NewNop())
	assert.Error(t, err)
}

func TestPostgresBackend_MigrationFailureClosesPool(t *testing.T) {
	db, err := gorm.Open(postgres.Open("host=127.0.0.1 port=1 user=shorty dbname=shorty sslmode=disable connect_timeout=1"), &gorm.Config{
		Logger:               gormlogger.Default.LogMode(gormlogger.Silent),
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)

	kv, err := postgresBackend(db)
	require.Error(t, err)
	assert.Nil(t, kv)

	assert.ErrorContains(t, sqlDB.Ping(), "database is closed")
}
