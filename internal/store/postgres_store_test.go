package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type PostgresStoreTestSuite struct {
	suite.Suite
	db    *gorm.DB
	store *PostgresStore
	ctx   context.Context
}

func TestPostgresStoreTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	if os.Getenv("SHORTENER_TEST_POSTGRES_DSN") == "" {
		t.Skip("SHORTENER_TEST_POSTGRES_DSN not set")
	}
	suite.Run(t, new(PostgresStoreTestSuite))
}

func (s *PostgresStoreTestSuite) SetupSuite() {
	db, err := gorm.Open(postgres.Open(os.Getenv("SHORTENER_TEST_POSTGRES_DSN")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	s.db = db

	s.store, err = NewPostgresStore(db)
	s.Require().NoError(err)
	s.ctx = context.Background()
}

func (s *PostgresStoreTestSuite) TearDownSuite() {
	s.db.Exec("DELETE FROM kv_entries")
	_ = s.store.Close()
}

func (s *PostgresStoreTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM kv_entries")
}

func (s *PostgresStoreTestSuite) TestSetAndGet() {
	s.Require().NoError(s.store.Set(s.ctx, "abc", "http://example.com"))

	val, err := s.store.GetString(s.ctx, "abc")
	s.Require().NoError(err)
	s.Equal("http://example.com", val)

	exists, err := s.store.Exists(s.ctx, "abc")
	s.Require().NoError(err)
	s.True(exists)

	_, err = s.store.GetString(s.ctx, "missing")
	s.ErrorIs(err, ErrKeyNotFound)
}

func (s *PostgresStoreTestSuite) TestGetBool() {
	s.Require().NoError(s.store.Set(s.ctx, "API_KEY_k", "1"))

	ok, err := s.store.GetBool(s.ctx, "API_KEY_k")
	s.Require().NoError(err)
	s.True(ok)

	_, err = s.store.GetBool(s.ctx, "API_KEY_other")
	s.ErrorIs(err, ErrKeyNotFound)
}

func (s *PostgresStoreTestSuite) TestIncrementExpireAndRestart() {
	n, err := s.store.Increment(s.ctx, "RATE_API_KEY_k")
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	n, err = s.store.Increment(s.ctx, "RATE_API_KEY_k")
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	s.Require().NoError(s.store.Expire(s.ctx, "RATE_API_KEY_k", time.Second))
	time.Sleep(1100 * time.Millisecond)

	exists, err := s.store.Exists(s.ctx, "RATE_API_KEY_k")
	s.Require().NoError(err)
	s.False(exists)

	n, err = s.store.Increment(s.ctx, "RATE_API_KEY_k")
	s.Require().NoError(err)
	s.Equal(int64(1), n)
}

func (s *PostgresStoreTestSuite) TestExpireUsesDatabaseClock() {
	_, err := s.store.Increment(s.ctx, "RATE_API_KEY_k")
	s.Require().NoError(err)
	s.Require().NoError(s.store.Expire(s.ctx, "RATE_API_KEY_k", time.Hour))

	var remaining float64
	s.Require().NoError(s.db.
		Raw("SELECT EXTRACT(EPOCH FROM expires_at - NOW()) FROM kv_entries WHERE key = ?", "RATE_API_KEY_k").
		Scan(&remaining).Error)
	s.InDelta(3600, remaining, 5)
}

func (s *PostgresStoreTestSuite) TestExpireMissingKey() {
	s.ErrorIs(s.store.Expire(s.ctx, "nope", time.Minute), ErrKeyNotFound)
}

func (s *PostgresStoreTestSuite) TestSetClearsTTL() {
	s.Require().NoError(s.store.Set(s.ctx, "k", "v1"))
	s.Require().NoError(s.store.Expire(s.ctx, "k", time.Second))
	s.Require().NoError(s.store.Set(s.ctx, "k", "v2"))
	time.Sleep(1100 * time.Millisecond)

	val, err := s.store.GetString(s.ctx, "k")
	s.Require().NoError(err)
	s.Equal("v2", val)
}

func (s *PostgresStoreTestSuite) TestPurgeExpired() {
	s.Require().NoError(s.store.Set(s.ctx, "old", "v"))
	s.Require().NoError(s.store.Expire(s.ctx, "old", time.Millisecond))
	s.Require().NoError(s.store.Set(s.ctx, "new", "v"))
	time.Sleep(10 * time.Millisecond)

	n, err := s.store.PurgeExpired(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	exists, err := s.store.Exists(s.ctx, "new")
	s.Require().NoError(err)
	s.True(exists)
}
