// Package bootstrap builds the store and shortener from configuration.
// Shared by the HTTP server and the lambda entrypoint.
package bootstrap

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"shorty/internal/config"
	"shorty/internal/service"
	"shorty/internal/shortener"
	"shorty/internal/store"
	"shorty/pkg/logger"
)

// gormWriter wraps our logger to implement gorm's logger.Writer interface
type gormWriter struct {
	logger *logger.Logger
}

// Printf implements the logger.Writer interface
func (w *gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Info(fmt.Sprintf(format, args...))
}

// OpenStore connects the configured backend
func OpenStore(cfg *config.Config, log *logger.Logger) (store.Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := openDatabase(cfg.PostgresDSN, log)
		if err != nil {
			return nil, err
		}
		return postgresBackend(db)
	default:
		return store.NewRedisStore(store.RedisOptions{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}
}

// NewShortener builds the shortener on top of kv
func NewShortener(cfg *config.Config, kv store.KeyValueStore, log *logger.Logger) (service.LinkService, error) {
	generator, err := shortener.NewCodeGenerator(cfg.IDLength, cfg.IDAlphabet())
	if err != nil {
		return nil, fmt.Errorf("invalid id generator settings: %w", err)
	}

	log.Debugw("Id generator ready",
		"length", generator.Length(),
		"collision_probability_1m", generator.CollisionProbability(1_000_000),
	)

	return service.NewShortener(kv, generator, service.Options{
		MaxAttempts:     cfg.IDGenerationMaxAttempts,
		RateLimitPeriod: cfg.RateLimitWindow(),
		RateLimit:       cfg.RateLimit,
	}, log), nil
}

// postgresBackend migrates the store on db and releases the pool if
// that fails
func postgresBackend(db *gorm.DB) (store.Backend, error) {
	kv, err := store.NewPostgresStore(db)
	if err != nil {
		closeDatabase(db)
		return nil, err
	}
	return kv, nil
}

func closeDatabase(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// openDatabase opens the PostgreSQL connection with retries and pooling
func openDatabase(dsn string, log *logger.Logger) (*gorm.DB, error) {
	gormLog := gormlogger.New(
		&gormWriter{logger: log},
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var db *gorm.DB
	var err error

	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger:                 gormLog,
			SkipDefaultTransaction: true,
		})
		if err == nil {
			break
		}

		log.Warnw("Failed to connect to database, retrying...", "attempt", i+1, "error", err)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Infow("Database connection established successfully")
	return db, nil
}
