// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"shorty/internal/bootstrap"
	"shorty/internal/config"
	"shorty/internal/handler"
	"shorty/internal/store"
	"shorty/pkg/logger"
)

func main() {
	// Load environment variables from .env file (development only)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Simple health check for Docker - just make HTTP request to existing server
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		resp, err := http.Get("http://" + cfg.ListenAddr() + "/health")
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	appLogger := logger.New(cfg.LogLevel, cfg.Environment)
	defer appLogger.Sync()
	appLogger.Infow("Starting shorty", "backend", cfg.StoreBackend)

	kv, err := bootstrap.OpenStore(cfg, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize store", "error", err)
	}

	shortener, err := bootstrap.NewShortener(cfg, kv, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize shortener", "error", err)
	}

	links := handler.NewLinkHandler(shortener, cfg.APIKeyMandatory, appLogger)
	router := handler.NewRouter(links, cfg, appLogger)

	srv := &http.Server{
		Addr:           cfg.ListenAddr(),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if pg, ok := kv.(*store.PostgresStore); ok {
		go purgeLoop(ctx, pg, cfg.PurgeInterval, appLogger)
	}

	// Start server in a goroutine for graceful shutdown
	go func() {
		appLogger.Infow("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatalw("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Infow("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorw("Server forced to shutdown", "error", err)
	}

	if err := kv.Close(); err != nil {
		appLogger.Errorw("Error closing store", "error", err)
	}

	appLogger.Infow("Server exited successfully")
}

// purgeLoop deletes expired rows from the SQL store until ctx is done
func purgeLoop(ctx context.Context, pg *store.PostgresStore, interval time.Duration, log *logger.Logger) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := pg.PurgeExpired(ctx)
			if err != nil {
				log.Warnw("Failed to purge expired keys", "error", err)
				continue
			}
			log.Debugw("Purged expired keys", "count", n)
		}
	}
}
