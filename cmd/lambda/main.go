// cmd/lambda/main.go
package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"

	"shorty/internal/bootstrap"
	"shorty/internal/config"
	"shorty/internal/serverless"
	"shorty/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel, cfg.Environment)
	defer appLogger.Sync()

	// Built once per cold start and reused across invocations
	kv, err := bootstrap.OpenStore(cfg, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize store", "error", err)
	}
	defer kv.Close()

	shortener, err := bootstrap.NewShortener(cfg, kv, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize shortener", "error", err)
	}

	h := serverless.NewHandler(shortener, cfg.APIKeyMandatory, appLogger)
	lambda.Start(h.Handle)
}
