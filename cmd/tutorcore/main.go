package main

import (
	"context"
	"log"

	"github.com/Freeeeeet/tutorbook/internal/app"
	"github.com/Freeeeeet/tutorbook/internal/config"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting tutoring booking core",
		zap.String("environment", cfg.Environment),
		zap.String("http_address", cfg.Address),
		zap.Bool("redis_lock", cfg.RedisAddr != ""),
	)

	application, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}

	if err := application.Run(); err != nil {
		logger.Fatal("Application stopped with error", zap.Error(err))
	}
}
