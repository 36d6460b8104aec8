package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	ormpkg "github.com/stormhead-org/comments/internal/orm"
)

func loadEnv() {
	if os.Getenv("DEBUG") == "1" {
		godotenv.Load()
	}
}

func newLogger() (*zap.Logger, error) {
	if os.Getenv("DEBUG") == "1" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func getenv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(logger *zap.Logger, key string, fallback int) int {
	value, err := strconv.Atoi(getenv(key, strconv.Itoa(fallback)))
	if err != nil {
		logger.Warn("invalid integer setting, using default", zap.String("key", key), zap.Int("default", fallback))
		return fallback
	}
	return value
}

func getenvFloat(logger *zap.Logger, key string, fallback float64) float64 {
	value, err := strconv.ParseFloat(getenv(key, strconv.FormatFloat(fallback, 'f', -1, 64)), 64)
	if err != nil {
		logger.Warn("invalid number setting, using default", zap.String("key", key), zap.Float64("default", fallback))
		return fallback
	}
	return value
}

func getenvDuration(logger *zap.Logger, key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(getenv(key, fallback.String()))
	if err != nil {
		logger.Warn("invalid duration setting, using default", zap.String("key", key), zap.Duration("default", fallback))
		return fallback
	}
	return value
}

func newPostgresClient(logger *zap.Logger) (*ormpkg.PostgresClient, error) {
	return ormpkg.NewPostgresClient(
		getenv("POSTGRES_HOST", "127.0.0.1"),
		getenv("POSTGRES_PORT", "5432"),
		getenv("POSTGRES_USER", "postgres"),
		getenv("POSTGRES_PASSWORD", "postgres"),
		getenv("POSTGRES_DB", "postgres"),
		getenvInt(logger, "POSTGRES_MAX_CONNS", 20),
	)
}
