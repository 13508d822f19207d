package store

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sweetpotato0/chatbot-factory/config"
	fterrors "github.com/sweetpotato0/chatbot-factory/errors"
	"github.com/sweetpotato0/chatbot-factory/history"
)

// PostgresConfigFromEnv loads PostgreSQL configuration from environment variables
func PostgresConfigFromEnv() *PostgresConfig {
	return &PostgresConfig{
		Host:     getEnv("POSTGRES_HOST", "localhost"),
		Port:     getEnvInt("POSTGRES_PORT", 5432),
		User:     getEnv("POSTGRES_USER", "postgres"),
		Password: getEnv("POSTGRES_PASSWORD", ""),
		DBName:   getEnv("POSTGRES_DB", "chatbot_factory"),
		SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}
}

// RedisConfigFromEnv loads Redis configuration from environment variables
func RedisConfigFromEnv() *RedisConfig {
	return &RedisConfig{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
		Prefix:   getEnv("REDIS_PREFIX", "chatbot-factory:history:"),
		TTL:      getEnvDuration("REDIS_TTL", 0),
	}
}

// MongoConfigFromEnv loads MongoDB configuration from environment variables
func MongoConfigFromEnv() *MongoConfig {
	return &MongoConfig{
		URI:        getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		Database:   getEnv("MONGODB_DB", "chatbot_factory"),
		Collection: getEnv("MONGODB_COLLECTION", "generations"),
	}
}

// Open builds the store for the named backend, reading its connection
// settings from the environment.
func Open(ctx context.Context, backend string) (history.Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", config.HistoryMemory:
		return NewInMemoryStore(), nil

	case config.HistoryRedis:
		cfg := RedisConfigFromEnv()
		if err := config.ValidateRedisConfig(cfg.Addr, cfg.DB, cfg.Prefix); err != nil {
			return nil, fmt.Errorf("redis history store: %w", err)
		}
		s := NewRedisStore(cfg)
		if err := s.Ping(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("redis history store: %w", err)
		}
		return s, nil

	case config.HistoryMongo:
		cfg := MongoConfigFromEnv()
		if err := config.ValidateMongoDBConfig(cfg.URI, cfg.Database, cfg.Collection); err != nil {
			return nil, fmt.Errorf("mongo history store: %w", err)
		}
		return NewMongoStore(ctx, cfg)

	case config.HistoryPostgres:
		cfg := PostgresConfigFromEnv()
		if err := config.ValidatePostgresConfig(cfg.Host, cfg.Port, cfg.User, cfg.DBName, cfg.SSLMode); err != nil {
			return nil, fmt.Errorf("postgres history store: %w", err)
		}
		return NewPostgresStore(ctx, cfg)

	default:
		return nil, fmt.Errorf("unknown history backend %q: %w", backend, fterrors.ErrInvalidInput)
	}
}

// Helper functions for environment variable reading

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
