package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the full service configuration, loaded from environment
// variables with sensible local-development defaults.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Logging    LoggingConfig
	Classifier ClassifierConfig
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig configures the PostgreSQL connection pool.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string
}

// ClassifierConfig configures classification runs.
type ClassifierConfig struct {
	// ChunkSize is the number of entities classified per chunk. Chunking
	// bounds the working set only; results are identical for any size.
	ChunkSize int
	// BatchSize is the number of result rows per insert batch.
	BatchSize int
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         envOr("SERVER_HOST", "0.0.0.0"),
			Port:         envOrInt("SERVER_PORT", 8080),
			ReadTimeout:  envOrDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: envOrDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  envOrDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:            envOr("DB_HOST", "localhost"),
			Port:            envOrInt("DB_PORT", 5432),
			User:            envOr("DB_USER", "wellops"),
			Password:        envOr("DB_PASSWORD", "wellops"),
			Database:        envOr("DB_NAME", "wellops"),
			SSLMode:         envOr("DB_SSLMODE", "disable"),
			MaxOpenConns:    envOrInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envOrInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envOrDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: envOrDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Logging: LoggingConfig{
			Level: envOr("LOG_LEVEL", "info"),
		},
		Classifier: ClassifierConfig{
			ChunkSize: envOrInt("CLASSIFIER_CHUNK_SIZE", 200),
			BatchSize: envOrInt("CLASSIFIER_BATCH_SIZE", 500),
		},
	}

	return cfg, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database host must not be empty")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name must not be empty")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("invalid max open connections: %d", c.Database.MaxOpenConns)
	}
	if c.Classifier.ChunkSize <= 0 {
		return fmt.Errorf("invalid classifier chunk size: %d", c.Classifier.ChunkSize)
	}
	if c.Classifier.BatchSize <= 0 {
		return fmt.Errorf("invalid classifier batch size: %d", c.Classifier.BatchSize)
	}
	return nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envOrDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
