// Package config provides configuration management for the tournament scout
// service. It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Providers ProvidersConfig
	SMTP      SMTPConfig
	RateLimit RateLimitConfig
	Outreach  OutreachConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RequestsPerSec  int // per-client request budget enforced by middleware
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Postgres PostgresConfig
	Redis    RedisConfig
}

// PostgresConfig holds Postgres configuration
type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	MaxConnections int
	MigrationsPath string
}

// URL builds a connection URL for the migration runner.
func (c *PostgresConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// ProvidersConfig holds third-party search and places API configuration
type ProvidersConfig struct {
	SearchBaseURL string
	SearchAPIKey  string
	PlacesBaseURL string
	PlacesAPIKey  string
	Timeout       time.Duration
}

// SMTPConfig holds transactional email configuration.
// NotifyAddress is where batch summaries land; empty disables notifications.
type SMTPConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	From          string
	NotifyAddress string
}

// RateLimitConfig holds contact-reveal rate limiting configuration
type RateLimitConfig struct {
	RevealUserLimit int64
	RevealIPLimit   int64
	RevealWindow    time.Duration
	IPSalt          string
}

// OutreachConfig holds batch operation limits
type OutreachConfig struct {
	MaxBatchSize    int // hard cap on ids per queue/suppress request
	EnrichBatchSize int // tournaments/venues processed per enrichment run
	EnrichParallel  int // concurrent provider calls during enrichment
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// Load .env file (optional in production)
	if err := godotenv.Load(); err != nil {
		// Not fatal: production environments inject variables directly
		fmt.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			RequestsPerSec:  getEnvInt("SERVER_REQUESTS_PER_SEC", 20),
		},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Host:           getEnv("POSTGRES_HOST", "localhost"),
				Port:           getEnv("POSTGRES_PORT", "5432"),
				Database:       getEnv("POSTGRES_DB", "tournament_scout"),
				User:           getEnv("POSTGRES_USER", "postgres"),
				Password:       getEnv("POSTGRES_PASSWORD", ""),
				MaxConnections: getEnvInt("POSTGRES_MAX_CONNECTIONS", 20),
				MigrationsPath: getEnv("POSTGRES_MIGRATIONS_PATH", "migrations"),
			},
			Redis: RedisConfig{
				Host:     getEnv("REDIS_HOST", "localhost"),
				Port:     getEnv("REDIS_PORT", "6379"),
				Password: getEnv("REDIS_PASSWORD", ""),
				DB:       getEnvInt("REDIS_DB", 0),
			},
		},
		Providers: ProvidersConfig{
			SearchBaseURL: getEnv("SEARCH_API_URL", "https://api.search.example.com"),
			SearchAPIKey:  getEnv("SEARCH_API_KEY", ""),
			PlacesBaseURL: getEnv("PLACES_API_URL", "https://api.places.example.com"),
			PlacesAPIKey:  getEnv("PLACES_API_KEY", ""),
			Timeout:       getEnvDuration("PROVIDER_TIMEOUT", 10*time.Second),
		},
		SMTP: SMTPConfig{
			Host:          getEnv("SMTP_HOST", ""),
			Port:          getEnvInt("SMTP_PORT", 587),
			User:          getEnv("SMTP_USER", ""),
			Password:      getEnv("SMTP_PASSWORD", ""),
			From:          getEnv("SMTP_FROM", ""),
			NotifyAddress: getEnv("SMTP_NOTIFY_ADDRESS", ""),
		},
		RateLimit: RateLimitConfig{
			RevealUserLimit: int64(getEnvInt("REVEAL_USER_LIMIT", 25)),
			RevealIPLimit:   int64(getEnvInt("REVEAL_IP_LIMIT", 50)),
			RevealWindow:    getEnvDuration("REVEAL_WINDOW", 24*time.Hour),
			IPSalt:          getEnv("REVEAL_IP_SALT", "tournament-scout"),
		},
		Outreach: OutreachConfig{
			MaxBatchSize:    getEnvInt("OUTREACH_MAX_BATCH", 200),
			EnrichBatchSize: getEnvInt("ENRICH_BATCH_SIZE", 50),
			EnrichParallel:  getEnvInt("ENRICH_PARALLEL", 5),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the loaded configuration is usable.
func (c *Config) Validate() error {
	if c.Database.Postgres.MaxConnections <= 0 {
		return fmt.Errorf("POSTGRES_MAX_CONNECTIONS must be positive, got %d", c.Database.Postgres.MaxConnections)
	}
	if c.RateLimit.RevealUserLimit <= 0 {
		return fmt.Errorf("REVEAL_USER_LIMIT must be positive, got %d", c.RateLimit.RevealUserLimit)
	}
	if c.RateLimit.RevealIPLimit <= 0 {
		return fmt.Errorf("REVEAL_IP_LIMIT must be positive, got %d", c.RateLimit.RevealIPLimit)
	}
	if c.RateLimit.RevealWindow <= 0 {
		return fmt.Errorf("REVEAL_WINDOW must be positive, got %s", c.RateLimit.RevealWindow)
	}
	if c.Outreach.MaxBatchSize <= 0 {
		return fmt.Errorf("OUTREACH_MAX_BATCH must be positive, got %d", c.Outreach.MaxBatchSize)
	}
	if c.Outreach.EnrichParallel <= 0 {
		return fmt.Errorf("ENRICH_PARALLEL must be positive, got %d", c.Outreach.EnrichParallel)
	}
	return nil
}

// getEnv returns the value of an environment variable or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	str := os.Getenv(key)
	if str == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(str)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	str := os.Getenv(key)
	if str == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(str)
	if err != nil {
		return defaultValue
	}
	return value
}
