package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Bearer token verification
	Auth AuthConfig

	// Redis activity fan-out
	Redis RedisConfig

	// Text moderation
	Moderation ModerationConfig

	// List paging defaults
	Pagination PaginationConfig

	// Deferred activity writer
	Activity ActivityConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MigrationsPath  string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// AuthConfig holds identity resolver settings
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// RedisConfig holds the optional activity publisher settings. Empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// ModerationConfig holds moderation filter settings
type ModerationConfig struct {
	WordlistPath    string
	ReviewThreshold int
	MaxWords        int
}

// PaginationConfig holds page size limits
type PaginationConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// ActivityConfig holds the deferred activity writer settings
type ActivityConfig struct {
	Async        bool
	BufferSize   int
	Workers      int
	WriteTimeout time.Duration
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Name:         getEnv("DB_NAME", "news_interactions"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			Issuer:    getEnv("JWT_ISSUER", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			Channel:  getEnv("REDIS_ACTIVITY_CHANNEL", "activity"),
		},
		Moderation: ModerationConfig{
			WordlistPath:    getEnv("MODERATION_WORDLIST_PATH", ""),
			ReviewThreshold: getIntEnv("MODERATION_REVIEW_THRESHOLD", 3),
			MaxWords:        getIntEnv("COMMENT_MAX_WORDS", 500),
		},
		Pagination: PaginationConfig{
			DefaultPageSize: getIntEnv("DEFAULT_PAGE_SIZE", 20),
			MaxPageSize:     getIntEnv("MAX_PAGE_SIZE", 100),
		},
		Activity: ActivityConfig{
			Async:        getBoolEnv("ACTIVITY_ASYNC", true),
			BufferSize:   getIntEnv("ACTIVITY_BUFFER_SIZE", 1024),
			Workers:      getIntEnv("ACTIVITY_WORKERS", 2),
			WriteTimeout: getDurationEnv("ACTIVITY_WRITE_TIMEOUT", 5*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Moderation.ReviewThreshold < 1 {
		return fmt.Errorf("MODERATION_REVIEW_THRESHOLD must be at least 1")
	}
	if c.Moderation.MaxWords < 1 {
		return fmt.Errorf("COMMENT_MAX_WORDS must be at least 1")
	}
	if c.Pagination.DefaultPageSize < 1 || c.Pagination.MaxPageSize < c.Pagination.DefaultPageSize {
		return fmt.Errorf("page sizes must satisfy 1 <= DEFAULT_PAGE_SIZE <= MAX_PAGE_SIZE")
	}
	if c.Activity.Workers < 1 {
		return fmt.Errorf("ACTIVITY_WORKERS must be at least 1")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Enabled reports whether activity publishing to Redis is configured
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
