package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// AppConfig holds all application configuration
type AppConfig struct {
	// Database Configuration
	Database DatabaseConfig

	// Pipeline Configuration
	Pipeline PipelineConfig

	// HTTP API Configuration
	HTTPPort int

	// WebSocket feed port (0 disables the feed)
	WebSocketPort int

	// NATS Configuration (empty URL disables the event bus)
	NATSURL string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver   string // "postgres" or "sqlite"
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
	// SQLitePath is used when Driver is "sqlite"
	SQLitePath string
}

// PipelineConfig holds forecasting pipeline settings
type PipelineConfig struct {
	// DailyRunTime is the local time ("15:04") of the nightly batch run
	DailyRunTime string
	// Workers bounds how many restaurants are processed concurrently
	Workers int
	// TenantTimeout bounds one restaurant's analysis+reorder cycle so a
	// pathological dataset cannot starve the rest of the batch
	TenantTimeout time.Duration
	// SchedulerEnabled turns the nightly run on/off
	SchedulerEnabled bool
}

// Load reads configuration from environment variables with sane defaults
func Load() *AppConfig {
	cfg := &AppConfig{
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvInt("DB_PORT", 5432),
			Database:   getEnv("DB_NAME", "procureapp"),
			Username:   getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "./data/procureapp.db"),
		},
		Pipeline: PipelineConfig{
			DailyRunTime:     getEnv("PIPELINE_RUN_TIME", "02:00"),
			Workers:          getEnvInt("PIPELINE_WORKERS", 4),
			TenantTimeout:    getEnvDuration("PIPELINE_TENANT_TIMEOUT", 2*time.Minute),
			SchedulerEnabled: getEnvBool("PIPELINE_SCHEDULER_ENABLED", true),
		},
		HTTPPort:      getEnvInt("HTTP_PORT", 8090),
		WebSocketPort: getEnvInt("WS_PORT", 8091),
		NATSURL:       getEnv("NATS_URL", ""),
	}

	return cfg
}

// DSN builds the PostgreSQL connection string.
// A complete DATABASE_URL takes priority over individual variables.
func (c DatabaseConfig) DSN() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
