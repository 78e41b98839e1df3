package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Upload        UploadConfig
	Extraction    ExtractionConfig
	Archive       ArchiveConfig
	Workflow      WorkflowConfig
	Observability ObservabilityConfig
	Log           LogConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	BaseURL            string
	RateLimitPerSecond int
	RateLimitBurst     int
}

type UploadConfig struct {
	// MaxBytes caps statement uploads at the HTTP boundary.
	MaxBytes int64
}

type ExtractionConfig struct {
	// KeepDuplicateRows preserves records the table and text passes both
	// emit for the same page. On by default; turning it off drops exact
	// text-pass repeats of table-pass rows.
	KeepDuplicateRows bool
}

type ArchiveConfig struct {
	Enabled bool
	Dir     string
}

type WorkflowConfig struct {
	SweepEnabled  bool
	SweepSchedule string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
}

type LogConfig struct {
	Level string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 10),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 20),
		},
		Upload: UploadConfig{
			MaxBytes: getEnvAsInt64("UPLOAD_MAX_BYTES", 16*1024*1024),
		},
		Extraction: ExtractionConfig{
			KeepDuplicateRows: getEnvAsBool("EXTRACTION_KEEP_DUPLICATE_ROWS", true),
		},
		Archive: ArchiveConfig{
			Enabled: getEnvAsBool("ARCHIVE_ENABLED", true),
			Dir:     getEnv("ARCHIVE_DIR", "./data/statements"),
		},
		Workflow: WorkflowConfig{
			SweepEnabled:  getEnvAsBool("WORKFLOW_SWEEP_ENABLED", true),
			SweepSchedule: getEnv("WORKFLOW_SWEEP_SCHEDULE", "0 2 * * *"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if cfg.Upload.MaxBytes <= 0 {
		return nil, fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", cfg.Upload.MaxBytes)
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
