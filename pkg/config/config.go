package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database      DatabaseConfig
	Extraction    ExtractionConfig
	Matching      MatchingConfig
	Observability ObservabilityConfig
	Inbox         InboxConfig
	Log           LogConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type ExtractionConfig struct {
	MaxPrice      float64
	MinLineLength int
	Currency      string
}

type MatchingConfig struct {
	Threshold          float64
	SuggestionLimit    int
	ApplyMinConfidence float64
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

// InboxConfig drives the scheduled processing of dropped price lists
type InboxConfig struct {
	Dir        string
	ArchiveDir string
	ReportDir  string
	Schedule   string
}

type LogConfig struct {
	Level  string
	Format string
}

// Validation errors
var (
	ErrInvalidThreshold = errors.New("MATCH_THRESHOLD must be between 0 and 100")
	ErrInvalidMaxPrice  = errors.New("EXTRACT_MAX_PRICE must be positive")
	ErrInvalidLogFormat = errors.New("LOG_FORMAT must be text or json")
)

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present; real environment variables
// take precedence over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "pricesync"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Extraction: ExtractionConfig{
			MaxPrice:      getEnvAsFloat("EXTRACT_MAX_PRICE", 10_000_000),
			MinLineLength: getEnvAsInt("EXTRACT_MIN_LINE_LENGTH", 10),
			Currency:      strings.ToUpper(getEnv("EXTRACT_CURRENCY", "INR")),
		},
		Matching: MatchingConfig{
			Threshold:          getEnvAsFloat("MATCH_THRESHOLD", 70),
			SuggestionLimit:    getEnvAsInt("MATCH_SUGGESTIONS", 3),
			ApplyMinConfidence: getEnvAsFloat("APPLY_MIN_CONFIDENCE", 90),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", false),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
		Inbox: InboxConfig{
			Dir:        getEnv("INBOX_DIR", "inbox"),
			ArchiveDir: getEnv("INBOX_ARCHIVE_DIR", "inbox/archive"),
			ReportDir:  getEnv("INBOX_REPORT_DIR", "reports"),
			Schedule:   getEnv("INBOX_SCHEDULE", "*/5 * * * *"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	var errs []error
	if c.Matching.Threshold < 0 || c.Matching.Threshold > 100 {
		errs = append(errs, ErrInvalidThreshold)
	}
	if c.Matching.ApplyMinConfidence < 0 || c.Matching.ApplyMinConfidence > 100 {
		errs = append(errs, fmt.Errorf("APPLY_MIN_CONFIDENCE must be between 0 and 100, got %v", c.Matching.ApplyMinConfidence))
	}
	if c.Extraction.MaxPrice <= 0 {
		errs = append(errs, ErrInvalidMaxPrice)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, ErrInvalidLogFormat)
	}
	return errors.Join(errs...)
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// SlogLevel maps Level to a slog level, defaulting to info.
func (c *LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
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
