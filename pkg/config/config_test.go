package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 70.0, cfg.Matching.Threshold)
	assert.Equal(t, 3, cfg.Matching.SuggestionLimit)
	assert.Equal(t, 10_000_000.0, cfg.Extraction.MaxPrice)
	assert.Equal(t, 10, cfg.Extraction.MinLineLength)
	assert.Equal(t, "INR", cfg.Extraction.Currency)
	assert.False(t, cfg.Observability.MetricsEnabled)
	assert.Equal(t, "*/5 * * * *", cfg.Inbox.Schedule)
	assert.Equal(t, slog.LevelInfo, cfg.Log.SlogLevel())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("MATCH_THRESHOLD", "82.5")
	t.Setenv("EXTRACT_MAX_PRICE", "500000")
	t.Setenv("EXTRACT_CURRENCY", "usd")
	t.Setenv("METRICS_ENABLED", "true")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("POSTGRES_DB", "catalog")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 82.5, cfg.Matching.Threshold)
	assert.Equal(t, 500000.0, cfg.Extraction.MaxPrice)
	assert.Equal(t, "USD", cfg.Extraction.Currency)
	assert.True(t, cfg.Observability.MetricsEnabled)
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Contains(t, cfg.Database.DSN(), "dbname=catalog")
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("MATCH_THRESHOLD", "seventy")
	t.Setenv("METRICS_PORT", "x")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 70.0, cfg.Matching.Threshold)
	assert.Equal(t, 9090, cfg.Observability.MetricsPort)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want error
	}{
		{"threshold above range", "MATCH_THRESHOLD", "101", ErrInvalidThreshold},
		{"negative threshold", "MATCH_THRESHOLD", "-1", ErrInvalidThreshold},
		{"zero max price", "EXTRACT_MAX_PRICE", "0", ErrInvalidMaxPrice},
		{"unknown log format", "LOG_FORMAT", "xml", ErrInvalidLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
