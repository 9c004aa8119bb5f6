package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fakeEnv(vals map[string]string) func(string) string {
	return func(k string) string { return vals[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg := load(fakeEnv(nil))

	assert.Equal(t, "8001", cfg.Port)
	assert.Equal(t, "yt-dlp", cfg.YtdlpPath)
	assert.Equal(t, 30*time.Second, cfg.EnrichTimeout)
	assert.Equal(t, 60*time.Second, cfg.SearchTimeout)
	assert.Equal(t, 6*time.Hour, cfg.MetadataCacheTTL)
	assert.Equal(t, "2.0.0", cfg.AddonVersion)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "*", cfg.CORSAllowedOrigin)
	assert.Equal(t, 5, cfg.DBConnectAttempts)
	assert.Contains(t, cfg.DataDir, ".fafov2")
}

func TestLoad_Overrides(t *testing.T) {
	cfg := load(fakeEnv(map[string]string{
		"PORT":                "9000",
		"ENRICH_TIMEOUT":      "5s",
		"SEARCH_TIMEOUT":      "90",
		"DB_CONNECT_ATTEMPTS": "2",
		"FAFO_DATA_DIR":       "/tmp/fafo",
		"LOG_FILE":            "/var/log/fafo.log",
	}))

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.EnrichTimeout)
	assert.Equal(t, 90*time.Second, cfg.SearchTimeout)
	assert.Equal(t, 2, cfg.DBConnectAttempts)
	assert.Equal(t, "/tmp/fafo", cfg.DataDir)
	assert.Equal(t, "/var/log/fafo.log", cfg.LogFile)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	cfg := load(fakeEnv(map[string]string{
		"ENRICH_TIMEOUT":      "soon",
		"METADATA_CACHE_TTL":  "-1h",
		"DB_CONNECT_ATTEMPTS": "0",
	}))

	assert.Equal(t, 30*time.Second, cfg.EnrichTimeout)
	assert.Equal(t, 6*time.Hour, cfg.MetadataCacheTTL)
	assert.Equal(t, 5, cfg.DBConnectAttempts)
}
