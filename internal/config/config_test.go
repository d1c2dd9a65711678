package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATA_BACKEND", "SQLITE_DB_PATH", "MIRROR_INTERVAL", "SESSION_MAX", "AMQP_URL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "memory", cfg.DataBackend)
	assert.Equal(t, "./data/gagyebu.db", cfg.SQLiteDBPath)
	assert.Equal(t, "snapshot_saved", cfg.AMQPQueue)
	assert.Equal(t, 5*time.Minute, cfg.MirrorInterval)
	assert.Empty(t, cfg.AMQPURL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/gagyebu")
	t.Setenv("POSTGRES_MAX_CONNS", "4")
	t.Setenv("MIRROR_INTERVAL", "90s")
	t.Setenv("SESSION_IDLE_TTL", "2h")
	t.Setenv("SESSION_MAX", "16")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres", cfg.DataBackend)
	assert.Equal(t, 4, cfg.PostgresMaxConns)
	assert.Equal(t, 90*time.Second, cfg.MirrorInterval)
	assert.Equal(t, 2*time.Hour, cfg.SessionIdleTTL)
	assert.Equal(t, 16, cfg.SessionMax)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config { return Default() }

	tests := []struct {
		name        string
		mutate      func(c *Config)
		errorString string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{"non-numeric port", func(c *Config) { c.Port = "abc" }, "invalid port 'abc': must be a number"},
		{"port too low", func(c *Config) { c.Port = "0" }, "invalid port 0: must be between 1 and 65535"},
		{"port too high", func(c *Config) { c.Port = "70000" }, "invalid port 70000"},
		{"unknown backend", func(c *Config) { c.DataBackend = "sheets" }, "invalid data backend 'sheets'"},
		{"postgres without url", func(c *Config) { c.DataBackend = "postgres" }, "DATABASE_URL is required"},
		{"sqlite without path", func(c *Config) { c.DataBackend = "sqlite"; c.SQLiteDBPath = "" }, "SQLite database path cannot be empty"},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://localhost" }, "invalid AMQP URL scheme 'http'"},
		{"amqp without queue", func(c *Config) { c.AMQPURL = "amqp://localhost"; c.AMQPQueue = "" }, "AMQP queue name cannot be empty"},
		{"zero rate limit", func(c *Config) { c.RateLimitPerMinute = 0 }, "invalid rate limit 0"},
		{"short session ttl", func(c *Config) { c.SessionIdleTTL = time.Second }, "invalid session idle TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.errorString == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	c := Default()
	c.Port = "abc"
	c.DataBackend = "nope"
	c.SessionMax = 0

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
	assert.Contains(t, err.Error(), "invalid data backend")
	assert.Contains(t, err.Error(), "invalid session max")
}

func TestValidateCreatesSQLiteDirectory(t *testing.T) {
	c := Default()
	c.DataBackend = "sqlite"
	c.SQLiteDBPath = filepath.Join(t.TempDir(), "nested", "gagyebu.db")
	assert.NoError(t, c.Validate())
	assert.DirExists(t, filepath.Dir(c.SQLiteDBPath))
}

func TestValidateWorker(t *testing.T) {
	c := Default()
	err := c.ValidateWorker()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persistent backend")
	assert.Contains(t, err.Error(), "GOOGLE_SPREADSHEET_ID")

	c.DataBackend = "sqlite"
	c.GoogleSpreadsheetID = "sheet"
	assert.NoError(t, c.ValidateWorker())

	c.GoogleServiceAccountFile = "/nonexistent/sa.json"
	assert.Error(t, c.ValidateWorker())
}
