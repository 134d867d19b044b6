package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, "tinyllama", cfg.Local.Model)
	assert.Equal(t, 0.6, cfg.Router.MinLocalConfidence)
	assert.Equal(t, 20, cfg.Router.HistoryCap)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9100
database:
  driver: sqlite
  sqlite:
    path: /tmp/cars.db
router:
  min_local_confidence: 0.8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/cars.db", cfg.Database.SQLite.Path)
	assert.Equal(t, 0.8, cfg.Router.MinLocalConfidence)
	// Untouched sections keep their defaults.
	assert.Equal(t, "memory", cfg.Cache.Driver)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9200")
	t.Setenv("DATABASE_URL", "sqlite:/tmp/override.db")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LOCAL_LLM_MODEL", "phi3")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/override.db", cfg.Database.SQLite.Path)
	assert.Equal(t, "sk-test", cfg.Cloud.APIKey)
	assert.Equal(t, "phi3", cfg.Local.Model)
	assert.Equal(t, "warn", cfg.Observability.LogLevel)
}

func TestLoad_PostgresURLOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://app:secret@db:5432/cars")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://app:secret@db:5432/cars", cfg.Database.Postgres.DSN)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "bad database driver",
			mutate:  func(c *Config) { c.Database.Driver = "oracle" },
			wantErr: "invalid database driver",
		},
		{
			name:    "bad cache driver",
			mutate:  func(c *Config) { c.Cache.Driver = "memcached" },
			wantErr: "invalid cache driver",
		},
		{
			name:    "confidence out of range",
			mutate:  func(c *Config) { c.Router.MinLocalConfidence = 1.5 },
			wantErr: "min_local_confidence",
		},
		{
			name:    "history cap too small",
			mutate:  func(c *Config) { c.Router.HistoryCap = 0 },
			wantErr: "history_cap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIsDevelopment(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.IsDevelopment())

	cfg.Cloud.APIKey = "sk-live"
	cfg.Database.Driver = "postgres"
	assert.False(t, cfg.IsDevelopment())
}
