package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, "5432", cfg.DB.Port)
	assert.Equal(t, 5, cfg.DB.AcquireTimeout)
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Equal(t, "8080", cfg.App.HTTPPort)
	assert.Equal(t, "50051", cfg.App.GRPCPort)
	assert.Equal(t, "users-api", cfg.Logger.ServiceName)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := "DB_HOST=db.internal\nDB_NAME=people\nHTTP_PORT=9090\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	// Environment wins over the file
	t.Setenv("HTTP_PORT", "9191")
	t.Setenv("DB_DRIVER", "SQLITE")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, "people", cfg.DB.Name)
	assert.Equal(t, "9191", cfg.App.HTTPPort)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name     string
		mutate   func(c *Config)
		errorMsg string
	}{
		{
			name:     "unknown driver",
			mutate:   func(c *Config) { c.DB.Driver = "mysql" },
			errorMsg: "DB_DRIVER must be postgres or sqlite",
		},
		{
			name:     "missing host",
			mutate:   func(c *Config) { c.DB.Host = "" },
			errorMsg: "DB_HOST is required",
		},
		{
			name:     "zero acquire timeout",
			mutate:   func(c *Config) { c.DB.AcquireTimeout = 0 },
			errorMsg: "DB_ACQUIRE_TIMEOUT_SECONDS must be positive",
		},
		{
			name:     "rate limit without redis",
			mutate:   func(c *Config) { c.RateLimit.Enabled = true },
			errorMsg: "RATE_LIMIT_ENABLED requires REDIS_ENABLED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{
		Host:           "localhost",
		Port:           "5432",
		User:           "postgres",
		Password:       "secret",
		Name:           "users",
		SSLMode:        "disable",
		AcquireTimeout: 5,
	}

	assert.Equal(t, "host=localhost user=postgres password=secret dbname=users port=5432 sslmode=disable connect_timeout=5", c.DSN())
}

func TestLoadConfig_ProductionDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.True(t, cfg.Logger.EnableSampling)
}
