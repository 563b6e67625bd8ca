package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
app:
  name: test-app
  environment: test
database:
  path: /tmp/test.db
api:
  http:
    port: 9000
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test-app", cfg.App.Name)
	assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
	assert.Equal(t, 9000, cfg.API.HTTP.Port)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/test.db
monitoring:
  prometheus_enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sharovik", cfg.App.Name)
	assert.Equal(t, 8080, cfg.API.HTTP.Port)
	assert.Equal(t, "x-api-key", cfg.API.Auth.HeaderAPIKey)
	assert.Equal(t, float64(50), cfg.API.RateLimit.RPS)
	assert.Equal(t, 100, cfg.API.RateLimit.Burst)
	assert.Equal(t, 9090, cfg.Monitoring.PrometheusPort)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.NotZero(t, cfg.Cache.ItemTTLSeconds)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_DB_PATH", "/var/data/app.db")
	path := writeConfig(t, `
database:
  path: ${TEST_DB_PATH}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/data/app.db", cfg.Database.Path)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "database: [broken")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("MissingDatabasePath", func(t *testing.T) {
		cfg := &Config{}
		assert.Error(t, cfg.Validate())
	})

	t.Run("TelegramWithoutToken", func(t *testing.T) {
		cfg := &Config{
			Database: DatabaseConfig{Path: "/tmp/test.db"},
			Telegram: TelegramConfig{Enabled: true},
		}
		assert.Error(t, cfg.Validate())
	})

	t.Run("GoogleWithoutCredentials", func(t *testing.T) {
		cfg := &Config{
			Database: DatabaseConfig{Path: "/tmp/test.db"},
			Google:   GoogleConfig{Enabled: true},
		}
		assert.Error(t, cfg.Validate())
	})

	t.Run("Valid", func(t *testing.T) {
		cfg := &Config{Database: DatabaseConfig{Path: "/tmp/test.db"}}
		assert.NoError(t, cfg.Validate())
	})
}
