package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_DefaultsAndYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
jwt:
  secret: "yaml-secret"
logging:
  level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "yaml-secret", cfg.JWT.Secret)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, "1h", cfg.Scouting.CacheTTL)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: "yaml-secret"
`)
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.True(t, cfg.Redis.Enabled)
	assert.InDelta(t, 2.5, cfg.RateLimit.RequestsPerSecond, 0.0001)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadConfig_Validation(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "server:\n  port: \"8080\"\n"))
		assert.Error(t, err)
	})

	t.Run("remote driver needs base url", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "storage:\n  driver: remote\njwt:\n  secret: s\n"))
		assert.ErrorContains(t, err, "remote base URL")
	})

	t.Run("unknown storage driver", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "storage:\n  driver: mongo\njwt:\n  secret: s\n"))
		assert.ErrorContains(t, err, "unknown storage driver")
	})
}

func TestSetFieldFromEnv_InvalidInt(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: s\n")
	t.Setenv("DB_MAX_OPEN_CONNS", "many")

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "DB_MAX_OPEN_CONNS")
}

func TestLoadConfig_PrefixedEnvWins(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: s\n")
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("FOOTLINK_SERVER_PORT", "7001")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "7001", cfg.Server.Port)
}

func TestApplyEnv_ReportsEveryBadValue(t *testing.T) {
	cfg := &Config{}
	env := map[string]string{
		"DB_MAX_OPEN_CONNS": "many",
		"REDIS_ENABLED":     "sometimes",
		"SERVER_PORT":       "8081",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	err := applyEnv(reflect.ValueOf(cfg).Elem(), lookup)
	require.Error(t, err)
	assert.ErrorContains(t, err, "DB_MAX_OPEN_CONNS")
	assert.ErrorContains(t, err, "REDIS_ENABLED")
	assert.Equal(t, "8081", cfg.Server.Port)
}
