package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
environment: production
server:
  port: 9090
  request_timeout: 5s
database:
  host: db.internal
  name: clinic
jwt:
  secret: file-secret
outbox:
  batch_size: 10
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 10, cfg.Outbox.BatchSize)
	// defaults fill what the file leaves out
	assert.Equal(t, 168, cfg.JWT.ExpiryHours)
	assert.Equal(t, "clinic.events", cfg.Outbox.Channel)
	assert.Equal(t, 40, cfg.RateLimit.Burst)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: file-secret
database:
  host: db.internal
`)
	t.Setenv("CLINIC_DB_HOST", "10.0.0.5")
	t.Setenv("CLINIC_DB_PORT", "6543")
	t.Setenv("CLINIC_JWT_SECRET", "env-secret")
	t.Setenv("CLINIC_REDIS_URL", "redis://cache:6379/0")
	t.Setenv("CLINIC_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.5", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8080\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret is required")
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Environment: "staging",
		Server:      ServerConfig{Port: 0},
		JWT:         JWTConfig{Secret: "s", ExpiryHours: 1},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.name is required")
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), `unknown environment "staging"`)
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=n sslmode=disable", db.DSN())
}
