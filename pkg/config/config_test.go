package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SERVER_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 50, cfg.Triage.DefaultLimit)
	assert.Equal(t, 200, cfg.Triage.MaxLimit)
	assert.Equal(t, 10*time.Minute, cfg.Redis.ContextTTL)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9090"
database:
  dbname: from_yaml
  max_conns: 4
redis:
  addr: cache:6379
triage:
  default_limit: 20
  max_limit: 100
`), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DB_NAME", "from_env")
	t.Setenv("SERVER_READ_TIMEOUT", "5")
	t.Setenv("JWT_EXPIRATION_HOURS", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "from_env", cfg.Database.DBName)
	assert.Equal(t, int32(4), cfg.Database.MaxConns)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 20, cfg.Triage.DefaultLimit)
	assert.Equal(t, 100, cfg.Triage.MaxLimit)
}

func TestLoad_TriageLimitsStayConsistent(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("TRIAGE_DEFAULT_LIMIT", "0")
	t.Setenv("TRIAGE_MAX_LIMIT", "10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Triage.DefaultLimit)
	assert.Equal(t, 50, cfg.Triage.MaxLimit)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoad_MissingYAML(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.ErrorContains(t, err, "failed to read config file")
}
