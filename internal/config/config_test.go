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
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "./data/ledger.db", cfg.DB.Path)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.yaml")
	body := []byte(`
server:
  port: 9000
db:
  path: /tmp/ledger-test.db
auth:
  jwt_secret: from-file
  token_ttl: 1h
log:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))
	t.Setenv("LEDGER_AUTH_JWT_SECRET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/tmp/ledger-test.db", cfg.DB.Path)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Server: ServerConfig{Port: 8080},
		DB:     DBConfig{Path: "x.db"},
		Auth:   AuthConfig{JWTSecret: "s", TokenTTL: time.Hour},
	}
	assert.NoError(t, valid.Validate())

	noSecret := valid
	noSecret.Auth.JWTSecret = ""
	assert.Error(t, noSecret.Validate())

	badPort := valid
	badPort.Server.Port = 0
	assert.Error(t, badPort.Validate())

	noTTL := valid
	noTTL.Auth.TokenTTL = 0
	assert.Error(t, noTTL.Validate())
}

func TestDBConfig_DSN(t *testing.T) {
	dsn := DBConfig{Path: "ledger.db"}.DSN()
	assert.Contains(t, dsn, "file:ledger.db?")
	assert.Contains(t, dsn, "foreign_keys(1)")
	assert.Contains(t, dsn, "busy_timeout(5000)")
	assert.Contains(t, dsn, "_txlock=immediate")
}
