package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mlehane/scaffolder-mcp/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.Equal(t, "fs", cfg.Store.Backend)
	require.Equal(t, 60*time.Second, cfg.Planner.Timeout)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SCAFFOLDER_SERVER_PORT", "9999")
	t.Setenv("SCAFFOLDER_TRANSPORT_MODE", "http")
	t.Setenv("SCAFFOLDER_STORE_BACKEND", "sqlite")
	t.Setenv("SCAFFOLDER_STORE_DB_PATH", "/tmp/x.db")
	t.Setenv("SCAFFOLDER_PLANNER_TIMEOUT", "90s")
	t.Setenv("SCAFFOLDER_LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 9999, cfg.Server.Port)
	require.Equal(t, "http", cfg.Transport.Mode)
	require.Equal(t, "sqlite", cfg.Store.Backend)
	require.Equal(t, "/tmp/x.db", cfg.Store.DBPath)
	require.Equal(t, 90*time.Second, cfg.Planner.Timeout)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  host: 127.0.0.1
  port: 7070
store:
  backend: sqlite
  db_path: sessions.db
`), 0o644))
	t.Setenv("SCAFFOLDER_CONFIG_PATH", path)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", cfg.Server.Host)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "sqlite", cfg.Store.Backend)
	require.Equal(t, "sessions.db", cfg.Store.DBPath)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("SCAFFOLDER_SERVER_PORT", "not-a-port")
	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_InvalidMode(t *testing.T) {
	t.Setenv("SCAFFOLDER_TRANSPORT_MODE", "carrier-pigeon")
	_, err := config.Load()
	require.Error(t, err)
}
