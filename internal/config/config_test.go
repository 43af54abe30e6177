package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "localhost", cfg.Server.Host)
	require.Equal(t, 8090, cfg.Server.Port)
	require.True(t, cfg.Server.EnableCORS)
	require.Equal(t, "assets/data", cfg.Content.Dir)
	require.Equal(t, "static", cfg.Content.Source)
	require.Equal(t, "/agentic-docs-poc/", cfg.Content.DocsURL)
	require.Equal(t, 5*time.Minute, cfg.Content.CacheTTL)
	require.Equal(t, 50, cfg.Content.CacheSize)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "visionhelp.yaml")
	body := `
server:
  port: 9999
  enable_cors: false
content:
  base_url: https://docs.example.com/content/
  cache_ttl: 90s
  preload_keys:
    - admin:workbench
    - admin:attack-surface
state:
  dir: /tmp/visionhelp-state
location: /dashboard/attack-surface.html
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 9999, cfg.Server.Port)
	require.False(t, cfg.Server.EnableCORS)
	require.Equal(t, "https://docs.example.com/content/", cfg.Content.BaseURL)
	require.Equal(t, 90*time.Second, cfg.Content.CacheTTL)
	require.Equal(t, []string{"admin:workbench", "admin:attack-surface"}, cfg.Content.PreloadKeys)
	require.Equal(t, "/tmp/visionhelp-state", cfg.State.Dir)
	require.Equal(t, "/dashboard/attack-surface.html", cfg.Location)
	require.Equal(t, "debug", cfg.LogLevel)
	// Untouched values keep their defaults.
	require.Equal(t, "localhost", cfg.Server.Host)
	require.Equal(t, 50, cfg.Content.CacheSize)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
