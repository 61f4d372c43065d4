package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
supabase:
  url: https://file.supabase.co
  timeout: 10s
logging:
  level: debug
sweep:
  schedule: "@hourly"
  dry_run: true
`), 0o644))

	t.Setenv("SUPABASE_URL", "https://env.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")
	t.Setenv("SUPABASE_SERVICE_KEY", "service-key")

	cfg, err := Load(path)
	require.NoError(t, err)

	// Environment wins over the file.
	assert.Equal(t, "https://env.supabase.co", cfg.Supabase.URL)
	assert.Equal(t, "anon-key", cfg.Supabase.AnonKey)
	assert.Equal(t, "service-key", cfg.Supabase.ServiceKey)
	assert.Equal(t, 10*time.Second, cfg.Supabase.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "@hourly", cfg.Sweep.Schedule)
	assert.True(t, cfg.Sweep.DryRun)
}

func TestLoadRequiresURLAndAnonKey(t *testing.T) {
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supabase url")

	t.Setenv("SUPABASE_URL", "https://proj.supabase.co")
	_, err = Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anon key")
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://proj.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Supabase.Timeout)
	assert.Equal(t, "@daily", cfg.Sweep.Schedule)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("supabase: ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
