package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, 200, cfg.Updater.DelayMS)
	require.Equal(t, 45, cfg.Cache.TTLSeconds)
	require.Equal(t, "SPY", cfg.Overview.IndexSymbol)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"port": "9090", "request_timeout_sec": 5},
		"updater": {"delay_ms": 500}
	}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, 5, cfg.Server.RequestTimeoutSec)
	require.Equal(t, 500, cfg.Updater.DelayMS)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("ALPHAVANTAGE_API_KEY", "secret")
	t.Setenv("CACHE_TTL_SEC", "0")
	t.Setenv("UPDATER_DELAY_MS", "250")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "7070", cfg.Server.Port)
	require.Equal(t, "secret", cfg.AlphaVantage.APIKey)
	require.Equal(t, 0, cfg.Cache.TTLSeconds, "explicit zero disables the cache")
	require.Equal(t, 250, cfg.Updater.DelayMS)
}

func TestLoad_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{nope`), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}


