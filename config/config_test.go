package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestSaveThenLoad(t *testing.T) {
	dir := t.TempDir()

	cfg := Default()
	cfg.DataDir = dir
	cfg.ListenAddr = "127.0.0.1:9090"
	cfg.SiteTitle = "Agents"
	require.NoError(t, Save(cfg))

	_, err := os.Stat(filepath.Join(dir, FileName+".tmp"))
	require.True(t, os.IsNotExist(err))

	got, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, cfg, got)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{"listen_addr": ":7000"}`), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, ":7000", cfg.ListenAddr)
	require.Equal(t, Default().ContentSecurityPolicy, cfg.ContentSecurityPolicy)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{"listen_addr": ":7000"}`), 0o644))
	t.Setenv("COLORPLANE_LISTEN_ADDR", ":7100")
	t.Setenv("COLORPLANE_LOG_FORMAT", "json")

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, ":7100", cfg.ListenAddr)
	require.Equal(t, "json", cfg.LogFormat)
}

func TestLoadInvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{not json`), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
}
