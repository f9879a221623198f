package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.False(t, cfg.ExportPrivate)
}

func TestLoadConfigParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: /var/lib/prefctl
private_prefix: "_pref_"
app_state_prefix: "app_state_"
export_private: true
export_app_state: false
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/prefctl", cfg.DataDir)
	assert.Equal(t, "_pref_", cfg.PrivatePrefix)
	assert.Equal(t, "app_state_", cfg.AppStatePrefix)
	assert.True(t, cfg.ExportPrivate)
	assert.False(t, cfg.ExportAppState)
}

func TestLoadConfigEmptyDataDirFallsBackToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("export_private: true\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "./data", cfg.DataDir)
}
