package config

import (
	"codeberg.org/miketth/hyprcycle/pkg/hyprcycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type mapSource map[string]string

func (m mapSource) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load("", mapSource{})
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.LockTimeout)
	assert.Equal(t, BackendSocket, cfg.Backend)
	assert.Equal(t, "hyprctl", cfg.HyprctlPath)
	assert.Zero(t, cfg.BurstWindow)
	assert.False(t, cfg.History)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "hyprcycle", filepath.Base(cfg.DataDir))
	assert.Equal(t, filepath.Join(cfg.DataDir, "state.json"), cfg.StatePath())
	assert.Equal(t, filepath.Join(cfg.DataDir, "history.db"), cfg.HistoryPath())
}

func TestLoadFromEnvironment(t *testing.T) {
	cfg, err := load("", mapSource{
		"HYPRCYCLE_DATA_DIR":     "/srv/hyprcycle",
		"HYPRCYCLE_BURST_WINDOW": "450ms",
		"HYPRCYCLE_LOCK_TIMEOUT": "250ms",
		"HYPRCYCLE_BACKEND":      "exec",
		"HYPRCYCLE_HYPRCTL":      "/usr/local/bin/hyprctl",
		"HYPRCYCLE_HISTORY":      "true",
		"HYPRCYCLE_DEBUG":        "true",
	})
	require.NoError(t, err)

	assert.Equal(t, "/srv/hyprcycle/state.json", cfg.StatePath())
	assert.Equal(t, 450*time.Millisecond, cfg.BurstWindow)
	assert.Equal(t, 250*time.Millisecond, cfg.LockTimeout)
	assert.Equal(t, BackendExec, cfg.Backend)
	assert.Equal(t, "/usr/local/bin/hyprctl", cfg.HyprctlPath)
	assert.True(t, cfg.History)
	assert.True(t, cfg.Debug)
}

func TestLoadEnvFile(t *testing.T) {
	envFile := writeEnvFile(t, `
# set by the user once
HYPRCYCLE_BURST_WINDOW=500ms
HYPRCYCLE_HISTORY=true
HYPRCYCLE_BACKEND=exec
`)

	cfg, err := load(envFile, mapSource{"HYPRCYCLE_BACKEND": "socket"})
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, cfg.BurstWindow)
	assert.True(t, cfg.History)
	assert.Equal(t, BackendSocket, cfg.Backend, "process environment wins over the env file")
}

func TestLoadMissingEnvFile(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "nope"), mapSource{})
	require.NoError(t, err)
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]mapSource{
		"unknown backend":    {"HYPRCYCLE_BACKEND": "dbus"},
		"window too short":   {"HYPRCYCLE_BURST_WINDOW": "10ms"},
		"window not a time":  {"HYPRCYCLE_BURST_WINDOW": "soon"},
		"zero lock timeout":  {"HYPRCYCLE_LOCK_TIMEOUT": "0s"},
		"history not a bool": {"HYPRCYCLE_HISTORY": "maybe"},
	}

	for name, environ := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := load("", environ)
			assert.Error(t, err)
		})
	}

	_, err := load("", mapSource{"HYPRCYCLE_BURST_WINDOW": "5s"})
	assert.ErrorIs(t, err, hyprcycle.ErrInvalidBurstWindow)
}
