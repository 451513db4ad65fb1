package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, path string, sections map[string]map[string]interface{}) {
	t.Helper()
	data, err := json.MarshalIndent(map[string]interface{}{"version": "1.0", "sections": sections}, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func TestNewFileStore(t *testing.T) {
	t.Run("custom path", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")

		store, err := NewFileStore(configPath)
		require.NoError(t, err)
		assert.Equal(t, configPath, store.Path())
		assert.False(t, store.IsModified())
	})

	t.Run("default path", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		t.Setenv(ConfigPathEnv, "")

		store, err := NewFileStore("")
		require.NoError(t, err)

		expected, err := DefaultConfigPath()
		require.NoError(t, err)
		assert.Equal(t, expected, store.Path())
		assert.Equal(t, ".pagepilot", filepath.Base(filepath.Dir(store.Path())))
	})

	t.Run("loads existing file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		writeConfigFile(t, configPath, map[string]map[string]interface{}{
			"llm": {"model": "llama3"},
		})

		store, err := NewFileStore(configPath)
		require.NoError(t, err)

		section, err := store.GetSection("llm")
		require.NoError(t, err)
		assert.Equal(t, "llama3", section["model"])
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(configPath, []byte("{not json"), 0644))

		_, err := NewFileStore(configPath)
		assert.Error(t, err)
	})
}

func TestFileStore_SaveRoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "dir", "config.json")

	store, err := NewFileStore(configPath)
	require.NoError(t, err)

	require.NoError(t, store.SetSection("browser", map[string]interface{}{"backend": "static"}))
	assert.True(t, store.IsModified())

	require.NoError(t, store.Save())
	assert.False(t, store.IsModified())

	entries, err := os.ReadDir(filepath.Dir(configPath))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file should be renamed away")
	assert.Equal(t, "config.json", entries[0].Name())

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	raw, err := os.ReadFile(configPath)
	require.NoError(t, err)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	assert.Equal(t, "1.0", envelope["version"])

	reloaded, err := NewFileStore(configPath)
	require.NoError(t, err)
	section, err := reloaded.GetSection("browser")
	require.NoError(t, err)
	assert.Equal(t, "static", section["backend"])
}

func TestFileStore_Copies(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	input := map[string]interface{}{"key": "value"}
	require.NoError(t, store.SetSection("s", input))
	input["key"] = "mutated"

	section, err := store.GetSection("s")
	require.NoError(t, err)
	assert.Equal(t, "value", section["key"])

	section["key"] = "mutated"
	again, _ := store.GetSection("s")
	assert.Equal(t, "value", again["key"])

	missing, err := store.GetSection("missing")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestDefaultConfigPath_EnvOverride(t *testing.T) {
	want := filepath.Join(t.TempDir(), "shared.json")
	t.Setenv(ConfigPathEnv, want)

	got, err := DefaultConfigPath()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileStore_LoadDropsUnsavedChanges(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	writeConfigFile(t, configPath, map[string]map[string]interface{}{
		"agent": {"max_steps": float64(6)},
	})

	store, err := NewFileStore(configPath)
	require.NoError(t, err)
	require.NoError(t, store.SetSection("agent", map[string]interface{}{"max_steps": float64(20)}))
	require.NoError(t, store.Load())

	assert.False(t, store.IsModified())
	section, err := store.GetSection("agent")
	require.NoError(t, err)
	assert.Equal(t, float64(6), section["max_steps"])
}
