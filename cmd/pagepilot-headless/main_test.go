package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FromFlags(t *testing.T) {
	cfg, err := loadConfig(&CLIConfig{
		Task:        "Summarize this page",
		StartURL:    "https://example.com",
		AllowedURLs: stringList{"https://example.com/**"},
		Timeout:     time.Minute,
		Verbosity:   "quiet",
	})
	require.NoError(t, err)

	assert.Equal(t, "Summarize this page", cfg.Task)
	assert.Equal(t, "https://example.com", cfg.StartURL)
	assert.Equal(t, []string{"https://example.com/**"}, cfg.Constraints.AllowedURLs)
	assert.Equal(t, time.Minute, cfg.Constraints.Timeout)
	assert.Equal(t, "quiet", cfg.Logging.Verbosity)
	assert.True(t, cfg.Artifacts.Enabled)
}

func TestLoadConfig_TaskRequired(t *testing.T) {
	_, err := loadConfig(&CLIConfig{})
	assert.EqualError(t, err, "task is required when not using a task file")
}

func TestLoadConfig_FileWithOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "task.yaml")
	content := `
task: Sign up as Ada Lovelace
start_url: http://localhost:8080/signup
constraints:
  allowed_urls:
    - "http://localhost:8080/**"
  timeout: 90s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := loadConfig(&CLIConfig{
		ConfigFile:  path,
		AllowedURLs: stringList{"http://127.0.0.1:8080/**"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Sign up as Ada Lovelace", cfg.Task)
	assert.Equal(t, "http://localhost:8080/signup", cfg.StartURL)
	assert.Equal(t, []string{"http://localhost:8080/**", "http://127.0.0.1:8080/**"}, cfg.Constraints.AllowedURLs)
	assert.Equal(t, 90*time.Second, cfg.Constraints.Timeout)
}

func TestStringList(t *testing.T) {
	var list stringList
	require.NoError(t, list.Set("a"))
	require.NoError(t, list.Set("b"))
	assert.Equal(t, stringList{"a", "b"}, list)
	assert.Equal(t, "[a b]", list.String())
}
