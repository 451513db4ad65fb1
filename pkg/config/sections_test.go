package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLMSection(t *testing.T) {
	s := NewLLMSection()
	assert.Equal(t, SectionIDLLM, s.ID())
	assert.NotEmpty(t, s.Title())
	assert.NotEmpty(t, s.Description())

	assert.Equal(t, DefaultModel, s.GetModel())
	assert.Equal(t, DefaultEndpoint, s.GetEndpoint())
	assert.Equal(t, DialectOllama, s.GetDialect())
	require.NoError(t, s.Validate())

	require.NoError(t, s.SetData(map[string]any{
		"model":    "llama3.1:8b",
		"endpoint": "http://localhost:11434/api/chat",
		"dialect":  "openai",
		"api_key":  "k",
		"timeout":  "30s",
	}))
	assert.Equal(t, "llama3.1:8b", s.GetModel())
	assert.Equal(t, "http://localhost:11434/api/chat", s.GetEndpoint())
	assert.Equal(t, DialectOpenAI, s.GetDialect())
	assert.Equal(t, "k", s.GetAPIKey())
	assert.Equal(t, 30*time.Second, s.GetTimeout())

	data := s.Data()
	assert.Equal(t, "30s", data["timeout"])

	// empty strings keep the current value
	require.NoError(t, s.SetData(map[string]any{"model": ""}))
	assert.Equal(t, "llama3.1:8b", s.GetModel())

	assert.Error(t, s.SetData(map[string]any{"timeout": "soon"}))

	s.Reset()
	assert.Equal(t, DefaultModel, s.GetModel())
	assert.Equal(t, DefaultLLMTimeout, s.GetTimeout())
}

func TestLLMSection_Validate(t *testing.T) {
	s := NewLLMSection()
	s.Dialect = "grpc"
	assert.Error(t, s.Validate())
}

func TestAgentSection(t *testing.T) {
	s := NewAgentSection()
	assert.Equal(t, DefaultMaxSteps, s.GetMaxSteps())
	assert.Equal(t, DefaultApprovalTimeout, s.GetApprovalTimeout())

	// numbers from JSON arrive as float64
	require.NoError(t, s.SetData(map[string]any{"max_steps": float64(10), "approval_timeout": float64(30)}))
	assert.Equal(t, 10, s.GetMaxSteps())
	assert.Equal(t, 30*time.Second, s.GetApprovalTimeout())

	assert.Error(t, s.SetData(map[string]any{"max_steps": "ten"}))

	require.NoError(t, s.SetData(map[string]any{"max_steps": 0}))
	assert.Error(t, s.Validate())
	assert.Equal(t, 1, s.GetMaxSteps(), "step budget never drops below one")
}

func TestBrowserSection(t *testing.T) {
	s := NewBrowserSection()
	settings := s.Snapshot()
	assert.Equal(t, BackendPlaywright, settings.Backend)
	assert.Equal(t, DefaultLoadTimeout, settings.LoadTimeout)
	assert.Equal(t, DefaultTabTimeout, settings.TabTimeout)

	require.NoError(t, s.SetData(map[string]any{
		"backend":      "static",
		"headless":     true,
		"load_timeout": "5s",
		"start_url":    "https://example.com",
	}))
	settings = s.Snapshot()
	assert.Equal(t, BackendStatic, settings.Backend)
	assert.True(t, settings.Headless)
	assert.Equal(t, 5*time.Second, settings.LoadTimeout)
	assert.Equal(t, "https://example.com", settings.StartURL)
	require.NoError(t, s.Validate())

	require.NoError(t, s.SetData(map[string]any{"backend": "netscape"}))
	assert.Error(t, s.Validate())
}
