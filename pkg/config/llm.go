package config

import (
	"fmt"
	"sync"
	"time"
)

const (
	// SectionIDLLM is the identifier for the LLM settings section
	SectionIDLLM = "llm"

	DefaultModel    = "gpt-oss:20b"
	DefaultEndpoint = "http://localhost:3000/api/chat"

	DialectOllama = "ollama"
	DialectOpenAI = "openai"
)

// DefaultLLMTimeout bounds one chat request.
const DefaultLLMTimeout = 2 * time.Minute

// LLMSection configures the chat endpoint the agent talks to.
type LLMSection struct {
	Model    string
	Endpoint string
	Dialect  string
	APIKey   string
	Timeout  time.Duration
	mu       sync.RWMutex
}

// NewLLMSection creates a new LLM section with default settings.
func NewLLMSection() *LLMSection {
	s := &LLMSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *LLMSection) ID() string {
	return SectionIDLLM
}

// Title returns the section title.
func (s *LLMSection) Title() string {
	return "LLM Settings"
}

// Description returns the section description.
func (s *LLMSection) Description() string {
	return "Chat endpoint, model and message dialect used by the agent and the page summarizer."
}

// Data returns the current configuration data.
func (s *LLMSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"model":    s.Model,
		"endpoint": s.Endpoint,
		"dialect":  s.Dialect,
		"api_key":  s.APIKey,
		"timeout":  s.Timeout.String(),
	}
}

// SetData updates the configuration from the provided data.
func (s *LLMSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if model, ok := data["model"].(string); ok && model != "" {
		s.Model = model
	}
	if endpoint, ok := data["endpoint"].(string); ok && endpoint != "" {
		s.Endpoint = endpoint
	}
	if dialect, ok := data["dialect"].(string); ok && dialect != "" {
		s.Dialect = dialect
	}
	if apiKey, ok := data["api_key"].(string); ok {
		s.APIKey = apiKey
	}
	if raw, present := data["timeout"]; present {
		timeout, err := durationValue(raw)
		if err != nil {
			return fmt.Errorf("llm.timeout: %w", err)
		}
		s.Timeout = timeout
	}

	return nil
}

// Validate validates the current configuration.
func (s *LLMSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.Dialect != DialectOllama && s.Dialect != DialectOpenAI {
		return fmt.Errorf("unknown dialect %q (want %s or %s)", s.Dialect, DialectOllama, DialectOpenAI)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *LLMSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Model = DefaultModel
	s.Endpoint = DefaultEndpoint
	s.Dialect = DialectOllama
	s.APIKey = ""
	s.Timeout = DefaultLLMTimeout
}

// GetModel returns the configured model name.
func (s *LLMSection) GetModel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Model
}

// SetModel sets the model name.
func (s *LLMSection) SetModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Model = model
}

// GetEndpoint returns the chat endpoint URL.
func (s *LLMSection) GetEndpoint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Endpoint
}

// SetEndpoint sets the chat endpoint URL.
func (s *LLMSection) SetEndpoint(endpoint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Endpoint = endpoint
}

// GetDialect returns the message dialect.
func (s *LLMSection) GetDialect() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Dialect
}

// GetAPIKey returns the configured API key.
func (s *LLMSection) GetAPIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.APIKey
}

// SetAPIKey sets the API key.
func (s *LLMSection) SetAPIKey(apiKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.APIKey = apiKey
}

// GetTimeout returns the per-request timeout.
func (s *LLMSection) GetTimeout() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Timeout
}

// durationValue accepts Go duration strings ("10s") or a number of seconds.
func durationValue(raw any) (time.Duration, error) {
	switch v := raw.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", v, err)
		}
		return d, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case int:
		return time.Duration(v) * time.Second, nil
	default:
		return 0, fmt.Errorf("invalid duration type %T", raw)
	}
}
