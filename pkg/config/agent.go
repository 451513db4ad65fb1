package config

import (
	"fmt"
	"sync"
	"time"
)

const (
	// SectionIDAgent is the identifier for the agent loop section
	SectionIDAgent = "agent"

	DefaultMaxSteps        = 6
	DefaultApprovalTimeout = 5 * time.Minute
)

// AgentSection configures the agent loop.
type AgentSection struct {
	MaxSteps        int
	ApprovalTimeout time.Duration
	mu              sync.RWMutex
}

// NewAgentSection creates an agent section with default settings.
func NewAgentSection() *AgentSection {
	s := &AgentSection{}
	s.Reset()
	return s
}

func (s *AgentSection) ID() string          { return SectionIDAgent }
func (s *AgentSection) Title() string       { return "Agent Settings" }
func (s *AgentSection) Description() string { return "Step budget per request and how long to wait for a confirmation." }

// Data returns the current configuration data.
func (s *AgentSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"max_steps":        s.MaxSteps,
		"approval_timeout": s.ApprovalTimeout.String(),
	}
}

// SetData updates the configuration from the provided data.
func (s *AgentSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch v := data["max_steps"].(type) {
	case nil:
	case float64:
		s.MaxSteps = int(v)
	case int:
		s.MaxSteps = v
	default:
		return fmt.Errorf("agent.max_steps: expected number, got %T", v)
	}

	if raw, present := data["approval_timeout"]; present {
		timeout, err := durationValue(raw)
		if err != nil {
			return fmt.Errorf("agent.approval_timeout: %w", err)
		}
		s.ApprovalTimeout = timeout
	}
	return nil
}

// Validate validates the current configuration.
func (s *AgentSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.MaxSteps < 1 {
		return fmt.Errorf("max_steps must be at least 1, got %d", s.MaxSteps)
	}
	if s.ApprovalTimeout <= 0 {
		return fmt.Errorf("approval_timeout must be positive")
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *AgentSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MaxSteps = DefaultMaxSteps
	s.ApprovalTimeout = DefaultApprovalTimeout
}

// GetMaxSteps returns the step budget, never less than 1.
func (s *AgentSection) GetMaxSteps() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.MaxSteps < 1 {
		return 1
	}
	return s.MaxSteps
}

// GetApprovalTimeout returns how long a confirmation may stay pending.
func (s *AgentSection) GetApprovalTimeout() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ApprovalTimeout
}
