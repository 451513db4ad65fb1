package config

import (
	"fmt"
	"sync"

	"github.com/gobwas/glob"
)

const (
	// SectionIDAutoApproval is the identifier for the auto-approval section
	SectionIDAutoApproval = "auto_approval"
)

// AutoApprovalSection lists page URLs on which form submission is approved
// without asking. Patterns are gobwas globs with '/' as separator, so
// "https://intranet.example.com/**" covers every path on that host.
type AutoApprovalSection struct {
	patterns []string
	compiled []glob.Glob
	mu       sync.RWMutex
}

// NewAutoApprovalSection creates an empty auto-approval section.
func NewAutoApprovalSection() *AutoApprovalSection {
	return &AutoApprovalSection{}
}

// ID returns the section identifier.
func (s *AutoApprovalSection) ID() string {
	return SectionIDAutoApproval
}

// Title returns the section title.
func (s *AutoApprovalSection) Title() string {
	return "Auto-Approval Settings"
}

// Description returns the section description.
func (s *AutoApprovalSection) Description() string {
	return "URL patterns on which fill_form may submit without a confirmation prompt."
}

// Data returns the current configuration data.
func (s *AutoApprovalSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	patterns := make([]any, len(s.patterns))
	for i, p := range s.patterns {
		patterns[i] = p
	}
	return map[string]any{"submit_urls": patterns}
}

// SetData updates the configuration from the provided data.
func (s *AutoApprovalSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	raw, present := data["submit_urls"]
	if !present {
		return nil
	}

	var patterns []string
	switch v := raw.(type) {
	case []string:
		patterns = v
	case []any:
		for _, item := range v {
			p, ok := item.(string)
			if !ok {
				return fmt.Errorf("invalid submit_urls entry: expected string, got %T", item)
			}
			patterns = append(patterns, p)
		}
	default:
		return fmt.Errorf("invalid submit_urls: expected list, got %T", raw)
	}

	return s.SetPatterns(patterns)
}

// SetPatterns replaces the pattern list. Nothing changes if any pattern fails to compile.
func (s *AutoApprovalSection) SetPatterns(patterns []string) error {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return fmt.Errorf("invalid URL pattern '%s': %w", p, err)
		}
		compiled = append(compiled, g)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns = append([]string(nil), patterns...)
	s.compiled = compiled
	return nil
}

// Validate validates the current configuration.
func (s *AutoApprovalSection) Validate() error {
	// patterns are compiled when set
	return nil
}

// Reset removes all patterns.
func (s *AutoApprovalSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns = nil
	s.compiled = nil
}

// Patterns returns a copy of the configured patterns.
func (s *AutoApprovalSection) Patterns() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.patterns...)
}

// IsSubmitAutoApproved reports whether pageURL matches one of the patterns.
func (s *AutoApprovalSection) IsSubmitAutoApproved(pageURL string) bool {
	if pageURL == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.compiled {
		if g.Match(pageURL) {
			return true
		}
	}
	return false
}
