package config

import (
	"fmt"
	"sync"
	"time"
)

const (
	// SectionIDBrowser is the identifier for the browser section
	SectionIDBrowser = "browser"

	BackendPlaywright = "playwright"
	BackendChrome     = "chrome"
	BackendStatic     = "static"

	DefaultLoadTimeout = 10 * time.Second
	DefaultTabTimeout  = 15 * time.Second
)

// BrowserSection selects and tunes the tab backend.
type BrowserSection struct {
	Backend     string
	Headless    bool
	LoadTimeout time.Duration
	TabTimeout  time.Duration
	StartURL    string
	mu          sync.RWMutex
}

// NewBrowserSection creates a browser section with default settings.
func NewBrowserSection() *BrowserSection {
	s := &BrowserSection{}
	s.Reset()
	return s
}

func (s *BrowserSection) ID() string    { return SectionIDBrowser }
func (s *BrowserSection) Title() string { return "Browser Settings" }

func (s *BrowserSection) Description() string {
	return "Tab backend (playwright, chrome or static), headless mode, load and request timeouts."
}

// Data returns the current configuration data.
func (s *BrowserSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"backend":      s.Backend,
		"headless":     s.Headless,
		"load_timeout": s.LoadTimeout.String(),
		"tab_timeout":  s.TabTimeout.String(),
		"start_url":    s.StartURL,
	}
}

// SetData updates the configuration from the provided data.
func (s *BrowserSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if backend, ok := data["backend"].(string); ok && backend != "" {
		s.Backend = backend
	}
	if headless, ok := data["headless"].(bool); ok {
		s.Headless = headless
	}
	if startURL, ok := data["start_url"].(string); ok {
		s.StartURL = startURL
	}
	if raw, present := data["load_timeout"]; present {
		d, err := durationValue(raw)
		if err != nil {
			return fmt.Errorf("browser.load_timeout: %w", err)
		}
		s.LoadTimeout = d
	}
	if raw, present := data["tab_timeout"]; present {
		d, err := durationValue(raw)
		if err != nil {
			return fmt.Errorf("browser.tab_timeout: %w", err)
		}
		s.TabTimeout = d
	}
	return nil
}

// Validate validates the current configuration.
func (s *BrowserSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch s.Backend {
	case BackendPlaywright, BackendChrome, BackendStatic:
	default:
		return fmt.Errorf("unknown browser backend %q", s.Backend)
	}
	if s.LoadTimeout <= 0 || s.TabTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *BrowserSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Backend = BackendPlaywright
	s.Headless = false
	s.LoadTimeout = DefaultLoadTimeout
	s.TabTimeout = DefaultTabTimeout
	s.StartURL = ""
}

// Snapshot returns a copy of the settings without the lock.
func (s *BrowserSection) Snapshot() BrowserSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return BrowserSettings{
		Backend:     s.Backend,
		Headless:    s.Headless,
		LoadTimeout: s.LoadTimeout,
		TabTimeout:  s.TabTimeout,
		StartURL:    s.StartURL,
	}
}

// BrowserSettings is a lock-free copy of BrowserSection.
type BrowserSettings struct {
	Backend     string
	Headless    bool
	LoadTimeout time.Duration
	TabTimeout  time.Duration
	StartURL    string
}
