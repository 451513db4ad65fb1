package config

import (
	"sync"
)

var (
	// globalManager is the singleton configuration manager instance
	globalManager *Manager
	globalMu      sync.Mutex
)

// Initialize creates the global configuration manager, registers the
// pagepilot sections and loads them from configPath.
// This should be called once at application startup.
func Initialize(configPath string) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	store, err := NewFileStore(configPath)
	if err != nil {
		return err
	}

	manager := NewManager(store)
	for _, section := range []Section{
		NewLLMSection(),
		NewAgentSection(),
		NewBrowserSection(),
		NewAutoApprovalSection(),
	} {
		if err := manager.RegisterSection(section); err != nil {
			return err
		}
	}

	if err := manager.LoadAll(); err != nil {
		return err
	}

	globalManager = manager
	return nil
}

// Global returns the global configuration manager.
// Panics if Initialize has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}

	return globalManager
}

// IsInitialized returns true if the global configuration has been initialized.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalManager != nil
}

func getSection[T Section](id string) T {
	var zero T
	if !IsInitialized() {
		return zero
	}
	section, ok := Global().GetSection(id)
	if !ok {
		return zero
	}
	typed, ok := section.(T)
	if !ok {
		return zero
	}
	return typed
}

// GetLLM returns the LLM section, or nil if config is not initialized.
func GetLLM() *LLMSection {
	return getSection[*LLMSection](SectionIDLLM)
}

// GetAgent returns the agent section, or nil if config is not initialized.
func GetAgent() *AgentSection {
	return getSection[*AgentSection](SectionIDAgent)
}

// GetBrowser returns the browser section, or nil if config is not initialized.
func GetBrowser() *BrowserSection {
	return getSection[*BrowserSection](SectionIDBrowser)
}

// GetAutoApproval returns the auto-approval section, or nil if config is not initialized.
func GetAutoApproval() *AutoApprovalSection {
	return getSection[*AutoApprovalSection](SectionIDAutoApproval)
}

// IsSubmitAutoApproved checks pageURL against the configured auto-approval patterns.
// Returns false if config is not initialized.
func IsSubmitAutoApproved(pageURL string) bool {
	autoApproval := GetAutoApproval()
	if autoApproval == nil {
		return false
	}
	return autoApproval.IsSubmitAutoApproved(pageURL)
}
