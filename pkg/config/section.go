package config

// Section is one named group of settings persisted in the config store.
type Section interface {
	// ID returns the key the section is stored under.
	ID() string

	// Title returns a human-readable name for the section.
	Title() string

	// Description explains what the section configures.
	Description() string

	// Data returns the current settings as a plain map.
	Data() map[string]interface{}

	// SetData applies settings loaded from the store.
	SetData(data map[string]interface{}) error

	// Validate checks the current settings before they are saved.
	Validate() error

	// Reset restores defaults.
	Reset()
}
