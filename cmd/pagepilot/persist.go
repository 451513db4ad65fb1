package main

import (
	"fmt"

	appconfig "github.com/entrhq/pagepilot/pkg/config"
)

// writeConfig folds the flag values into the loaded sections and saves
// them, so later runs start from the same settings.
func writeConfig(config *Config) error {
	manager := appconfig.Global()

	updates := map[string]map[string]any{
		appconfig.SectionIDLLM: {
			"model":    config.Model,
			"endpoint": config.Endpoint,
			"dialect":  config.Dialect,
		},
		appconfig.SectionIDBrowser: {
			"backend": config.Backend,
		},
		appconfig.SectionIDAgent: {},
	}
	if config.APIKey != "" {
		updates[appconfig.SectionIDLLM]["api_key"] = config.APIKey
	}
	if config.StartURL != "" {
		updates[appconfig.SectionIDBrowser]["start_url"] = config.StartURL
	}
	if config.Headless {
		updates[appconfig.SectionIDBrowser]["headless"] = true
	}
	if config.MaxSteps > 0 {
		updates[appconfig.SectionIDAgent]["max_steps"] = config.MaxSteps
	}

	for id, data := range updates {
		section, ok := manager.GetSection(id)
		if !ok {
			return fmt.Errorf("section %s not registered", id)
		}
		if err := section.SetData(data); err != nil {
			return err
		}
	}

	if err := manager.SaveAll(); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	return nil
}
