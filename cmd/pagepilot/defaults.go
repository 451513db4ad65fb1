package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileDefaults is the YAML shape accepted by -defaults.
type fileDefaults struct {
	Config   string `yaml:"config"`
	Model    string `yaml:"model"`
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	Dialect  string `yaml:"dialect"`
	Backend  string `yaml:"backend"`
	URL      string `yaml:"url"`
	MaxSteps int    `yaml:"max_steps"`
	Headless bool   `yaml:"headless"`
	NoColor  bool   `yaml:"no_color"`
}

// applyDefaults fills flags that were not given on the command line from the
// YAML file at path.
func applyDefaults(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read defaults file: %w", err)
	}

	var defaults fileDefaults
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return fmt.Errorf("failed to parse defaults file: %w", err)
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	mergeDefaults(config, defaults, set)
	return nil
}

func mergeDefaults(config *Config, defaults fileDefaults, set map[string]bool) {
	pick := func(name string, dst *string, value string) {
		if !set[name] && value != "" {
			*dst = value
		}
	}
	pick("config", &config.ConfigPath, defaults.Config)
	pick("model", &config.Model, defaults.Model)
	pick("endpoint", &config.Endpoint, defaults.Endpoint)
	pick("api-key", &config.APIKey, defaults.APIKey)
	pick("dialect", &config.Dialect, defaults.Dialect)
	pick("backend", &config.Backend, defaults.Backend)
	pick("url", &config.StartURL, defaults.URL)

	if !set["max-steps"] && defaults.MaxSteps > 0 {
		config.MaxSteps = defaults.MaxSteps
	}
	if !set["headless"] && defaults.Headless {
		config.Headless = true
	}
	if !set["no-color"] && defaults.NoColor {
		config.NoColor = true
	}
}
