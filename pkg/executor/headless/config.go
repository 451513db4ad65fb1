package headless

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the configuration for headless mode execution
type Config struct {
	// Task is the request handed to the agent
	Task string `yaml:"task" json:"task"`

	// StartURL is opened in the tab before the task is sent
	StartURL string `yaml:"start_url" json:"start_url"`

	// Safety constraints
	Constraints ConstraintConfig `yaml:"constraints" json:"constraints"`

	// Artifacts configuration
	Artifacts ArtifactConfig `yaml:"artifacts" json:"artifacts"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ConstraintConfig defines safety constraints for headless execution
type ConstraintConfig struct {
	// Form submission is approved only on pages matching AllowedURLs and
	// none of DeniedURLs. Without AllowedURLs no submission is approved.
	AllowedURLs []string `yaml:"allowed_urls" json:"allowed_urls"`
	DeniedURLs  []string `yaml:"denied_urls" json:"denied_urls"`

	// Resource limits
	MaxTokens int           `yaml:"max_tokens" json:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls logging level: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`
}

// ArtifactConfig defines artifact generation configuration
type ArtifactConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	OutputDir string `yaml:"output_dir" json:"output_dir"`
}

// Validate checks the task file and fills in the default verbosity.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Task) == "" {
		return fmt.Errorf("task description is required")
	}

	if c.StartURL != "" {
		u, err := url.Parse(c.StartURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("start_url must be an absolute http(s) URL: %q", c.StartURL)
		}
	}

	switch {
	case c.Constraints.Timeout < 0:
		return fmt.Errorf("timeout cannot be negative")
	case c.Constraints.MaxTokens < 0:
		return fmt.Errorf("max_tokens cannot be negative")
	}

	if _, err := NewPatternMatcher(c.Constraints.AllowedURLs, c.Constraints.DeniedURLs); err != nil {
		return err
	}

	if c.Artifacts.Enabled && c.Artifacts.OutputDir == "" {
		return fmt.Errorf("artifacts output_dir is required when artifacts are enabled")
	}

	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}
	if _, ok := logLevels[c.Logging.Verbosity]; !ok {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", c.Logging.Verbosity)
	}

	return nil
}

// DefaultConfig returns the values a task file starts from.
func DefaultConfig() *Config {
	return &Config{
		Constraints: ConstraintConfig{
			Timeout:   5 * time.Minute,
			MaxTokens: 50000,
		},
		Artifacts: ArtifactConfig{
			Enabled:   true,
			OutputDir: ".pagepilot/artifacts",
		},
		Logging: LoggingConfig{
			Verbosity: "normal",
		},
	}
}

// LoadConfig reads a YAML task file on top of DefaultConfig. Unknown keys
// are rejected so a misspelled constraint cannot silently widen what runs.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file: %w", err)
	}
	defer f.Close()

	config := DefaultConfig()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse task file: %w", err)
	}

	return config, nil
}
