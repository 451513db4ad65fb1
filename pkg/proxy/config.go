package proxy

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the proxy configuration.
type Config struct {
	Port         string `envconfig:"PORT" default:"3000"`
	Target       string `envconfig:"PROXY_TARGET" default:"http://localhost:11434"`
	DefaultModel string `envconfig:"PROXY_DEFAULT_MODEL" default:"gpt-oss:20b"`

	// BodyLimit caps request bodies, in bytes.
	BodyLimit int64 `envconfig:"PROXY_BODY_LIMIT" default:"15728640"`

	Development bool `envconfig:"PROXY_DEV" default:"false"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// DefaultConfig returns the configuration used when the environment is empty.
func DefaultConfig() *Config {
	return &Config{
		Port:         "3000",
		Target:       "http://localhost:11434",
		DefaultModel: "gpt-oss:20b",
		BodyLimit:    15 * 1024 * 1024,
	}
}

// ChatURL is the upstream chat endpoint.
func (c *Config) ChatURL() string {
	return strings.TrimRight(c.Target, "/") + "/api/chat"
}
