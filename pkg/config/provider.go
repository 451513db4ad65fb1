package config

import (
	"fmt"
	"os"
	"time"

	"github.com/entrhq/pagepilot/pkg/llm"
	"github.com/entrhq/pagepilot/pkg/llm/ollama"
	"github.com/entrhq/pagepilot/pkg/llm/openai"
)

// Environment variables overriding the LLM section.
const (
	EnvModel    = "PAGEPILOT_MODEL"
	EnvEndpoint = "PAGEPILOT_ENDPOINT"
	EnvAPIKey   = "PAGEPILOT_API_KEY"
	EnvDialect  = "PAGEPILOT_DIALECT"
)

// ProviderFlags holds LLM values given on the command line. Empty fields are unset.
type ProviderFlags struct {
	Model    string
	Endpoint string
	APIKey   string
	Dialect  string
}

// ResolvedLLM is the outcome of flag, environment, file and default precedence.
type ResolvedLLM struct {
	Model    string
	Endpoint string
	APIKey   string
	Dialect  string
	Timeout  time.Duration
}

// ResolveLLM applies precedence: CLI flags > environment > config file > defaults.
func ResolveLLM(flags ProviderFlags) ResolvedLLM {
	resolved := ResolvedLLM{
		Model:    DefaultModel,
		Endpoint: DefaultEndpoint,
		Dialect:  DialectOllama,
		Timeout:  DefaultLLMTimeout,
	}

	if section := GetLLM(); section != nil {
		resolved.Model = section.GetModel()
		resolved.Endpoint = section.GetEndpoint()
		resolved.Dialect = section.GetDialect()
		resolved.APIKey = section.GetAPIKey()
		resolved.Timeout = section.GetTimeout()
	}

	pick := func(dst *string, values ...string) {
		for _, v := range values {
			if v != "" {
				*dst = v
				return
			}
		}
	}
	pick(&resolved.Model, flags.Model, os.Getenv(EnvModel))
	pick(&resolved.Endpoint, flags.Endpoint, os.Getenv(EnvEndpoint))
	pick(&resolved.APIKey, flags.APIKey, os.Getenv(EnvAPIKey))
	pick(&resolved.Dialect, flags.Dialect, os.Getenv(EnvDialect))

	return resolved
}

// BuildProvider creates an LLM provider from the resolved settings.
func BuildProvider(flags ProviderFlags) (llm.Provider, error) {
	resolved := ResolveLLM(flags)

	switch resolved.Dialect {
	case DialectOllama:
		return ollama.NewProvider(
			ollama.WithModel(resolved.Model),
			ollama.WithEndpoint(resolved.Endpoint),
			ollama.WithAPIKey(resolved.APIKey),
			ollama.WithTimeout(resolved.Timeout),
		), nil
	case DialectOpenAI:
		provider, err := openai.NewProvider(resolved.APIKey,
			openai.WithModel(resolved.Model),
			openai.WithEndpoint(resolved.Endpoint),
			openai.WithTimeout(resolved.Timeout),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM provider: %w", err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unknown LLM dialect %q (want %s or %s)", resolved.Dialect, DialectOllama, DialectOpenAI)
	}
}
