// Package ollama provides a provider speaking the Ollama chat dialect.
// It is the default dialect: the pagepilot proxy and a bare Ollama server
// both accept it.
package ollama

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/entrhq/pagepilot/pkg/llm"
	"github.com/entrhq/pagepilot/pkg/types"
)

const (
	// DefaultEndpoint is the pagepilot proxy's chat route.
	DefaultEndpoint = "http://localhost:3000/api/chat"

	// DefaultModel is the model id sent when none is configured.
	DefaultModel = "gpt-oss:20b"
)

// Provider implements llm.Provider for Ollama-compatible chat endpoints.
type Provider struct {
	transport *llm.Transport
	model     string
	endpoint  string
	apiKey    string
	timeout   time.Duration
}

// ProviderOption is a function that configures a Provider.
type ProviderOption func(*Provider)

// WithModel sets the model to use for completions.
func WithModel(model string) ProviderOption {
	return func(p *Provider) {
		p.model = model
	}
}

// WithEndpoint sets the chat endpoint URL.
func WithEndpoint(endpoint string) ProviderOption {
	return func(p *Provider) {
		p.endpoint = endpoint
	}
}

// WithAPIKey sends a bearer token with every request.
func WithAPIKey(apiKey string) ProviderOption {
	return func(p *Provider) {
		p.apiKey = apiKey
	}
}

// WithTimeout bounds each request.
func WithTimeout(timeout time.Duration) ProviderOption {
	return func(p *Provider) {
		p.timeout = timeout
	}
}

// NewProvider creates an Ollama dialect provider.
func NewProvider(opts ...ProviderOption) *Provider {
	p := &Provider{
		model:    DefaultModel,
		endpoint: DefaultEndpoint,
		timeout:  llm.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.transport = llm.NewTransport(p.endpoint, p.apiKey, p.timeout)
	return p
}

// chatPayload carries temperature both top-level (read by the proxy) and in
// options (read by Ollama itself).
type chatPayload struct {
	Model       string         `json:"model"`
	Messages    []api.Message  `json:"messages"`
	Stream      bool           `json:"stream"`
	Temperature float64        `json:"temperature"`
	Options     map[string]any `json:"options,omitempty"`
}

// Complete sends the transcript and decodes the reply.
func (p *Provider) Complete(ctx context.Context, req llm.Request) (*llm.Completion, error) {
	payload := chatPayload{
		Model:       p.model,
		Messages:    ConvertTurns(req.Turns),
		Stream:      false,
		Temperature: req.Temperature,
		Options:     map[string]any{"temperature": req.Temperature},
	}

	completion, err := p.transport.Post(ctx, payload)
	if err != nil {
		return nil, err
	}
	completion.Usage = usageFromMetrics(completion.Raw)
	return completion, nil
}

// GetModel returns the model name being used.
func (p *Provider) GetModel() string {
	return p.model
}

// GetEndpoint returns the chat endpoint URL.
func (p *Provider) GetEndpoint() string {
	return p.endpoint
}

// ConvertTurns maps transcript turns onto Ollama messages. A recorded tool
// invocation becomes a tool_calls entry on the assistant message.
func ConvertTurns(turns []types.Turn) []api.Message {
	messages := make([]api.Message, 0, len(turns))
	for _, turn := range turns {
		msg := api.Message{
			Role:    turn.Role.WireRole(),
			Content: turn.Content,
		}

		if turn.ToolCall != nil {
			call := api.ToolCall{
				Function: api.ToolCallFunction{Name: turn.ToolCall.Name},
			}
			// Non-object arguments cannot be represented and are sent empty.
			_ = json.Unmarshal(turn.ToolCall.Arguments, &call.Function.Arguments)
			msg.ToolCalls = []api.ToolCall{call}
		}

		messages = append(messages, msg)
	}
	return messages
}

func usageFromMetrics(raw json.RawMessage) *types.TokenUsage {
	var metrics api.Metrics
	if len(raw) == 0 || raw[0] != '{' || json.Unmarshal(raw, &metrics) != nil {
		return nil
	}
	if metrics.PromptEvalCount == 0 && metrics.EvalCount == 0 {
		return nil
	}
	return &types.TokenUsage{
		PromptTokens:     metrics.PromptEvalCount,
		CompletionTokens: metrics.EvalCount,
		TotalTokens:      metrics.PromptEvalCount + metrics.EvalCount,
	}
}
