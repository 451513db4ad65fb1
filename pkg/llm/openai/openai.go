// Package openai provides a provider speaking the OpenAI chat-completions
// dialect, for OpenAI-compatible servers (llama.cpp, vLLM, LM Studio or the
// hosted API).
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/openai/openai-go"

	"github.com/entrhq/pagepilot/pkg/llm"
	"github.com/entrhq/pagepilot/pkg/types"
)

const (
	// DefaultEndpoint is the OpenAI chat-completions URL.
	DefaultEndpoint = "https://api.openai.com/v1/chat/completions"

	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o-mini"
)

// Provider implements llm.Provider for OpenAI-compatible APIs.
type Provider struct {
	transport *llm.Transport
	apiKey    string
	endpoint  string
	model     string
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

// WithEndpoint sets the full chat-completions URL.
func WithEndpoint(endpoint string) ProviderOption {
	return func(p *Provider) {
		p.endpoint = endpoint
	}
}

// WithTimeout bounds each request.
func WithTimeout(timeout time.Duration) ProviderOption {
	return func(p *Provider) {
		p.timeout = timeout
	}
}

// NewProvider creates an OpenAI dialect provider.
//
// If apiKey is empty, OPENAI_API_KEY is used. Local servers usually accept
// any key, so an empty key is allowed when the endpoint is not the default.
func NewProvider(apiKey string, opts ...ProviderOption) (*Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	p := &Provider{
		apiKey:   apiKey,
		endpoint: DefaultEndpoint,
		model:    DefaultModel,
		timeout:  llm.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.apiKey == "" && p.endpoint == DefaultEndpoint {
		return nil, fmt.Errorf("OpenAI API key is required (provide via parameter or OPENAI_API_KEY environment variable)")
	}

	p.transport = llm.NewTransport(p.endpoint, p.apiKey, p.timeout)
	return p, nil
}

type chatPayload struct {
	Model       string                                   `json:"model"`
	Messages    []openai.ChatCompletionMessageParamUnion `json:"messages"`
	Temperature float64                                  `json:"temperature"`
}

// Complete sends the transcript and decodes the reply.
func (p *Provider) Complete(ctx context.Context, req llm.Request) (*llm.Completion, error) {
	payload := chatPayload{
		Model:       p.model,
		Messages:    ConvertTurns(req.Turns),
		Temperature: req.Temperature,
	}

	completion, err := p.transport.Post(ctx, payload)
	if err != nil {
		return nil, err
	}
	completion.Usage = usageFromBody(completion.Raw)
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

// ConvertTurns converts transcript turns to OpenAI's message param unions.
// Tool invocations get a synthetic call id since the agent records none.
func ConvertTurns(turns []types.Turn) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))

	for i, turn := range turns {
		switch turn.Role.WireRole() {
		case string(types.RoleSystem):
			messages = append(messages, openai.SystemMessage(turn.Content))
		case string(types.RoleAssistant):
			msg := openai.AssistantMessage(turn.Content)
			if turn.ToolCall != nil {
				msg.OfAssistant.ToolCalls = []openai.ChatCompletionMessageToolCallParam{{
					ID: fmt.Sprintf("call_%d", i),
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      turn.ToolCall.Name,
						Arguments: string(turn.ToolCall.Arguments),
					},
				}}
			}
			messages = append(messages, msg)
		default:
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}

	return messages
}

func usageFromBody(raw json.RawMessage) *types.TokenUsage {
	var body struct {
		Usage *openai.CompletionUsage `json:"usage"`
	}
	if len(raw) == 0 || raw[0] != '{' || json.Unmarshal(raw, &body) != nil || body.Usage == nil {
		return nil
	}
	if body.Usage.TotalTokens == 0 {
		return nil
	}
	return &types.TokenUsage{
		PromptTokens:     int(body.Usage.PromptTokens),
		CompletionTokens: int(body.Usage.CompletionTokens),
		TotalTokens:      int(body.Usage.TotalTokens),
	}
}
