package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pagepilot/pkg/llm"
	"github.com/entrhq/pagepilot/pkg/types"
)

func TestNewProvider_RequiresKeyForHostedAPI(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewProvider("")
	assert.Error(t, err)

	p, err := NewProvider("", WithEndpoint("http://localhost:8080/v1/chat/completions"))
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, p.GetModel())
}

func TestProvider_Complete(t *testing.T) {
	var payload struct {
		Model       string            `json:"model"`
		Temperature float64           `json:"temperature"`
		Messages    []json.RawMessage `json:"messages"`
	}
	var auth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &payload))
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"final\":\"hi\"}"}}],"usage":{"prompt_tokens":7,"completion_tokens":2,"total_tokens":9}}`))
	}))
	defer server.Close()

	p, err := NewProvider("key", WithEndpoint(server.URL), WithModel("local"))
	require.NoError(t, err)

	c, err := p.Complete(context.Background(), llm.Request{
		Turns: []types.Turn{
			types.NewSystemTurn("sys"),
			types.NewToolCallTurn("summarize_page", json.RawMessage(`{"length":"short"}`)),
			types.NewToolResultTurn(`{"summary":"s","url":"u"}`),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer key", auth)
	assert.Equal(t, "local", payload.Model)
	require.Len(t, payload.Messages, 3)

	var assistant struct {
		Role      string `json:"role"`
		ToolCalls []struct {
			Type     string `json:"type"`
			Function struct {
				Name      string `json:"name"`
				Arguments string `json:"arguments"`
			} `json:"function"`
		} `json:"tool_calls"`
	}
	require.NoError(t, json.Unmarshal(payload.Messages[1], &assistant))
	assert.Equal(t, "assistant", assistant.Role)
	require.Len(t, assistant.ToolCalls, 1)
	assert.Equal(t, "function", assistant.ToolCalls[0].Type)
	assert.Equal(t, "summarize_page", assistant.ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"length":"short"}`, assistant.ToolCalls[0].Function.Arguments)

	var user struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(payload.Messages[2], &user))
	assert.Equal(t, "user", user.Role)

	assert.Equal(t, llm.ShapeChoices, c.Shape)
	assert.Equal(t, `{"final":"hi"}`, c.Content)
	require.NotNil(t, c.Usage)
	assert.Equal(t, 9, c.Usage.TotalTokens)
}
