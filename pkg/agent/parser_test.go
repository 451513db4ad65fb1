package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pagepilot/pkg/llm"
)

func decode(t *testing.T, body string) *llm.Completion {
	t.Helper()
	c, err := llm.DecodeCompletion([]byte(body))
	require.NoError(t, err)
	return c
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantFinal string
		wantTool  string
		wantArgs  string
	}{
		{
			name:     "structured tool call",
			body:     `{"message":{"role":"assistant","content":"","tool_calls":[{"function":{"name":"goto_website","arguments":{"url":"example.com"}}}]}}`,
			wantTool: "goto_website",
			wantArgs: `{"url":"example.com"}`,
		},
		{
			name:     "string encoded arguments",
			body:     `{"choices":[{"message":{"content":null,"tool_calls":[{"id":"call_1","type":"function","function":{"name":"summarize_page","arguments":"{\"length\":\"long\"}"}}]}}]}`,
			wantTool: "summarize_page",
			wantArgs: `{"length":"long"}`,
		},
		{
			name:     "only the first tool call counts",
			body:     `{"message":{"tool_calls":[{"function":{"name":"fill_form","arguments":{}}},{"function":{"name":"goto_website","arguments":{}}}]}}`,
			wantTool: "fill_form",
			wantArgs: `{}`,
		},
		{
			name:     "tool call wins over content",
			body:     `{"message":{"content":"{\"final\":\"ignored\"}","tool_calls":[{"function":{"name":"goto_website"}}]}}`,
			wantTool: "goto_website",
			wantArgs: `{}`,
		},
		{
			name:      "final object in content",
			body:      `{"message":{"content":"{\"final\": \"done\"}"}}`,
			wantFinal: "done",
			wantArgs:  `{}`,
		},
		{
			name:     "tool object wrapped in prose",
			body:     `{"message":{"content":"Sure.\n{\"tool\":\"goto_website\",\"args\":{\"url\":\"example.com\"}}\nDone."}}`,
			wantTool: "goto_website",
			wantArgs: `{"url":"example.com"}`,
		},
		{
			name:     "non-object args",
			body:     `{"message":{"content":"{\"tool\":\"summarize_page\",\"args\":[1]}"}}`,
			wantTool: "summarize_page",
			wantArgs: `{}`,
		},
		{
			name:      "plain text is the answer",
			body:      `{"choices":[{"message":{"content":"The page is about cats."}}]}`,
			wantFinal: "The page is about cats.",
			wantArgs:  `{}`,
		},
		{
			name:      "bare string body",
			body:      `"hello"`,
			wantFinal: "hello",
			wantArgs:  `{}`,
		},
		{
			name:      "empty content",
			body:      `{"message":{"content":""}}`,
			wantFinal: "No response content found",
			wantArgs:  `{}`,
		},
		{
			name:      "tool call entry without function",
			body:      `{"message":{"content":"fallback","tool_calls":[{"id":"x"}]}}`,
			wantFinal: "fallback",
			wantArgs:  `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, err := ParseAction(decode(t, tt.body))
			require.NoError(t, err)

			assert.Equal(t, tt.wantFinal, action.Final)
			assert.Equal(t, tt.wantTool, action.Tool)
			assert.JSONEq(t, tt.wantArgs, string(action.Args))
		})
	}
}

func TestParseAction_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid JSON span", `{"message":{"content":"{\"tool\": goto_website}"}}`},
		{"unbalanced braces", `{"message":{"content":"{\"final\": \"x\"} }"}}`},
		{"non-JSON string arguments", `{"message":{"tool_calls":[{"function":{"name":"goto_website","arguments":"url=example.com"}}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAction(decode(t, tt.body))
			require.Error(t, err)

			var pe *llm.ParseError
			require.ErrorAs(t, err, &pe)
			assert.Contains(t, err.Error(), "Failed to parse agent response: ")
		})
	}

	_, err := ParseAction(nil)
	assert.Error(t, err)
}

func TestParseAction_MalformedShapes(t *testing.T) {
	for _, content := range []string{`{"final": ""}`, `{"args": {"url": "x"}}`, `{"tool": 3}`} {
		action, err := ParseAction(&llm.Completion{Shape: llm.ShapeText, Content: content})
		require.NoError(t, err, content)
		assert.False(t, action.IsFinal(), content)
		assert.False(t, action.IsToolCall(), content)
	}

	action, err := ParseAction(&llm.Completion{Content: `{"final": "ok", "tool": "goto_website"}`})
	require.NoError(t, err)
	assert.True(t, action.IsFinal())
	assert.False(t, action.IsToolCall())
}
