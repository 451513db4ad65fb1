package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name   string
	result Result
	err    error
	panic  interface{}
	got    json.RawMessage
}

func (s *stubTool) Name() string                   { return s.name }
func (s *stubTool) Description() string            { return "stub" }
func (s *stubTool) Schema() map[string]interface{} { return BaseToolSchema(nil, nil) }

func (s *stubTool) Execute(_ context.Context, args json.RawMessage) (Result, error) {
	s.got = args
	if s.panic != nil {
		panic(s.panic)
	}
	return s.result, s.err
}

func TestResult_KeepsMemberOrder(t *testing.T) {
	r := NewResult("ok", true, "url", "https://example.com/?a=1&b=<2>", "preview", "Example")

	assert.Equal(t, `{"ok":true,"url":"https://example.com/?a=1&b=<2>","preview":"Example"}`, r.String())
	assert.Equal(t, "{\n  \"ok\": true,\n  \"url\": \"https://example.com/?a=1&b=<2>\",\n  \"preview\": \"Example\"\n}", r.Indent())
}

func TestResult_Helpers(t *testing.T) {
	f := Failure("Invalid URL")
	assert.Equal(t, `{"ok":false,"error":"Invalid URL"}`, f.String())

	msg, ok := f.ErrorMessage()
	assert.True(t, ok)
	assert.Equal(t, "Invalid URL", msg)

	_, ok = NewResult("summary", "x").ErrorMessage()
	assert.False(t, ok)

	assert.Equal(t, map[string]interface{}{"error": "boom"}, Error("boom").Map())
}

func TestNewResult_OddArguments(t *testing.T) {
	assert.Panics(t, func() { NewResult("ok") })
}

func TestRegistry_Register(t *testing.T) {
	r, err := NewRegistry(&stubTool{name: "a"}, &stubTool{name: "b"})
	require.NoError(t, err)

	names := []string{}
	for _, tool := range r.Tools() {
		names = append(names, tool.Name())
	}
	assert.Equal(t, []string{"a", "b"}, names)

	assert.EqualError(t, r.Register(&stubTool{name: "a"}), `tool "a" already registered`)
	assert.Error(t, r.Register(&stubTool{}))
}

func TestRegistry_Execute(t *testing.T) {
	ok := &stubTool{name: "ok", result: NewResult("ok", true)}
	failing := &stubTool{name: "failing", err: errors.New("tab went away")}
	panicky := &stubTool{name: "panicky", panic: "nil map"}
	r, err := NewRegistry(ok, failing, panicky)
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name string
		tool string
		want string
	}{
		{"success", "ok", `{"ok":true}`},
		{"unknown", "click", `{"error":"Unknown tool: click"}`},
		{"error", "failing", `{"error":"tab went away"}`},
		{"panic", "panicky", `{"error":"nil map"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Execute(ctx, tt.tool, json.RawMessage(`{}`))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestRegistry_ExecuteDefaultsArgs(t *testing.T) {
	tool := &stubTool{name: "ok", result: NewResult()}
	r, err := NewRegistry(tool)
	require.NoError(t, err)

	assert.Equal(t, "{}", r.Execute(context.Background(), "ok", nil).String())
	assert.JSONEq(t, `{}`, string(tool.got))
}

func TestArgumentsMap(t *testing.T) {
	assert.Equal(t, map[string]interface{}{"url": "example.com"}, ArgumentsMap(json.RawMessage(`{"url":"example.com"}`)))
	assert.Empty(t, ArgumentsMap(json.RawMessage(`null`)))
	assert.Empty(t, ArgumentsMap(json.RawMessage(`["a"]`)))
	assert.Empty(t, ArgumentsMap(nil))
}
