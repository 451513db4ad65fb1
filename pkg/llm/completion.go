package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/entrhq/pagepilot/pkg/page"
	"github.com/entrhq/pagepilot/pkg/types"
)

// Shape records which response layout a completion body used.
type Shape string

const (
	// ShapeMessage is an Ollama-style body with a top-level "message".
	ShapeMessage Shape = "message"
	// ShapeChoices is an OpenAI-style body with choices[0].message.
	ShapeChoices Shape = "choices"
	// ShapeText is a bare JSON string, or any body matching neither layout.
	ShapeText Shape = "text"
)

// FunctionCall is the function part of a structured tool call.
// Arguments is kept raw: models send either an object or a JSON-encoded string.
type FunctionCall struct {
	Name      string
	Arguments json.RawMessage
}

// ToolCall is one entry of a message's tool_calls array. Function is nil when
// the entry has no "function" member.
type ToolCall struct {
	Function *FunctionCall
}

// Completion is the decoded form of a chat response body.
type Completion struct {
	Shape     Shape
	Content   string
	ToolCalls []ToolCall

	// Usage is set when the endpoint reported token counts.
	Usage *types.TokenUsage

	// Raw is the undecoded body.
	Raw json.RawMessage
}

// wireMessage is the Ollama message layout. api.Message cannot stand in:
// its arguments are a map, which loses the key order fill_form relies on
// and rejects string-encoded arguments outright.
type wireMessage struct {
	Content   json.RawMessage `json:"content"`
	ToolCalls json.RawMessage `json:"tool_calls"`
}

type wireToolCall struct {
	Function json.RawMessage `json:"function"`
}

type wireFunction struct {
	Name      json.RawMessage `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type wireChoice struct {
	Message json.RawMessage `json:"message"`
}

// DecodeCompletion classifies a response body. It fails only when raw is not JSON.
func DecodeCompletion(raw []byte) (*Completion, error) {
	trimmed := bytes.TrimSpace(raw)
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("response body is not valid JSON")
	}

	c := &Completion{Shape: ShapeText, Raw: json.RawMessage(trimmed)}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		c.Content = s
		return c, nil
	case '{':
	default:
		return c, nil
	}

	var body struct {
		Message json.RawMessage `json:"message"`
		Choices json.RawMessage `json:"choices"`
	}
	if err := json.Unmarshal(trimmed, &body); err != nil {
		return nil, err
	}

	if page.Truthy(body.Message) {
		c.Shape = ShapeMessage
		c.Content, c.ToolCalls = decodeMessage(body.Message)
		return c, nil
	}

	if content, calls, ok := decodeChoice(trimmed, body.Choices); ok {
		c.Shape = ShapeChoices
		c.Content, c.ToolCalls = content, calls
	}
	return c, nil
}

// decodeChoice reads choices[0].message as an openai.ChatCompletion. The
// arguments are taken from the field's raw JSON so an object and an encoded
// string both come back verbatim. A body the SDK refuses is read through
// the plain message layout instead.
func decodeChoice(body []byte, choices json.RawMessage) (string, []ToolCall, bool) {
	var completion openai.ChatCompletion
	if err := json.Unmarshal(body, &completion); err != nil {
		msg := firstChoiceMessage(choices)
		if !page.Truthy(msg) {
			return "", nil, false
		}
		content, calls := decodeMessage(msg)
		return content, calls, true
	}

	if len(completion.Choices) == 0 {
		return "", nil, false
	}
	choice := completion.Choices[0]
	if !page.Truthy(json.RawMessage(choice.JSON.Message.Raw())) {
		return "", nil, false
	}

	msg := choice.Message
	if len(msg.ToolCalls) == 0 {
		return msg.Content, nil, true
	}
	calls := make([]ToolCall, 0, len(msg.ToolCalls))
	for _, tc := range msg.ToolCalls {
		if !page.Truthy(json.RawMessage(tc.JSON.Function.Raw())) {
			calls = append(calls, ToolCall{})
			continue
		}
		fn := &FunctionCall{Name: tc.Function.Name}
		if raw := tc.Function.JSON.Arguments.Raw(); raw != "" {
			fn.Arguments = json.RawMessage(raw)
		}
		calls = append(calls, ToolCall{Function: fn})
	}
	return msg.Content, calls, true
}

// SummaryText picks the text a summarizer shows: message content, else
// choices[0] content, else a bare string body, else the body itself.
func (c *Completion) SummaryText() string {
	if c == nil {
		return ""
	}

	var body struct {
		Message json.RawMessage `json:"message"`
		Choices json.RawMessage `json:"choices"`
	}
	if len(c.Raw) > 0 && c.Raw[0] == '{' && json.Unmarshal(c.Raw, &body) == nil {
		if content := messageContent(body.Message); content != "" {
			return content
		}
		if content := messageContent(firstChoiceMessage(body.Choices)); content != "" {
			return content
		}
	}

	if len(c.Raw) > 0 && c.Raw[0] == '"' {
		return c.Content
	}
	return string(c.Raw)
}

// FirstToolCall returns the first tool_calls entry, if any.
func (c *Completion) FirstToolCall() (ToolCall, bool) {
	if c == nil || len(c.ToolCalls) == 0 {
		return ToolCall{}, false
	}
	return c.ToolCalls[0], true
}

func decodeMessage(raw json.RawMessage) (string, []ToolCall) {
	var msg wireMessage
	if len(raw) == 0 || raw[0] != '{' || json.Unmarshal(raw, &msg) != nil {
		return "", nil
	}

	content := stringValue(msg.Content)

	var entries []json.RawMessage
	if len(msg.ToolCalls) == 0 || msg.ToolCalls[0] != '[' || json.Unmarshal(msg.ToolCalls, &entries) != nil {
		return content, nil
	}

	calls := make([]ToolCall, 0, len(entries))
	for _, entry := range entries {
		calls = append(calls, decodeToolCall(entry))
	}
	return content, calls
}

func decodeToolCall(raw json.RawMessage) ToolCall {
	var call wireToolCall
	if len(raw) == 0 || raw[0] != '{' || json.Unmarshal(raw, &call) != nil || !page.Truthy(call.Function) {
		return ToolCall{}
	}

	fn := &FunctionCall{}
	var wire wireFunction
	if call.Function[0] == '{' && json.Unmarshal(call.Function, &wire) == nil {
		fn.Name = stringValue(wire.Name)
		if len(wire.Arguments) > 0 {
			fn.Arguments = wire.Arguments
		}
	}
	return ToolCall{Function: fn}
}

func firstChoiceMessage(raw json.RawMessage) json.RawMessage {
	var choices []wireChoice
	if len(raw) == 0 || raw[0] != '[' || json.Unmarshal(raw, &choices) != nil || len(choices) == 0 {
		return nil
	}
	return choices[0].Message
}

func messageContent(raw json.RawMessage) string {
	var msg wireMessage
	if len(raw) == 0 || raw[0] != '{' || json.Unmarshal(raw, &msg) != nil {
		return ""
	}
	return stringValue(msg.Content)
}

func stringValue(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || raw[0] != '"' || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
