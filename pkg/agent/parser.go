package agent

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"

	"github.com/entrhq/pagepilot/pkg/llm"
)

// noContentAnswer stands in for an empty completion.
const noContentAnswer = "No response content found"

// jsonSpan matches from the first '{' to the last '}'.
var jsonSpan = regexp.MustCompile(`(?s)\{.*\}`)

// Action is the decision extracted from one completion: a final answer or a
// tool call. An Action with neither is malformed.
type Action struct {
	Final string
	Tool  string

	// Args is the JSON object passed to the tool; never empty.
	Args json.RawMessage
}

// IsFinal reports whether the action ends the run with an answer.
func (a Action) IsFinal() bool {
	return a.Final != ""
}

// IsToolCall reports whether the action names a tool.
func (a Action) IsToolCall() bool {
	return !a.IsFinal() && a.Tool != ""
}

// ParseAction interprets a completion. Structured tool calls win over text
// content; only the first one is used. Otherwise the first JSON object span
// in the content is decoded, and content without one is the final answer.
// Invalid JSON is a *llm.ParseError, never an answer.
func ParseAction(c *llm.Completion) (Action, error) {
	if c == nil {
		return Action{}, llm.NewParseError(errors.New("empty completion"))
	}

	if call, ok := c.FirstToolCall(); ok && call.Function != nil {
		args, err := structuredArgs(call.Function.Arguments)
		if err != nil {
			return Action{}, llm.NewParseError(err)
		}
		return Action{Tool: call.Function.Name, Args: args}, nil
	}

	if c.Content != "" {
		if span := jsonSpan.FindString(c.Content); span != "" {
			return parseActionObject([]byte(span))
		}
	}

	if c.Content == "" {
		return Action{Final: noContentAnswer, Args: emptyArgs()}, nil
	}
	return Action{Final: c.Content, Args: emptyArgs()}, nil
}

// parseActionObject decodes {"final": ...} or {"tool": ..., "args": {...}}.
func parseActionObject(span []byte) (Action, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(span, &obj); err != nil {
		return Action{}, llm.NewParseError(err)
	}
	return Action{
		Final: stringMember(obj["final"]),
		Tool:  stringMember(obj["tool"]),
		Args:  objectOrEmpty(obj["args"]),
	}, nil
}

// structuredArgs accepts arguments as an object or as a string holding JSON.
func structuredArgs(raw json.RawMessage) (json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return objectOrEmpty(raw), nil
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, err
	}
	inner := bytes.TrimSpace([]byte(encoded))
	if len(inner) == 0 {
		return emptyArgs(), nil
	}
	if !json.Valid(inner) {
		return nil, errors.New("tool call arguments are not valid JSON")
	}
	return objectOrEmpty(inner), nil
}

func objectOrEmpty(raw json.RawMessage) json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' || !json.Valid(raw) {
		return emptyArgs()
	}
	return raw
}

func stringMember(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || raw[0] != '"' || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func emptyArgs() json.RawMessage {
	return json.RawMessage("{}")
}
