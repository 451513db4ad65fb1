package tools

import (
	"context"
	"encoding/json"
)

// Tool represents a capability the agent can invoke instead of answering.
// Tools are named in the catalogue the model is shown and are called with a
// JSON object of arguments.
//
// Example tool call as the model emits it:
//
//	{"tool": "goto_website", "args": {"url": "example.com"}}
type Tool interface {
	// Name returns the unique identifier for this tool (e.g., "goto_website")
	Name() string

	// Description returns a human-readable description of what this tool does
	Description() string

	// Schema returns the JSON schema for this tool's input parameters
	Schema() map[string]interface{}

	// Execute runs the tool. Expected failures are reported inside the
	// Result (an "error" member); a returned error is folded into a Result
	// by the Registry.
	Execute(ctx context.Context, args json.RawMessage) (Result, error)
}

// Previewable is an optional interface for tools whose side effects need a
// confirmation. The preview is shown alongside the approval request.
type Previewable interface {
	GeneratePreview(ctx context.Context, args json.RawMessage) (*ToolPreview, error)
}

// ToolPreview describes a pending side effect.
type ToolPreview struct {
	// Type indicates the kind of preview
	Type PreviewType

	// Title is a short description of the action
	Title string

	// Description is the question put to the user
	Description string

	// Content contains the preview data (for instance the field values)
	Content string

	// Metadata holds additional preview information (target URL, field count)
	Metadata map[string]interface{}
}

// PreviewType indicates the kind of preview being shown
type PreviewType string

const (
	// PreviewTypeFormSubmit represents a form submission preview
	PreviewTypeFormSubmit PreviewType = "form_submit"
)

// BaseToolSchema creates a common JSON schema structure for a tool
// with the given properties and required fields
func BaseToolSchema(properties map[string]interface{}, required []string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// ArgumentsMap decodes tool arguments for event payloads. Anything that is
// not a JSON object yields an empty map.
func ArgumentsMap(args json.RawMessage) map[string]interface{} {
	m := make(map[string]interface{})
	if err := json.Unmarshal(args, &m); err != nil || m == nil {
		return make(map[string]interface{})
	}
	return m
}
