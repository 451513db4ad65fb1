package types

import "encoding/json"

// Role identifies the author of a turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"

	// RoleToolResult marks a turn carrying a serialized tool result.
	// It is sent to the model with the user role.
	RoleToolResult Role = "tool-result"
)

// WireRole returns the role used when the turn is sent to the model.
func (r Role) WireRole() string {
	if r == RoleToolResult {
		return string(RoleUser)
	}
	return string(r)
}

// ToolInvocation records a tool call made by the assistant.
type ToolInvocation struct {
	Name string

	// Arguments is the JSON object passed to the tool.
	Arguments json.RawMessage
}

// Turn is one role-tagged unit of conversational history.
type Turn struct {
	Role     Role
	Content  string
	ToolCall *ToolInvocation
}

// NewSystemTurn creates a system turn.
func NewSystemTurn(content string) Turn {
	return Turn{Role: RoleSystem, Content: content}
}

// NewUserTurn creates a user turn.
func NewUserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// NewToolCallTurn creates an assistant turn recording a tool invocation.
func NewToolCallTurn(name string, args json.RawMessage) Turn {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	return Turn{
		Role:     RoleAssistant,
		ToolCall: &ToolInvocation{Name: name, Arguments: args},
	}
}

// NewToolResultTurn creates a turn carrying a serialized tool result.
func NewToolResultTurn(resultJSON string) Turn {
	return Turn{Role: RoleToolResult, Content: "Tool result: " + resultJSON}
}

// Transcript is the ordered list of turns sent to the model. It only grows.
type Transcript struct {
	turns []Turn
}

// NewTranscript creates a transcript seeded with the given turns.
func NewTranscript(seed ...Turn) *Transcript {
	t := &Transcript{turns: make([]Turn, 0, len(seed)+8)}
	t.turns = append(t.turns, seed...)
	return t
}

// Append adds turns at the end of the transcript.
func (t *Transcript) Append(turns ...Turn) {
	t.turns = append(t.turns, turns...)
}

// Turns returns a copy of the turns in insertion order.
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	return len(t.turns)
}
