package types

import "strings"

// InputKind distinguishes what an executor hands to the agent.
type InputKind string

// InputKindRequest is a natural-language request for the copilot.
const InputKindRequest InputKind = "request"

// Input is one message from an executor to the agent.
type Input struct {
	Kind InputKind

	// Text is the request as the user typed it.
	Text string
}

// NewRequestInput wraps a user request.
func NewRequestInput(text string) *Input {
	return &Input{Kind: InputKindRequest, Text: text}
}

// Request returns the trimmed request text and whether the input carries a
// non-blank request.
func (i *Input) Request() (string, bool) {
	if i == nil || i.Kind != InputKindRequest {
		return "", false
	}
	text := strings.TrimSpace(i.Text)
	return text, text != ""
}
