package types

// AgentEventType defines the type of event emitted by the agent.
type AgentEventType string

const (
	EventTypeStepStart            AgentEventType = "step_start"             // EventTypeStepStart indicates the agent loop started a new step.
	EventTypeMessage              AgentEventType = "message"                // EventTypeMessage carries a user-visible agent message (final answer or notice).
	EventTypeToolCall             AgentEventType = "tool_call"              // EventTypeToolCall indicates the agent is calling a tool.
	EventTypeToolResult           AgentEventType = "tool_result"            // EventTypeToolResult indicates a tool call produced a result.
	EventTypeToolResultError      AgentEventType = "tool_result_error"      // EventTypeToolResultError indicates a tool result carries an error field.
	EventTypeAPICallStart         AgentEventType = "api_call_start"         // EventTypeAPICallStart indicates the agent is calling the model.
	EventTypeAPICallEnd           AgentEventType = "api_call_end"           // EventTypeAPICallEnd indicates a model call has completed.
	EventTypeUpdateBusy           AgentEventType = "update_busy"            // EventTypeUpdateBusy indicates a change in the agent's busy status.
	EventTypeRunComplete          AgentEventType = "run_complete"           // EventTypeRunComplete carries the terminal outcome of one run.
	EventTypeTurnEnd              AgentEventType = "turn_end"               // EventTypeTurnEnd indicates the agent has finished processing the current input.
	EventTypeError                AgentEventType = "error"                  // EventTypeError indicates an error occurred during agent processing.
	EventTypeToolApprovalRequest  AgentEventType = "tool_approval_request"  // EventTypeToolApprovalRequest indicates the agent needs a confirmation before a tool side effect.
	EventTypeToolApprovalTimeout  AgentEventType = "tool_approval_timeout"  // EventTypeToolApprovalTimeout indicates an approval request has timed out.
	EventTypeToolApprovalGranted  AgentEventType = "tool_approval_granted"  // EventTypeToolApprovalGranted indicates the user approved the side effect.
	EventTypeToolApprovalRejected AgentEventType = "tool_approval_rejected" // EventTypeToolApprovalRejected indicates the user declined the side effect.
	EventTypeTokenUsage           AgentEventType = "token_usage"            // EventTypeTokenUsage carries token estimates for a model call.
)

// MessageLevel classifies user-visible agent messages.
type MessageLevel string

const (
	MessageLevelAnswer  MessageLevel = "answer"
	MessageLevelTrace   MessageLevel = "trace"
	MessageLevelWarning MessageLevel = "warning"
)

// AgentEvent represents an event emitted by the agent during execution.
type AgentEvent struct {
	// Metadata holds optional additional information about the event.
	Metadata map[string]interface{}

	// ToolInput is the input being sent to the tool (for tool call and approval events).
	ToolInput map[string]interface{}

	// ToolOutput is the result from the tool (for tool result events).
	ToolOutput interface{}

	// Error contains error information for error events.
	Error error

	// Content holds text content for message events.
	Content string

	// Level classifies message events.
	Level MessageLevel

	// ToolName is the name of the tool being called (for tool events).
	ToolName string

	// Type indicates the kind of event.
	Type AgentEventType

	// IsBusy indicates if the agent is busy (for busy status events).
	IsBusy bool

	// Step and MaxSteps locate the event inside the agent loop.
	Step     int
	MaxSteps int

	// ApprovalID is a unique identifier for approval requests/responses.
	ApprovalID string

	// Preview holds preview data for approval requests.
	Preview interface{}

	// TokenUsage contains token usage information (for token usage events).
	TokenUsage *TokenUsage

	// Outcome is set on run complete events.
	Outcome *RunOutcome
}

// TokenUsage contains token usage statistics for one model call.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// OutcomeKind names the terminal state of one agent run.
type OutcomeKind string

const (
	OutcomeFinal           OutcomeKind = "final"
	OutcomeParseError      OutcomeKind = "parse_error"
	OutcomeMalformedAction OutcomeKind = "malformed_action"
	OutcomeMaxSteps        OutcomeKind = "max_steps"
	OutcomeTransportError  OutcomeKind = "transport_error"
	OutcomeCanceled        OutcomeKind = "canceled"
	OutcomeNoTab           OutcomeKind = "no_tab"
)

// RunOutcome summarizes how an agent run terminated.
type RunOutcome struct {
	Kind OutcomeKind

	// Steps is the number of model calls made.
	Steps int

	// Final holds the answer text when Kind is OutcomeFinal.
	Final string

	// ToolCalls counts executed tool invocations.
	ToolCalls int

	Err error
}

// Succeeded reports whether the run ended with a final answer.
func (o *RunOutcome) Succeeded() bool {
	return o != nil && o.Kind == OutcomeFinal
}

func newEvent(t AgentEventType) *AgentEvent {
	return &AgentEvent{Type: t, Metadata: make(map[string]interface{})}
}

// NewStepStartEvent creates a step start event.
func NewStepStartEvent(step, maxSteps int) *AgentEvent {
	e := newEvent(EventTypeStepStart)
	e.Step, e.MaxSteps = step, maxSteps
	return e
}

// NewMessageEvent creates a user-visible message event.
func NewMessageEvent(level MessageLevel, content string) *AgentEvent {
	e := newEvent(EventTypeMessage)
	e.Level, e.Content = level, content
	return e
}

func NewToolCallEvent(toolName string, toolInput map[string]interface{}) *AgentEvent {
	e := newEvent(EventTypeToolCall)
	e.ToolName, e.ToolInput = toolName, toolInput
	return e
}

func NewToolResultEvent(toolName string, output interface{}) *AgentEvent {
	e := newEvent(EventTypeToolResult)
	e.ToolName, e.ToolOutput = toolName, output
	return e
}

// NewToolResultErrorEvent reports a tool result whose payload carries an
// error. The result is still sent back to the model.
func NewToolResultErrorEvent(toolName string, output interface{}, err error) *AgentEvent {
	e := newEvent(EventTypeToolResultError)
	e.ToolName, e.ToolOutput, e.Error = toolName, output, err
	return e
}

// NewAPICallStartEvent marks the start of model call number step.
func NewAPICallStartEvent(apiName string, step int) *AgentEvent {
	return newEvent(EventTypeAPICallStart).atStep(step).WithMetadata("api_name", apiName)
}

func NewAPICallEndEvent(apiName string, step int) *AgentEvent {
	return newEvent(EventTypeAPICallEnd).atStep(step).WithMetadata("api_name", apiName)
}

func (e *AgentEvent) atStep(step int) *AgentEvent {
	e.Step = step
	return e
}

func NewUpdateBusyEvent(isBusy bool) *AgentEvent {
	e := newEvent(EventTypeUpdateBusy)
	e.IsBusy = isBusy
	return e
}

// NewRunCompleteEvent carries the outcome of one run. It is sent before the
// turn end event of the same input.
func NewRunCompleteEvent(outcome *RunOutcome) *AgentEvent {
	e := newEvent(EventTypeRunComplete)
	e.Outcome = outcome
	return e
}

func NewTurnEndEvent() *AgentEvent {
	return newEvent(EventTypeTurnEnd)
}

func NewErrorEvent(err error) *AgentEvent {
	e := newEvent(EventTypeError)
	e.Error = err
	return e
}

func newApprovalEvent(t AgentEventType, approvalID, toolName string) *AgentEvent {
	e := newEvent(t)
	e.ApprovalID, e.ToolName = approvalID, toolName
	return e
}

// NewToolApprovalRequestEvent asks the executor to confirm a side effect.
// The answer goes back on the approval channel under approvalID.
func NewToolApprovalRequestEvent(approvalID, toolName string, toolInput map[string]interface{}, preview interface{}) *AgentEvent {
	e := newApprovalEvent(EventTypeToolApprovalRequest, approvalID, toolName)
	e.ToolInput, e.Preview = toolInput, preview
	return e
}

func NewToolApprovalTimeoutEvent(approvalID, toolName string) *AgentEvent {
	return newApprovalEvent(EventTypeToolApprovalTimeout, approvalID, toolName)
}

func NewToolApprovalGrantedEvent(approvalID, toolName string) *AgentEvent {
	return newApprovalEvent(EventTypeToolApprovalGranted, approvalID, toolName)
}

func NewToolApprovalRejectedEvent(approvalID, toolName string) *AgentEvent {
	return newApprovalEvent(EventTypeToolApprovalRejected, approvalID, toolName)
}

// NewTokenUsageEvent reports the tokens of one model call.
func NewTokenUsageEvent(promptTokens, completionTokens int) *AgentEvent {
	e := newEvent(EventTypeTokenUsage)
	e.TokenUsage = &TokenUsage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
	}
	return e
}

// WithMetadata adds metadata to the event and returns the event for chaining.
func (e *AgentEvent) WithMetadata(key string, value interface{}) *AgentEvent {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func (e *AgentEvent) is(kinds ...AgentEventType) bool {
	for _, t := range kinds {
		if e.Type == t {
			return true
		}
	}
	return false
}

// IsToolEvent returns true if this is any tool-related event.
func (e *AgentEvent) IsToolEvent() bool {
	return e.is(EventTypeToolCall, EventTypeToolResult, EventTypeToolResultError)
}

// IsAPIEvent returns true if this is any model call event.
func (e *AgentEvent) IsAPIEvent() bool {
	return e.is(EventTypeAPICallStart, EventTypeAPICallEnd)
}

func (e *AgentEvent) IsErrorEvent() bool {
	return e.is(EventTypeError, EventTypeToolResultError)
}

// IsApprovalEvent returns true if this is any approval-related event.
func (e *AgentEvent) IsApprovalEvent() bool {
	return e.is(EventTypeToolApprovalRequest, EventTypeToolApprovalTimeout,
		EventTypeToolApprovalGranted, EventTypeToolApprovalRejected)
}
