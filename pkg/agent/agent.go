// Package agent provides the agent loop that drives a browser copilot
// conversation and the DefaultAgent implementation.
//
// The loop seeds a transcript with the system prompt, the tool catalogue and
// the user's request, then alternates between calling the model and running
// the tool the model asked for, until the model gives a final answer or the
// step budget runs out:
//
//	ag := agent.NewDefaultAgent(provider,
//	    agent.WithTab(tab.NewClient(conn)),
//	    agent.WithMaxSteps(6),
//	)
//	outcome := ag.Run(ctx, "Summarize this page")
//
// Executors drive the agent asynchronously through its channels instead:
// they send inputs and approval responses and render the emitted events.
package agent

import (
	"context"

	"github.com/entrhq/pagepilot/pkg/agent/tools"
	"github.com/entrhq/pagepilot/pkg/llm"
	"github.com/entrhq/pagepilot/pkg/types"
)

// Agent interface defines the core capabilities of a PagePilot agent.
// Agents are async event-driven components that process requests through
// an LLM provider and communicate via channels.
type Agent interface {
	// Start begins the agent's event loop in a goroutine.
	// The agent listens for inputs and approval responses on its channels
	// and emits events on the event channel.
	//
	// The agent runs until:
	// - The context is canceled
	// - The shutdown channel is closed
	//
	// Returns an error if the agent is already running.
	Start(ctx context.Context) error

	// Shutdown stops the event loop and waits for it to finish, or for ctx
	// to be canceled. A run in progress is canceled.
	Shutdown(ctx context.Context) error

	// GetChannels returns the communication channels for this agent.
	GetChannels() *types.AgentChannels

	// Run executes one request synchronously and returns how it ended.
	// Events are emitted exactly as for channel-driven requests, so the
	// event channel must be drained while Run executes.
	Run(ctx context.Context, userText string) *types.RunOutcome

	// GetTools returns the tools offered to the model, in catalogue order.
	GetTools() []tools.Tool

	// GetContextInfo returns prompt statistics for display.
	GetContextInfo() *ContextInfo

	// SetProvider swaps the LLM provider. The change applies to the next run.
	SetProvider(provider llm.Provider) error
}

// ContextInfo contains prompt statistics
type ContextInfo struct {
	Model    string
	Endpoint string

	// Estimated sizes of the two fixed system turns
	SystemPromptTokens int
	CatalogueTokens    int

	ToolCount int
	ToolNames []string

	MaxSteps int
}
