package types

import "sync"

// AgentChannels groups the channels used to talk to a running agent.
type AgentChannels struct {
	// Input receives user inputs.
	Input chan *Input

	// Event carries agent events to the executor.
	Event chan *AgentEvent

	// Approval receives answers to approval requests.
	Approval chan *ApprovalResponse

	// Shutdown is closed (or signaled) to stop the agent.
	Shutdown chan struct{}

	// Done is closed once the agent has stopped.
	Done chan struct{}

	closeOnce sync.Once
}

// NewAgentChannels creates channels with the given buffer size for inputs and events.
func NewAgentChannels(bufferSize int) *AgentChannels {
	return &AgentChannels{
		Input:    make(chan *Input, bufferSize),
		Event:    make(chan *AgentEvent, bufferSize),
		Approval: make(chan *ApprovalResponse, bufferSize),
		Shutdown: make(chan struct{}, 1),
		Done:     make(chan struct{}),
	}
}

// Close closes the event and done channels. Safe to call multiple times.
func (c *AgentChannels) Close() {
	c.closeOnce.Do(func() {
		close(c.Event)
		close(c.Done)
	})
}
