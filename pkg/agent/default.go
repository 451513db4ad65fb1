package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/pagepilot/pkg/agent/approval"
	"github.com/entrhq/pagepilot/pkg/agent/tools"
	"github.com/entrhq/pagepilot/pkg/llm"
	"github.com/entrhq/pagepilot/pkg/llm/tokenizer"
	"github.com/entrhq/pagepilot/pkg/logging"
	browsertools "github.com/entrhq/pagepilot/pkg/tools/browser"
	"github.com/entrhq/pagepilot/pkg/types"
)

// DefaultMaxSteps is the number of model calls allowed per request.
const DefaultMaxSteps = 6

var agentDebugLog *logging.Logger

func init() {
	var err error
	agentDebugLog, err = logging.NewLogger("agent")
	if err != nil {
		// Logger fell back to stderr due to initialization failure
		agentDebugLog.Warnf("Failed to initialize agent logger, using stderr fallback: %v", err)
	}
}

// DefaultAgent is the standard implementation of the Agent interface.
// It runs one request at a time against the tab it was given.
type DefaultAgent struct {
	provider   llm.Provider
	providerMu sync.RWMutex
	channels   *types.AgentChannels
	maxSteps   int
	bufferSize int

	// Tab the tools operate on; nil means no active tab.
	tab browsertools.PageTab

	// toolset builds the tools of one run.
	toolset func(browsertools.PageTab, llm.Provider, browsertools.Approver) []tools.Tool

	// Approval system
	approvalManager *approval.Manager
	approvalTimeout time.Duration
	approvalOpts    []approval.Option

	// Running state
	running bool
	runMu   sync.Mutex

	// turnMu serializes requests.
	turnMu sync.Mutex

	// Token usage estimates
	tokenizer *tokenizer.Tokenizer
}

// AgentOption is a function that configures an agent
type AgentOption func(*DefaultAgent)

// WithMaxSteps sets the number of model calls allowed per request.
// Values below 1 are ignored.
func WithMaxSteps(steps int) AgentOption {
	return func(a *DefaultAgent) {
		if steps >= 1 {
			a.maxSteps = steps
		}
	}
}

// WithTab sets the tab the browser tools operate on
func WithTab(t browsertools.PageTab) AgentOption {
	return func(a *DefaultAgent) {
		a.tab = t
	}
}

// WithBufferSize sets the channel buffer size
func WithBufferSize(size int) AgentOption {
	return func(a *DefaultAgent) {
		a.bufferSize = size
	}
}

// WithApprovalTimeout sets the timeout for approval requests
func WithApprovalTimeout(timeout time.Duration) AgentOption {
	return func(a *DefaultAgent) {
		a.approvalTimeout = timeout
	}
}

// WithAutoApproval replaces the URL check that lets form submissions through
// without a prompt.
func WithAutoApproval(fn func(pageURL string) bool) AgentOption {
	return func(a *DefaultAgent) {
		a.approvalOpts = append(a.approvalOpts, approval.WithAutoApproval(fn))
	}
}

// NewDefaultAgent creates a new DefaultAgent with the given provider and options.
func NewDefaultAgent(provider llm.Provider, opts ...AgentOption) *DefaultAgent {
	tok, err := tokenizer.New()
	if err != nil {
		agentDebugLog.Warnf("Token estimates will use a length heuristic: %v", err)
		tok = nil
	}

	a := &DefaultAgent{
		provider:        provider,
		maxSteps:        DefaultMaxSteps,
		bufferSize:      10,
		approvalTimeout: approval.DefaultTimeout,
		tokenizer:       tok,
		toolset:         browsertools.NewTools,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.channels = types.NewAgentChannels(a.bufferSize)
	a.approvalManager = approval.NewManager(a.approvalTimeout, a.emitEvent, a.approvalOpts...)

	return a
}

// Start begins the agent's event loop in a goroutine.
func (a *DefaultAgent) Start(ctx context.Context) error {
	a.runMu.Lock()
	if a.running {
		a.runMu.Unlock()
		return fmt.Errorf("agent is already running")
	}
	a.running = true
	a.runMu.Unlock()

	go a.eventLoop(ctx)

	return nil
}

// Shutdown gracefully stops the agent.
func (a *DefaultAgent) Shutdown(ctx context.Context) error {
	select {
	case a.channels.Shutdown <- struct{}{}:
	default:
	}

	select {
	case <-a.channels.Done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetChannels returns the communication channels for this agent.
func (a *DefaultAgent) GetChannels() *types.AgentChannels {
	return a.channels
}

// eventLoop is the main processing loop for the agent.
func (a *DefaultAgent) eventLoop(ctx context.Context) {
	defer a.channels.Close()
	defer func() {
		a.runMu.Lock()
		a.running = false
		a.runMu.Unlock()
	}()

	// Requests run on their own goroutine so approval responses keep
	// flowing while a run waits for one.
	runCtx, cancelRuns := context.WithCancel(ctx)
	var inflight sync.WaitGroup
	defer func() {
		cancelRuns()
		inflight.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			a.emitEvent(types.NewErrorEvent(ctx.Err()))
			return

		case <-a.channels.Shutdown:
			return

		case input := <-a.channels.Input:
			if input == nil {
				return
			}
			inflight.Add(1)
			go func() {
				defer inflight.Done()
				a.processInput(runCtx, input)
			}()

		case resp := <-a.channels.Approval:
			if resp == nil {
				return
			}
			a.approvalManager.HandleResponse(resp)
		}
	}
}

// processInput handles a single input from the user.
func (a *DefaultAgent) processInput(ctx context.Context, input *types.Input) {
	request, ok := input.Request()
	if !ok {
		if input.Kind != types.InputKindRequest {
			a.emitEvent(types.NewErrorEvent(fmt.Errorf("unsupported input kind: %s", input.Kind)))
		}
		a.emitEvent(types.NewTurnEndEvent())
		return
	}

	a.emitEvent(types.NewUpdateBusyEvent(true))
	a.Run(ctx, request)
	a.emitEvent(types.NewUpdateBusyEvent(false))
	a.emitEvent(types.NewTurnEndEvent())
}

// GetTools returns the browser tools for the current tab, or nil when there
// is no tab.
func (a *DefaultAgent) GetTools() []tools.Tool {
	if a.tab == nil {
		return nil
	}
	return a.toolset(a.tab, a.GetProvider(), a.approvalManager)
}

// GetContextInfo returns prompt statistics for display
func (a *DefaultAgent) GetContextInfo() *ContextInfo {
	info := &ContextInfo{
		SystemPromptTokens: a.tokenizer.CountTokens(SystemPrompt),
		CatalogueTokens:    a.tokenizer.CountTokens(ToolCatalogue),
		MaxSteps:           a.maxSteps,
	}

	if p := a.GetProvider(); p != nil {
		info.Model = p.GetModel()
		info.Endpoint = p.GetEndpoint()
	}

	for _, t := range a.GetTools() {
		info.ToolNames = append(info.ToolNames, t.Name())
	}
	info.ToolCount = len(info.ToolNames)
	return info
}

// GetProvider returns the LLM provider used by this agent
func (a *DefaultAgent) GetProvider() llm.Provider {
	a.providerMu.RLock()
	defer a.providerMu.RUnlock()
	return a.provider
}

// SetProvider updates the LLM provider used by this agent.
// Runs already in progress keep the provider they started with.
func (a *DefaultAgent) SetProvider(provider llm.Provider) error {
	if provider == nil {
		return fmt.Errorf("provider cannot be nil")
	}

	a.providerMu.Lock()
	defer a.providerMu.Unlock()
	a.provider = provider
	return nil
}

// emitEvent sends an event on the event channel.
// This is a blocking send to ensure critical events like TurnEnd are not dropped.
// It safely handles the case where the event channel may be closed during shutdown.
func (a *DefaultAgent) emitEvent(event *types.AgentEvent) {
	defer func() {
		if r := recover(); r != nil {
			agentDebugLog.Debugf("dropped %s event after shutdown", event.Type)
		}
	}()
	a.channels.Event <- event
}
