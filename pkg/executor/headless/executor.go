package headless

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/entrhq/pagepilot/pkg/agent"
	"github.com/entrhq/pagepilot/pkg/logging"
	"github.com/entrhq/pagepilot/pkg/types"
)

const (
	statusSuccess = "success"
	statusFailed  = "failed"
)

var headlessLog *logging.Logger

func init() {
	var err error
	headlessLog, err = logging.NewLogger("headless")
	if err != nil {
		headlessLog.Warnf("session log unavailable: %v", err)
	}
}

// Navigator opens the start URL before the task runs.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// Executor implements the headless mode executor
type Executor struct {
	agent          agent.Agent
	config         *Config
	navigator      Navigator
	constraintMgr  *ConstraintManager
	artifactWriter *ArtifactWriter
	logger         *Logger

	// Execution state
	mu        sync.Mutex
	startTime time.Time
	summary   *ExecutionSummary
}

// Option configures an Executor.
type Option func(*Executor)

// WithNavigator sets the tab used to open Config.StartURL.
func WithNavigator(n Navigator) Option {
	return func(e *Executor) {
		e.navigator = n
	}
}

// WithLogger replaces the console logger.
func WithLogger(l *Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// NewExecutor creates a new headless executor with a pre-configured agent
func NewExecutor(ag agent.Agent, config *Config, opts ...Option) (*Executor, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	constraintMgr, err := NewConstraintManager(config.Constraints)
	if err != nil {
		return nil, fmt.Errorf("failed to create constraint manager: %w", err)
	}

	e := &Executor{
		agent:          ag,
		config:         config,
		constraintMgr:  constraintMgr,
		artifactWriter: NewArtifactWriter(filepath.Clean(config.Artifacts.OutputDir)),
		logger:         NewLogger(parseLogLevel(config.Logging.Verbosity)),
		summary: &ExecutionSummary{
			Task:     config.Task,
			StartURL: config.StartURL,
			Status:   "running",
		},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Run executes the headless task
func (e *Executor) Run(ctx context.Context) error {
	e.startTime = time.Now()
	e.summary.StartTime = e.startTime

	e.logger.Header("PagePilot headless run")
	e.logger.Infof("Task: %s", e.config.Task)
	headlessLog.Infof("Starting execution: %s", e.config.Task)

	execCtx := ctx
	if e.config.Constraints.Timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, e.config.Constraints.Timeout)
		defer cancel()
	}

	if e.config.StartURL != "" && e.navigator != nil {
		e.logger.Section("Opening " + e.config.StartURL)
		if err := e.navigator.Navigate(execCtx, e.config.StartURL); err != nil {
			return e.fail(fmt.Errorf("failed to open start URL: %w", err))
		}
	}

	if err := e.agent.Start(ctx); err != nil {
		return e.fail(fmt.Errorf("failed to start agent: %w", err))
	}

	channels := e.agent.GetChannels()

	eventDone := make(chan struct{})
	go func() {
		defer close(eventDone)
		for event := range channels.Event {
			e.handleEvent(channels, event)
		}
		headlessLog.Debugf("Event consumer finished")
	}()

	channels.Input <- types.NewRequestInput(e.config.Task)

	select {
	case <-channels.Done:
		headlessLog.Debugf("Agent completed - Done channel closed")
	case <-execCtx.Done():
		e.stopAgent()
		<-eventDone
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			return e.fail(fmt.Errorf("execution timeout exceeded"))
		}
		return e.fail(fmt.Errorf("execution canceled: %w", execCtx.Err()))
	}

	<-eventDone

	return e.finalize()
}

// handleEvent updates the summary from one agent event.
func (e *Executor) handleEvent(channels *types.AgentChannels, event *types.AgentEvent) {
	headlessLog.Debugf("Event received: Type=%s", event.Type)

	switch event.Type {
	case types.EventTypeStepStart:
		e.logger.Step(fmt.Sprintf("Agent step %d/%d", event.Step, event.MaxSteps))

	case types.EventTypeToolApprovalRequest:
		e.handleApprovalRequest(channels.Approval, event)

	case types.EventTypeToolCall:
		e.mu.Lock()
		e.summary.Metrics.ToolCalls++
		count := e.summary.Metrics.ToolCalls
		e.mu.Unlock()
		e.logger.ToolCall(event.ToolName, count)

	case types.EventTypeToolResult, types.EventTypeToolResultError:
		e.logger.Debugf("%s result: %v", event.ToolName, event.ToolOutput)

	case types.EventTypeMessage:
		switch event.Level {
		case types.MessageLevelAnswer:
			e.logger.Answer(event.Content)
		case types.MessageLevelTrace:
			e.logger.Verbosef("%s", event.Content)
		default:
			e.logger.Warningf("%s", event.Content)
		}

	case types.EventTypeTokenUsage:
		if event.TokenUsage == nil {
			return
		}
		e.mu.Lock()
		e.summary.Metrics.PromptTokens += event.TokenUsage.PromptTokens
		e.summary.Metrics.CompletionTokens += event.TokenUsage.CompletionTokens
		e.mu.Unlock()
		if err := e.constraintMgr.RecordTokenUsage(event.TokenUsage.TotalTokens); err != nil {
			e.logger.Errorf("Token limit exceeded: %v", err)
			e.mu.Lock()
			e.summary.Status = statusFailed
			e.summary.Error = fmt.Sprintf("Token limit constraint violated: %v", err)
			e.mu.Unlock()
			e.stopAgent()
		}

	case types.EventTypeRunComplete:
		e.recordOutcome(event.Outcome)

	case types.EventTypeTurnEnd:
		headlessLog.Debugf("Turn end received, shutting down")
		e.stopAgent()
	}
}

// handleApprovalRequest answers a form submission request from the URL constraints
func (e *Executor) handleApprovalRequest(approvalChan chan<- *types.ApprovalResponse, event *types.AgentEvent) {
	approvalID := event.ApprovalID
	if approvalID == "" {
		headlessLog.Warnf("approval request missing approval_id")
		return
	}

	pageURL, _ := event.Metadata["url"].(string)

	if err := e.constraintMgr.ValidateSubmission(pageURL); err != nil {
		headlessLog.Infof("Submission rejected: %v", err)
		e.logger.Submission(pageURL, false, err.Error())
		approvalChan <- types.NewApprovalResponse(approvalID, types.ApprovalRejected)
		return
	}

	e.logger.Submission(pageURL, true, "")
	approvalChan <- types.NewApprovalResponse(approvalID, types.ApprovalGranted)
}

func (e *Executor) recordOutcome(outcome *types.RunOutcome) {
	if outcome == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.summary.Outcome = string(outcome.Kind)
	e.summary.Metrics.Steps = outcome.Steps
	e.summary.FinalAnswer = outcome.Final
	if outcome.Succeeded() || e.summary.Status == statusFailed {
		return
	}
	e.summary.Status = statusFailed
	if outcome.Err != nil {
		e.summary.Error = fmt.Sprintf("run ended with %s: %v", outcome.Kind, outcome.Err)
	} else {
		e.summary.Error = fmt.Sprintf("run ended with %s", outcome.Kind)
	}
}

// stopAgent signals the agent to shut down without waiting.
func (e *Executor) stopAgent() {
	select {
	case e.agent.GetChannels().Shutdown <- struct{}{}:
		headlessLog.Debugf("Shutdown signal sent to agent")
	default:
		headlessLog.Debugf("Shutdown channel already signaled")
	}
}

// Stop gracefully stops the executor
func (e *Executor) Stop(ctx context.Context) error {
	return e.agent.Shutdown(ctx)
}

// Summary returns the execution summary.
func (e *Executor) Summary() *ExecutionSummary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.summary
}

// finalize completes the execution and generates artifacts
func (e *Executor) finalize() error {
	e.mu.Lock()
	e.summary.EndTime = time.Now()
	e.summary.Duration = e.summary.EndTime.Sub(e.summary.StartTime)

	state := e.constraintMgr.GetCurrentState()
	e.summary.Submissions = state.Submissions
	e.summary.Metrics.TokensUsed = state.TokensUsed

	if e.summary.Outcome == "" && e.summary.Status != statusFailed {
		e.summary.Status = statusFailed
		e.summary.Error = "agent stopped before the run completed"
	}
	if e.summary.Status != statusFailed {
		e.summary.Status = statusSuccess
	}
	summary := e.summary
	e.mu.Unlock()

	e.writeArtifacts(summary)
	e.logger.Summary(summary.Status, summary)
	headlessLog.Infof("Execution completed: %s (duration: %s)", summary.Status, summary.Duration)

	if summary.Status == statusFailed {
		return fmt.Errorf("execution failed: %s", summary.Error)
	}

	return nil
}

func (e *Executor) writeArtifacts(summary *ExecutionSummary) {
	if !e.config.Artifacts.Enabled {
		return
	}
	if err := e.artifactWriter.WriteAll(summary); err != nil {
		e.logger.Warningf("failed to write artifacts: %v", err)
		return
	}
	e.logger.Verbosef("Artifacts written to %s", e.config.Artifacts.OutputDir)
}

// fail marks the execution as failed and returns an error
func (e *Executor) fail(err error) error {
	e.mu.Lock()
	e.summary.Status = statusFailed
	e.summary.Error = err.Error()
	e.summary.EndTime = time.Now()
	e.summary.Duration = e.summary.EndTime.Sub(e.startTime)
	state := e.constraintMgr.GetCurrentState()
	e.summary.Submissions = state.Submissions
	e.summary.Metrics.TokensUsed = state.TokensUsed
	summary := e.summary
	e.mu.Unlock()

	// Try to generate artifacts even on failure
	e.writeArtifacts(summary)
	e.logger.Summary(summary.Status, summary)

	return err
}
