package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/entrhq/pagepilot/pkg/agent/tools"
	"github.com/entrhq/pagepilot/pkg/llm"
	"github.com/entrhq/pagepilot/pkg/types"
)

// ErrNoActiveTab is the outcome error of a run started without a tab.
var ErrNoActiveTab = errors.New("no active tab")

// ErrMalformedAction is the outcome error of a completion that named neither
// a tool nor a final answer.
var ErrMalformedAction = errors.New("agent did not specify a tool or final answer")

// Run executes one request. Requests are serialized: a second call waits for
// the first to finish.
func (a *DefaultAgent) Run(ctx context.Context, userText string) *types.RunOutcome {
	a.turnMu.Lock()
	defer a.turnMu.Unlock()

	if a.tab == nil {
		a.emitEvent(types.NewMessageEvent(types.MessageLevelWarning, msgNoActiveTab))
		outcome := &types.RunOutcome{Kind: types.OutcomeNoTab, Err: ErrNoActiveTab}
		a.emitEvent(types.NewRunCompleteEvent(outcome))
		return outcome
	}

	provider := a.GetProvider()
	var outcome *types.RunOutcome
	registry, err := tools.NewRegistry(a.toolset(a.tab, provider, a.approvalManager)...)
	if err != nil {
		agentDebugLog.Errorf("Tool registry: %v", err)
		a.emitEvent(types.NewMessageEvent(types.MessageLevelWarning, stepErrorMessage(1, err)))
		outcome = &types.RunOutcome{
			Kind: types.OutcomeTransportError,
			Err:  fmt.Errorf("failed to build tool registry: %w", err),
		}
	} else {
		transcript := types.NewTranscript(
			types.NewSystemTurn(SystemPrompt),
			types.NewSystemTurn(ToolCatalogue),
			types.NewUserTurn(userText),
		)

		agentDebugLog.Infof("Run started: %q (max steps %d)", userText, a.maxSteps)
		outcome = a.runAgentLoop(ctx, provider, registry, transcript)
	}

	if outcome.Kind != types.OutcomeFinal {
		a.emitEvent(types.NewMessageEvent(types.MessageLevelWarning, msgGiveUp))
	}
	agentDebugLog.Infof("Run finished: %s after %d steps, %d tool calls", outcome.Kind, outcome.Steps, outcome.ToolCalls)
	a.emitEvent(types.NewRunCompleteEvent(outcome))
	return outcome
}

// runAgentLoop alternates model calls and tool executions until a terminal
// state. At most maxSteps model calls are made.
func (a *DefaultAgent) runAgentLoop(ctx context.Context, provider llm.Provider, registry *tools.Registry, transcript *types.Transcript) *types.RunOutcome {
	outcome := &types.RunOutcome{Kind: types.OutcomeMaxSteps}

	for step := 1; step <= a.maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			outcome.Kind = types.OutcomeCanceled
			outcome.Err = err
			return outcome
		}

		outcome.Steps = step
		a.emitEvent(types.NewStepStartEvent(step, a.maxSteps))

		completion, err := a.callLLM(ctx, provider, transcript, step)
		if err != nil {
			if ctx.Err() != nil {
				outcome.Kind = types.OutcomeCanceled
				outcome.Err = ctx.Err()
				return outcome
			}
			agentDebugLog.Warnf("Step %d error: %v", step, err)
			a.emitEvent(types.NewMessageEvent(types.MessageLevelWarning, stepErrorMessage(step, err)))
			outcome.Kind = types.OutcomeTransportError
			outcome.Err = err
			return outcome
		}

		action, err := ParseAction(completion)
		if err != nil {
			agentDebugLog.Warnf("Parse error: %v", err)
			agentDebugLog.Debugf("Raw response: %s", string(completion.Raw))
			a.emitEvent(types.NewMessageEvent(types.MessageLevelWarning, msgUnparseable))
			outcome.Kind = types.OutcomeParseError
			outcome.Err = err
			return outcome
		}

		if action.IsFinal() {
			a.emitEvent(types.NewMessageEvent(types.MessageLevelAnswer, action.Final))
			outcome.Kind = types.OutcomeFinal
			outcome.Final = action.Final
			return outcome
		}

		if !action.IsToolCall() {
			agentDebugLog.Warnf("Invalid action in step %d: %s", step, string(completion.Raw))
			a.emitEvent(types.NewMessageEvent(types.MessageLevelWarning, msgMalformed))
			outcome.Kind = types.OutcomeMalformedAction
			outcome.Err = ErrMalformedAction
			return outcome
		}

		result := a.executeTool(ctx, registry, action)
		outcome.ToolCalls++

		transcript.Append(
			types.NewToolCallTurn(action.Tool, action.Args),
			types.NewToolResultTurn(result.String()),
		)
	}

	outcome.Err = fmt.Errorf("no final answer after %d steps", a.maxSteps)
	return outcome
}
