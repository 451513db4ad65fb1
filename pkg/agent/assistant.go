package agent

import (
	"context"

	"github.com/entrhq/pagepilot/pkg/llm"
	"github.com/entrhq/pagepilot/pkg/types"
)

// apiName labels model call events.
const apiName = "chat"

// callLLM sends the transcript at temperature 0 and reports token usage.
func (a *DefaultAgent) callLLM(ctx context.Context, provider llm.Provider, transcript *types.Transcript, step int) (*llm.Completion, error) {
	turns := transcript.Turns()
	agentDebugLog.Debugf("LLM call step %d: %d turns to %s (%s)", step, len(turns), provider.GetEndpoint(), provider.GetModel())

	a.emitEvent(types.NewAPICallStartEvent(apiName, step))
	completion, err := provider.Complete(ctx, llm.Request{Turns: turns, Temperature: 0})
	a.emitEvent(types.NewAPICallEndEvent(apiName, step))
	if err != nil {
		return nil, err
	}

	agentDebugLog.Debugf("LLM response step %d: %s", step, string(completion.Raw))
	a.emitTokenUsage(turns, completion)
	return completion, nil
}

// emitTokenUsage reports the endpoint's own counts when it sent them and
// estimates otherwise.
func (a *DefaultAgent) emitTokenUsage(turns []types.Turn, completion *llm.Completion) {
	if u := completion.Usage; u != nil && (u.PromptTokens > 0 || u.CompletionTokens > 0) {
		a.emitEvent(types.NewTokenUsageEvent(u.PromptTokens, u.CompletionTokens).WithMetadata("estimated", false))
		return
	}

	prompt := a.tokenizer.CountTurnsTokens(turns)
	completionTokens := a.tokenizer.CountTokens(completion.Content)
	for _, call := range completion.ToolCalls {
		if call.Function != nil {
			completionTokens += a.tokenizer.CountTokens(call.Function.Name) + a.tokenizer.CountTokens(string(call.Function.Arguments))
		}
	}
	a.emitEvent(types.NewTokenUsageEvent(prompt, completionTokens).WithMetadata("estimated", true))
}
