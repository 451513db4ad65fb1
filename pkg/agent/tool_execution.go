package agent

import (
	"context"
	"errors"

	"github.com/entrhq/pagepilot/pkg/agent/tools"
	"github.com/entrhq/pagepilot/pkg/types"
)

// executeTool runs the action's tool and emits the call, its result and the
// user-visible trace. Failures come back as error-shaped results.
func (a *DefaultAgent) executeTool(ctx context.Context, registry *tools.Registry, action Action) tools.Result {
	agentDebugLog.Debugf("Tool call: %s %s", action.Tool, string(action.Args))
	a.emitEvent(types.NewToolCallEvent(action.Tool, tools.ArgumentsMap(action.Args)))

	result := registry.Execute(ctx, action.Tool, action.Args)

	if msg, failed := result.ErrorMessage(); failed {
		agentDebugLog.Debugf("Tool %s reported error: %s", action.Tool, msg)
		a.emitEvent(types.NewToolResultErrorEvent(action.Tool, result, errors.New(msg)))
	} else {
		a.emitEvent(types.NewToolResultEvent(action.Tool, result))
	}

	a.emitEvent(types.NewMessageEvent(types.MessageLevelTrace, toolTraceMessage(action.Tool, result.Indent())))
	return result
}
