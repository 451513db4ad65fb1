package browser

import (
	"github.com/entrhq/pagepilot/pkg/agent/tools"
	"github.com/entrhq/pagepilot/pkg/llm"
)

// NewTools returns the browser tools in catalogue order.
func NewTools(t PageTab, provider llm.Provider, approver Approver) []tools.Tool {
	return []tools.Tool{
		NewGotoWebsiteTool(t),
		NewSummarizePageTool(t, provider),
		NewFillFormTool(t, approver),
	}
}
