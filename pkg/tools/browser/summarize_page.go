package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/entrhq/pagepilot/pkg/agent/tools"
	"github.com/entrhq/pagepilot/pkg/llm"
	"github.com/entrhq/pagepilot/pkg/page"
	"github.com/entrhq/pagepilot/pkg/types"
)

const (
	// SummaryInputChars bounds the page text sent to the summarizer.
	SummaryInputChars = 5000

	defaultSummaryLength = "short"
	summarizerPrompt     = "You are a concise summarizer."
	msgNoPageContent     = "Unable to retrieve page content"
)

// SummarizePageTool asks the model for a summary of the current page.
type SummarizePageTool struct {
	tab      PageTab
	provider llm.Provider
}

// NewSummarizePageTool creates a new summarize_page tool.
func NewSummarizePageTool(t PageTab, provider llm.Provider) *SummarizePageTool {
	return &SummarizePageTool{tab: t, provider: provider}
}

// Name returns the tool name.
func (t *SummarizePageTool) Name() string {
	return "summarize_page"
}

// Description returns the tool description.
func (t *SummarizePageTool) Description() string {
	return "Summarize current page"
}

// Schema returns the tool's JSON schema.
func (t *SummarizePageTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"length": map[string]interface{}{
				"type":        "string",
				"description": "Summary length: short (default), medium or long",
				"enum":        []string{"short", "medium", "long"},
			},
		},
		nil,
	)
}

// Execute returns {summary, url}. A failed model call is returned as an error.
func (t *SummarizePageTool) Execute(ctx context.Context, args json.RawMessage) (tools.Result, error) {
	text := t.tab.GetPageText(ctx)
	if text.Text == "" {
		return tools.NewResult("summary", msgNoPageContent, "url", text.URL), nil
	}

	length := defaultSummaryLength
	if v := decodeArgs(args)["length"]; page.Truthy(v) {
		length = page.TextValue(v)
	}

	completion, err := t.provider.Complete(ctx, llm.Request{
		Turns: []types.Turn{
			types.NewSystemTurn(summarizerPrompt),
			types.NewUserTurn(SummaryPrompt(length, text.URL, text.Text)),
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, err
	}

	return tools.NewResult(
		"summary", strings.TrimSpace(completion.SummaryText()),
		"url", text.URL,
	), nil
}

// SummaryPrompt builds the user turn of a summarization request.
func SummaryPrompt(length, pageURL, text string) string {
	return fmt.Sprintf("Summarize the following web page in a %s paragraph.\nURL: %s\n---\n%s",
		length, pageURL, truncate(text, SummaryInputChars))
}
