package agent

import "fmt"

// SystemPrompt is the first system turn of every transcript.
const SystemPrompt = `You are an agent that helps users by using tools to interact with current web page or web pages.
Note that User is currently already on a web page and interacting.
Think step by step about what the user wants to accomplish.
Use tool calls when you need to perform actions.
When you're done with all tasks, provide your final answer without making any tool calls.`

// ToolCatalogue is the second system turn. Tool dispatch relies on the
// names it lists, so its text must not change.
const ToolCatalogue = `
You can use these tools by making tool calls:

1) goto_website: Navigate to a URL
   Arguments: { "url": "string" }
   Returns: { "ok": boolean, "url": string, "preview": string }

2) summarize_page: Summarize current page
   Arguments: { "length": "short|medium|long" }
   Returns: { "summary": string, "url": string }

3) fill_form: Fill form fields on current page
   Arguments: { "fields": { "<labelOrName>": "<value>", ... }, "submit": boolean }
   Returns: { "ok": boolean, "result": { "filled": array, "unmatched": array, "submitted": boolean }}

When you want to use a tool, make a tool call with the appropriate exact function name and arguments.
When you are finished with all tasks, provide your final response without tool calls.
Do NOT change the function names.
`

// User-visible notices.
const (
	msgNoActiveTab = "⚠️ Could not get active tab. Please make sure you have an active tab."
	msgUnparseable = "⚠️ Agent returned unparseable response. Stopping."
	msgMalformed   = "⚠️ Agent did not specify a tool or final answer."
	msgGiveUp      = "⚠️ Reached max steps or failed. You can try again."
)

func stepErrorMessage(step int, err error) string {
	return fmt.Sprintf("⚠️ Error in step %d: %s", step, err.Error())
}

func toolTraceMessage(tool, indented string) string {
	return fmt.Sprintf("🔧 %s → %s", tool, indented)
}
