package headless

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ExecutionSummary is the record of one headless run. It is written as
// execution.json and rendered into summary.md.
type ExecutionSummary struct {
	Task        string               `json:"task"`
	StartURL    string               `json:"start_url,omitempty"`
	Status      string               `json:"status"`
	Outcome     string               `json:"outcome,omitempty"`
	FinalAnswer string               `json:"final_answer,omitempty"`
	Error       string               `json:"error,omitempty"`
	StartTime   time.Time            `json:"start_time"`
	EndTime     time.Time            `json:"end_time"`
	Duration    time.Duration        `json:"duration"`
	Submissions []SubmissionDecision `json:"submissions"`
	Metrics     ExecutionMetrics     `json:"metrics"`
}

// ExecutionMetrics counts the work done in a run.
type ExecutionMetrics struct {
	Steps            int `json:"steps"`
	ToolCalls        int `json:"tool_calls"`
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TokensUsed       int `json:"tokens_used"`
}

// artifact is one file in the output directory.
type artifact struct {
	name   string
	render func(*ExecutionSummary) ([]byte, error)
}

var runArtifacts = []artifact{
	{name: "execution.json", render: func(s *ExecutionSummary) ([]byte, error) { return indentJSON(s) }},
	{name: "summary.md", render: renderSummaryMarkdown},
	{name: "metrics.json", render: func(s *ExecutionSummary) ([]byte, error) { return indentJSON(s.Metrics) }},
}

// ArtifactWriter writes the run artifacts into one directory.
type ArtifactWriter struct {
	outputDir string
}

func NewArtifactWriter(outputDir string) *ArtifactWriter {
	return &ArtifactWriter{outputDir: outputDir}
}

// WriteAll writes execution.json, summary.md and metrics.json. It stops at
// the first file that fails.
func (w *ArtifactWriter) WriteAll(summary *ExecutionSummary) error {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, a := range runArtifacts {
		data, err := a.render(summary)
		if err != nil {
			return fmt.Errorf("failed to render %s: %w", a.name, err)
		}
		if err := os.WriteFile(filepath.Join(w.outputDir, a.name), data, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", a.name, err)
		}
	}
	return nil
}

func indentJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func renderSummaryMarkdown(s *ExecutionSummary) ([]byte, error) {
	var b strings.Builder
	field := func(label, value string) {
		fmt.Fprintf(&b, "**%s:** %s\n\n", label, value)
	}

	b.WriteString("# PagePilot Headless Execution Summary\n\n")
	field("Task", s.Task)
	if s.StartURL != "" {
		field("Start URL", s.StartURL)
	}
	field("Status", s.Status)
	field("Started", s.StartTime.Format(time.RFC3339))
	field("Completed", s.EndTime.Format(time.RFC3339))
	field("Duration", s.Duration.String())

	b.WriteString("## Result\n\n")
	if s.Error != "" {
		fmt.Fprintf(&b, "❌ **Error:** %s\n\n", s.Error)
	} else {
		b.WriteString("✅ **Success**\n\n")
	}
	if s.FinalAnswer != "" {
		b.WriteString(s.FinalAnswer + "\n\n")
	}

	if len(s.Submissions) > 0 {
		b.WriteString("## Form Submissions\n\n")
		for _, sub := range s.Submissions {
			if sub.Approved {
				fmt.Fprintf(&b, "- ✅ `%s`\n", sub.URL)
				continue
			}
			fmt.Fprintf(&b, "- ❌ `%s`: %s\n", sub.URL, sub.Reason)
		}
		b.WriteString("\n")
	}

	m := s.Metrics
	b.WriteString("## Metrics\n\n")
	fmt.Fprintf(&b, "- **Outcome:** %s\n", s.Outcome)
	fmt.Fprintf(&b, "- **Steps:** %d\n", m.Steps)
	fmt.Fprintf(&b, "- **Tool Calls:** %d\n", m.ToolCalls)
	fmt.Fprintf(&b, "- **Tokens Used:** %d (prompt %d, completion %d)\n", m.TokensUsed, m.PromptTokens, m.CompletionTokens)

	return []byte(b.String()), nil
}
