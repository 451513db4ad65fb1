// Package cli provides the interactive terminal executor for PagePilot.
//
// Example usage:
//
//	ag := agent.NewDefaultAgent(provider, agent.WithTab(client))
//	executor := cli.NewExecutor(ag, cli.WithURLSource(client.URL))
//	if err := executor.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// Besides requests for the agent, the prompt understands:
//
//	/copy     copy the last answer to the clipboard
//	/url      print the current tab URL
//	/context  print prompt statistics
//	exit      leave (also "quit")
package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/atotto/clipboard"

	"github.com/entrhq/pagepilot/pkg/agent"
	"github.com/entrhq/pagepilot/pkg/agent/tools"
	"github.com/entrhq/pagepilot/pkg/types"
)

// Executor is a CLI-based executor that enables turn-by-turn conversation
// with an agent through terminal input/output.
type Executor struct {
	agent  agent.Agent
	reader *bufio.Reader
	writer io.Writer

	// Display options
	highlight bool
	styles    styles

	urlSource func() string
	copyText  func(string) error

	// State tracking
	mu         sync.Mutex
	lastAnswer string
	usage      types.TokenUsage
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*Executor)

// WithWriter sets a custom output writer (default is os.Stdout).
func WithWriter(w io.Writer) ExecutorOption {
	return func(e *Executor) {
		e.writer = w
	}
}

// WithReader sets a custom input reader (default is os.Stdin).
func WithReader(r io.Reader) ExecutorOption {
	return func(e *Executor) {
		e.reader = bufio.NewReader(r)
	}
}

// WithHighlight enables/disables syntax highlighting of tool results.
func WithHighlight(on bool) ExecutorOption {
	return func(e *Executor) {
		e.highlight = on
	}
}

// WithURLSource sets the function /url reports.
func WithURLSource(fn func() string) ExecutorOption {
	return func(e *Executor) {
		e.urlSource = fn
	}
}

// WithClipboard replaces the clipboard writer used by /copy.
func WithClipboard(fn func(string) error) ExecutorOption {
	return func(e *Executor) {
		e.copyText = fn
	}
}

// NewExecutor creates a new CLI executor for the given agent.
func NewExecutor(agent agent.Agent, opts ...ExecutorOption) *Executor {
	e := &Executor{
		agent:     agent,
		reader:    bufio.NewReader(os.Stdin),
		writer:    os.Stdout,
		highlight: true,
		copyText:  clipboard.WriteAll,
	}

	for _, opt := range opts {
		opt(e)
	}
	e.styles = newStyles(e.writer)

	return e
}

// Run starts the executor and begins the conversation loop.
// Returns when the user exits or an error occurs.
func (e *Executor) Run(ctx context.Context) error {
	if err := e.agent.Start(ctx); err != nil {
		return fmt.Errorf("failed to start agent: %w", err)
	}

	channels := e.agent.GetChannels()

	eventsDone := make(chan struct{})
	turnEnd := make(chan struct{}, 1)
	go e.handleEvents(channels, eventsDone, turnEnd)

	fmt.Fprintln(e.writer, e.styles.header.Render("PagePilot"))
	fmt.Fprintln(e.writer, e.styles.tips.Render("Ask about the current page. /copy copies the last answer, /url shows the page, exit quits."))
	fmt.Fprintln(e.writer)

	for {
		select {
		case <-ctx.Done():
			e.shutdown(ctx)
			<-eventsDone
			return ctx.Err()
		default:
		}

		fmt.Fprint(e.writer, e.styles.prompt.Render(">")+" ")
		input, err := e.reader.ReadString('\n')
		if err != nil && (err != io.EOF || input == "") {
			e.shutdown(ctx)
			<-eventsDone
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		switch {
		case input == "":
			continue
		case input == "exit" || input == "quit":
			e.shutdown(ctx)
			<-eventsDone
			return nil
		case strings.HasPrefix(input, "/"):
			e.handleCommand(input)
			continue
		}

		channels.Input <- types.NewRequestInput(input)
		<-turnEnd
	}
}

// handleCommand runs a slash command.
func (e *Executor) handleCommand(input string) {
	switch strings.Fields(input)[0] {
	case "/copy":
		e.mu.Lock()
		answer := e.lastAnswer
		e.mu.Unlock()
		if answer == "" {
			fmt.Fprintln(e.writer, e.styles.tips.Render("Nothing to copy yet."))
			return
		}
		if err := e.copyText(answer); err != nil {
			fmt.Fprintln(e.writer, e.styles.warning.Render(fmt.Sprintf("Copy failed: %v", err)))
			return
		}
		fmt.Fprintln(e.writer, e.styles.tips.Render("Copied last answer to clipboard."))

	case "/url":
		if e.urlSource == nil {
			fmt.Fprintln(e.writer, e.styles.tips.Render("No tab attached."))
			return
		}
		fmt.Fprintln(e.writer, e.urlSource())

	case "/context":
		info := e.agent.GetContextInfo()
		e.mu.Lock()
		usage := e.usage
		e.mu.Unlock()
		fmt.Fprintf(e.writer, "model: %s (%s)\ntools: %s\nmax steps: %d\nsystem prompt: ~%d tokens, catalogue: ~%d tokens\nsession tokens: %d prompt, %d completion\n",
			info.Model, info.Endpoint, strings.Join(info.ToolNames, ", "), info.MaxSteps,
			info.SystemPromptTokens, info.CatalogueTokens, usage.PromptTokens, usage.CompletionTokens)

	default:
		fmt.Fprintln(e.writer, e.styles.warning.Render("Unknown command: "+input))
	}
}

// handleEvents processes events from the agent and renders them to the terminal.
func (e *Executor) handleEvents(channels *types.AgentChannels, done chan struct{}, turnEnd chan struct{}) {
	defer close(done)

	for event := range channels.Event {
		e.handleEvent(event, channels.Approval, turnEnd)
	}
}

// handleEvent processes a single event based on its type
func (e *Executor) handleEvent(event *types.AgentEvent, approvals chan<- *types.ApprovalResponse, turnEnd chan struct{}) {
	switch event.Type {
	case types.EventTypeMessage:
		e.handleMessage(event.Level, event.Content)
	case types.EventTypeStepStart:
		fmt.Fprintln(e.writer, e.styles.tips.Render(fmt.Sprintf("Agent step %d/%d...", event.Step, event.MaxSteps)))
	case types.EventTypeToolApprovalRequest:
		e.handleApprovalRequest(event, approvals)
	case types.EventTypeToolApprovalTimeout:
		fmt.Fprintln(e.writer, e.styles.warning.Render("Confirmation timed out; submission skipped."))
	case types.EventTypeToolApprovalGranted:
		if auto, _ := event.Metadata["auto_approved"].(bool); auto {
			fmt.Fprintln(e.writer, e.styles.tips.Render("Submission auto-approved for this page."))
		}
	case types.EventTypeTokenUsage:
		e.recordUsage(event.TokenUsage)
	case types.EventTypeError:
		fmt.Fprintln(e.writer, e.styles.warning.Render(fmt.Sprintf("❌ Error: %v", event.Error)))
	case types.EventTypeTurnEnd:
		e.handleTurnEnd(turnEnd)
	}
}

func (e *Executor) handleMessage(level types.MessageLevel, content string) {
	switch level {
	case types.MessageLevelAnswer:
		e.mu.Lock()
		e.lastAnswer = content
		e.mu.Unlock()
		fmt.Fprintln(e.writer, e.styles.answer.Render(content))
	case types.MessageLevelTrace:
		fmt.Fprintln(e.writer, e.renderTrace(content))
	default:
		fmt.Fprintln(e.writer, e.styles.warning.Render(content))
	}
}

// renderTrace highlights the JSON part of a "tool → json" trace line.
func (e *Executor) renderTrace(content string) string {
	head, body, found := strings.Cut(content, " → ")
	if !found {
		return e.styles.tool.Render(content)
	}
	return e.styles.tool.Render(head+" →") + " " + e.highlightJSON(body)
}

func (e *Executor) highlightJSON(src string) string {
	if !e.highlight {
		return src
	}
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, src, "json", "terminal256", "monokai"); err != nil {
		return src
	}
	return strings.TrimRight(buf.String(), "\n")
}

// handleApprovalRequest shows the pending submission and reads y/n.
func (e *Executor) handleApprovalRequest(event *types.AgentEvent, approvals chan<- *types.ApprovalResponse) {
	question := "Continue?"
	details := ""
	if preview, ok := event.Preview.(*tools.ToolPreview); ok && preview != nil {
		question = preview.Description
		details = preview.Content
		if u, ok := preview.Metadata["url"].(string); ok && u != "" {
			details = "Page: " + u + "\n" + details
		}
	}

	box := question
	if details != "" {
		box += "\n\n" + e.highlightJSON(details)
	}
	fmt.Fprintln(e.writer, e.styles.approval.Render(box))
	fmt.Fprint(e.writer, e.styles.prompt.Render("[y/n]")+" ")

	decision := types.ApprovalRejected
	line, _ := e.reader.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		decision = types.ApprovalGranted
	}
	approvals <- types.NewApprovalResponse(event.ApprovalID, decision)
}

func (e *Executor) recordUsage(u *types.TokenUsage) {
	if u == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.usage.PromptTokens += u.PromptTokens
	e.usage.CompletionTokens += u.CompletionTokens
	e.usage.TotalTokens += u.TotalTokens
}

func (e *Executor) handleTurnEnd(turnEnd chan struct{}) {
	select {
	case turnEnd <- struct{}{}:
	default:
	}
}

// shutdown gracefully shuts down the agent.
func (e *Executor) shutdown(ctx context.Context) {
	fmt.Fprintln(e.writer, "\nShutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := e.agent.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(e.writer, "Warning: shutdown error: %v\n", err)
	}
}
