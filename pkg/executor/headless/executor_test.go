package headless

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/entrhq/pagepilot/pkg/agent"
	"github.com/entrhq/pagepilot/pkg/agent/tools"
	"github.com/entrhq/pagepilot/pkg/llm"
	"github.com/entrhq/pagepilot/pkg/types"
)

// scriptedAgent emits a fixed event list for the first input. A nil script
// never ends the turn.
type scriptedAgent struct {
	channels *types.AgentChannels
	events   []*types.AgentEvent

	mu        sync.Mutex
	inputs    []string
	decisions []types.ApprovalDecision
}

func newScriptedAgent(events ...*types.AgentEvent) *scriptedAgent {
	return &scriptedAgent{channels: types.NewAgentChannels(16), events: events}
}

func (a *scriptedAgent) Start(ctx context.Context) error {
	go func() {
		defer a.channels.Close()
		for {
			select {
			case <-a.channels.Shutdown:
				return
			case in := <-a.channels.Input:
				a.mu.Lock()
				a.inputs = append(a.inputs, in.Text)
				a.mu.Unlock()
				if a.events == nil {
					continue
				}
				for _, ev := range a.events {
					a.channels.Event <- ev
					if ev.Type == types.EventTypeToolApprovalRequest {
						resp := <-a.channels.Approval
						a.mu.Lock()
						a.decisions = append(a.decisions, resp.Decision)
						a.mu.Unlock()
					}
				}
				a.channels.Event <- types.NewTurnEndEvent()
			}
		}
	}()
	return nil
}

func (a *scriptedAgent) Shutdown(ctx context.Context) error {
	select {
	case a.channels.Shutdown <- struct{}{}:
	default:
	}
	<-a.channels.Done
	return nil
}

func (a *scriptedAgent) GetChannels() *types.AgentChannels { return a.channels }
func (a *scriptedAgent) Run(ctx context.Context, userText string) *types.RunOutcome {
	return nil
}
func (a *scriptedAgent) GetTools() []tools.Tool { return nil }
func (a *scriptedAgent) GetContextInfo() *agent.ContextInfo { return &agent.ContextInfo{} }
func (a *scriptedAgent) SetProvider(provider llm.Provider) error { return nil }

type fakeNavigator struct {
	visited []string
	err     error
}

func (n *fakeNavigator) Navigate(ctx context.Context, url string) error {
	n.visited = append(n.visited, url)
	return n.err
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	config := DefaultConfig()
	config.Task = "Sign up for the newsletter"
	config.StartURL = "https://example.com/newsletter"
	config.Constraints.AllowedURLs = []string{"https://example.com/**"}
	config.Artifacts.OutputDir = filepath.Join(t.TempDir(), "artifacts")
	return config
}

func bufferLogger(buf *bytes.Buffer) *Logger {
	l := NewLogger(LogLevelVerbose)
	l.SetOutput(buf)
	return l
}

func approvalRequest(id, url string) *types.AgentEvent {
	return types.NewToolApprovalRequestEvent(id, "fill_form", nil, nil).WithMetadata("url", url)
}

func TestExecutor_Success(t *testing.T) {
	ag := newScriptedAgent(
		types.NewStepStartEvent(1, 6),
		types.NewToolCallEvent("fill_form", map[string]interface{}{"submit": true}),
		approvalRequest("a1", "https://example.com/newsletter"),
		types.NewTokenUsageEvent(300, 40),
		types.NewStepStartEvent(2, 6),
		types.NewMessageEvent(types.MessageLevelAnswer, "You are subscribed."),
		types.NewRunCompleteEvent(&types.RunOutcome{Kind: types.OutcomeFinal, Steps: 2, Final: "You are subscribed.", ToolCalls: 1}),
	)
	nav := &fakeNavigator{}
	var out bytes.Buffer
	config := testConfig(t)

	exec, err := NewExecutor(ag, config, WithNavigator(nav), WithLogger(bufferLogger(&out)))
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}

	if err := exec.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(nav.visited) != 1 || nav.visited[0] != "https://example.com/newsletter" {
		t.Errorf("visited = %v", nav.visited)
	}
	if len(ag.inputs) != 1 || ag.inputs[0] != config.Task {
		t.Errorf("inputs = %v", ag.inputs)
	}
	if len(ag.decisions) != 1 || ag.decisions[0] != types.ApprovalGranted {
		t.Errorf("decisions = %v", ag.decisions)
	}

	summary := exec.Summary()
	if summary.Status != statusSuccess {
		t.Errorf("Status = %q, error = %q", summary.Status, summary.Error)
	}
	if summary.FinalAnswer != "You are subscribed." || summary.Outcome != "final" {
		t.Errorf("unexpected outcome: %+v", summary)
	}
	if summary.Metrics.Steps != 2 || summary.Metrics.ToolCalls != 1 || summary.Metrics.TokensUsed != 340 {
		t.Errorf("unexpected metrics: %+v", summary.Metrics)
	}

	data, err := os.ReadFile(filepath.Join(config.Artifacts.OutputDir, "execution.json"))
	if err != nil {
		t.Fatalf("execution.json not written: %v", err)
	}
	var written ExecutionSummary
	if err := json.Unmarshal(data, &written); err != nil {
		t.Fatalf("invalid execution.json: %v", err)
	}
	if len(written.Submissions) != 1 || !written.Submissions[0].Approved {
		t.Errorf("submissions = %+v", written.Submissions)
	}

	if !strings.Contains(out.String(), "You are subscribed.") {
		t.Errorf("answer not printed: %s", out.String())
	}
}

func TestExecutor_RejectsSubmissionOutsideAllowedURLs(t *testing.T) {
	ag := newScriptedAgent(
		approvalRequest("a1", "https://evil.test/login"),
		types.NewRunCompleteEvent(&types.RunOutcome{Kind: types.OutcomeFinal, Steps: 2, Final: "Declined."}),
	)
	var out bytes.Buffer

	exec, err := NewExecutor(ag, testConfig(t), WithLogger(bufferLogger(&out)))
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}
	if err := exec.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(ag.decisions) != 1 || ag.decisions[0] != types.ApprovalRejected {
		t.Errorf("decisions = %v", ag.decisions)
	}
	if !strings.Contains(out.String(), "Submission rejected: https://evil.test/login") {
		t.Errorf("rejection not logged: %s", out.String())
	}
}

func TestExecutor_NonFinalOutcomeFails(t *testing.T) {
	ag := newScriptedAgent(
		types.NewRunCompleteEvent(&types.RunOutcome{Kind: types.OutcomeMaxSteps, Steps: 6, Err: errors.New("step budget exhausted")}),
	)
	var out bytes.Buffer
	config := testConfig(t)

	exec, _ := NewExecutor(ag, config, WithLogger(bufferLogger(&out)))
	err := exec.Run(context.Background())
	if err == nil {
		t.Fatal("expected Run() to fail")
	}
	if !strings.Contains(err.Error(), "max_steps") {
		t.Errorf("error = %v", err)
	}

	md, readErr := os.ReadFile(filepath.Join(config.Artifacts.OutputDir, "summary.md"))
	if readErr != nil {
		t.Fatalf("summary.md not written: %v", readErr)
	}
	if !strings.Contains(string(md), "**Status:** failed") {
		t.Errorf("summary.md = %s", md)
	}
}

func TestExecutor_TokenLimit(t *testing.T) {
	ag := newScriptedAgent(
		types.NewTokenUsageEvent(900, 200),
		types.NewRunCompleteEvent(&types.RunOutcome{Kind: types.OutcomeFinal, Steps: 1, Final: "done"}),
	)
	var out bytes.Buffer
	config := testConfig(t)
	config.Constraints.MaxTokens = 1000

	exec, _ := NewExecutor(ag, config, WithLogger(bufferLogger(&out)))
	err := exec.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "Token limit") {
		t.Fatalf("expected token limit failure, got %v", err)
	}
}

func TestExecutor_NavigationFailure(t *testing.T) {
	ag := newScriptedAgent()
	nav := &fakeNavigator{err: errors.New("net::ERR_NAME_NOT_RESOLVED")}
	var out bytes.Buffer

	exec, _ := NewExecutor(ag, testConfig(t), WithNavigator(nav), WithLogger(bufferLogger(&out)))
	err := exec.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "failed to open start URL") {
		t.Fatalf("expected navigation failure, got %v", err)
	}
	if len(ag.inputs) != 0 {
		t.Errorf("task should not be sent, got %v", ag.inputs)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	ag := &scriptedAgent{channels: types.NewAgentChannels(16)}
	var out bytes.Buffer
	config := testConfig(t)
	config.Constraints.Timeout = 50 * time.Millisecond

	exec, _ := NewExecutor(ag, config, WithLogger(bufferLogger(&out)))
	err := exec.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "execution timeout exceeded") {
		t.Fatalf("expected timeout, got %v", err)
	}
	if exec.Summary().Status != statusFailed {
		t.Errorf("Status = %q", exec.Summary().Status)
	}
}

func TestNewExecutor_InvalidConfig(t *testing.T) {
	if _, err := NewExecutor(newScriptedAgent(), &Config{}); err == nil {
		t.Error("expected error for missing task")
	}

	config := testConfig(t)
	config.Constraints.AllowedURLs = []string{"[invalid"}
	if _, err := NewExecutor(newScriptedAgent(), config); err == nil {
		t.Error("expected error for invalid pattern")
	}
}
