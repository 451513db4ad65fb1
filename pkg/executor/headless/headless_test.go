package headless

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: &Config{
				Task:     "test task",
				StartURL: "https://example.com",
				Constraints: ConstraintConfig{
					AllowedURLs: []string{"https://example.com/**"},
					Timeout:     5 * time.Minute,
				},
			},
			wantErr: false,
		},
		{
			name:    "missing task",
			config:  &Config{StartURL: "https://example.com"},
			wantErr: true,
		},
		{
			name: "negative timeout",
			config: &Config{
				Task:        "test",
				Constraints: ConstraintConfig{Timeout: -1},
			},
			wantErr: true,
		},
		{
			name: "negative max tokens",
			config: &Config{
				Task:        "test",
				Constraints: ConstraintConfig{MaxTokens: -1},
			},
			wantErr: true,
		},
		{
			name: "artifacts without output dir",
			config: &Config{
				Task:      "test",
				Artifacts: ArtifactConfig{Enabled: true},
			},
			wantErr: true,
		},
		{
			name:    "relative start url",
			config:  &Config{Task: "test", StartURL: "/signup"},
			wantErr: true,
		},
		{
			name:    "non-http start url",
			config:  &Config{Task: "test", StartURL: "file:///etc/passwd"},
			wantErr: true,
		},
		{
			name:    "blank task",
			config:  &Config{Task: "   "},
			wantErr: true,
		},
		{
			name: "invalid url pattern",
			config: &Config{
				Task:        "test",
				Constraints: ConstraintConfig{AllowedURLs: []string{"https://[example.com"}},
			},
			wantErr: true,
		},
		{
			name: "invalid verbosity",
			config: &Config{
				Task:    "test",
				Logging: LoggingConfig{Verbosity: "loud"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateDefaultsVerbosity(t *testing.T) {
	config := &Config{Task: "test"}
	if err := config.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if config.Logging.Verbosity != "normal" {
		t.Errorf("Verbosity = %q, want normal", config.Logging.Verbosity)
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Constraints.Timeout != 5*time.Minute {
		t.Errorf("expected 5m timeout, got %v", config.Constraints.Timeout)
	}
	if config.Constraints.MaxTokens != 50000 {
		t.Errorf("expected max tokens 50000, got %d", config.Constraints.MaxTokens)
	}
	if len(config.Constraints.AllowedURLs) != 0 {
		t.Errorf("expected no allowed URLs by default, got %v", config.Constraints.AllowedURLs)
	}
	if !config.Artifacts.Enabled {
		t.Error("expected artifacts to be enabled by default")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "task.yaml")
	content := `task: "Sign up with test@example.com"
start_url: "https://example.com/signup"
constraints:
  allowed_urls:
    - "https://example.com/**"
  denied_urls:
    - "https://example.com/admin/**"
  max_tokens: 1200
  timeout: 90s
logging:
  verbosity: verbose
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write task file: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.Task != "Sign up with test@example.com" {
		t.Errorf("Task = %q", config.Task)
	}
	if config.StartURL != "https://example.com/signup" {
		t.Errorf("StartURL = %q", config.StartURL)
	}
	if len(config.Constraints.AllowedURLs) != 1 || len(config.Constraints.DeniedURLs) != 1 {
		t.Errorf("unexpected patterns: %+v", config.Constraints)
	}
	if config.Constraints.MaxTokens != 1200 {
		t.Errorf("MaxTokens = %d, want 1200", config.Constraints.MaxTokens)
	}
	if config.Constraints.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, want 90s", config.Constraints.Timeout)
	}
	if config.Logging.Verbosity != "verbose" {
		t.Errorf("Verbosity = %q", config.Logging.Verbosity)
	}
	// untouched keys keep their defaults
	if !config.Artifacts.Enabled || config.Artifacts.OutputDir != ".pagepilot/artifacts" {
		t.Errorf("artifact defaults lost: %+v", config.Artifacts)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("task: [unclosed"), 0600); err != nil {
		t.Fatalf("failed to write task file: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for invalid YAML")
	}

	typo := filepath.Join(t.TempDir(), "typo.yaml")
	if err := os.WriteFile(typo, []byte("task: test\nconstraints:\n  allowed_url: [\"https://example.com/**\"]\n"), 0600); err != nil {
		t.Fatalf("failed to write task file: %v", err)
	}
	if _, err := LoadConfig(typo); err == nil || !strings.Contains(err.Error(), "allowed_url") {
		t.Errorf("expected unknown key error, got %v", err)
	}
}

func TestLoadConfig_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatalf("failed to write task file: %v", err)
	}
	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if config.Constraints.MaxTokens != 50000 {
		t.Errorf("defaults lost: %+v", config.Constraints)
	}
}

func TestArtifactWriter_WriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "artifacts")
	writer := NewArtifactWriter(dir)

	summary := &ExecutionSummary{
		Task:        "Summarize the page",
		StartURL:    "https://example.com",
		Status:      statusSuccess,
		Outcome:     "final",
		FinalAnswer: "It is an example page.",
		Submissions: []SubmissionDecision{
			{URL: "https://example.com/a", Approved: true},
			{URL: "https://other.test/", Approved: false, Reason: "no URLs are allowed for form submission"},
		},
		Metrics: ExecutionMetrics{Steps: 2, ToolCalls: 1, TokensUsed: 420},
	}

	if err := writer.WriteAll(summary); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	for _, name := range []string{"execution.json", "summary.md", "metrics.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}

	md, _ := os.ReadFile(filepath.Join(dir, "summary.md"))
	for _, want := range []string{
		"**Task:** Summarize the page",
		"It is an example page.",
		"- ✅ `https://example.com/a`",
		"- ❌ `https://other.test/`: no URLs are allowed for form submission",
		"- **Tool Calls:** 1",
	} {
		if !strings.Contains(string(md), want) {
			t.Errorf("summary.md missing %q", want)
		}
	}

	metrics, _ := os.ReadFile(filepath.Join(dir, "metrics.json"))
	if !strings.Contains(string(metrics), `"tokens_used": 420`) {
		t.Errorf("metrics.json = %s", metrics)
	}
}
