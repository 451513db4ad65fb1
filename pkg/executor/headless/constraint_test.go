package headless

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConstraintManager_ValidateSubmission(t *testing.T) {
	tests := []struct {
		name    string
		config  ConstraintConfig
		url     string
		wantErr bool
	}{
		{
			name:    "no allowed urls rejects everything",
			config:  ConstraintConfig{},
			url:     "https://example.com/signup",
			wantErr: true,
		},
		{
			name:    "unknown page url",
			config:  ConstraintConfig{AllowedURLs: []string{"**"}},
			url:     "",
			wantErr: true,
		},
		{
			name:    "allowed url",
			config:  ConstraintConfig{AllowedURLs: []string{"https://example.com/**"}},
			url:     "https://example.com/signup",
			wantErr: false,
		},
		{
			name: "denied url",
			config: ConstraintConfig{
				AllowedURLs: []string{"https://example.com/**"},
				DeniedURLs:  []string{"https://example.com/billing/**"},
			},
			url:     "https://example.com/billing/card",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm, err := NewConstraintManager(tt.config)
			if err != nil {
				t.Fatalf("NewConstraintManager() error = %v", err)
			}

			err = cm.ValidateSubmission(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateSubmission(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}

			if err != nil {
				var violation *ConstraintViolation
				if !errors.As(err, &violation) || violation.Type != ViolationURLPattern {
					t.Errorf("expected url_pattern violation, got %v", err)
				}
			}

			state := cm.GetCurrentState()
			if len(state.Submissions) != 1 {
				t.Fatalf("expected 1 recorded submission, got %d", len(state.Submissions))
			}
			if state.Submissions[0].Approved == tt.wantErr {
				t.Errorf("recorded Approved = %v, want %v", state.Submissions[0].Approved, !tt.wantErr)
			}
		})
	}
}

func TestConstraintManager_RecordTokenUsage(t *testing.T) {
	cm, err := NewConstraintManager(ConstraintConfig{MaxTokens: 100})
	if err != nil {
		t.Fatalf("NewConstraintManager() error = %v", err)
	}

	if err := cm.RecordTokenUsage(60); err != nil {
		t.Errorf("unexpected error under the limit: %v", err)
	}
	if err := cm.RecordTokenUsage(40); err != nil {
		t.Errorf("unexpected error at the limit: %v", err)
	}

	err = cm.RecordTokenUsage(1)
	var violation *ConstraintViolation
	if !errors.As(err, &violation) || violation.Type != ViolationTokenLimit {
		t.Fatalf("expected token_limit violation, got %v", err)
	}

	if got := cm.GetCurrentState().TokensUsed; got != 101 {
		t.Errorf("TokensUsed = %d, want 101", got)
	}
}

func TestConstraintManager_NoTokenLimit(t *testing.T) {
	cm, _ := NewConstraintManager(ConstraintConfig{})
	if err := cm.RecordTokenUsage(1 << 20); err != nil {
		t.Errorf("unexpected error without a limit: %v", err)
	}
}

func TestConstraintManager_CheckTimeout(t *testing.T) {
	cm, _ := NewConstraintManager(ConstraintConfig{})
	if err := cm.CheckTimeout(); err != nil {
		t.Errorf("no timeout configured, got %v", err)
	}

	cm, _ = NewConstraintManager(ConstraintConfig{Timeout: time.Nanosecond})
	time.Sleep(time.Millisecond)
	if err := cm.CheckTimeout(); err == nil {
		t.Error("expected timeout violation")
	}
}

func TestConstraintManager_RejectionReasons(t *testing.T) {
	cm, err := NewConstraintManager(ConstraintConfig{
		AllowedURLs: []string{"https://example.com/**"},
		DeniedURLs:  []string{"https://example.com/billing/**"},
	})
	if err != nil {
		t.Fatalf("NewConstraintManager() error = %v", err)
	}

	_ = cm.ValidateSubmission("https://example.com/billing/card")
	_ = cm.ValidateSubmission("https://other.test/signup")

	subs := cm.GetCurrentState().Submissions
	if len(subs) != 2 {
		t.Fatalf("expected 2 decisions, got %d", len(subs))
	}
	if want := "matches denied pattern 'https://example.com/billing/**'"; !strings.Contains(subs[0].Reason, want) {
		t.Errorf("denied reason = %q, want it to contain %q", subs[0].Reason, want)
	}
	if want := "does not match allowed patterns"; !strings.Contains(subs[1].Reason, want) {
		t.Errorf("not-allowed reason = %q, want it to contain %q", subs[1].Reason, want)
	}
}

func TestConstraintManager_TimeoutUsesClock(t *testing.T) {
	cm, _ := NewConstraintManager(ConstraintConfig{Timeout: time.Minute})
	start := cm.started
	cm.now = func() time.Time { return start.Add(30 * time.Second) }
	if err := cm.CheckTimeout(); err != nil {
		t.Errorf("unexpected timeout after 30s: %v", err)
	}

	cm.now = func() time.Time { return start.Add(2 * time.Minute) }
	err := cm.CheckTimeout()
	var violation *ConstraintViolation
	if !errors.As(err, &violation) || violation.Type != ViolationTimeout {
		t.Fatalf("expected timeout violation, got %v", err)
	}
	if got := cm.GetCurrentState().Elapsed; got != 2*time.Minute {
		t.Errorf("Elapsed = %v, want 2m", got)
	}
}
