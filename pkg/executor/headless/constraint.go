package headless

import (
	"fmt"
	"sync"
	"time"
)

// SubmissionDecision records one answered form submission request.
type SubmissionDecision struct {
	URL      string `json:"url"`
	Approved bool   `json:"approved"`
	Reason   string `json:"reason,omitempty"`
}

// ViolationType names the limit a run broke.
type ViolationType string

const (
	ViolationURLPattern ViolationType = "url_pattern"
	ViolationTokenLimit ViolationType = "token_limit"
	ViolationTimeout    ViolationType = "timeout"
)

// ConstraintViolation is returned when a submission or the run itself
// breaks a configured limit.
type ConstraintViolation struct {
	Type    ViolationType
	Message string
	Details map[string]interface{}
}

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("constraint violation (%s): %s", e.Type, e.Message)
}

// ConstraintManager tracks token use, elapsed time and submission decisions
// for one headless run.
type ConstraintManager struct {
	limits  ConstraintConfig
	matcher *PatternMatcher
	started time.Time
	now     func() time.Time

	mu          sync.RWMutex
	tokensUsed  int
	submissions []SubmissionDecision
}

func NewConstraintManager(config ConstraintConfig) (*ConstraintManager, error) {
	matcher, err := NewPatternMatcher(config.AllowedURLs, config.DeniedURLs)
	if err != nil {
		return nil, fmt.Errorf("failed to create pattern matcher: %w", err)
	}
	return &ConstraintManager{
		limits:  config,
		matcher: matcher,
		started: time.Now(),
		now:     time.Now,
	}, nil
}

// ValidateSubmission decides whether the form on pageURL may be submitted
// and records the decision. Submissions need an explicit allow list.
func (cm *ConstraintManager) ValidateSubmission(pageURL string) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	violation := cm.checkURL(pageURL)

	decision := SubmissionDecision{URL: pageURL, Approved: violation == nil}
	if violation != nil {
		decision.Reason = violation.Message
	}
	cm.submissions = append(cm.submissions, decision)

	if violation != nil {
		return violation
	}
	return nil
}

func (cm *ConstraintManager) checkURL(pageURL string) *ConstraintViolation {
	reject := func(msg string) *ConstraintViolation {
		return &ConstraintViolation{
			Type:    ViolationURLPattern,
			Message: msg,
			Details: map[string]interface{}{"url": pageURL},
		}
	}

	if pageURL == "" {
		return reject("submission page URL is unknown")
	}
	if len(cm.limits.AllowedURLs) == 0 {
		return reject("no URLs are allowed for form submission")
	}
	if pattern, denied := cm.matcher.DeniedBy(pageURL); denied {
		v := reject(fmt.Sprintf("url '%s' matches denied pattern '%s'", pageURL, pattern))
		v.Details["pattern"] = pattern
		return v
	}
	if !cm.matcher.IsAllowed(pageURL) {
		v := reject(fmt.Sprintf("url '%s' does not match allowed patterns", pageURL))
		v.Details["allowed_urls"] = cm.limits.AllowedURLs
		return v
	}
	return nil
}

// RecordTokenUsage adds tokens to the running total and fails once the
// total passes max_tokens.
func (cm *ConstraintManager) RecordTokenUsage(tokens int) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.tokensUsed += tokens
	limit := cm.limits.MaxTokens
	if limit <= 0 || cm.tokensUsed <= limit {
		return nil
	}
	return &ConstraintViolation{
		Type:    ViolationTokenLimit,
		Message: fmt.Sprintf("maximum token usage exceeded (%d)", limit),
		Details: map[string]interface{}{"max_tokens": limit, "tokens_used": cm.tokensUsed},
	}
}

// CheckTimeout fails once the run has been going longer than the timeout.
func (cm *ConstraintManager) CheckTimeout() error {
	limit := cm.limits.Timeout
	if limit <= 0 {
		return nil
	}
	elapsed := cm.now().Sub(cm.started)
	if elapsed <= limit {
		return nil
	}
	return &ConstraintViolation{
		Type:    ViolationTimeout,
		Message: fmt.Sprintf("execution timeout exceeded (%v)", limit),
		Details: map[string]interface{}{"timeout": limit, "elapsed": elapsed},
	}
}

// ConstraintState is a snapshot of what the run has used so far.
type ConstraintState struct {
	Submissions []SubmissionDecision
	TokensUsed  int
	Elapsed     time.Duration
}

func (cm *ConstraintManager) GetCurrentState() *ConstraintState {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return &ConstraintState{
		Submissions: append([]SubmissionDecision(nil), cm.submissions...),
		TokensUsed:  cm.tokensUsed,
		Elapsed:     cm.now().Sub(cm.started),
	}
}
