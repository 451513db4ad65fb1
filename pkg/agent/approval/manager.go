package approval

import (
	"context"
	"sync"
	"time"

	"github.com/entrhq/pagepilot/pkg/agent/tools"
	"github.com/entrhq/pagepilot/pkg/config"
	"github.com/entrhq/pagepilot/pkg/types"
	"github.com/google/uuid"
)

// DefaultTimeout is used when the manager is created without a timeout.
const DefaultTimeout = 5 * time.Minute

// EventEmitter is a function type for emitting events
type EventEmitter func(event *types.AgentEvent)

// Request describes a side effect that needs the user's confirmation.
type Request struct {
	ToolName string

	// Input is the tool input shown with the request.
	Input map[string]interface{}

	// URL is the page the side effect applies to. It is matched against the
	// auto-approval patterns.
	URL string

	Preview *tools.ToolPreview
}

// Manager handles approval requests and responses
type Manager struct {
	timeout          time.Duration
	pendingApprovals map[string]*pendingApproval
	mu               sync.Mutex
	emitEvent        EventEmitter
	autoApprove      func(pageURL string) bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithAutoApproval replaces the URL check used for auto-approval. The default
// consults the auto_approval config section.
func WithAutoApproval(fn func(pageURL string) bool) Option {
	return func(m *Manager) {
		m.autoApprove = fn
	}
}

// pendingApproval tracks an approval request that is waiting for user response
type pendingApproval struct {
	approvalID string
	toolName   string
	response   chan *types.ApprovalResponse
	closeOnce  sync.Once
}

// NewManager creates a new approval manager
func NewManager(timeout time.Duration, emitEvent EventEmitter, opts ...Option) *Manager {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	m := &Manager{
		timeout:          timeout,
		pendingApprovals: make(map[string]*pendingApproval),
		emitEvent:        emitEvent,
		autoApprove:      config.IsSubmitAutoApproved,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RequestApproval sends an approval request and waits for user response
// Returns (approved, timedOut) where:
//   - approved: true if user approved, false if rejected
//   - timedOut: true if the request timed out waiting for response
func (m *Manager) RequestApproval(ctx context.Context, req Request) (bool, bool) {
	approvalID := uuid.New().String()

	if m.checkAutoApproval(approvalID, req) {
		return true, false
	}

	responseChannel := make(chan *types.ApprovalResponse, 1)
	m.setupPendingApproval(approvalID, req.ToolName, responseChannel)
	defer m.cleanupPendingApproval(approvalID)

	input := req.Input
	if input == nil {
		input = make(map[string]interface{})
	}
	event := types.NewToolApprovalRequestEvent(approvalID, req.ToolName, input, req.Preview)
	if req.URL != "" {
		event.WithMetadata("url", req.URL)
	}
	m.emitEvent(event)

	return m.waitForResponse(ctx, approvalID, req.ToolName, responseChannel)
}

// HandleResponse processes an approval response from the user
func (m *Manager) HandleResponse(response *types.ApprovalResponse) {
	if response == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	pa, ok := m.pendingApprovals[response.ApprovalID]
	if !ok {
		return
	}

	// Non-blocking: the waiter may already have given up.
	select {
	case pa.response <- response:
	default:
	}
}

// Pending returns the number of requests waiting for an answer.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pendingApprovals)
}

// checkAutoApproval grants requests whose page URL matches an auto-approval
// pattern.
func (m *Manager) checkAutoApproval(approvalID string, req Request) bool {
	if req.URL == "" || m.autoApprove == nil || !m.autoApprove(req.URL) {
		return false
	}
	m.emitEvent(types.NewToolApprovalGrantedEvent(approvalID, req.ToolName).
		WithMetadata("auto_approved", true).
		WithMetadata("url", req.URL))
	return true
}

// setupPendingApproval stores the pending approval request
func (m *Manager) setupPendingApproval(approvalID, toolName string, responseChannel chan *types.ApprovalResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pendingApprovals[approvalID] = &pendingApproval{
		approvalID: approvalID,
		toolName:   toolName,
		response:   responseChannel,
	}
}

// cleanupPendingApproval removes the pending approval and closes its channel.
// Safe to call more than once.
func (m *Manager) cleanupPendingApproval(approvalID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pa, ok := m.pendingApprovals[approvalID]
	if !ok {
		return
	}
	delete(m.pendingApprovals, approvalID)
	pa.closeOnce.Do(func() {
		close(pa.response)
	})
}
