package approval

import (
	"context"
	"testing"
	"time"

	"github.com/entrhq/pagepilot/pkg/types"
)

func TestManager_WaitForResponse(t *testing.T) {
	tests := []struct {
		name         string
		send         func(ch chan *types.ApprovalResponse, id string)
		wantApproved bool
		wantTimedOut bool
		wantEvent    types.AgentEventType
	}{
		{
			name: "granted",
			send: func(ch chan *types.ApprovalResponse, id string) {
				ch <- types.NewApprovalResponse(id, types.ApprovalGranted)
			},
			wantApproved: true,
			wantEvent:    types.EventTypeToolApprovalGranted,
		},
		{
			name: "rejected",
			send: func(ch chan *types.ApprovalResponse, id string) {
				ch <- types.NewApprovalResponse(id, types.ApprovalRejected)
			},
			wantEvent: types.EventTypeToolApprovalRejected,
		},
		{
			name:      "channel closed",
			send:      func(ch chan *types.ApprovalResponse, _ string) { close(ch) },
			wantEvent: types.EventTypeToolApprovalRejected,
		},
		{
			name:         "timeout",
			send:         func(chan *types.ApprovalResponse, string) {},
			wantTimedOut: true,
			wantEvent:    types.EventTypeToolApprovalTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emitter := &mockEventEmitter{}
			manager := NewManager(50*time.Millisecond, emitter.emit)

			responseChannel := make(chan *types.ApprovalResponse, 1)
			approvalID := "test-approval-" + tt.name
			tt.send(responseChannel, approvalID)

			approved, timedOut := manager.waitForResponse(context.Background(), approvalID, "fill_form", responseChannel)

			if approved != tt.wantApproved {
				t.Errorf("approved = %v, want %v", approved, tt.wantApproved)
			}
			if timedOut != tt.wantTimedOut {
				t.Errorf("timedOut = %v, want %v", timedOut, tt.wantTimedOut)
			}

			events := emitter.getEvents()
			if len(events) != 1 {
				t.Fatalf("expected 1 event, got %d", len(events))
			}
			if events[0].Type != tt.wantEvent {
				t.Errorf("event = %v, want %v", events[0].Type, tt.wantEvent)
			}
			if events[0].ApprovalID != approvalID || events[0].ToolName != "fill_form" {
				t.Errorf("event ids = (%s, %s)", events[0].ApprovalID, events[0].ToolName)
			}
		})
	}
}

func TestManager_WaitForResponse_ContextCanceled(t *testing.T) {
	emitter := &mockEventEmitter{}
	manager := NewManager(5*time.Second, emitter.emit)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	approved, timedOut := manager.waitForResponse(ctx, "id", "fill_form", make(chan *types.ApprovalResponse, 1))
	if approved || timedOut {
		t.Errorf("waitForResponse = (%v, %v), want (false, false)", approved, timedOut)
	}
	if len(emitter.getEvents()) != 0 {
		t.Error("expected no events on cancellation")
	}
}
