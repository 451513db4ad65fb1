package approval

import (
	"context"
	"time"

	"github.com/entrhq/pagepilot/pkg/types"
)

// waitForResponse waits for the user's approval response
func (m *Manager) waitForResponse(ctx context.Context, approvalID, toolName string, responseChannel chan *types.ApprovalResponse) (bool, bool) {
	timeout := time.NewTimer(m.timeout)
	defer timeout.Stop()

	select {
	case <-ctx.Done():
		return false, false

	case <-timeout.C:
		m.emitEvent(types.NewToolApprovalTimeoutEvent(approvalID, toolName))
		return false, true

	case response, ok := <-responseChannel:
		if !ok || !response.IsGranted() {
			m.emitEvent(types.NewToolApprovalRejectedEvent(approvalID, toolName))
			return false, false
		}
		m.emitEvent(types.NewToolApprovalGrantedEvent(approvalID, toolName))
		return true, false
	}
}
