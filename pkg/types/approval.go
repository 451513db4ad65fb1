package types

// ApprovalDecision is the user's answer to an approval request.
type ApprovalDecision string

const (
	ApprovalGranted  ApprovalDecision = "granted"
	ApprovalRejected ApprovalDecision = "rejected"
)

// ApprovalResponse answers a pending approval request.
type ApprovalResponse struct {
	ApprovalID string
	Decision   ApprovalDecision
}

// NewApprovalResponse creates an approval response for the given request.
func NewApprovalResponse(approvalID string, decision ApprovalDecision) *ApprovalResponse {
	return &ApprovalResponse{
		ApprovalID: approvalID,
		Decision:   decision,
	}
}

// IsGranted returns true if the request was approved.
func (r *ApprovalResponse) IsGranted() bool {
	return r != nil && r.Decision == ApprovalGranted
}
