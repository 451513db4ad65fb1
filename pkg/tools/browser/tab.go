package browser

import (
	"context"
	"encoding/json"

	"github.com/entrhq/pagepilot/pkg/agent/approval"
	"github.com/entrhq/pagepilot/pkg/logging"
	"github.com/entrhq/pagepilot/pkg/page"
	"github.com/entrhq/pagepilot/pkg/tab"
)

var toolLog *logging.Logger

func init() {
	var err error
	toolLog, err = logging.NewLogger("tools")
	if err != nil {
		toolLog.Warnf("Failed to initialize tools logger, using stderr fallback: %v", err)
	}
}

// PageTab is the tab surface the tools drive.
type PageTab interface {
	URL() string
	Navigate(ctx context.Context, url string) error
	GetPageText(ctx context.Context) tab.PageText
	FillForm(ctx context.Context, fields page.FieldSet, submit bool) tab.Response
}

// Approver confirms a form submission. It returns (approved, timedOut).
type Approver interface {
	RequestApproval(ctx context.Context, req approval.Request) (bool, bool)
}

var _ PageTab = (*tab.Client)(nil)

// decodeArgs splits a tool argument object into its members. Anything that
// is not an object has no members.
func decodeArgs(args json.RawMessage) map[string]json.RawMessage {
	members := make(map[string]json.RawMessage)
	if err := json.Unmarshal(args, &members); err != nil || members == nil {
		return make(map[string]json.RawMessage)
	}
	return members
}

// truncate returns the first n characters of s.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
