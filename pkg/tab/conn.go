package tab

import (
	"context"

	"github.com/entrhq/pagepilot/pkg/page"
)

// Snapshot is the serialized document of a tab at one point in time.
type Snapshot struct {
	URL  string
	HTML string
}

// Conn is one browser tab as seen by a backend. The embedded page.Driver
// replays form-fill decisions against the live document.
type Conn interface {
	page.Driver

	// Ping reports whether the helper script is installed in the current
	// document.
	Ping(ctx context.Context) (bool, error)

	// Inject installs the helper script into the current document.
	Inject(ctx context.Context) error

	// Navigate starts loading url in the tab.
	Navigate(ctx context.Context, url string) error

	// WaitForLoad blocks until the tab reports a completed load.
	WaitForLoad(ctx context.Context) error

	// Snapshot serializes the current document.
	Snapshot(ctx context.Context) (Snapshot, error)

	// URL returns the tab's current URL.
	URL() string
}
