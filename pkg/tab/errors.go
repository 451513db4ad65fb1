package tab

import "errors"

var (
	// ErrTimeout is returned when a tab round-trip exceeds the request timeout.
	ErrTimeout = errors.New("tab request timed out")

	// ErrNoReceiver is returned when the helper script is absent from the tab.
	ErrNoReceiver = errors.New("could not establish connection: receiving end does not exist")
)
