// Package tab is the messaging surface between the agent's tools and one
// browser tab.
//
// A backend exposes the tab as a Conn. Content actions (ping, getPageText,
// fillForm) are answered by a ContentHandler that runs inside the tab's
// context, the way an injected content script would. The Client wraps those
// round-trips with a request timeout, makes sure the helper script is present
// before using it and waits for navigations with a bounded ceiling.
//
// Every Client call degrades to an empty or failed result instead of
// returning across the tab boundary with a panic.
package tab
