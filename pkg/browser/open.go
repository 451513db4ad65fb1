package browser

import (
	"fmt"
	"io"

	"github.com/entrhq/pagepilot/pkg/browser/chrome"
	"github.com/entrhq/pagepilot/pkg/browser/static"
	"github.com/entrhq/pagepilot/pkg/config"
	"github.com/entrhq/pagepilot/pkg/tab"
)

// Tab is an opened tab together with what must be released when done.
type Tab struct {
	tab.Conn
	io.Closer
}

// Open starts the backend named in settings and returns its tab.
func Open(settings config.BrowserSettings) (*Tab, error) {
	switch settings.Backend {
	case config.BackendPlaywright, "":
		session, err := Launch(LaunchOptions{Headless: settings.Headless})
		if err != nil {
			return nil, err
		}
		return &Tab{Conn: session, Closer: session}, nil

	case config.BackendChrome:
		t, err := chrome.Launch(chrome.Options{Headless: settings.Headless, Stealth: true})
		if err != nil {
			return nil, err
		}
		return &Tab{Conn: t, Closer: t}, nil

	case config.BackendStatic:
		t := static.New(static.WithTimeout(settings.TabTimeout))
		return &Tab{Conn: t, Closer: t}, nil

	default:
		return nil, fmt.Errorf("unknown browser backend %q", settings.Backend)
	}
}
