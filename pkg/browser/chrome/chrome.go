// Package chrome is a tab backend that drives a local Chrome over the
// DevTools protocol with go-rod, optionally through a stealth page.
package chrome

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/entrhq/pagepilot/pkg/tab"
)

// Options configures how Chrome is launched or reached.
type Options struct {
	// ControlURL connects to an already running browser instead of launching one.
	ControlURL string

	// Bin overrides the browser binary.
	Bin string

	Headless bool

	// Stealth opens the tab with evasions for automation detection.
	Stealth bool

	// NoSandbox is needed when running as root or in containers.
	NoSandbox bool
}

// Tab is one Chrome page. It satisfies tab.Conn.
type Tab struct {
	*tab.ScriptDriver

	browser  *rod.Browser
	page     *rod.Page
	launcher *launcher.Launcher
}

// Launch starts (or connects to) Chrome and opens a tab.
func Launch(opts Options) (*Tab, error) {
	controlURL := opts.ControlURL

	var l *launcher.Launcher
	if controlURL == "" {
		l = launcher.New().
			Headless(opts.Headless).
			Set("disable-dev-shm-usage")
		if opts.Bin != "" {
			l = l.Bin(opts.Bin)
		}
		if opts.Stealth {
			l = l.Set("disable-blink-features", "AutomationControlled")
		}
		if opts.NoSandbox {
			l = l.Set("no-sandbox")
		}

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		if l != nil {
			l.Cleanup()
		}
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	var (
		page *rod.Page
		err  error
	)
	if opts.Stealth {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		_ = browser.Close()
		if l != nil {
			l.Cleanup()
		}
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	t := &Tab{browser: browser, page: page, launcher: l}
	t.ScriptDriver = tab.NewScriptDriver(t)
	return t, nil
}

// Evaluate runs fn in the page. It implements tab.Evaluator.
func (t *Tab) Evaluate(ctx context.Context, fn string, arg interface{}) (interface{}, error) {
	p := t.page.Context(ctx)

	var (
		res *proto.RuntimeRemoteObject
		err error
	)
	if arg == nil {
		res, err = p.Eval(fn)
	} else {
		res, err = p.Eval(fn, arg)
	}
	if err != nil {
		return nil, err
	}
	if res == nil || res.Value.Nil() {
		return nil, nil
	}
	return res.Value.Val(), nil
}

// Navigate starts loading url.
func (t *Tab) Navigate(ctx context.Context, url string) error {
	if err := t.page.Context(ctx).Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// WaitForLoad blocks until the load event or ctx expires.
func (t *Tab) WaitForLoad(ctx context.Context) error {
	return t.page.Context(ctx).WaitLoad()
}

// Snapshot serializes the current document.
func (t *Tab) Snapshot(ctx context.Context) (tab.Snapshot, error) {
	p := t.page.Context(ctx)

	html, err := p.HTML()
	if err != nil {
		return tab.Snapshot{}, fmt.Errorf("failed to read page content: %w", err)
	}
	return tab.Snapshot{URL: t.URL(), HTML: html}, nil
}

// URL returns the page's current URL, or "" when it cannot be read.
func (t *Tab) URL() string {
	info, err := t.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Close closes the browser and cleans up a launched process.
func (t *Tab) Close() error {
	err := t.browser.Close()
	if t.launcher != nil {
		t.launcher.Cleanup()
	}
	return err
}

var _ tab.Conn = (*Tab)(nil)
