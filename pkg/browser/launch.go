package browser

import (
	"fmt"
	"io"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/pagepilot/pkg/tab"
)

const (
	DefaultActionTimeout  = 30 * time.Second
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)

// LaunchOptions configures the Playwright tab.
type LaunchOptions struct {
	Headless bool

	// Viewport of the first page. Zero fields take the defaults.
	Width  int
	Height int

	// ActionTimeout bounds Playwright calls made without a context deadline.
	ActionTimeout time.Duration

	// SkipInstall assumes the driver and Chromium are already present.
	SkipInstall bool
}

func (o LaunchOptions) withDefaults() LaunchOptions {
	if o.Width <= 0 {
		o.Width = DefaultViewportWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultViewportHeight
	}
	if o.ActionTimeout <= 0 {
		o.ActionTimeout = DefaultActionTimeout
	}
	return o
}

// Launch starts the Playwright driver and Chromium and opens one page.
func Launch(opts LaunchOptions) (*Session, error) {
	opts = opts.withDefaults()

	// Keep driver output off the terminal the CLI draws on.
	runOpts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
	if !opts.SkipInstall {
		if err := playwright.Install(runOpts); err != nil {
			return nil, fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: opts.Width, Height: opts.Height},
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}
	bctx.SetDefaultTimeout(float64(opts.ActionTimeout.Milliseconds()))

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	s := &Session{
		pw:      pw,
		browser: browser,
		context: bctx,
		pages:   []playwright.Page{page},
	}
	s.ScriptDriver = tab.NewScriptDriver(s)

	bctx.OnPage(s.track)
	page.OnClose(s.untrack)
	return s, nil
}
