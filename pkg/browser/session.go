package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/pagepilot/pkg/tab"
)

// Session is the Playwright tab. It follows the most recently opened page
// of its context, so a link that opens a new tab moves the agent there, and
// closing that tab moves it back.
type Session struct {
	*tab.ScriptDriver

	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext

	mu     sync.Mutex
	pages  []playwright.Page
	closed bool
}

// track makes a newly opened page current.
func (s *Session) track(p playwright.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pages = append(s.pages, p)
	p.OnClose(s.untrack)
}

// untrack drops a closed page; the previous one becomes current.
func (s *Session) untrack(p playwright.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.pages {
		if s.pages[i] == p {
			s.pages = append(s.pages[:i], s.pages[i+1:]...)
			return
		}
	}
}

// page returns the current page, or an error once every page is closed.
func (s *Session) page() (playwright.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pages) == 0 {
		return nil, fmt.Errorf("no open page")
	}
	return s.pages[len(s.pages)-1], nil
}

// Evaluate runs fn in the current page. It implements tab.Evaluator.
func (s *Session) Evaluate(ctx context.Context, fn string, arg interface{}) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.page()
	if err != nil {
		return nil, err
	}
	if arg == nil {
		return p.Evaluate(fn)
	}
	return p.Evaluate(fn, arg)
}

// Navigate starts loading url and returns once the navigation commits.
func (s *Session) Navigate(ctx context.Context, url string) error {
	p, err := s.page()
	if err != nil {
		return err
	}

	opts := playwright.PageGotoOptions{WaitUntil: playwright.WaitUntilStateCommit}
	if ms, ok := timeoutMillis(ctx); ok {
		opts.Timeout = &ms
	}

	if _, err := p.Goto(url, opts); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// WaitForLoad blocks until the page fires load or ctx expires.
func (s *Session) WaitForLoad(ctx context.Context) error {
	p, err := s.page()
	if err != nil {
		return err
	}
	opts := playwright.PageWaitForLoadStateOptions{State: playwright.LoadStateLoad}
	if ms, ok := timeoutMillis(ctx); ok {
		opts.Timeout = &ms
	}
	return p.WaitForLoadState(opts)
}

// Snapshot serializes the current document.
func (s *Session) Snapshot(ctx context.Context) (tab.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return tab.Snapshot{}, err
	}
	p, err := s.page()
	if err != nil {
		return tab.Snapshot{}, err
	}

	html, err := p.Content()
	if err != nil {
		return tab.Snapshot{}, fmt.Errorf("failed to read page content: %w", err)
	}
	return tab.Snapshot{URL: p.URL(), HTML: html}, nil
}

// URL returns the current page's URL, or "" when no page is open.
func (s *Session) URL() string {
	p, err := s.page()
	if err != nil {
		return ""
	}
	return p.URL()
}

// Close releases the browser and stops the driver.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.pages = nil
	s.mu.Unlock()

	_ = s.context.Close()
	_ = s.browser.Close()
	if err := s.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

// timeoutMillis converts the time left on ctx into a Playwright timeout.
func timeoutMillis(ctx context.Context) (float64, bool) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0, false
	}
	ms := float64(time.Until(deadline).Milliseconds())
	if ms < 1 {
		ms = 1
	}
	return ms, true
}

var _ tab.Conn = (*Session)(nil)
