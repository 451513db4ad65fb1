// Package static is a tab backend that loads pages over plain HTTP. It keeps
// the parsed document in memory, applies form fills to it and submits forms
// the way a browser without scripts would.
package static

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/entrhq/pagepilot/pkg/page"
	"github.com/entrhq/pagepilot/pkg/tab"
)

const (
	// BlankURL is the address of a tab that has not loaded anything.
	BlankURL = "about:blank"

	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) pagepilot/1.0"
	DefaultTimeout   = 30 * time.Second

	blankHTML = "<html><head></head><body></body></html>"
)

// Tab is an HTTP-backed tab. It satisfies tab.Conn.
type Tab struct {
	mu     sync.Mutex
	client *resty.Client
	doc    *goquery.Document
	url    string
	status int
	helper bool
}

// Option configures a Tab.
type Option func(*Tab)

// WithClient replaces the HTTP client.
func WithClient(c *resty.Client) Option {
	return func(t *Tab) {
		if c != nil {
			t.client = c
		}
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) Option {
	return func(t *Tab) {
		if d > 0 {
			t.client.SetTimeout(d)
		}
	}
}

// New creates a blank tab.
func New(opts ...Option) *Tab {
	doc, _ := page.ParseSnapshot(blankHTML)
	t := &Tab{
		client: resty.New().
			SetTimeout(DefaultTimeout).
			SetHeader("User-Agent", DefaultUserAgent).
			SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
			SetHeader("Accept-Language", "en-US,en;q=0.9"),
		doc: doc,
		url: BlankURL,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Ping reports whether the helper was installed since the last load.
func (t *Tab) Ping(context.Context) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.helper, nil
}

// Inject marks the helper as installed in the current document.
func (t *Tab) Inject(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.helper = true
	return nil
}

// Navigate fetches rawURL and makes it the current document. HTTP error
// statuses still load the returned page.
func (t *Tab) Navigate(ctx context.Context, rawURL string) error {
	resp, err := t.client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return t.load(resp, rawURL)
}

// WaitForLoad returns immediately; Navigate only returns after the load.
func (t *Tab) WaitForLoad(context.Context) error {
	return nil
}

// Snapshot serializes the current document.
func (t *Tab) Snapshot(context.Context) (tab.Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	raw, err := goquery.OuterHtml(t.doc.Selection)
	if err != nil {
		return tab.Snapshot{}, fmt.Errorf("failed to render document: %w", err)
	}
	return tab.Snapshot{URL: t.url, HTML: raw}, nil
}

// URL returns the current document address.
func (t *Tab) URL() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.url
}

// Status returns the HTTP status of the last load, or 0 for a blank tab.
func (t *Tab) Status() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Close is a no-op; it lets the tab be released like other backends.
func (t *Tab) Close() error {
	return nil
}

func (t *Tab) load(resp *resty.Response, requested string) error {
	body := resp.String()
	if !isHTML(resp.Header().Get("Content-Type"), body) {
		body = "<html><head></head><body><pre>" + html.EscapeString(body) + "</pre></body></html>"
	}

	doc, err := page.ParseSnapshot(body)
	if err != nil {
		return err
	}

	final := requested
	if resp.RawResponse != nil && resp.RawResponse.Request != nil && resp.RawResponse.Request.URL != nil {
		final = resp.RawResponse.Request.URL.String()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.doc = doc
	t.url = final
	t.status = resp.StatusCode()
	t.helper = false
	return nil
}

func isHTML(contentType, body string) bool {
	if contentType == "" {
		trimmed := strings.ToLower(strings.TrimSpace(body))
		return strings.HasPrefix(trimmed, "<")
	}
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "html") || strings.Contains(ct, "xml")
}

var _ tab.Conn = (*Tab)(nil)
