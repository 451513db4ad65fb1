package tab

import (
	"context"
	"errors"
	"time"

	"github.com/entrhq/pagepilot/pkg/logging"
	"github.com/entrhq/pagepilot/pkg/page"
)

const (
	// DefaultRequestTimeout bounds one round-trip to the tab.
	DefaultRequestTimeout = 15 * time.Second

	// DefaultLoadTimeout is the ceiling on waiting for a navigation to finish.
	DefaultLoadTimeout = 10 * time.Second

	// DefaultInjectDelay is the pause after injecting the helper script.
	DefaultInjectDelay = 100 * time.Millisecond
)

const msgNoContentScript = "Content script not available"

var tabLog *logging.Logger

func init() {
	var err error
	tabLog, err = logging.NewLogger("tab")
	if err != nil {
		tabLog.Warnf("Failed to initialize tab logger, using stderr fallback: %v", err)
	}
}

// PageText is the degraded-safe result of a page text request.
type PageText struct {
	Text string
	URL  string
}

// Client performs timed round-trips with one tab.
type Client struct {
	conn           Conn
	handler        *ContentHandler
	requestTimeout time.Duration
	loadTimeout    time.Duration
	injectDelay    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithRequestTimeout sets the per-request timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.requestTimeout = d
		}
	}
}

// WithLoadTimeout sets the navigation wait ceiling.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.loadTimeout = d
		}
	}
}

// WithInjectDelay sets the pause after helper injection.
func WithInjectDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.injectDelay = d
		}
	}
}

// NewClient creates a client for conn.
func NewClient(conn Conn, opts ...Option) *Client {
	c := &Client{
		conn:           conn,
		handler:        NewContentHandler(conn),
		requestTimeout: DefaultRequestTimeout,
		loadTimeout:    DefaultLoadTimeout,
		injectDelay:    DefaultInjectDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the tab's current URL.
func (c *Client) URL() string {
	return c.conn.URL()
}

// Send delivers req to the helper in the tab and waits for its answer for at
// most the request timeout.
func (c *Client) Send(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	type reply struct {
		resp Response
		err  error
	}
	done := make(chan reply, 1)

	go func() {
		present, err := c.conn.Ping(ctx)
		if err != nil {
			done <- reply{err: err}
			return
		}
		if !present {
			done <- reply{err: ErrNoReceiver}
			return
		}
		done <- reply{resp: c.handler.Handle(ctx, req)}
	}()

	select {
	case r := <-done:
		return r.resp, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Response{}, ErrTimeout
		}
		return Response{}, ctx.Err()
	}
}

// EnsureContentScript pings the helper and injects it when absent. After an
// injection it waits briefly and probes once more.
func (c *Client) EnsureContentScript(ctx context.Context) bool {
	if resp, err := c.Send(ctx, Request{Action: ActionPing}); err == nil && resp.OK {
		tabLog.Debugf("content script already available")
		return true
	}

	tabLog.Debugf("injecting content script")
	if err := c.withTimeout(ctx, c.conn.Inject); err != nil {
		tabLog.Warnf("error ensuring content script: %v", err)
		return false
	}

	if c.injectDelay > 0 {
		timer := time.NewTimer(c.injectDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return false
		}
	}

	resp, err := c.Send(ctx, Request{Action: ActionPing})
	if err != nil || !resp.OK {
		tabLog.Warnf("content script did not answer after injection: %v", err)
		return false
	}
	return true
}

// GetPageText returns the tab's title and body text. Any failure yields an
// empty PageText.
func (c *Client) GetPageText(ctx context.Context) PageText {
	if !c.EnsureContentScript(ctx) {
		tabLog.Warnf("failed to ensure content script is available")
		return PageText{}
	}

	resp, err := c.Send(ctx, Request{Action: ActionGetPageText})
	if err != nil {
		tabLog.Warnf("error getting page text: %v", err)
		return PageText{}
	}
	if !resp.OK {
		tabLog.Warnf("content script returned error: %s", resp.Error)
		return PageText{}
	}

	var pt PageText
	if resp.Text != nil {
		pt.Text = *resp.Text
	}
	if resp.URL != nil {
		pt.URL = *resp.URL
	}
	return pt
}

// FillForm asks the tab to fill fields and optionally submit. The response
// is {ok:true, result} or {ok:false, error}.
func (c *Client) FillForm(ctx context.Context, fields page.FieldSet, submit bool) Response {
	if !c.EnsureContentScript(ctx) {
		return failure(msgNoContentScript)
	}

	req, err := NewFillRequest(fields, submit)
	if err != nil {
		return failure(err.Error())
	}

	resp, err := c.Send(ctx, req)
	if err != nil {
		tabLog.Warnf("error filling form: %v", err)
		return failure(err.Error())
	}
	if !resp.OK {
		msg := resp.Error
		if msg == "" {
			msg = "Unknown"
		}
		return failure(msg)
	}
	return Response{OK: true, Result: resp.Result}
}

// Navigate loads url and waits for the load to complete. A load that does
// not complete within the load timeout is not an error.
func (c *Client) Navigate(ctx context.Context, url string) error {
	if err := c.withTimeout(ctx, func(ctx context.Context) error {
		return c.conn.Navigate(ctx, url)
	}); err != nil {
		return err
	}

	loadCtx, cancel := context.WithTimeout(ctx, c.loadTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.conn.WaitForLoad(loadCtx) }()

	select {
	case err := <-done:
		if err != nil && ctx.Err() == nil && loadCtx.Err() == nil {
			tabLog.Warnf("wait for load of %s failed: %v", url, err)
		}
	case <-loadCtx.Done():
		tabLog.Debugf("load of %s did not complete within %s, continuing", url, c.loadTimeout)
	}
	return ctx.Err()
}

// withTimeout runs fn bounded by the request timeout.
func (c *Client) withTimeout(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ctx.Err()
	}
}
