package browser

import (
	"context"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/entrhq/pagepilot/pkg/agent/tools"
	"github.com/entrhq/pagepilot/pkg/page"
)

const (
	// PreviewChars is the length of the page text preview.
	PreviewChars = 400

	msgInvalidURL = "Invalid URL"
)

var schemePrefix = regexp.MustCompile(`(?i)^https?://`)

// GotoWebsiteTool navigates the tab to a URL.
type GotoWebsiteTool struct {
	tab PageTab
}

// NewGotoWebsiteTool creates a new goto_website tool.
func NewGotoWebsiteTool(t PageTab) *GotoWebsiteTool {
	return &GotoWebsiteTool{tab: t}
}

// Name returns the tool name.
func (t *GotoWebsiteTool) Name() string {
	return "goto_website"
}

// Description returns the tool description.
func (t *GotoWebsiteTool) Description() string {
	return "Navigate to a URL"
}

// Schema returns the tool's JSON schema.
func (t *GotoWebsiteTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "Address to open; https:// is assumed when no scheme is given",
			},
		},
		[]string{"url"},
	)
}

// Execute navigates and returns {ok, url, preview}.
func (t *GotoWebsiteTool) Execute(ctx context.Context, args json.RawMessage) (tools.Result, error) {
	raw := ""
	if v := decodeArgs(args)["url"]; page.Truthy(v) {
		raw = page.TextValue(v)
	}

	clean, ok := SanitizeURL(raw)
	if !ok {
		return tools.Failure(msgInvalidURL), nil
	}

	if err := t.tab.Navigate(ctx, clean); err != nil {
		toolLog.Warnf("Error navigating to %s: %v", clean, err)
		return tools.Failure(err.Error()), nil
	}

	text := t.tab.GetPageText(ctx)
	return tools.NewResult(
		"ok", true,
		"url", text.URL,
		"preview", truncate(text.Text, PreviewChars),
	), nil
}

// SanitizeURL prefixes https:// when raw has no http(s) scheme and returns
// the serialized absolute URL. It reports false when the result is not an
// absolute URL with a host.
func SanitizeURL(raw string) (string, bool) {
	if !schemePrefix.MatchString(raw) {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || u.Hostname() == "" {
		return "", false
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" && u.Opaque == "" {
		u.Path = "/"
	}
	return u.String(), true
}
