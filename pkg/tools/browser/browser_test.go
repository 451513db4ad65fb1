package browser

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pagepilot/pkg/agent/approval"
	"github.com/entrhq/pagepilot/pkg/agent/tools"
	"github.com/entrhq/pagepilot/pkg/llm"
	"github.com/entrhq/pagepilot/pkg/page"
	"github.com/entrhq/pagepilot/pkg/tab"
)

type fakeTab struct {
	url         string
	text        tab.PageText
	navigateErr error
	fillResp    tab.Response

	navigated  []string
	fillCalls  int
	gotFields  page.FieldSet
	gotSubmit  bool
	textCalled int
}

func (f *fakeTab) URL() string { return f.url }

func (f *fakeTab) Navigate(_ context.Context, url string) error {
	f.navigated = append(f.navigated, url)
	return f.navigateErr
}

func (f *fakeTab) GetPageText(context.Context) tab.PageText {
	f.textCalled++
	return f.text
}

func (f *fakeTab) FillForm(_ context.Context, fields page.FieldSet, submit bool) tab.Response {
	f.fillCalls++
	f.gotFields = fields
	f.gotSubmit = submit
	return f.fillResp
}

type fakeProvider struct {
	body string
	err  error
	got  llm.Request
}

func (p *fakeProvider) Complete(_ context.Context, req llm.Request) (*llm.Completion, error) {
	p.got = req
	if p.err != nil {
		return nil, p.err
	}
	return llm.DecodeCompletion([]byte(p.body))
}

func (p *fakeProvider) GetModel() string    { return "test-model" }
func (p *fakeProvider) GetEndpoint() string { return "http://localhost/api/chat" }

type fakeApprover struct {
	approved bool
	timedOut bool
	got      []approval.Request
}

func (a *fakeApprover) RequestApproval(_ context.Context, req approval.Request) (bool, bool) {
	a.got = append(a.got, req)
	return a.approved, a.timedOut
}

func execute(t *testing.T, tool tools.Tool, args string) string {
	t.Helper()
	res, err := tool.Execute(context.Background(), json.RawMessage(args))
	require.NoError(t, err)
	return res.String()
}

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"example.com", "https://example.com/", true},
		{"http://example.com/path?q=1", "http://example.com/path?q=1", true},
		{"HTTPS://Example.COM", "https://example.com/", true},
		{"example.com:8080/login", "https://example.com:8080/login", true},
		{"", "", false},
		{"https://", "", false},
		{"exa mple.com", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := SanitizeURL(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGotoWebsite(t *testing.T) {
	t.Run("navigates and previews", func(t *testing.T) {
		ft := &fakeTab{text: tab.PageText{Text: "Example Domain\n\n" + strings.Repeat("é", 500), URL: "https://example.com/"}}
		got := execute(t, NewGotoWebsiteTool(ft), `{"url":"example.com"}`)

		assert.Equal(t, []string{"https://example.com/"}, ft.navigated)

		var res struct {
			OK      bool   `json:"ok"`
			URL     string `json:"url"`
			Preview string `json:"preview"`
		}
		require.NoError(t, json.Unmarshal([]byte(got), &res))
		assert.True(t, res.OK)
		assert.Equal(t, "https://example.com/", res.URL)
		assert.Equal(t, PreviewChars, len([]rune(res.Preview)))
		assert.True(t, strings.HasPrefix(got, `{"ok":true,"url":`))
	})

	t.Run("invalid url", func(t *testing.T) {
		ft := &fakeTab{}
		assert.Equal(t, `{"ok":false,"error":"Invalid URL"}`, execute(t, NewGotoWebsiteTool(ft), `{}`))
		assert.Empty(t, ft.navigated)
	})

	t.Run("navigation error", func(t *testing.T) {
		ft := &fakeTab{navigateErr: errors.New("net::ERR_NAME_NOT_RESOLVED")}
		got := execute(t, NewGotoWebsiteTool(ft), `{"url":"nope.invalid"}`)
		assert.Equal(t, `{"ok":false,"error":"net::ERR_NAME_NOT_RESOLVED"}`, got)
		assert.Zero(t, ft.textCalled)
	})
}

func TestSummarizePage(t *testing.T) {
	t.Run("summarizes with the default length", func(t *testing.T) {
		ft := &fakeTab{text: tab.PageText{Text: "Title\n\nBody", URL: "https://example.com/"}}
		provider := &fakeProvider{body: `{"message":{"role":"assistant","content":"  A short summary.\n"}}`}

		got := execute(t, NewSummarizePageTool(ft, provider), `{}`)
		assert.Equal(t, `{"summary":"A short summary.","url":"https://example.com/"}`, got)

		require.Len(t, provider.got.Turns, 2)
		assert.Equal(t, "You are a concise summarizer.", provider.got.Turns[0].Content)
		assert.Equal(t, "Summarize the following web page in a short paragraph.\nURL: https://example.com/\n---\nTitle\n\nBody", provider.got.Turns[1].Content)
		assert.Zero(t, provider.got.Temperature)
	})

	t.Run("length and choices shape", func(t *testing.T) {
		ft := &fakeTab{text: tab.PageText{Text: "x", URL: "u"}}
		provider := &fakeProvider{body: `{"choices":[{"message":{"content":"Long one."}}]}`}

		got := execute(t, NewSummarizePageTool(ft, provider), `{"length":"long"}`)
		assert.Equal(t, `{"summary":"Long one.","url":"u"}`, got)
		assert.Contains(t, provider.got.Turns[1].Content, "in a long paragraph")
	})

	t.Run("empty page", func(t *testing.T) {
		provider := &fakeProvider{}
		got := execute(t, NewSummarizePageTool(&fakeTab{}, provider), `{}`)
		assert.Equal(t, `{"summary":"Unable to retrieve page content","url":""}`, got)
		assert.Nil(t, provider.got.Turns)
	})

	t.Run("model failure is a tool error", func(t *testing.T) {
		ft := &fakeTab{text: tab.PageText{Text: "x"}}
		provider := &fakeProvider{err: &llm.TransportError{StatusCode: 503}}

		_, err := NewSummarizePageTool(ft, provider).Execute(context.Background(), json.RawMessage(`{}`))
		require.Error(t, err)
		assert.True(t, llm.IsTransportError(err))
	})
}

func TestSummaryPrompt_Truncates(t *testing.T) {
	prompt := SummaryPrompt("short", "u", strings.Repeat("a", SummaryInputChars+10))
	assert.True(t, strings.HasSuffix(prompt, "---\n"+strings.Repeat("a", SummaryInputChars)))
}

func TestFillForm(t *testing.T) {
	okResp := tab.Response{OK: true, Result: &page.Result{
		Filled:    []page.FilledField{},
		Unmatched: []string{"email"},
	}}

	t.Run("fills without submitting", func(t *testing.T) {
		ft := &fakeTab{fillResp: okResp}
		approver := &fakeApprover{}

		got := execute(t, NewFillFormTool(ft, approver), `{"fields":{"email":"a@b.c"}}`)
		assert.Equal(t, `{"ok":true,"result":{"filled":[],"unmatched":["email"],"submitted":false}}`, got)
		assert.Equal(t, []string{"email"}, ft.gotFields.Keys())
		assert.False(t, ft.gotSubmit)
		assert.Empty(t, approver.got)
	})

	t.Run("declined submission", func(t *testing.T) {
		ft := &fakeTab{url: "https://example.com/signup", fillResp: okResp}
		approver := &fakeApprover{approved: false}

		got := execute(t, NewFillFormTool(ft, approver), `{"fields":{"email":"a@b.c"},"submit":true}`)
		assert.Equal(t, `{"ok":false,"error":"User declined submission."}`, got)
		assert.Zero(t, ft.fillCalls)

		require.Len(t, approver.got, 1)
		req := approver.got[0]
		assert.Equal(t, "fill_form", req.ToolName)
		assert.Equal(t, "https://example.com/signup", req.URL)
		assert.Equal(t, SubmitPrompt, req.Preview.Description)
		assert.Equal(t, tools.PreviewTypeFormSubmit, req.Preview.Type)
		assert.Equal(t, 1, req.Preview.Metadata["field_count"])
	})

	t.Run("timeout counts as declined", func(t *testing.T) {
		ft := &fakeTab{fillResp: okResp}
		got := execute(t, NewFillFormTool(ft, &fakeApprover{timedOut: true}), `{"submit":1}`)
		assert.Equal(t, `{"ok":false,"error":"User declined submission."}`, got)
		assert.Zero(t, ft.fillCalls)
	})

	t.Run("no approver", func(t *testing.T) {
		ft := &fakeTab{fillResp: okResp}
		got := execute(t, NewFillFormTool(ft, nil), `{"submit":true}`)
		assert.Equal(t, `{"ok":false,"error":"User declined submission."}`, got)
	})

	t.Run("approved submission", func(t *testing.T) {
		ft := &fakeTab{fillResp: tab.Response{OK: true, Result: &page.Result{
			Filled:    []page.FilledField{},
			Unmatched: []string{},
			Submitted: true,
		}}}

		got := execute(t, NewFillFormTool(ft, &fakeApprover{approved: true}), `{"fields":{},"submit":"yes"}`)
		assert.Equal(t, `{"ok":true,"result":{"filled":[],"unmatched":[],"submitted":true}}`, got)
		assert.True(t, ft.gotSubmit)
	})

	t.Run("tab failure", func(t *testing.T) {
		ft := &fakeTab{fillResp: tab.Response{OK: false, Error: "Content script not available"}}
		got := execute(t, NewFillFormTool(ft, nil), `{"fields":{"q":"go"}}`)
		assert.Equal(t, `{"ok":false,"error":"Content script not available"}`, got)
	})

	t.Run("missing fields default to empty", func(t *testing.T) {
		ft := &fakeTab{fillResp: okResp}
		execute(t, NewFillFormTool(ft, nil), `{"fields":null}`)
		assert.NotNil(t, ft.gotFields)
		assert.Empty(t, ft.gotFields)
	})
}

func TestNewTools_CatalogueOrder(t *testing.T) {
	var names []string
	for _, tool := range NewTools(&fakeTab{}, &fakeProvider{}, nil) {
		names = append(names, tool.Name())
	}
	assert.Equal(t, []string{"goto_website", "summarize_page", "fill_form"}, names)

	_, previewable := NewTools(&fakeTab{}, &fakeProvider{}, nil)[2].(tools.Previewable)
	assert.True(t, previewable)
}
