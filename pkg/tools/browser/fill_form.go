package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/entrhq/pagepilot/pkg/agent/approval"
	"github.com/entrhq/pagepilot/pkg/agent/tools"
	"github.com/entrhq/pagepilot/pkg/page"
)

const (
	// SubmitPrompt is the question put to the user before a submission.
	SubmitPrompt = "The agent wants to SUBMIT a form on this page with provided values. Continue?"

	msgDeclined = "User declined submission."
)

// FillFormTool fills controls on the current page and optionally submits.
type FillFormTool struct {
	tab      PageTab
	approver Approver
}

// NewFillFormTool creates a new fill_form tool. A nil approver declines
// every submission.
func NewFillFormTool(t PageTab, approver Approver) *FillFormTool {
	return &FillFormTool{tab: t, approver: approver}
}

// Name returns the tool name.
func (t *FillFormTool) Name() string {
	return "fill_form"
}

// Description returns the tool description.
func (t *FillFormTool) Description() string {
	return "Fill form fields on current page"
}

// Schema returns the tool's JSON schema.
func (t *FillFormTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"fields": map[string]interface{}{
				"type":                 "object",
				"description":          "Map of label, name, id or placeholder hints to values",
				"additionalProperties": true,
			},
			"submit": map[string]interface{}{
				"type":        "boolean",
				"description": "Submit the form after filling (asks the user first)",
			},
		},
		[]string{"fields"},
	)
}

type fillArgs struct {
	fields page.FieldSet
	submit bool
}

func parseFillArgs(args json.RawMessage) (fillArgs, error) {
	members := decodeArgs(args)

	in := fillArgs{fields: page.FieldSet{}, submit: page.Truthy(members["submit"])}
	if raw := members["fields"]; page.Truthy(raw) {
		fields, err := page.ParseFieldSet(raw)
		if err != nil {
			return fillArgs{}, err
		}
		in.fields = fields
	}
	return in, nil
}

// Execute returns {ok:true, result} or {ok:false, error}.
func (t *FillFormTool) Execute(ctx context.Context, args json.RawMessage) (tools.Result, error) {
	in, err := parseFillArgs(args)
	if err != nil {
		return nil, err
	}

	if in.submit && !t.confirm(ctx, args, in) {
		return tools.Failure(msgDeclined), nil
	}

	resp := t.tab.FillForm(ctx, in.fields, in.submit)
	if !resp.OK {
		return tools.Failure(resp.Error), nil
	}
	return tools.NewResult("ok", true, "result", resp.Result), nil
}

// GeneratePreview describes the submission awaiting confirmation.
func (t *FillFormTool) GeneratePreview(ctx context.Context, args json.RawMessage) (*tools.ToolPreview, error) {
	in, err := parseFillArgs(args)
	if err != nil {
		return nil, err
	}
	return t.preview(in), nil
}

func (t *FillFormTool) preview(in fillArgs) *tools.ToolPreview {
	content, err := json.MarshalIndent(in.fields, "", "  ")
	if err != nil {
		content = []byte(fmt.Sprintf("%d fields", len(in.fields)))
	}
	return &tools.ToolPreview{
		Type:        tools.PreviewTypeFormSubmit,
		Title:       "Submit form",
		Description: SubmitPrompt,
		Content:     string(content),
		Metadata: map[string]interface{}{
			"url":         t.tab.URL(),
			"field_count": len(in.fields),
		},
	}
}

// confirm asks the approver. A timeout counts as a decline.
func (t *FillFormTool) confirm(ctx context.Context, args json.RawMessage, in fillArgs) bool {
	if t.approver == nil {
		toolLog.Warnf("fill_form submission declined: no approver configured")
		return false
	}

	approved, timedOut := t.approver.RequestApproval(ctx, approval.Request{
		ToolName: t.Name(),
		Input:    tools.ArgumentsMap(args),
		URL:      t.tab.URL(),
		Preview:  t.preview(in),
	})
	if timedOut {
		toolLog.Infof("fill_form submission confirmation timed out")
	}
	return approved
}
