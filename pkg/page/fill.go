package page

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Driver applies fill decisions to a live page. Controls, submit buttons
// and forms are addressed by index in document order (see package doc).
type Driver interface {
	// SetText focuses the control, assigns value and fires input and change.
	SetText(ctx context.Context, control int, value string) error

	// SetChecked assigns the checked state and fires change.
	SetChecked(ctx context.Context, control int, checked bool) error

	// SelectOption assigns optionValue when found is true, then fires change
	// either way.
	SelectOption(ctx context.Context, control int, optionValue string, found bool) error

	// SubmitVisible reports whether the submit button has a layout box.
	SubmitVisible(ctx context.Context, button int) (bool, error)

	// ClickSubmit clicks the submit button.
	ClickSubmit(ctx context.Context, button int) error

	// DispatchSubmit fires a cancelable submit event at the form and reports
	// whether a handler prevented it.
	DispatchSubmit(ctx context.Context, form int) (prevented bool, err error)

	// ForceSubmit submits the form bypassing handlers.
	ForceSubmit(ctx context.Context, form int) error
}

// FilledField reports one applied field.
type FilledField struct {
	Key string     `json:"key"`
	By  Descriptor `json:"by"`
}

// Result is the outcome of a form fill. Filled and Unmatched together hold
// every requested key exactly once.
type Result struct {
	Filled    []FilledField `json:"filled"`
	Unmatched []string      `json:"unmatched"`
	Submitted bool          `json:"submitted"`
	Error     string        `json:"error,omitempty"`
}

func newResult() *Result {
	return &Result{Filled: []FilledField{}, Unmatched: []string{}}
}

// failedResult reports every key unmatched with the fill-level error.
func failedResult(fields FieldSet, err error) Result {
	keys := fields.Keys()
	if keys == nil {
		keys = []string{}
	}
	return Result{
		Filled:    []FilledField{},
		Unmatched: keys,
		Error:     err.Error(),
	}
}

// Fill matches each field to the first control whose name, id,
// placeholder, aria-label or label text equals or contains the normalized
// key, applies the value through d and optionally submits. A failure on one
// field leaves that key unmatched; a failure outside the per-field step
// yields an empty fill with every key unmatched and Error set.
func Fill(ctx context.Context, doc *goquery.Document, d Driver, fields FieldSet, submit bool) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = failedResult(fields, fmt.Errorf("%v", r))
		}
	}()

	if doc == nil {
		return failedResult(fields, fmt.Errorf("no document"))
	}

	controls := Controls(doc)
	out := newResult()

	for _, f := range fields {
		c, ok := FirstMatch(controls, f.Key)
		if !ok {
			out.Unmatched = append(out.Unmatched, f.Key)
			continue
		}
		if err := applyField(ctx, d, c, f.Value); err != nil {
			out.Unmatched = append(out.Unmatched, f.Key)
			continue
		}
		out.Filled = append(out.Filled, FilledField{Key: f.Key, By: c.Descriptor()})
	}

	if submit {
		submitted, err := submitForm(ctx, doc, d, out.Filled)
		if err != nil {
			return failedResult(fields, err)
		}
		out.Submitted = submitted
	}

	return *out
}

func applyField(ctx context.Context, d Driver, c Control, value []byte) error {
	switch {
	case c.Tag == "select":
		val, err := SelectValue(value)
		if err != nil {
			return err
		}
		opt, found := c.FindOption(val)
		return d.SelectOption(ctx, c.Index, opt.Value, found)
	case c.IsToggle():
		return d.SetChecked(ctx, c.Index, Checked(value))
	default:
		return d.SetText(ctx, c.Index, TextValue(value))
	}
}

// submitForm clicks the first submit button when it is visible. Otherwise
// it submits the form enclosing the first filled control, or the first form
// of the page.
func submitForm(ctx context.Context, doc *goquery.Document, d Driver, filled []FilledField) (bool, error) {
	if FindLive(doc, SubmitSelector).Length() > 0 {
		visible, err := d.SubmitVisible(ctx, 0)
		if err != nil {
			return false, err
		}
		if visible {
			if err := d.ClickSubmit(ctx, 0); err != nil {
				return false, err
			}
			return true, nil
		}
	}

	form := -1
	if len(filled) > 0 {
		form = formIndexFor(doc, filled[0].By)
	}
	if form < 0 && FindLive(doc, FormSelector).Length() > 0 {
		form = 0
	}
	if form < 0 {
		return false, nil
	}

	prevented, err := d.DispatchSubmit(ctx, form)
	if err != nil {
		return false, err
	}
	if prevented {
		if err := d.ForceSubmit(ctx, form); err != nil {
			return false, err
		}
	}
	return true, nil
}

// formIndexFor locates the first element the descriptor selects (by id,
// else name, else tag with an equal placeholder attribute) and returns the
// index of its enclosing form, or -1.
func formIndexFor(doc *goquery.Document, by Descriptor) int {
	el := findByDescriptor(doc, by)
	if el == nil {
		return -1
	}

	var form *html.Node
	for n := el; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "form") {
			form = n
			break
		}
	}
	if form == nil {
		return -1
	}

	index := -1
	FindLive(doc, FormSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if s.Nodes[0] == form {
			index = i
			return false
		}
		return true
	})
	return index
}

func findByDescriptor(doc *goquery.Document, by Descriptor) *html.Node {
	var match func(n *html.Node) bool
	switch {
	case by.ID != nil:
		match = func(n *html.Node) bool {
			return attr(n, "id") == *by.ID
		}
	case by.Name != nil:
		match = func(n *html.Node) bool {
			v, ok := lookupAttr(n, "name")
			return ok && v == *by.Name
		}
	default:
		want := ""
		if by.Placeholder != nil {
			want = *by.Placeholder
		}
		match = func(n *html.Node) bool {
			if !strings.EqualFold(n.Data, by.Tag) {
				return false
			}
			v, ok := lookupAttr(n, "placeholder")
			return ok && v == want
		}
	}

	var found *html.Node
	FindLive(doc, "*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if match(s.Nodes[0]) {
			found = s.Nodes[0]
			return false
		}
		return true
	})
	return found
}
