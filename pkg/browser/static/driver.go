package static

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/entrhq/pagepilot/pkg/page"
)

func (t *Tab) nth(selector string, index int) (*goquery.Selection, error) {
	sel := page.FindLive(t.doc, selector).Eq(index)
	if sel.Length() == 0 {
		return nil, fmt.Errorf("element %d is gone", index)
	}
	return sel, nil
}

// SetText stores value in the control's value attribute (text content for
// a textarea).
func (t *Tab) SetText(_ context.Context, control int, value string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	sel, err := t.nth(page.ControlSelector, control)
	if err != nil {
		return err
	}
	if goquery.NodeName(sel) == "textarea" {
		sel.SetText(value)
		return nil
	}
	sel.SetAttr("value", value)
	return nil
}

// SetChecked toggles the checked attribute. Checking a radio clears the
// other radios of its group.
func (t *Tab) SetChecked(_ context.Context, control int, checked bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	sel, err := t.nth(page.ControlSelector, control)
	if err != nil {
		return err
	}
	if !checked {
		sel.RemoveAttr("checked")
		return nil
	}

	if strings.EqualFold(sel.AttrOr("type", ""), "radio") {
		if name := sel.AttrOr("name", ""); name != "" {
			page.FindLive(t.doc, `input[type="radio"]`).Each(func(_ int, r *goquery.Selection) {
				if r.AttrOr("name", "") == name {
					r.RemoveAttr("checked")
				}
			})
		}
	}
	sel.SetAttr("checked", "checked")
	return nil
}

// SelectOption marks the option whose value is value as the only selected
// one. Nothing changes when found is false.
func (t *Tab) SelectOption(_ context.Context, control int, value string, found bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	sel, err := t.nth(page.ControlSelector, control)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	options := sel.Find("option")
	options.RemoveAttr("selected")
	options.EachWithBreak(func(_ int, o *goquery.Selection) bool {
		if optionValue(o) == value {
			o.SetAttr("selected", "selected")
			return false
		}
		return true
	})
	return nil
}

// SubmitVisible reports whether the button would be rendered.
func (t *Tab) SubmitVisible(_ context.Context, button int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sel, err := t.nth(page.SubmitSelector, button)
	if err != nil {
		return false, err
	}
	return page.IsRendered(sel), nil
}

// ClickSubmit submits the button's form with the button as submitter.
func (t *Tab) ClickSubmit(ctx context.Context, button int) error {
	t.mu.Lock()
	sel, err := t.nth(page.SubmitSelector, button)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	if _, disabled := sel.Attr("disabled"); disabled {
		t.mu.Unlock()
		return nil
	}
	form := t.ownerForm(sel)
	if form == nil {
		t.mu.Unlock()
		return nil
	}
	sub := t.prepareSubmission(form, sel)
	t.mu.Unlock()

	return t.send(ctx, sub)
}

// DispatchSubmit has no scripts to run, so the event is never prevented and
// has no default action.
func (t *Tab) DispatchSubmit(_ context.Context, form int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.nth(page.FormSelector, form); err != nil {
		return false, err
	}
	return false, nil
}

// ForceSubmit submits the form without a submitter.
func (t *Tab) ForceSubmit(ctx context.Context, form int) error {
	t.mu.Lock()
	sel, err := t.nth(page.FormSelector, form)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	sub := t.prepareSubmission(sel, nil)
	t.mu.Unlock()

	return t.send(ctx, sub)
}

// ownerForm resolves the form attribute, else the enclosing form.
func (t *Tab) ownerForm(sel *goquery.Selection) *goquery.Selection {
	if id, ok := sel.Attr("form"); ok && id != "" {
		var owner *goquery.Selection
		page.FindLive(t.doc, "form[id]").EachWithBreak(func(_ int, f *goquery.Selection) bool {
			if f.AttrOr("id", "") == id {
				owner = f
				return false
			}
			return true
		})
		return owner
	}
	if form := sel.Closest("form"); form.Length() > 0 {
		return form
	}
	return nil
}

type submission struct {
	method string
	action string
	values url.Values
}

func (t *Tab) prepareSubmission(form, submitter *goquery.Selection) submission {
	method := strings.ToUpper(strings.TrimSpace(form.AttrOr("method", "")))
	action := strings.TrimSpace(form.AttrOr("action", ""))
	if submitter != nil {
		if m, ok := submitter.Attr("formmethod"); ok && m != "" {
			method = strings.ToUpper(strings.TrimSpace(m))
		}
		if a, ok := submitter.Attr("formaction"); ok {
			action = strings.TrimSpace(a)
		}
	}
	if method != "POST" {
		method = "GET"
	}

	return submission{
		method: method,
		action: resolveURL(t.url, action),
		values: FormValues(form, submitter),
	}
}

func (t *Tab) send(ctx context.Context, sub submission) error {
	req := t.client.R().SetContext(ctx)

	var (
		resp *resty.Response
		err  error
	)
	if sub.method == "POST" {
		resp, err = req.SetFormDataFromValues(sub.values).Post(sub.action)
	} else {
		target := sub.action
		if u, perr := url.Parse(sub.action); perr == nil {
			u.RawQuery = sub.values.Encode()
			u.Fragment = ""
			target = u.String()
		}
		resp, err = req.Get(target)
	}
	if err != nil {
		return fmt.Errorf("form submission failed: %w", err)
	}
	return t.load(resp, sub.action)
}

// FormValues collects the successful controls of form in document order.
// Submit controls only contribute when they are the submitter.
func FormValues(form, submitter *goquery.Selection) url.Values {
	values := url.Values{}
	page.FindLive(form, "input, textarea, select, button").Each(func(_ int, el *goquery.Selection) {
		name := el.AttrOr("name", "")
		if name == "" {
			return
		}
		if _, disabled := el.Attr("disabled"); disabled {
			return
		}

		switch goquery.NodeName(el) {
		case "textarea":
			values.Add(name, el.Text())
		case "select":
			addSelected(values, name, el)
		case "button":
			if isSubmitter(el, submitter) {
				values.Add(name, el.AttrOr("value", ""))
			}
		default:
			switch strings.ToLower(el.AttrOr("type", "text")) {
			case "submit", "image", "button", "reset":
				if isSubmitter(el, submitter) {
					values.Add(name, el.AttrOr("value", ""))
				}
			case "file":
			case "checkbox", "radio":
				if _, checked := el.Attr("checked"); checked {
					values.Add(name, el.AttrOr("value", "on"))
				}
			default:
				values.Add(name, el.AttrOr("value", ""))
			}
		}
	})
	return values
}

func addSelected(values url.Values, name string, sel *goquery.Selection) {
	options := sel.Find("option")
	selected := options.FilterFunction(func(_ int, o *goquery.Selection) bool {
		_, ok := o.Attr("selected")
		return ok
	})

	if _, multiple := sel.Attr("multiple"); multiple {
		selected.Each(func(_ int, o *goquery.Selection) {
			values.Add(name, optionValue(o))
		})
		return
	}

	if selected.Length() > 0 {
		values.Add(name, optionValue(selected.Last()))
		return
	}
	if options.Length() > 0 {
		values.Add(name, optionValue(options.First()))
	}
}

func isSubmitter(el, submitter *goquery.Selection) bool {
	return submitter != nil && submitter.Length() > 0 && el.Nodes[0] == submitter.Nodes[0]
}

func optionValue(o *goquery.Selection) string {
	if v, ok := o.Attr("value"); ok {
		return v
	}
	return strings.Join(strings.Fields(o.Text()), " ")
}

func resolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return base
	}
	return b.ResolveReference(r).String()
}
