package page

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Option is one <option> of a select control.
type Option struct {
	// Value is the value attribute, or the option text with whitespace
	// collapsed when the attribute is absent.
	Value string

	// Text is the trimmed text content.
	Text string
}

// Control is a fillable element of a snapshot.
type Control struct {
	Index int

	// Tag is the lowercase tag name: input, textarea or select.
	Tag string

	// Type is the lowercase input type; "text" when unset. Textareas
	// report "textarea" and selects "select".
	Type string

	ID          string
	Name        string
	Placeholder string
	AriaLabel   string

	// Label is the rendered text of the control's label, if any.
	Label string

	Options []Option
}

// IsToggle reports whether the control takes a checked state.
func (c Control) IsToggle() bool {
	return c.Tag == "input" && (c.Type == "checkbox" || c.Type == "radio")
}

// Candidates returns the normalized, non-empty strings a field key is
// matched against, in priority order.
func (c Control) Candidates() []string {
	raw := []string{c.Name, c.ID, c.Placeholder, c.AriaLabel, c.Label}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if n := normalize(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Matches reports whether key equals or is contained in any candidate.
func (c Control) Matches(key string) bool {
	k := normalize(key)
	for _, a := range c.Candidates() {
		if a == k || strings.Contains(a, k) {
			return true
		}
	}
	return false
}

// Descriptor identifies the control in a fill report.
func (c Control) Descriptor() Descriptor {
	return Descriptor{
		Tag:         c.Tag,
		ID:          optional(c.ID),
		Name:        optional(c.Name),
		Placeholder: optional(c.Placeholder),
	}
}

// FindOption returns the option whose value equals val, falling back to the
// first whose text matches val case-insensitively.
func (c Control) FindOption(val string) (Option, bool) {
	for _, o := range c.Options {
		if o.Value == val {
			return o, true
		}
	}
	lower := strings.ToLower(val)
	for _, o := range c.Options {
		if strings.ToLower(o.Text) == lower {
			return o, true
		}
	}
	return Option{}, false
}

// Descriptor is the lightweight report of a filled control. Empty
// attributes are reported as null.
type Descriptor struct {
	Tag         string  `json:"tag"`
	ID          *string `json:"id"`
	Name        *string `json:"name"`
	Placeholder *string `json:"placeholder"`
}

// Controls lists the fillable controls of doc in document order.
func Controls(doc *goquery.Document) []Control {
	var controls []Control
	FindLive(doc, ControlSelector).Each(func(i int, sel *goquery.Selection) {
		controls = append(controls, newControl(doc, i, sel))
	})
	return controls
}

// FirstMatch returns the first control matching key.
func FirstMatch(controls []Control, key string) (Control, bool) {
	for _, c := range controls {
		if c.Matches(key) {
			return c, true
		}
	}
	return Control{}, false
}

func newControl(doc *goquery.Document, index int, sel *goquery.Selection) Control {
	n := sel.Nodes[0]
	tag := strings.ToLower(n.Data)

	c := Control{
		Index:     index,
		Tag:       tag,
		ID:        attr(n, "id"),
		Name:      attr(n, "name"),
		AriaLabel: attr(n, "aria-label"),
		Label:     labelText(doc, sel, attr(n, "id")),
	}

	switch tag {
	case "input":
		c.Type = strings.ToLower(strings.TrimSpace(attr(n, "type")))
		if c.Type == "" {
			c.Type = "text"
		}
		c.Placeholder = attr(n, "placeholder")
	case "textarea":
		c.Type = "textarea"
		c.Placeholder = attr(n, "placeholder")
	case "select":
		c.Type = "select"
		sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
			c.Options = append(c.Options, newOption(opt))
		})
	}
	return c
}

func newOption(opt *goquery.Selection) Option {
	text := opt.Text()
	value, ok := opt.Attr("value")
	if !ok {
		value = collapseSpace(text)
	}
	return Option{Value: value, Text: strings.TrimSpace(text)}
}

// labelText prefers a label[for=id] anywhere in the document, then the
// closest enclosing label.
func labelText(doc *goquery.Document, sel *goquery.Selection, id string) string {
	if id != "" {
		var found *html.Node
		FindLive(doc, "label[for]").EachWithBreak(func(_ int, l *goquery.Selection) bool {
			if attr(l.Nodes[0], "for") == id {
				found = l.Nodes[0]
				return false
			}
			return true
		})
		if found != nil {
			return RenderText(found)
		}
	}

	if parent := sel.Closest("label"); parent.Length() > 0 {
		return RenderText(parent.Nodes[0])
	}
	return ""
}

// finder is a *goquery.Document or a *goquery.Selection.
type finder interface {
	Find(selector string) *goquery.Selection
}

// FindLive selects the descendants of root matching selector, leaving out
// the content of <template> elements. A live document keeps that content
// in a separate fragment, so the indexes used by the driver only line up
// when it is skipped here too.
func FindLive(root finder, selector string) *goquery.Selection {
	return root.Find(selector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return !insideTemplate(s.Nodes[0])
	})
}

func insideTemplate(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && strings.EqualFold(p.Data, "template") {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
