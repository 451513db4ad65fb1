package page

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ExtractText returns the page title, a blank line, and the visible body
// text with script, style and noscript content removed.
func ExtractText(doc *goquery.Document) string {
	if doc == nil {
		return "\n\n"
	}
	title := Title(doc)

	body := doc.Find("body").First()
	if body.Length() == 0 {
		return title + "\n\n"
	}
	return title + "\n\n" + strings.TrimSpace(RenderText(body.Nodes[0]))
}

// Title returns the document title with whitespace collapsed.
func Title(doc *goquery.Document) string {
	return collapseSpace(doc.Find("title").First().Text())
}

// RenderText approximates a node's rendered text. Whitespace inside text
// runs collapses and block elements break lines (paragraphs by two). Hidden
// and non-content elements are dropped.
func RenderText(n *html.Node) string {
	r := &textRenderer{}
	r.walk(n)
	return r.String()
}

type textRenderer struct {
	b        strings.Builder
	pendingN int  // newlines owed before the next text
	space    bool // a collapsed space is owed before the next text
	started  bool
}

func (r *textRenderer) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		r.text(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if isSkippedElement(tag) || isHiddenNode(n) {
			return
		}
		if tag == "br" {
			r.lineBreak(1)
			return
		}
		block := isBlockElement(tag)
		if block {
			r.lineBreak(blockSpacing(tag))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			r.walk(c)
		}
		if block {
			r.lineBreak(blockSpacing(tag))
		} else if tag == "td" || tag == "th" {
			r.space = true
		}
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.walk(c)
	}
}

func (r *textRenderer) text(s string) {
	if s == "" {
		return
	}
	leading := isSpace(s[0])
	trailing := isSpace(s[len(s)-1])
	collapsed := collapseSpace(s)
	if collapsed == "" {
		if r.started {
			r.space = true
		}
		return
	}

	if r.started {
		if r.pendingN > 0 {
			r.b.WriteString(strings.Repeat("\n", r.pendingN))
		} else if r.space || leading {
			r.b.WriteByte(' ')
		}
	}
	r.b.WriteString(collapsed)
	r.started = true
	r.pendingN = 0
	r.space = trailing
}

func (r *textRenderer) lineBreak(n int) {
	if !r.started {
		return
	}
	if n > r.pendingN {
		r.pendingN = n
	}
	r.space = false
}

func (r *textRenderer) String() string {
	return r.b.String()
}

func blockSpacing(tag string) int {
	if tag == "p" {
		return 2
	}
	return 1
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isSkippedElement(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "template", "head", "title", "meta", "link":
		return true
	}
	return false
}

func isBlockElement(tag string) bool {
	switch tag {
	case "address", "article", "aside", "blockquote", "dd", "details", "dialog",
		"div", "dl", "dt", "fieldset", "figcaption", "figure", "footer", "form",
		"h1", "h2", "h3", "h4", "h5", "h6", "header", "hr", "li", "main", "nav",
		"ol", "p", "pre", "section", "summary", "table", "tr", "ul", "caption",
		"option", "legend":
		return true
	}
	return false
}
