package page

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// IsRendered reports whether the first node of sel would have a layout box:
// neither it nor an ancestor carries the hidden attribute or an inline
// display:none.
func IsRendered(sel *goquery.Selection) bool {
	if sel == nil || sel.Length() == 0 {
		return false
	}
	for n := sel.Nodes[0]; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && isHiddenNode(n) {
			return false
		}
	}
	return true
}

func isHiddenNode(n *html.Node) bool {
	if strings.EqualFold(n.Data, "input") && strings.EqualFold(attr(n, "type"), "hidden") {
		return true
	}
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "hidden":
			return true
		case "style":
			if hasDisplayNone(a.Val) {
				return true
			}
		}
	}
	return false
}

func hasDisplayNone(style string) bool {
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), "display") {
			value = strings.ToLower(strings.TrimSpace(value))
			value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
			if value == "none" {
				return true
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}
