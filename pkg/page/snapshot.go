package page

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// ControlSelector lists the elements a form fill may target.
	ControlSelector = "input, textarea, select"

	// SubmitSelector lists the explicit submit controls.
	SubmitSelector = `button[type="submit"], input[type="submit"]`

	// FormSelector lists forms.
	FormSelector = "form"
)

// ParseSnapshot parses serialized page HTML.
func ParseSnapshot(rawHTML string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page HTML: %w", err)
	}
	return doc, nil
}
