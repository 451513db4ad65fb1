package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Color Palette
var (
	salmonPink  = lipgloss.Color("#FFB3BA") // primary accent
	coralPink   = lipgloss.Color("#FFCCCB") // secondary accent
	mintGreen   = lipgloss.Color("#A8E6CF") // tools and success
	mutedGray   = lipgloss.Color("#6B7280") // secondary text
	brightWhite = lipgloss.Color("#F9FAFB") // primary text
)

type styles struct {
	header   lipgloss.Style
	tips     lipgloss.Style
	prompt   lipgloss.Style
	answer   lipgloss.Style
	tool     lipgloss.Style
	warning  lipgloss.Style
	approval lipgloss.Style
}

// newStyles renders for w, so color is dropped when w is not a terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		header:   r.NewStyle().Foreground(salmonPink).Bold(true),
		tips:     r.NewStyle().Foreground(mutedGray),
		prompt:   r.NewStyle().Foreground(coralPink).Bold(true),
		answer:   r.NewStyle().Foreground(brightWhite),
		tool:     r.NewStyle().Foreground(mintGreen),
		warning:  r.NewStyle().Foreground(salmonPink),
		approval: r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(salmonPink).Padding(0, 1),
	}
}
