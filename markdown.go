package main

import (
	"html"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"golang.org/x/term"
)

// mdRenderer renders event descriptions with glamour. The renderer is
// rebuilt only when the wrap width changes.
type mdRenderer struct {
	hasDarkBg bool
	renderer  *glamour.TermRenderer
	width     int
}

func newMDRenderer(hasDarkBg bool) *mdRenderer {
	return &mdRenderer{hasDarkBg: hasDarkBg}
}

// style picks a glamour style for the terminal. The document margin is
// zeroed; the detail view indents the block itself.
func (r *mdRenderer) style() ansi.StyleConfig {
	var style ansi.StyleConfig
	switch {
	case !term.IsTerminal(int(os.Stdout.Fd())):
		style = styles.NoTTYStyleConfig
	case r.hasDarkBg:
		style = styles.DarkStyleConfig
	default:
		style = styles.LightStyleConfig
	}
	zero := uint(0)
	style.Document.Margin = &zero
	return style
}

// renderMarkdown renders a description for display at width columns.
// Rendering errors fall back to the cleaned text.
func (r *mdRenderer) renderMarkdown(content string, width int) string {
	content = descriptionText(content)
	if width <= 0 {
		return content
	}
	if r.renderer == nil || r.width != width {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStyles(r.style()),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return content
		}
		r.renderer = renderer
		r.width = width
	}
	out, err := r.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}

var (
	htmlBreak = regexp.MustCompile(`(?i)<\s*(br\s*/?|/p|/div|/li)\s*>`)
	htmlTag   = regexp.MustCompile(`<[^>]+>`)
)

// descriptionText turns the HTML fragments Google Calendar stores in
// descriptions into plain lines. Plain-text and markdown descriptions pass
// through unchanged.
func descriptionText(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	s = htmlBreak.ReplaceAllString(s, "\n")
	s = htmlTag.ReplaceAllString(s, "")
	return html.UnescapeString(s)
}
