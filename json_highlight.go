package main

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/colorprofile"
)

// jsonHL colors the raw event shown at the bottom of the detail view.
type jsonHL struct {
	lexer     chroma.Lexer
	formatter chroma.Formatter
	style     *chroma.Style
}

// newJSONHL builds a highlighter for the detected color profile, using a
// dark or light palette to match the terminal background.
func newJSONHL(hasDarkBg bool) *jsonHL {
	styleName := "github"
	if hasDarkBg {
		styleName = "dracula"
	}
	profile := colorprofile.Detect(os.Stdout, os.Environ())
	return &jsonHL{
		lexer:     chroma.Coalesce(lexers.Get("json")),
		formatter: formatters.Get(chromaFormatter(profile)),
		style:     styles.Get(styleName),
	}
}

// highlight indents and colors s. It reports false when s is not JSON so
// the caller can print it as-is.
func (h *jsonHL) highlight(s string) (string, bool) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(s), "", "  "); err != nil {
		return "", false
	}

	it, err := h.lexer.Tokenise(nil, buf.String())
	if err != nil {
		return "", false
	}
	var out bytes.Buffer
	if err := h.formatter.Format(&out, h.style, it); err != nil {
		return "", false
	}
	return out.String(), true
}

// chromaFormatter maps a color profile to a chroma terminal formatter name.
func chromaFormatter(profile colorprofile.Profile) string {
	switch profile {
	case colorprofile.TrueColor:
		return "terminal16m"
	case colorprofile.ANSI256:
		return "terminal256"
	case colorprofile.ANSI:
		return "terminal16"
	default:
		return "terminal"
	}
}
