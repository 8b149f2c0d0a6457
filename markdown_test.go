package main

import (
	"strings"
	"testing"

	"github.com/charmbracelet/colorprofile"
)

func TestDescriptionText(t *testing.T) {
	tests := []struct {
		name, input, want string
	}{
		{"plain", "Agenda:\n- item", "Agenda:\n- item"},
		{"line breaks", "one<br>two<br/>three", "one\ntwo\nthree"},
		{"links", `Join <a href="https://meet.example.com/x">here</a>`, "Join here"},
		{"entities", "Q&amp;A <b>today</b>", "Q&A today"},
		{"paragraphs", "<p>first</p><p>second</p>", "first\nsecond\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := descriptionText(tt.input); got != tt.want {
				t.Errorf("descriptionText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderMarkdown(t *testing.T) {
	r := newMDRenderer(true)

	out := r.renderMarkdown("Bring **notes**.", 40)
	if !strings.Contains(out, "notes") {
		t.Errorf("rendered output missing text: %q", out)
	}
	if strings.HasSuffix(out, "\n") {
		t.Error("trailing newlines should be trimmed")
	}

	if got := r.renderMarkdown("raw", 0); got != "raw" {
		t.Errorf("zero width = %q, want input unchanged", got)
	}
}

func TestRenderMarkdownReusesRenderer(t *testing.T) {
	r := newMDRenderer(false)
	r.renderMarkdown("a", 40)
	first := r.renderer
	r.renderMarkdown("b", 40)
	if r.renderer != first {
		t.Error("renderer rebuilt at the same width")
	}
	r.renderMarkdown("c", 60)
	if r.width != 60 {
		t.Errorf("width = %d, want 60", r.width)
	}
}

func TestJSONHighlight(t *testing.T) {
	h := newJSONHL(true)

	if _, ok := h.highlight("not json"); ok {
		t.Error("non-JSON input should not highlight")
	}

	out, ok := h.highlight(`{"id":"standup","all_day":false}`)
	if !ok {
		t.Fatal("valid JSON should highlight")
	}
	for _, want := range []string{"standup", "all_day"} {
		if !strings.Contains(out, want) {
			t.Errorf("highlighted output missing %q", want)
		}
	}
	if !strings.Contains(out, "\n") {
		t.Error("output should be indented over several lines")
	}
}

func TestChromaFormatter(t *testing.T) {
	tests := []struct {
		profile colorprofile.Profile
		want    string
	}{
		{colorprofile.TrueColor, "terminal16m"},
		{colorprofile.ANSI256, "terminal256"},
		{colorprofile.ANSI, "terminal16"},
	}
	for _, tt := range tests {
		if got := chromaFormatter(tt.profile); got != tt.want {
			t.Errorf("chromaFormatter(%v) = %q, want %q", tt.profile, got, tt.want)
		}
	}
}
