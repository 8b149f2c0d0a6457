package main

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
)

// relativeStart describes when an event starts relative to now:
// "in 5m", "in 2h 10m", "now", "ended". Events more than a day out
// return "" so the date header carries the information.
func relativeStart(start, end, now time.Time) string {
	switch {
	case !now.Before(end) && (end.After(start) || now.After(start)):
		return "ended"
	case !now.Before(start):
		return "now"
	}
	d := start.Sub(now)
	switch {
	case d < time.Minute:
		return "in <1m"
	case d < time.Hour:
		return fmt.Sprintf("in %dm", int(d.Minutes()))
	case d < 24*time.Hour:
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("in %dh", h)
		}
		return fmt.Sprintf("in %dh %dm", h, m)
	default:
		return ""
	}
}

// syncAge formats how long ago the last sync finished.
func syncAge(last, now time.Time) string {
	if last.IsZero() {
		return "never"
	}
	d := now.Sub(last)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}

// truncate shortens s to at most width display cells, ending in "…".
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// wrapText breaks text into lines of at most maxWidth runes, preferring to
// cut at a space within the last 20 runes.
func wrapText(s string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{s}
	}
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		runes := []rune(para)
		if len(runes) == 0 {
			lines = append(lines, "")
			continue
		}
		for len(runes) > 0 {
			if len(runes) <= maxWidth {
				lines = append(lines, string(runes))
				break
			}
			cut := maxWidth
			for i := maxWidth; i > maxWidth-20 && i > 0; i-- {
				if runes[i] == ' ' {
					cut = i
					break
				}
			}
			lines = append(lines, string(runes[:cut]))
			runes = runes[cut:]
			if len(runes) > 0 && runes[0] == ' ' {
				runes = runes[1:]
			}
		}
	}
	return lines
}
