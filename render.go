package main

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// -- Layout constants ---------------------------------------------------------

// maxContentWidth is the maximum width for content rendering.
const maxContentWidth = 120

// statusBarHeight is the number of rendered lines the status bar occupies.
// Rounded border: top + content + bottom = 3 lines.
const statusBarHeight = 3

// headerHeight is the title line plus the blank line under it.
const headerHeight = 2

// -- Helpers ------------------------------------------------------------------

// spaceBetween lays out left and right strings with gap-fill spacing to span width.
func spaceBetween(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + right
}

// indentBlock adds a prefix to every line of a block of text.
func indentBlock(text string, indent string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}

// contentWidth clamps the terminal width to maxContentWidth.
func (m model) contentWidth() int {
	if m.width > maxContentWidth {
		return maxContentWidth
	}
	return m.width
}

// viewHeight is the number of body lines between header and status bar.
func (m model) viewHeight() int {
	h := m.height - headerHeight - statusBarHeight
	if h < 1 {
		return 1
	}
	return h
}

// -- Status bar ---------------------------------------------------------------

// renderStatusBar draws alternating key/description pairs in a rounded box,
// led by the current notice when there is one.
func (m model) renderStatusBar(pairs ...string) string {
	var parts []string
	switch {
	case m.notice == "":
	case m.noticeIsError:
		parts = append(parts, lipgloss.NewStyle().Foreground(ColorError).Render(m.notice))
	default:
		parts = append(parts, StyleSecondary.Render(m.notice))
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, StyleAccentBold.Render(pairs[i])+" "+StyleDim.Render(pairs[i+1]))
	}

	inner := max(m.width-2, 10) // minus the two border columns
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1).
		Width(inner).
		Render(strings.Join(parts, " "+IconDot.Render()+" "))
}
