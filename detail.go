package main

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kylesnowschwartz/agenda/calendar"
)

// updateDetail handles key events in the event detail view.
func (m model) updateDetail(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "backspace", "i":
		m.view = viewAgenda
		m.detailScroll = 0
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		if row := m.selectedItem(); row != nil {
			return m, m.app.pressItem(*row, false)
		}
	case "o":
		if row := m.selectedItem(); row != nil {
			return m, m.app.pressItem(*row, true)
		}
	case "j", "down":
		m.detailScroll++
	case "k", "up":
		m.detailScroll--
	case "J", "ctrl+d":
		m.detailScroll += m.height / 2
	case "K", "ctrl+u":
		m.detailScroll -= m.height / 2
	case "G":
		m.detailScroll = m.detailMaxScroll()
	case "g":
		m.detailScroll = 0
	case "r":
		return m.onRefresh(true)
	}
	m.clampDetailScroll()
	return m, nil
}

// detailViewHeight reserves room for the status bar.
func (m model) detailViewHeight() int {
	h := m.height - statusBarHeight
	if h < 1 {
		return 1
	}
	return h
}

func (m model) detailMaxScroll() int {
	if m.width == 0 {
		return 0
	}
	maxScroll := len(m.detailLines()) - m.detailViewHeight()
	if maxScroll < 0 {
		return 0
	}
	return maxScroll
}

// clampDetailScroll keeps detailScroll inside the rendered content.
func (m *model) clampDetailScroll() {
	if m.view != viewDetail {
		return
	}
	if maxScroll := m.detailMaxScroll(); m.detailScroll > maxScroll {
		m.detailScroll = maxScroll
	}
	if m.detailScroll < 0 {
		m.detailScroll = 0
	}
}

// detailLines renders the selected event's full content, before scrolling.
func (m model) detailLines() []string {
	row := m.selectedItem()
	if row == nil {
		dim := lipgloss.NewStyle().Foreground(ColorTextDim)
		return []string{"", "  " + dim.Render("This event is no longer in the agenda.")}
	}
	width := m.contentWidth()
	content := m.renderDetail(*row, width)

	// Trailing newlines from lipgloss would become blank phantom lines.
	content = strings.TrimRight(content, "\n")
	return strings.Split(content, "\n")
}

// renderDetail renders the header block, description and raw event.
func (m model) renderDetail(row calendar.DisplayItem, width int) string {
	e := row.Event
	label := lipgloss.NewStyle().Foreground(ColorTextDim).Width(10)
	value := lipgloss.NewStyle().Foreground(ColorTextPrimary)

	title := row.Title
	if title == "" {
		title = "(no title)"
	}
	left := StylePrimaryBold.Render(title)
	right := renderButton(row.Action)
	if e.Ongoing(m.now()) {
		right = IconLive.WithColor(ColorOngoing) + " " +
			lipgloss.NewStyle().Foreground(ColorOngoing).Render("now") + "  " + right
	}

	var b strings.Builder
	b.WriteString(spaceBetween(left, right, width-2))
	b.WriteString("\n\n")

	field := func(name, v string) {
		if v == "" {
			return
		}
		for i, line := range wrapText(v, width-12) {
			if i > 0 {
				name = ""
			}
			b.WriteString(label.Render(name) + value.Render(line) + "\n")
		}
	}
	field("When", m.fmt.DateLabel(e)+"  "+m.fmt.TimeRangeLabel(e))
	if rel := relativeStart(e.Start, e.End, m.now()); rel != "" {
		b.WriteString(label.Render("") + StyleDim.Render(rel) + "\n")
	}
	if e.URL != "" {
		b.WriteString(label.Render("Meeting") +
			lipgloss.NewStyle().Foreground(ColorLink).Render(truncate(e.URL, width-12)) + "\n")
	} else {
		b.WriteString(label.Render("Meeting") + StyleDim.Render("none, press o to add one") + "\n")
	}
	field("Where", e.Location)
	field("Calendar", e.CalendarID)
	if e.Status != "" && e.Status != "CONFIRMED" {
		field("Status", strings.ToLower(e.Status))
	}

	if desc := strings.TrimSpace(e.Description); desc != "" {
		b.WriteString("\n" + renderSectionHeader("Description", width) + "\n\n")
		b.WriteString(indentBlock(m.md.renderMarkdown(desc, width-4), "  ") + "\n")
	}

	b.WriteString("\n" + renderSectionHeader("Event", width) + "\n\n")
	raw, err := json.Marshal(e)
	if err != nil {
		b.WriteString("  " + StyleErrorBold.Render(err.Error()))
	} else if hl, ok := m.hl.highlight(string(raw)); ok {
		b.WriteString(indentBlock(strings.TrimRight(hl, "\n"), "  "))
	} else {
		b.WriteString(indentBlock(string(raw), "  "))
	}
	return b.String()
}

// viewDetail renders the scrolled detail view with its status bar.
func (m model) viewDetail() string {
	lines := m.detailLines()
	total := len(lines)
	viewHeight := m.detailViewHeight()

	maxScroll := total - viewHeight
	if maxScroll < 0 {
		maxScroll = 0
	}
	scroll := m.detailScroll
	if scroll > maxScroll {
		scroll = maxScroll
	}
	if scroll < 0 {
		scroll = 0
	}

	lines = lines[scroll:]
	if len(lines) > viewHeight {
		lines = lines[:viewHeight]
	}
	for len(lines) < viewHeight {
		lines = append(lines, "")
	}

	scrollInfo := ""
	if total > viewHeight {
		pct := 0
		if maxScroll > 0 {
			pct = scroll * 100 / maxScroll
		}
		scrollInfo = fmt.Sprintf("  %d%%", pct)
	}

	status := m.renderStatusBar(
		"j/k", "scroll",
		"enter", "open",
		"o", "join",
		"G/g", "jump",
		"q/esc", "back"+scrollInfo,
	)
	return strings.Join(lines, "\n") + "\n" + status
}
