package main

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kylesnowschwartz/agenda/calendar"
)

// --- Flattened virtual list ---

// agendaItemType discriminates between event rows and section headers.
type agendaItemType int

const (
	agendaItemRow agendaItemType = iota
	agendaItemHeader
)

// agendaItem is an entry in the flattened agenda list.
type agendaItem struct {
	typ   agendaItemType
	title string             // set for headers
	id    calendar.SectionID // set for headers
	row   *calendar.DisplayItem
}

// rebuildAgendaItems flattens sections into headers + rows, keeping the
// section order and the row order inside each section.
func rebuildAgendaItems(sections []calendar.Section) []agendaItem {
	var items []agendaItem
	for _, s := range sections {
		items = append(items, agendaItem{typ: agendaItemHeader, title: s.Title, id: s.ID})
		for i := range s.Data {
			items = append(items, agendaItem{typ: agendaItemRow, row: &s.Data[i]})
		}
	}
	return items
}

// --- Agenda update ---

// updateAgenda handles key events in the agenda view.
func (m model) updateAgenda(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "j", "down":
		m.cursorDown()
		m.ensureAgendaVisible()
	case "k", "up":
		m.cursorUp()
		m.ensureAgendaVisible()
	case "G", "end":
		m.cursorLast()
		m.ensureAgendaVisible()
	case "g", "home":
		m.cursorFirst()
	case "enter":
		if row := m.selectedItem(); row != nil {
			return m, m.app.pressItem(*row, false)
		}
	case "o":
		if row := m.selectedItem(); row != nil {
			return m, m.app.pressItem(*row, true)
		}
	case "i", "tab":
		if m.selectedItem() != nil {
			m.view = viewDetail
			m.detailScroll = 0
		}
	case "r":
		return m.onRefresh(true)
	}
	return m, nil
}

// selectedItem returns the row at the current cursor, or nil.
func (m model) selectedItem() *calendar.DisplayItem {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return nil
	}
	item := m.items[m.cursor]
	if item.typ != agendaItemRow {
		return nil
	}
	return item.row
}

// restoreCursor puts the cursor back on the row with key. Unknown keys
// land on the first row.
func (m *model) restoreCursor(key string) {
	if key != "" {
		for i, item := range m.items {
			if item.typ == agendaItemRow && item.row.Key == key {
				m.cursor = i
				return
			}
		}
	}
	m.cursor = 0
	m.cursorFirst()
}

// cursorDown moves cursor to the next row (skipping headers).
func (m *model) cursorDown() {
	for i := m.cursor + 1; i < len(m.items); i++ {
		if m.items[i].typ == agendaItemRow {
			m.cursor = i
			return
		}
	}
}

// cursorUp moves cursor to the previous row (skipping headers).
func (m *model) cursorUp() {
	for i := m.cursor - 1; i >= 0; i-- {
		if m.items[i].typ == agendaItemRow {
			m.cursor = i
			return
		}
	}
}

// cursorLast moves cursor to the last row.
func (m *model) cursorLast() {
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].typ == agendaItemRow {
			m.cursor = i
			return
		}
	}
}

// cursorFirst moves cursor to the first row and resets the scroll.
func (m *model) cursorFirst() {
	m.scroll = 0
	for i := 0; i < len(m.items); i++ {
		if m.items[i].typ == agendaItemRow {
			m.cursor = i
			return
		}
	}
}

// ensureAgendaVisible adjusts scroll so the cursor row is on screen.
func (m *model) ensureAgendaVisible() {
	if m.height <= 0 || len(m.items) == 0 {
		return
	}
	viewHeight := m.viewHeight()

	start := 0
	for i := 0; i < m.cursor && i < len(m.items); i++ {
		start += m.itemHeight(i)
	}
	end := start
	if m.cursor < len(m.items) {
		end += m.itemHeight(m.cursor) - 1
	}

	if start < m.scroll {
		m.scroll = start
	}
	if end >= m.scroll+viewHeight {
		m.scroll = end - viewHeight + 1
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}

// itemHeight returns the display height for an agenda item.
// Rows: title + time line, a URL line when there is one, then the separator.
// Headers: 1 line (first) or 2 (blank + text).
func (m model) itemHeight(index int) int {
	item := m.items[index]
	if item.typ == agendaItemHeader {
		if m.isFirstHeader(index) {
			return 1
		}
		return 2
	}
	h := 2
	if item.row.NavigationURL != "" {
		h++
	}
	return h + 1
}

// isFirstHeader returns true if index is the first header in the list.
func (m model) isFirstHeader(index int) bool {
	for i := 0; i < index; i++ {
		if m.items[i].typ == agendaItemHeader {
			return false
		}
	}
	return true
}

// totalLines returns the line count of the whole flattened list.
func (m model) totalLines() int {
	total := 0
	for i := range m.items {
		total += m.itemHeight(i)
	}
	return total
}

// --- Agenda rendering ---

// viewAgenda renders the sectioned event list.
func (m model) viewAgenda() string {
	width := m.contentWidth()

	header := m.renderAgendaHeader(width) + "\n"

	if len(m.items) == 0 {
		dim := lipgloss.NewStyle().Foreground(ColorTextDim)
		msg := "No upcoming events."
		if !m.loaded {
			msg = "Loading events..."
		}
		body := header + "\n" + "  " + dim.Render(msg)
		return m.padToStatusBar(body) + "\n" + m.renderStatusBar("r", "refresh", "q", "quit")
	}

	var allLines []string
	for i, item := range m.items {
		switch item.typ {
		case agendaItemHeader:
			if !m.isFirstHeader(i) {
				allLines = append(allLines, "")
			}
			allLines = append(allLines, renderSectionHeader(item.title, width))
		case agendaItemRow:
			allLines = append(allLines, m.renderRow(*item.row, i == m.cursor, width)...)
		}
	}

	viewHeight := m.viewHeight()
	start := m.scroll
	if start > len(allLines) {
		start = len(allLines)
	}
	visible := allLines[start:]
	if len(visible) > viewHeight {
		visible = visible[:viewHeight]
	}

	content := m.padToStatusBar(header + "\n" + strings.Join(visible, "\n"))

	scrollInfo := ""
	if total := m.totalLines(); total > viewHeight {
		maxScroll := total - viewHeight
		pct := m.scroll * 100 / maxScroll
		if pct > 100 {
			pct = 100
		}
		scrollInfo = fmt.Sprintf("  %d%%", pct)
	}

	status := m.renderStatusBar(
		"j/k", "nav",
		"enter", "open",
		"o", "join",
		"i", "details",
		"r", "refresh",
		"q", "quit"+scrollInfo,
	)
	return content + "\n" + status
}

// padToStatusBar pads content so the status bar stays at the bottom.
func (m model) padToStatusBar(content string) string {
	rendered := strings.Count(content, "\n") + 1
	if rendered < m.height-statusBarHeight {
		content += strings.Repeat("\n", m.height-statusBarHeight-rendered)
	}
	return content
}

// renderAgendaHeader renders the title line with the event count on the
// left and the sync state on the right.
func (m model) renderAgendaHeader(width int) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	countStyle := lipgloss.NewStyle().Foreground(ColorTextDim)
	left := "  " + IconCalendar.WithColor(ColorAccent) + " " +
		titleStyle.Render("Agenda") + " " +
		countStyle.Render(fmt.Sprintf("(%d)", len(m.events)))

	var right string
	switch {
	case m.syncing && m.interactive:
		frame := SpinnerFrames[m.animFrame%len(SpinnerFrames)]
		right = lipgloss.NewStyle().Foreground(ColorAccent).Render(frame) + " " + countStyle.Render("syncing")
	case m.syncing && !m.loaded:
		right = countStyle.Render("syncing")
	default:
		right = countStyle.Render("synced " + syncAge(m.lastSync, m.now()))
	}
	if m.syncErr != nil {
		right = IconWarn.WithColor(ColorError) + " " + right
	}
	return spaceBetween(left, right+"  ", width)
}

// renderSectionHeader renders a section title with a rule to the right.
func renderSectionHeader(title string, width int) string {
	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorTextSecondary)
	label := labelStyle.Render(title)

	ruleLen := width - lipgloss.Width(label) - 3 // 2 indent + 1 space
	if ruleLen < 0 {
		ruleLen = 0
	}
	rule := lipgloss.NewStyle().Foreground(ColorTextMuted).Render(strings.Repeat("─", ruleLen))
	return "  " + label + " " + rule
}

// renderRow renders one event row + bottom separator. The selected row
// gets a background band.
func (m model) renderRow(item calendar.DisplayItem, isSelected bool, width int) []string {
	indent := "  "
	innerWidth := width - 4 // indent (2) + right gutter (2)
	if innerWidth < 20 {
		innerWidth = 20
	}
	now := m.now()
	ongoing := item.Event.Ongoing(now)

	// Line 1: ongoing dot, title, button.
	button := renderButton(item.Action)

	var prefix string
	if ongoing {
		dotColor := ColorOngoing
		if m.animFrame%2 == 1 {
			dotColor = ColorOngoingDim
		}
		prefix = IconLive.WithColor(dotColor) + " "
	}

	title := item.Title
	if title == "" {
		title = "(no title)"
	}
	titleMax := innerWidth - lipgloss.Width(prefix) - lipgloss.Width(button) - 2
	titleColor := ColorTextPrimary
	if isSelected {
		titleColor = ColorTextSecondary
	}
	title = lipgloss.NewStyle().Bold(true).Foreground(titleColor).Render(truncate(title, titleMax))
	line1 := spaceBetween(indent+prefix+title, button+indent, width)

	// Line 2: time range and relative start.
	var timeRange string
	if len(item.Lines) > 1 {
		timeRange = item.Lines[1]
	}
	relColor := ColorTextMuted
	if ongoing {
		relColor = ColorOngoing
	}
	rel := lipgloss.NewStyle().Foreground(relColor).Render(relativeStart(item.Event.Start, item.Event.End, now))
	line2 := spaceBetween(indent+StyleDim.Render(timeRange), rel+indent, width)

	lines := []string{line1, line2}

	// Line 3: meeting URL.
	if url := item.NavigationURL; url != "" {
		link := IconLink.WithColor(ColorLink) + " " +
			lipgloss.NewStyle().Foreground(ColorLink).Render(truncate(url, innerWidth-2))
		lines = append(lines, indent+link)
	}

	if isSelected {
		bgStyle := lipgloss.NewStyle().Background(ColorSelectedBg).Width(width)
		for i, line := range lines {
			lines[i] = bgStyle.Render(line)
		}
	}

	sepLen := width - 4
	if sepLen < 0 {
		sepLen = 0
	}
	lines = append(lines, StyleMuted.Render(indent+strings.Repeat("─", sepLen)))
	return lines
}

// renderButton renders the trailing control for a row's action.
func renderButton(act calendar.Action) string {
	switch act.(type) {
	case calendar.JoinAction:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorJoin).Render("[ Join ]")
	case calendar.AddURLAction:
		return lipgloss.NewStyle().Foreground(ColorAddURL).Render("[ + Add URL ]")
	}
	return ""
}
