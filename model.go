package main

import (
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kylesnowschwartz/agenda/calendar"
)

// View states
type viewState int

const (
	viewAgenda viewState = iota // sectioned event list (main view)
	viewDetail                  // full-screen single event
)

// app bundles the collaborators the model calls out to. It is shared by
// every copy of the model.
type app struct {
	syncer   *calendar.Syncer
	store    *calendar.AttachmentStore
	server   string
	open     func(url string) error
	track    analytics
	limiter  *rate.Limiter
	triggers chan string
	log      *zap.Logger

	loc          *time.Location
	horizonDays  int
	backfillDays int
}

type model struct {
	app *app
	fmt calendar.Formatter
	now func() time.Time

	width  int
	height int
	view   viewState

	// Agenda state
	events   []calendar.Event
	sections []calendar.Section
	items    []agendaItem
	cursor   int
	scroll   int
	day      string // date the sections were grouped on

	// Sync state
	loaded       bool
	syncing      bool
	interactive  bool
	lastSync     time.Time
	syncErr      error
	stats        calendar.FilterStats
	selectedSent bool

	// Animation
	animFrame  int
	tickActive bool

	// Transient status-bar message
	notice        string
	noticeIsError bool

	// Detail view state
	detailScroll int
	md           *mdRenderer
	hl           *jsonHL
}

func newModel(a *app, f calendar.Formatter, hasDarkBg bool) model {
	return model{
		app: a,
		fmt: f,
		now: time.Now,
		md:  newMDRenderer(hasDarkBg),
		hl:  newJSONHL(hasDarkBg),

		syncing: true,
	}
}

// Init starts the first sync; newModel already marks it as running.
func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.app.syncCmd(m.now(), false),
		waitForTrigger(m.app.triggers),
		clockCmd(),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureAgendaVisible()
		m.clampDetailScroll()
		return m, nil

	case syncResultMsg:
		return m.applySync(msg)

	case refreshTriggerMsg:
		cmds := []tea.Cmd{waitForTrigger(m.app.triggers)}
		if !m.syncing {
			m.syncing = true
			m.interactive = false
			cmds = append(cmds, m.app.syncCmd(m.now(), false))
		}
		return m, tea.Batch(cmds...)

	case tickMsg:
		m.animFrame++
		if m.needsTick() {
			return m, tickCmd()
		}
		m.tickActive = false
		return m, nil

	case clockMsg:
		m.regroupIfDayChanged()
		cmds := []tea.Cmd{clockCmd()}
		if cmd := m.startTick(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case navigatedMsg:
		if msg.err != nil {
			m.app.log.Warn("open failed", zap.String("url", msg.url), zap.Error(msg.err))
			m.setNotice("could not open "+msg.url, true)
		} else {
			m.setNotice("opened "+msg.url, false)
		}
		return m, nil

	case urlAttachedMsg:
		if msg.err != nil {
			m.app.log.Error("attach failed", zap.String("event_id", msg.eventID), zap.Error(msg.err))
			m.setNotice("could not add URL", true)
			return m, nil
		}
		m.attachURL(msg.calendarID, msg.eventID, msg.url)
		m.setNotice("meeting URL added", false)
		return m, nil

	case tea.KeyPressMsg:
		if m.view == viewDetail {
			return m.updateDetail(msg)
		}
		return m.updateAgenda(msg)
	}

	return m, nil
}

func (m model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws the active view as a string. Dump mode prints it directly.
func (m model) render() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewAgenda()
}

// applySync installs a finished sync. A failed sync keeps the previous
// events on screen.
func (m model) applySync(msg syncResultMsg) (tea.Model, tea.Cmd) {
	m.syncing = false
	m.interactive = false
	m.lastSync = msg.at
	m.syncErr = msg.err
	m.stats = msg.stats

	if msg.err != nil {
		m.setNotice(syncErrorNotice(msg.err), true)
	} else if msg.interactive {
		m.setNotice(fmt.Sprintf("synced %d events", len(msg.events)), false)
	}

	if msg.err == nil || len(msg.events) > 0 || !m.loaded {
		m.setEvents(msg.events)
	}
	m.loaded = true

	if !m.selectedSent {
		m.selectedSent = true
		m.app.track.Track(tagCalendarSelected, zap.Int("events", len(m.events)))
	}

	return m, m.startTick()
}

// onRefresh starts a sync. Interactive refreshes show the spinner and are
// rate limited.
func (m model) onRefresh(interactive bool) (model, tea.Cmd) {
	if m.syncing {
		if interactive {
			m.setNotice("sync already running", false)
		}
		return m, nil
	}
	if interactive && !m.app.limiter.Allow() {
		m.setNotice("refresh throttled", false)
		return m, nil
	}
	if interactive {
		m.app.track.Track(tagRefresh)
	}
	m.syncing = true
	m.interactive = interactive
	return m, tea.Batch(m.app.syncCmd(m.now(), interactive), m.startTick())
}

// setEvents replaces the event list and regroups it, keeping the cursor on
// the same row when it still exists.
func (m *model) setEvents(events []calendar.Event) {
	key := ""
	if item := m.selectedItem(); item != nil {
		key = item.Key
	}
	m.events = events
	m.regroup()
	m.restoreCursor(key)
	m.ensureAgendaVisible()
}

// regroup rebuilds sections and the flattened row list from m.events.
func (m *model) regroup() {
	now := m.now().In(m.fmt.Location())
	m.day = now.Format("2006-01-02")
	m.sections = m.fmt.Sections(m.events, now, m.fmt.TodayLabel())
	m.items = rebuildAgendaItems(m.sections)
}

func (m *model) regroupIfDayChanged() {
	if m.now().In(m.fmt.Location()).Format("2006-01-02") == m.day {
		return
	}
	key := ""
	if item := m.selectedItem(); item != nil {
		key = item.Key
	}
	m.regroup()
	m.restoreCursor(key)
}

// attachURL shows a freshly attached URL without waiting for the next sync.
func (m *model) attachURL(calendarID, eventID, url string) {
	events := make([]calendar.Event, len(m.events))
	copy(events, m.events)
	for i := range events {
		if events[i].CalendarID == calendarID && events[i].ID == eventID && events[i].URL == "" {
			events[i].URL = url
		}
	}
	m.setEvents(events)
}

func (m *model) setNotice(s string, isError bool) {
	m.notice = s
	m.noticeIsError = isError
}

// needsTick reports whether something on screen animates.
func (m model) needsTick() bool {
	if m.syncing && m.interactive {
		return true
	}
	now := m.now()
	for _, e := range m.events {
		if e.Ongoing(now) {
			return true
		}
	}
	return false
}

// startTick starts the animation tick unless it is already running.
func (m *model) startTick() tea.Cmd {
	if m.tickActive || !m.needsTick() {
		return nil
	}
	m.tickActive = true
	return tickCmd()
}

func syncErrorNotice(err error) string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		if n := len(joined.Unwrap()); n > 1 {
			return fmt.Sprintf("%d sources failed", n)
		}
	}
	return "sync failed: " + err.Error()
}
