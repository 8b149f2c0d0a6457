package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kylesnowschwartz/agenda/calendar"
)

// key constructs a tea.KeyPressMsg from a string like "j", "G", "enter",
// "ctrl+c". Single characters become printable keys.
func key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "backspace":
		return tea.KeyPressMsg{Code: tea.KeyBackspace}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}
	default:
		r := []rune(s)[0]
		return tea.KeyPressMsg{Code: r, Text: s}
	}
}

// testNow is 10:00 UTC on a Saturday.
var testNow = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

// stubSource serves a fixed event list.
type stubSource struct {
	name   string
	events []calendar.Event
	err    error
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Fetch(ctx context.Context, from, to time.Time) ([]calendar.Event, error) {
	return s.events, s.err
}

// recorder collects analytics tags and opened URLs.
type recorder struct {
	tags   []string
	opened []string
}

func (r *recorder) Track(tag string, fields ...zap.Field) {
	r.tags = append(r.tags, tag)
}

func (r *recorder) open(url string) error {
	r.opened = append(r.opened, url)
	return nil
}

func (r *recorder) count(tag string) int {
	n := 0
	for _, t := range r.tags {
		if t == tag {
			n++
		}
	}
	return n
}

// ev builds a one-hour event starting at start.
func ev(id, title string, start time.Time, url string) calendar.Event {
	return calendar.Event{
		ID:         id,
		CalendarID: "work",
		Title:      title,
		Start:      start,
		End:        start.Add(time.Hour),
		URL:        url,
	}
}

// testEvents spans today and two later days, sorted by start.
func testEvents() []calendar.Event {
	return []calendar.Event{
		ev("standup", "Standup", testNow.Add(-30*time.Minute), "https://meet.example.com/standup"),
		ev("lunch", "Lunch", testNow.Add(2*time.Hour), ""),
		ev("review", "Design review", testNow.Add(24*time.Hour), "https://zoom.us/j/123"),
		ev("retro", "Retro", testNow.Add(48*time.Hour), ""),
	}
}

// testModel returns a model at 120x40 with testEvents loaded. The refresh
// limiter allows one refresh per hour.
func testModel(t *testing.T) (model, *recorder) {
	t.Helper()
	rec := &recorder{}
	store, err := calendar.LoadAttachments(filepath.Join(t.TempDir(), "attachments.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	a := &app{
		syncer: &calendar.Syncer{
			Sources:     []calendar.Source{stubSource{name: "stub", events: testEvents()}},
			Attachments: store,
		},
		store:        store,
		server:       calendar.DefaultMeetingServer,
		open:         rec.open,
		track:        rec,
		limiter:      rate.NewLimiter(rate.Every(time.Hour), 1),
		triggers:     make(chan string, 1),
		log:          zap.NewNop(),
		loc:          time.UTC,
		horizonDays:  7,
		backfillDays: 0,
	}
	m := newModel(a, calendar.NewFormatter("en_US", time.UTC), true)
	m.now = func() time.Time { return testNow }
	m.width = 120
	m.height = 40

	next, _ := m.applySync(syncResultMsg{events: testEvents(), at: testNow})
	m = next.(model)
	rec.tags = nil
	return m, rec
}

// update runs one message through the model.
func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	got, ok := next.(model)
	if !ok {
		t.Fatalf("Update returned %T, want model", next)
	}
	return got, cmd
}

// press sends a sequence of keys.
func press(t *testing.T, m model, keys ...string) model {
	t.Helper()
	for _, k := range keys {
		m, _ = update(t, m, key(k))
	}
	return m
}

func errForTest(s string) error { return errors.New(s) }
