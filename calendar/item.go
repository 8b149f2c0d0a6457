package calendar

import "time"

// Action is the trailing control of an agenda row. It is either a JoinAction
// or an AddURLAction; callers switch on the concrete type.
type Action interface {
	isAction()
}

// JoinAction opens the event's meeting URL.
type JoinAction struct {
	URL string
}

// AddURLAction attaches a new meeting URL to an event that has none.
type AddURLAction struct {
	CalendarID string
	EventID    string
}

func (JoinAction) isAction()   {}
func (AddURLAction) isAction() {}

// DisplayItem is the row-level data derived from one event.
type DisplayItem struct {
	// Key is unique per (event ID, start) pair.
	Key   string
	Title string

	// Lines holds the meeting URL (possibly empty) followed by the
	// time-range label.
	Lines []string

	Action        Action
	NavigationURL string

	// Event is the source event, kept for detail rendering.
	Event Event
}

// ItemKey derives the row key for an event. "|" never appears in an
// RFC 3339 timestamp, so distinct (id, start) pairs never collide.
func ItemKey(e Event) string {
	return e.ID + "|" + e.Start.UTC().Format(time.RFC3339Nano)
}

// DisplayItem maps an event to its row descriptor.
func (f Formatter) DisplayItem(e Event) DisplayItem {
	item := DisplayItem{
		Key:           ItemKey(e),
		Title:         e.Title,
		Lines:         []string{e.URL, f.TimeRangeLabel(e)},
		NavigationURL: e.URL,
		Event:         e,
	}
	if e.URL != "" {
		item.Action = JoinAction{URL: e.URL}
	} else {
		item.Action = AddURLAction{CalendarID: e.CalendarID, EventID: e.ID}
	}
	return item
}
