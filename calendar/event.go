// Package calendar turns calendar feeds into the sectioned agenda shown by
// the TUI: sources fetch events, the syncer merges them, and Group buckets
// them into "Today" and per-date sections of display items.
package calendar

import (
	"context"
	"time"
)

// Event is a single concrete calendar occurrence, already expanded from any
// recurrence rule and normalized into the display timezone.
type Event struct {
	ID         string    `json:"id"`
	CalendarID string    `json:"calendar_id"`
	Title      string    `json:"title"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	URL        string    `json:"url,omitempty"` // meeting URL; empty means "no URL"

	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Status      string `json:"status,omitempty"` // CONFIRMED, TENTATIVE, CANCELLED
	AllDay      bool   `json:"all_day,omitempty"`
}

// Ongoing reports whether now falls inside [Start, End).
func (e Event) Ongoing(now time.Time) bool {
	return !now.Before(e.Start) && now.Before(e.End)
}

// Source is a calendar backend the syncer can pull events from.
type Source interface {
	// Name is a human-friendly label used in logs and error messages.
	Name() string

	// Fetch returns events overlapping [from, to]. Events returned with a
	// non-nil error are kept as a partial result.
	Fetch(ctx context.Context, from, to time.Time) ([]Event, error)
}
