package calendar

import (
	"testing"
	"time"
)

func TestDisplayItem(t *testing.T) {
	start := time.Date(2026, 10, 17, 16, 30, 0, 0, time.UTC)
	f := utcFormatter()

	tests := []struct {
		name      string
		event     Event
		wantLines []string
		wantNav   string
		check     func(t *testing.T, a Action)
	}{
		{
			name:      "with url joins",
			event:     Event{ID: "x", CalendarID: "c", Title: "Standup", Start: start, End: start.Add(time.Hour), URL: "https://meet.jit.si/standup"},
			wantLines: []string{"https://meet.jit.si/standup", "Oct 17, 2026 4:30 PM - 5:30 PM"},
			wantNav:   "https://meet.jit.si/standup",
			check: func(t *testing.T, a Action) {
				j, ok := a.(JoinAction)
				if !ok || j.URL != "https://meet.jit.si/standup" {
					t.Errorf("action = %#v, want JoinAction{standup}", a)
				}
			},
		},
		{
			name:      "without url adds one",
			event:     Event{ID: "y", CalendarID: "c", Title: "1:1", Start: start, End: start.Add(30 * time.Minute)},
			wantLines: []string{"", "Oct 17, 2026 4:30 PM - 5:00 PM"},
			wantNav:   "",
			check: func(t *testing.T, a Action) {
				add, ok := a.(AddURLAction)
				if !ok || add != (AddURLAction{CalendarID: "c", EventID: "y"}) {
					t.Errorf("action = %#v, want AddURLAction{c y}", a)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := f.DisplayItem(tt.event)
			if item.Title != tt.event.Title {
				t.Errorf("Title = %q, want %q", item.Title, tt.event.Title)
			}
			if len(item.Lines) != len(tt.wantLines) {
				t.Fatalf("Lines = %q, want %q", item.Lines, tt.wantLines)
			}
			for i := range tt.wantLines {
				if item.Lines[i] != tt.wantLines[i] {
					t.Errorf("Lines[%d] = %q, want %q", i, item.Lines[i], tt.wantLines[i])
				}
			}
			if item.NavigationURL != tt.wantNav {
				t.Errorf("NavigationURL = %q, want %q", item.NavigationURL, tt.wantNav)
			}
			tt.check(t, item.Action)
		})
	}
}

func TestItemKey_Distinct(t *testing.T) {
	a := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	events := []Event{
		{ID: "1", Start: a},
		{ID: "1", Start: a.Add(time.Hour)},
		{ID: "2", Start: a},
		{ID: "1|2026", Start: a},
	}
	seen := make(map[string]int)
	for i, e := range events {
		k := ItemKey(e)
		if j, dup := seen[k]; dup {
			t.Errorf("events %d and %d share key %q", j, i, k)
		}
		seen[k] = i
	}

	// Same instant in another zone is the same occurrence.
	tokyo := time.FixedZone("JST", 9*3600)
	if ItemKey(Event{ID: "1", Start: a}) != ItemKey(Event{ID: "1", Start: a.In(tokyo)}) {
		t.Error("key depends on the start's location")
	}
}
