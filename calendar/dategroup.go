package calendar

import (
	"strconv"
	"time"
)

// SectionID identifies a bucket: either the "today" sentinel or a
// day-of-month number.
type SectionID struct {
	Today bool
	Day   int
}

// TodayID is the singleton bucket for events on the same day as "now".
var TodayID = SectionID{Today: true}

func (id SectionID) String() string {
	if id.Today {
		return "today"
	}
	return strconv.Itoa(id.Day)
}

// Section is a titled group of rows rendered under one heading.
type Section struct {
	Title string
	ID    SectionID
	Data  []DisplayItem
}

// Group buckets events into sections in a single pass.
//
// Events whose start shares now's day of month land in one section titled
// labelToday. Every other event is bucketed by its day of month alone, so
// the 5th of two different months share a section. Sections appear in the
// order their bucket is first seen; nothing is sorted. Days are read in
// now's location.
func Group(events []Event, now time.Time, labelToday string, dateLabel func(Event) string, toItem func(Event) DisplayItem) []Section {
	loc := now.Location()
	today := now.Day()

	sections := make([]Section, 0)
	index := make(map[SectionID]int)

	for _, e := range events {
		id := SectionID{Day: e.Start.In(loc).Day()}
		if id.Day == today {
			id = TodayID
		}

		i, ok := index[id]
		if !ok {
			title := labelToday
			if !id.Today {
				title = dateLabel(e)
			}
			sections = append(sections, Section{Title: title, ID: id})
			i = len(sections) - 1
			index[id] = i
		}
		sections[i].Data = append(sections[i].Data, toItem(e))
	}
	return sections
}

// Sections groups events using f for section titles and rows. now is moved
// into f's location first so day boundaries follow the display timezone.
func (f Formatter) Sections(events []Event, now time.Time, labelToday string) []Section {
	return Group(events, now.In(f.location()), labelToday, f.DateLabel, f.DisplayItem)
}
