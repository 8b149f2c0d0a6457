package calendar

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Formatter renders locale-aware date and time labels in a display
// timezone. The zero value formats in English using time.Local.
type Formatter struct {
	lang  language.Tag
	loc   *time.Location
	names *localeNames
}

// NewFormatter builds a Formatter for a POSIX or BCP 47 locale string
// ("de_DE.UTF-8", "fr-CA", "en"). Unsupported locales fall back to English.
func NewFormatter(locale string, loc *time.Location) Formatter {
	_, idx, _ := localeMatcher.Match(ParseLocale(locale))
	return Formatter{lang: supportedLocales[idx].tag, loc: loc, names: &supportedLocales[idx]}
}

// ParseLocale converts POSIX-style locale names to a language tag.
func ParseLocale(s string) language.Tag {
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "_", "-")
	if s == "" || s == "C" || s == "POSIX" {
		return language.English
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.English
	}
	return tag
}

// Language returns the matched display language.
func (f Formatter) Language() language.Tag {
	if f.names == nil {
		return language.English
	}
	return f.lang
}

// Location returns the display timezone.
func (f Formatter) Location() *time.Location {
	return f.location()
}

// TodayLabel is the localized title of the "today" section.
func (f Formatter) TodayLabel() string {
	return f.localeNames().today
}

// DateLabel renders the long calendar date of the event start,
// e.g. "October 17th, 2026".
func (f Formatter) DateLabel(e Event) string {
	n := f.localeNames()
	return n.long(e.Start.In(f.location()))
}

// TimeRangeLabel renders the full start and the end time of day,
// e.g. "Oct 17, 2026 4:30 PM - 5:30 PM".
func (f Formatter) TimeRangeLabel(e Event) string {
	n := f.localeNames()
	start := e.Start.In(f.location())
	end := e.End.In(f.location())
	return n.full(start) + " " + n.clock(start) + " - " + n.clock(end)
}

func (f Formatter) location() *time.Location {
	if f.loc == nil {
		return time.Local
	}
	return f.loc
}

func (f Formatter) localeNames() *localeNames {
	if f.names == nil {
		return &supportedLocales[0]
	}
	return f.names
}

// englishOrdinal returns "1st", "2nd", "11th", "23rd". monday has no
// ordinal support.
func englishOrdinal(day int) string {
	suffix := "th"
	switch day % 100 {
	case 11, 12, 13:
	default:
		switch day % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", day, suffix)
}
