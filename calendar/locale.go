package calendar

import (
	"fmt"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

// localeNames pairs a display language with the monday locale and Go
// layouts used to render its dates.
type localeNames struct {
	tag    language.Tag
	locale monday.Locale
	today  string

	// longLayout renders a section title; fullLayout renders the date half
	// of a time-range label.
	longLayout string
	fullLayout string
	clock24    bool

	// longDate overrides longLayout where the day needs an ordinal.
	longDate func(n *localeNames, t time.Time) string
}

func (n *localeNames) format(t time.Time, layout string) string {
	return monday.Format(t, layout, n.locale)
}

func (n *localeNames) long(t time.Time) string {
	if n.longDate != nil {
		return n.longDate(n, t)
	}
	return n.format(t, n.longLayout)
}

func (n *localeNames) full(t time.Time) string { return n.format(t, n.fullLayout) }

func (n *localeNames) clock(t time.Time) string {
	if n.clock24 {
		return t.Format("15:04")
	}
	return t.Format("3:04 PM")
}

// supportedLocales is ordered for localeMatcher; English is the fallback
// and must stay first.
var supportedLocales = []localeNames{
	{
		tag:        language.English,
		locale:     monday.LocaleEnUS,
		today:      "Today",
		fullLayout: "Jan 2, 2006",
		longDate: func(n *localeNames, t time.Time) string {
			return fmt.Sprintf("%s %s, %d", n.format(t, "January"), englishOrdinal(t.Day()), t.Year())
		},
	},
	{
		tag:        language.German,
		locale:     monday.LocaleDeDE,
		today:      "Heute",
		longLayout: "2. January 2006",
		fullLayout: "2. Jan 2006",
		clock24:    true,
	},
	{
		tag:        language.French,
		locale:     monday.LocaleFrFR,
		today:      "Aujourd'hui",
		longLayout: "2 January 2006",
		fullLayout: "2 Jan 2006",
		clock24:    true,
		longDate: func(n *localeNames, t time.Time) string {
			if t.Day() == 1 {
				return "1er " + n.format(t, "January 2006")
			}
			return n.format(t, n.longLayout)
		},
	},
	{
		tag:        language.Spanish,
		locale:     monday.LocaleEsES,
		today:      "Hoy",
		longLayout: "2 de January de 2006",
		fullLayout: "2 Jan 2006",
		clock24:    true,
	},
	{
		tag:        language.Italian,
		locale:     monday.LocaleItIT,
		today:      "Oggi",
		longLayout: "2 January 2006",
		fullLayout: "2 Jan 2006",
		clock24:    true,
	},
	{
		tag:        language.Dutch,
		locale:     monday.LocaleNlNL,
		today:      "Vandaag",
		longLayout: "2 January 2006",
		fullLayout: "2 Jan 2006",
		clock24:    true,
	},
	{
		tag:        language.Portuguese,
		locale:     monday.LocalePtPT,
		today:      "Hoje",
		longLayout: "2 de January de 2006",
		fullLayout: "2 de Jan de 2006",
		clock24:    true,
	},
}

var localeMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(supportedLocales))
	for i, l := range supportedLocales {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()
