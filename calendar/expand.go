package calendar

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
)

const defaultMaxOccurrences = 2000

// ExpandOptions bounds recurrence expansion.
type ExpandOptions struct {
	CalendarID string
	Location   *time.Location // nil means time.Local
	From, To   time.Time

	// MaxOccurrences caps the instances produced per UID.
	MaxOccurrences int
}

// expandEvents turns parsed VEVENTs into concrete events inside [From, To].
// RECURRENCE-ID overrides replace the instance they name; EXDATEs remove
// instances. Events come back in input order, instances in time order.
func expandEvents(parsed []parsedEvent, opts ExpandOptions, log *zap.Logger) ([]Event, error) {
	if opts.To.Before(opts.From) {
		return nil, errors.New("expand: window end is before start")
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.MaxOccurrences <= 0 {
		opts.MaxOccurrences = defaultMaxOccurrences
	}

	overrides := make(map[string][]parsedEvent)
	for _, p := range parsed {
		if p.isOverride() {
			overrides[p.UID] = append(overrides[p.UID], p)
		}
	}

	out := make([]Event, 0, len(parsed))
	for _, p := range parsed {
		if p.isOverride() {
			continue
		}
		if p.RawRRule == "" {
			if overlaps(p.Start, p.End, opts.From, opts.To) {
				out = append(out, toEvent(p, p.Start, p.End, opts))
			}
			continue
		}
		out = append(out, expandRecurring(p, overrides[p.UID], opts, log)...)
	}

	// An override whose original instance fell outside the window may
	// still have been moved into it.
	seen := make(map[string]bool, len(out))
	for _, e := range out {
		seen[ItemKey(e)] = true
	}
	for _, ovs := range overrides {
		for _, o := range ovs {
			e := toEvent(o, o.Start, o.End, opts)
			if seen[ItemKey(e)] || !overlaps(o.Start, o.End, opts.From, opts.To) {
				continue
			}
			out = append(out, e)
		}
	}
	return out, nil
}

func expandRecurring(p parsedEvent, overrides []parsedEvent, opts ExpandOptions, log *zap.Logger) []Event {
	r, err := rrule.StrToRRule(p.RawRRule)
	if err != nil {
		log.Warn("bad RRULE", zap.String("uid", p.UID), zap.String("rrule", p.RawRRule), zap.Error(err))
		return nil
	}
	r.DTStart(p.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range p.ExDates {
		set.ExDate(ex.In(p.Start.Location()))
	}

	dur := p.End.Sub(p.Start)
	// Widen the lower bound by the duration so an instance that started
	// before From but is still running is included.
	starts := set.Between(opts.From.Add(-dur).In(p.Start.Location()), opts.To.In(p.Start.Location()), true)
	if len(starts) > opts.MaxOccurrences {
		log.Warn("recurrence truncated", zap.String("uid", p.UID), zap.Int("cap", opts.MaxOccurrences))
		starts = starts[:opts.MaxOccurrences]
	}

	out := make([]Event, 0, len(starts))
	for _, s := range starts {
		e := s.Add(dur)
		if p.AllDay {
			s = time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, s.Location())
			e = s.AddDate(0, 0, 1)
		}
		if o, ok := overrideFor(overrides, s); ok {
			out = append(out, toEvent(o, o.Start, o.End, opts))
			continue
		}
		out = append(out, toEvent(p, s, e, opts))
	}
	return out
}

func overrideFor(overrides []parsedEvent, start time.Time) (parsedEvent, bool) {
	for _, o := range overrides {
		if o.Recurrence != nil && o.Recurrence.Equal(start) {
			return o, true
		}
	}
	return parsedEvent{}, false
}

func toEvent(p parsedEvent, start, end time.Time, opts ExpandOptions) Event {
	e := Event{
		ID:          p.UID,
		CalendarID:  opts.CalendarID,
		Title:       p.Summary,
		Start:       start.In(opts.Location),
		End:         end.In(opts.Location),
		URL:         p.URL,
		Description: p.Description,
		Location:    p.Location,
		Status:      p.Status,
		AllDay:      p.AllDay,
	}
	discoverURL(&e)
	return e
}

// overlaps treats a zero-length event at the window edge as inside.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
