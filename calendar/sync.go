package calendar

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FilterStats counts why fetched events were dropped.
type FilterStats struct {
	Fetched       int
	Included      int
	MissingTime   int
	Cancelled     int
	AllDay        int
	OutsideWindow int
	Duplicates    int
}

// Filtered is the total number of dropped events.
func (s FilterStats) Filtered() int {
	return s.MissingTime + s.Cancelled + s.AllDay + s.OutsideWindow + s.Duplicates
}

// Syncer merges every configured source into one agenda.
type Syncer struct {
	Sources     []Source
	Attachments *AttachmentStore // optional
	ShowAllDay  bool
	Log         *zap.Logger
}

// Sync fetches all sources concurrently and returns the merged events,
// sorted by start. A failing source does not discard the others: the
// events that did load are returned together with the joined errors.
func (s *Syncer) Sync(ctx context.Context, from, to time.Time) ([]Event, FilterStats, error) {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}

	results := make([][]Event, len(s.Sources))
	errs := make([]error, len(s.Sources))
	var wg sync.WaitGroup
	for i, src := range s.Sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			events, err := src.Fetch(ctx, from, to)
			if err != nil {
				log.Error("source fetch failed", zap.String("source", src.Name()), zap.Error(err))
				errs[i] = err
			}
			results[i] = events
		}(i, src)
	}
	wg.Wait()

	var stats FilterStats
	seen := make(map[string]bool)
	out := make([]Event, 0)
	for _, events := range results {
		for _, e := range events {
			stats.Fetched++
			if !s.include(e, from, to, &stats) {
				continue
			}
			key := ItemKey(e)
			if seen[key] {
				stats.Duplicates++
				continue
			}
			seen[key] = true
			out = append(out, e)
		}
	}

	if s.Attachments != nil {
		s.Attachments.Apply(out)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].Title < out[j].Title
	})
	stats.Included = len(out)

	log.Info("sync complete",
		zap.Int("fetched", stats.Fetched),
		zap.Int("included", stats.Included),
		zap.Int("cancelled", stats.Cancelled),
		zap.Int("all_day", stats.AllDay),
		zap.Int("outside_window", stats.OutsideWindow),
		zap.Int("missing_time", stats.MissingTime),
		zap.Int("duplicates", stats.Duplicates),
	)
	return out, stats, errors.Join(errs...)
}

func (s *Syncer) include(e Event, from, to time.Time, stats *FilterStats) bool {
	switch {
	case e.Start.IsZero() || e.End.IsZero():
		stats.MissingTime++
		return false
	case e.Status == "CANCELLED":
		stats.Cancelled++
		return false
	case e.AllDay && !s.ShowAllDay:
		stats.AllDay++
		return false
	case !inWindow(e, from, to):
		stats.OutsideWindow++
		return false
	}
	return true
}

// inWindow keeps events that are running or start within [from, to).
func inWindow(e Event, from, to time.Time) bool {
	if !e.Start.Before(to) {
		return false
	}
	if e.End.Equal(e.Start) {
		return !e.Start.Before(from)
	}
	return e.End.After(from)
}
