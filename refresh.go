package main

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kylesnowschwartz/agenda/calendar"
)

// syncTimeout bounds one pass over every source.
const syncTimeout = 45 * time.Second

// syncResultMsg delivers a finished sync to the model.
type syncResultMsg struct {
	events      []calendar.Event
	stats       calendar.FilterStats
	err         error
	interactive bool
	at          time.Time
}

// refreshTriggerMsg asks the model to start a background sync.
type refreshTriggerMsg struct {
	reason string
}

// tickMsg drives the spinner and the ongoing-dot blink (500ms interval).
type tickMsg time.Time

// clockMsg re-renders relative times and catches the day rollover.
type clockMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func clockCmd() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

// newRefreshLimiter allows one interactive refresh every five seconds.
func newRefreshLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(5*time.Second), 1)
}

// window is the sync range: from the start of today (minus backfill) to
// the end of the horizon.
func (a *app) window(now time.Time) (time.Time, time.Time) {
	now = now.In(a.loc)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, a.loc)
	return day.AddDate(0, 0, -a.backfillDays), day.AddDate(0, 0, a.horizonDays)
}

// syncCmd runs the syncer off the UI goroutine.
func (a *app) syncCmd(now time.Time, interactive bool) tea.Cmd {
	from, to := a.window(now)
	syncer := a.syncer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		events, stats, err := syncer.Sync(ctx, from, to)
		return syncResultMsg{
			events:      events,
			stats:       stats,
			err:         err,
			interactive: interactive,
			at:          time.Now(),
		}
	}
}

// trigger queues a background sync. A pending trigger absorbs new ones.
func (a *app) trigger(reason string) {
	select {
	case a.triggers <- reason:
	default:
	}
}

// waitForTrigger returns a Cmd that waits for the next queued trigger.
func waitForTrigger(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		reason, ok := <-ch
		if !ok {
			return nil
		}
		return refreshTriggerMsg{reason: reason}
	}
}

// startSchedule triggers a background sync on every tick of expr, a
// standard five-field cron expression evaluated in the display timezone.
func (a *app) startSchedule(expr string) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(a.loc))
	_, err := c.AddFunc(expr, func() {
		a.log.Debug("scheduled refresh")
		a.trigger("schedule")
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	a.log.Info("refresh scheduled", zap.String("cron", expr))
	return c, nil
}
