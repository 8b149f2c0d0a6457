package main

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Analytics tags.
const (
	tagCalendarSelected = "calendar.selected"
	tagMeetingTile      = "calendar.meeting.tile"
	tagMeetingJoin      = "calendar.meeting.join"
	tagMeetingAddURL    = "calendar.meeting.add_url"
	tagRefresh          = "calendar.refresh"
)

// analytics records user-facing events. Events are logged, not shipped.
type analytics interface {
	Track(tag string, fields ...zap.Field)
}

// logAnalytics writes each event to the log with a per-run session ID and a
// per-event ID.
type logAnalytics struct {
	log     *zap.Logger
	session string
}

func newLogAnalytics(log *zap.Logger) *logAnalytics {
	return &logAnalytics{log: log.Named("analytics"), session: uuid.NewString()}
}

func (a *logAnalytics) Track(tag string, fields ...zap.Field) {
	fields = append([]zap.Field{
		zap.String("event_id", uuid.NewString()),
		zap.String("session_id", a.session),
	}, fields...)
	a.log.Info(tag, fields...)
}
