package main

import (
	"fmt"
	"os/exec"
	"runtime"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/kylesnowschwartz/agenda/calendar"
)

// navigatedMsg reports the outcome of handing a URL to the OS.
type navigatedMsg struct {
	url string
	err error
}

// urlAttachedMsg reports the outcome of an "Add URL" action.
type urlAttachedMsg struct {
	calendarID string
	eventID    string
	url        string
	err        error
}

// openURL hands url to the desktop's default handler without waiting for
// it to exit.
func openURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	go cmd.Wait() // reap
	return nil
}

// onRowPress records the analytics tag and navigates to url.
func (a *app) onRowPress(url, tag string) tea.Cmd {
	a.track.Track(tag, zap.String("url", url))
	open := a.open
	return func() tea.Msg {
		return navigatedMsg{url: url, err: open(url)}
	}
}

// onAddURL creates a meeting room for the event and remembers it.
func (a *app) onAddURL(act calendar.AddURLAction) tea.Cmd {
	a.track.Track(tagMeetingAddURL,
		zap.String("calendar_id", act.CalendarID),
		zap.String("event_id", act.EventID))
	store, server := a.store, a.server
	return func() tea.Msg {
		url := calendar.NewMeetingURL(server)
		if store == nil {
			return urlAttachedMsg{calendarID: act.CalendarID, eventID: act.EventID, err: fmt.Errorf("no attachment store configured")}
		}
		err := store.Attach(act.CalendarID, act.EventID, url)
		return urlAttachedMsg{calendarID: act.CalendarID, eventID: act.EventID, url: url, err: err}
	}
}

// pressItem dispatches a press on a row. A press on the trailing button
// runs the item's action; a press on the row itself opens the meeting URL,
// or falls back to the action when there is no URL. Only one analytics
// event is recorded per press.
func (a *app) pressItem(item calendar.DisplayItem, onButton bool) tea.Cmd {
	if !onButton && item.NavigationURL != "" {
		return a.onRowPress(item.NavigationURL, tagMeetingTile)
	}
	switch act := item.Action.(type) {
	case calendar.JoinAction:
		return a.onRowPress(act.URL, tagMeetingJoin)
	case calendar.AddURLAction:
		return a.onAddURL(act)
	}
	return nil
}
