package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleSource lists events from one or more Google calendars.
type GoogleSource struct {
	service     *gcal.Service
	calendarIDs []string
	loc         *time.Location
	log         *zap.Logger
}

// NewGoogleSourceFromCredentials builds a source from a service-account key,
// or from installed-app OAuth credentials plus a saved token at tokenPath.
func NewGoogleSourceFromCredentials(ctx context.Context, credentialsJSON []byte, tokenPath string, calendarIDs []string, loc *time.Location, log *zap.Logger) (*GoogleSource, error) {
	jwt, err := google.JWTConfigFromJSON(credentialsJSON, gcal.CalendarReadonlyScope)
	if err == nil {
		svc, err := gcal.NewService(ctx, option.WithTokenSource(jwt.TokenSource(ctx)))
		if err != nil {
			return nil, fmt.Errorf("create calendar service: %w", err)
		}
		return newGoogleSource(svc, calendarIDs, loc, log), nil
	}

	var creds struct {
		Installed struct {
			ClientID     string `json:"client_id"`
			ClientSecret string `json:"client_secret"`
		} `json:"installed"`
	}
	if jsonErr := json.Unmarshal(credentialsJSON, &creds); jsonErr != nil || creds.Installed.ClientID == "" {
		return nil, fmt.Errorf("unsupported credentials format: %w", err)
	}
	cfg := &oauth2.Config{
		ClientID:     creds.Installed.ClientID,
		ClientSecret: creds.Installed.ClientSecret,
		Scopes:       []string{gcal.CalendarReadonlyScope},
		Endpoint:     google.Endpoint,
	}

	data, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("installed-app credentials need a saved token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token %s: %w", tokenPath, err)
	}

	svc, err := gcal.NewService(ctx, option.WithTokenSource(cfg.TokenSource(ctx, &tok)))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return newGoogleSource(svc, calendarIDs, loc, log), nil
}

// NewGoogleSourceFromHTTP builds a source around an already-authorized
// HTTP client.
func NewGoogleSourceFromHTTP(ctx context.Context, client *http.Client, calendarIDs []string, loc *time.Location, log *zap.Logger) (*GoogleSource, error) {
	svc, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return newGoogleSource(svc, calendarIDs, loc, log), nil
}

func newGoogleSource(svc *gcal.Service, ids []string, loc *time.Location, log *zap.Logger) *GoogleSource {
	if len(ids) == 0 {
		ids = []string{"primary"}
	}
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GoogleSource{service: svc, calendarIDs: ids, loc: loc, log: log}
}

// Name implements Source.
func (g *GoogleSource) Name() string { return "google" }

// Fetch implements Source. Recurring events come back expanded because the
// request sets singleEvents. A failing calendar does not hide the others:
// their events are returned with the joined per-calendar errors.
func (g *GoogleSource) Fetch(ctx context.Context, from, to time.Time) ([]Event, error) {
	out := make([]Event, 0)
	var errs []error
	for _, id := range g.calendarIDs {
		events, err := g.fetchCalendar(ctx, id, from, to)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, events...)
	}
	return out, errors.Join(errs...)
}

func (g *GoogleSource) fetchCalendar(ctx context.Context, id string, from, to time.Time) ([]Event, error) {
	var out []Event
	pageToken := ""
	for {
		call := g.service.Events.List(id).
			TimeMin(from.Format(time.RFC3339)).
			TimeMax(to.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			MaxResults(250).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		res, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("google %s: list events: %w", id, err)
		}
		for _, item := range res.Items {
			e, err := g.toEvent(id, item)
			if err != nil {
				g.log.Debug("skipping google event", zap.String("id", item.Id), zap.Error(err))
				continue
			}
			out = append(out, e)
		}
		if res.NextPageToken == "" {
			return out, nil
		}
		pageToken = res.NextPageToken
	}
}

func (g *GoogleSource) toEvent(calendarID string, item *gcal.Event) (Event, error) {
	start, allDay, err := googleTime(item.Start, g.loc)
	if err != nil {
		return Event{}, fmt.Errorf("start: %w", err)
	}
	end, _, err := googleTime(item.End, g.loc)
	if err != nil {
		return Event{}, fmt.Errorf("end: %w", err)
	}
	e := Event{
		ID:          item.Id,
		CalendarID:  calendarID,
		Title:       item.Summary,
		Start:       start.In(g.loc),
		End:         end.In(g.loc),
		URL:         conferenceURL(item),
		Description: item.Description,
		Location:    item.Location,
		Status:      strings.ToUpper(item.Status),
		AllDay:      allDay,
	}
	discoverURL(&e)
	return e, nil
}

// googleTime reads either a dateTime or, for all-day events, a date.
func googleTime(t *gcal.EventDateTime, loc *time.Location) (time.Time, bool, error) {
	if t == nil {
		return time.Time{}, false, fmt.Errorf("missing time")
	}
	if t.DateTime != "" {
		v, err := time.Parse(time.RFC3339, t.DateTime)
		return v, false, err
	}
	if t.Date != "" {
		v, err := time.ParseInLocation("2006-01-02", t.Date, loc)
		return v, true, err
	}
	return time.Time{}, false, fmt.Errorf("empty time")
}

// conferenceURL prefers the video entry point of conference data over the
// legacy hangoutLink.
func conferenceURL(item *gcal.Event) string {
	if item.ConferenceData != nil {
		for _, ep := range item.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" && ep.Uri != "" {
				return ep.Uri
			}
		}
	}
	return item.HangoutLink
}
