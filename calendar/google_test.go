package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type rewriteTransport struct {
	Transport http.RoundTripper
	Host      string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = t.Host
	return t.Transport.RoundTrip(req)
}

func fakeGoogle(t *testing.T, handler http.HandlerFunc) *http.Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	client := ts.Client()
	client.Transport = &rewriteTransport{
		Transport: client.Transport,
		Host:      strings.TrimPrefix(ts.URL, "http://"),
	}
	return client
}

func TestGoogleSource_Fetch(t *testing.T) {
	client := fakeGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendar/v3/calendars/primary/events" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("singleEvents") != "true" {
			t.Errorf("singleEvents = %q, want true", r.URL.Query().Get("singleEvents"))
		}
		if r.URL.Query().Get("pageToken") == "" {
			w.Write([]byte(`{
				"items": [
					{
						"id": "ev1",
						"summary": "Planning",
						"status": "confirmed",
						"hangoutLink": "https://meet.google.com/abc-defg-hij",
						"start": {"dateTime": "2026-10-17T15:00:00Z"},
						"end": {"dateTime": "2026-10-17T16:00:00Z"}
					},
					{
						"id": "ev2",
						"summary": "Offsite",
						"start": {"date": "2026-10-20"},
						"end": {"date": "2026-10-21"}
					}
				],
				"nextPageToken": "p2"
			}`))
			return
		}
		w.Write([]byte(`{
			"items": [
				{
					"id": "ev3",
					"summary": "Retro",
					"location": "https://meet.jit.si/Retro",
					"conferenceData": {"entryPoints": [
						{"entryPointType": "phone", "uri": "tel:+1-555"},
						{"entryPointType": "video", "uri": "https://zoom.us/j/999"}
					]},
					"start": {"dateTime": "2026-10-18T10:00:00+02:00"},
					"end": {"dateTime": "2026-10-18T11:00:00+02:00"}
				},
				{"id": "broken", "summary": "No times"}
			]
		}`))
	})

	src, err := NewGoogleSourceFromHTTP(context.Background(), client, nil, time.UTC, nil)
	if err != nil {
		t.Fatalf("NewGoogleSourceFromHTTP: %v", err)
	}
	from := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	events, err := src.Fetch(context.Background(), from, from.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3 (event without times skipped)", len(events))
	}

	tests := []struct {
		id     string
		url    string
		allDay bool
		status string
		start  time.Time
	}{
		{"ev1", "https://meet.google.com/abc-defg-hij", false, "CONFIRMED", time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC)},
		{"ev2", "", true, "", time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)},
		{"ev3", "https://zoom.us/j/999", false, "", time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)},
	}
	for i, tt := range tests {
		e := events[i]
		if e.ID != tt.id {
			t.Errorf("events[%d].ID = %q, want %q", i, e.ID, tt.id)
			continue
		}
		if e.CalendarID != "primary" {
			t.Errorf("%s CalendarID = %q, want primary", e.ID, e.CalendarID)
		}
		if e.URL != tt.url {
			t.Errorf("%s URL = %q, want %q", e.ID, e.URL, tt.url)
		}
		if e.AllDay != tt.allDay {
			t.Errorf("%s AllDay = %v, want %v", e.ID, e.AllDay, tt.allDay)
		}
		if e.Status != tt.status {
			t.Errorf("%s Status = %q, want %q", e.ID, e.Status, tt.status)
		}
		if !e.Start.Equal(tt.start) {
			t.Errorf("%s Start = %v, want %v", e.ID, e.Start, tt.start)
		}
	}
}

func TestGoogleSource_ServerError(t *testing.T) {
	client := fakeGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	src, err := NewGoogleSourceFromHTTP(context.Background(), client, []string{"team@example.com"}, time.UTC, nil)
	if err != nil {
		t.Fatalf("NewGoogleSourceFromHTTP: %v", err)
	}
	_, err = src.Fetch(context.Background(), time.Now(), time.Now().Add(time.Hour))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "team@example.com") {
		t.Errorf("error %q does not name the calendar", err)
	}
}

func TestNewGoogleSourceFromCredentials(t *testing.T) {
	installed := []byte(`{
		"installed": {
			"client_id": "test-client-id.apps.googleusercontent.com",
			"client_secret": "test-secret",
			"redirect_uris": ["http://localhost"]
		}
	}`)
	dir := t.TempDir()
	tokenPath := filepath.Join(dir, "token.json")

	t.Run("unsupported", func(t *testing.T) {
		_, err := NewGoogleSourceFromCredentials(context.Background(), []byte(`{"broken":true}`), tokenPath, nil, nil, nil)
		if err == nil {
			t.Error("expected error for unknown credentials")
		}
	})

	t.Run("installed without token", func(t *testing.T) {
		_, err := NewGoogleSourceFromCredentials(context.Background(), installed, tokenPath, nil, nil, nil)
		if err == nil {
			t.Error("expected error when token is missing")
		}
	})

	t.Run("installed with token", func(t *testing.T) {
		tok := `{"access_token": "dummy", "token_type": "Bearer", "expiry": "2030-01-01T00:00:00Z"}`
		if err := os.WriteFile(tokenPath, []byte(tok), 0o600); err != nil {
			t.Fatal(err)
		}
		src, err := NewGoogleSourceFromCredentials(context.Background(), installed, tokenPath, nil, nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if src.Name() != "google" {
			t.Errorf("Name() = %q", src.Name())
		}
	})

	t.Run("installed with bad token", func(t *testing.T) {
		if err := os.WriteFile(tokenPath, []byte(`{"broken": true`), 0o600); err != nil {
			t.Fatal(err)
		}
		_, err := NewGoogleSourceFromCredentials(context.Background(), installed, tokenPath, nil, nil, nil)
		if err == nil {
			t.Error("expected error for malformed token")
		}
	})
}

func TestGoogleSource_PartialFailure(t *testing.T) {
	client := fakeGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "broken@example.com") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{
			"items": [{
				"id": "ev1",
				"summary": "Planning",
				"start": {"dateTime": "2026-10-17T15:00:00Z"},
				"end": {"dateTime": "2026-10-17T16:00:00Z"}
			}]
		}`))
	})
	ids := []string{"broken@example.com", "team@example.com"}
	src, err := NewGoogleSourceFromHTTP(context.Background(), client, ids, time.UTC, nil)
	if err != nil {
		t.Fatalf("NewGoogleSourceFromHTTP: %v", err)
	}

	events, err := src.Fetch(context.Background(), time.Now(), time.Now().Add(time.Hour))
	if err == nil || !strings.Contains(err.Error(), "broken@example.com") {
		t.Errorf("err = %v, want the failing calendar named", err)
	}
	if len(events) != 1 || events[0].CalendarID != "team@example.com" {
		t.Fatalf("events = %+v, want the healthy calendar's event", events)
	}
}
