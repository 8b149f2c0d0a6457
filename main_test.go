package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kylesnowschwartz/agenda/calendar"
	"github.com/kylesnowschwartz/agenda/config"
)

func TestBuildSources(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "team.ics")

	cfg := config.Default()
	cfg.ICS = []config.ICSConfig{
		{ID: "team", Name: "Team", URL: local},
		{ID: "public", URL: "https://calendar.example.com/public.ics"},
		{ID: "legacy", URL: "file://" + local},
	}

	sources, files, err := buildSources(context.Background(), cfg, dir, time.UTC, zap.NewNop())
	if err != nil {
		t.Fatalf("buildSources: %v", err)
	}
	if len(sources) != 3 {
		t.Fatalf("sources = %d, want 3", len(sources))
	}
	if sources[0].Name() != "Team" || sources[1].Name() != "public" {
		t.Errorf("names = %q, %q", sources[0].Name(), sources[1].Name())
	}
	if _, ok := sources[1].(*calendar.ICSSource); !ok {
		t.Errorf("source type = %T", sources[1])
	}
	if len(files) != 2 || files[0] != local || files[1] != local {
		t.Errorf("local files = %v, want the team.ics path twice", files)
	}
}

func TestBuildSourcesGoogleCredentialsMissing(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Google = &config.GoogleConfig{Credentials: filepath.Join(dir, "missing.json")}

	if _, _, err := buildSources(context.Background(), cfg, dir, time.UTC, zap.NewNop()); err == nil {
		t.Error("missing credentials file should fail")
	}
}

func TestSamePath(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		a, b string
		want bool
	}{
		{filepath.Join(dir, "a.yaml"), filepath.Join(dir, "x", "..", "a.yaml"), true},
		{filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.yaml"), false},
		{"attachments.yaml", filepath.Join(wd, "attachments.yaml"), true},
	}
	for _, tt := range tests {
		if got := samePath(tt.a, tt.b); got != tt.want {
			t.Errorf("samePath(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFitHeight(t *testing.T) {
	m, _ := testModel(t)
	m.height = fitHeight(m)
	if m.viewHeight() != m.totalLines() {
		t.Errorf("viewHeight = %d, want every line (%d)", m.viewHeight(), m.totalLines())
	}
}

func TestRootCmdFlags(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"config", "dump", "width", "locale"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("missing --%s flag", name)
		}
	}
	cmd.SetArgs([]string{"extra"})
	if err := cmd.Execute(); err == nil {
		t.Error("positional arguments should be rejected")
	}
}

func TestDumpFromLocalFile(t *testing.T) {
	dir := t.TempDir()
	ics := filepath.Join(dir, "team.ics")
	now := time.Now().UTC()
	start := now.Add(time.Hour).Format("20060102T150405Z")
	end := now.Add(2 * time.Hour).Format("20060102T150405Z")
	body := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//EN\r\n" +
		"BEGIN:VEVENT\r\nUID:plan-1\r\nDTSTAMP:" + start + "\r\nDTSTART:" + start + "\r\nDTEND:" + end +
		"\r\nSUMMARY:Planning\r\nURL:https://meet.example.com/plan\r\nEND:VEVENT\r\n" +
		"END:VCALENDAR\r\n"
	if err := os.WriteFile(ics, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Timezone = "UTC"
	cfg.ICS = []config.ICSConfig{{ID: "team", URL: ics}}
	sources, _, err := buildSources(context.Background(), cfg, dir, time.UTC, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	m, _ := testModel(t)
	m.now = time.Now
	m.app.syncer.Sources = sources
	m.app.horizonDays = 2

	from, to := m.app.window(m.now())
	events, _, err := m.app.syncer.Sync(context.Background(), from, to)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(events) != 1 || events[0].Title != "Planning" || events[0].URL != "https://meet.example.com/plan" {
		t.Errorf("events = %+v", events)
	}
}
