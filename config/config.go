// Package config loads and saves the agenda YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/kylesnowschwartz/agenda/atomicfile"
)

// ICSConfig is one iCalendar subscription: an http(s)/webcal URL or a local
// file path.
type ICSConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// GoogleConfig enables the Google Calendar source when Credentials is set.
type GoogleConfig struct {
	// Credentials is a service-account key or installed-app client file.
	Credentials string `yaml:"credentials"`
	// Token is the saved OAuth token used with installed-app credentials.
	Token       string   `yaml:"token,omitempty"`
	CalendarIDs []string `yaml:"calendar_ids,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	// Locale picks month names and date patterns; empty means $LANG.
	Locale   string `yaml:"locale"`
	Timezone string `yaml:"timezone"`

	// Refresh is a five-field cron schedule for background syncs.
	Refresh      string `yaml:"refresh"`
	HorizonDays  int    `yaml:"horizon_days"`
	BackfillDays int    `yaml:"backfill_days"`
	ShowAllDay   bool   `yaml:"show_all_day"`

	// MeetingServer hosts rooms created by "Add URL".
	MeetingServer string `yaml:"meeting_server"`
	LogLevel      string `yaml:"log_level"`

	ICS    []ICSConfig   `yaml:"ics"`
	Google *GoogleConfig `yaml:"google,omitempty"`
}

const (
	defaultRefresh       = "*/5 * * * *"
	defaultHorizonDays   = 7
	defaultMeetingServer = "https://meet.jit.si"
	defaultLogLevel      = "info"
)

// Default returns an in-memory default configuration.
func Default() *Config {
	c := &Config{}
	c.Normalize()
	return c
}

// DefaultPath is ~/.config/agenda/config.yaml (or the platform equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "agenda", "config.yaml"), nil
}

// Dir is the directory holding the config file; state files (cache,
// attachments, log) live beside it.
func Dir(path string) string { return filepath.Dir(path) }

// Normalize fills zero values with defaults and assigns missing ICS IDs.
func (c *Config) Normalize() {
	if c.Refresh == "" {
		c.Refresh = defaultRefresh
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = defaultHorizonDays
	}
	if c.BackfillDays < 0 {
		c.BackfillDays = 0
	}
	if c.MeetingServer == "" {
		c.MeetingServer = defaultMeetingServer
	}
	c.MeetingServer = strings.TrimRight(c.MeetingServer, "/")
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		c.LogLevel = defaultLogLevel
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
	for i := range c.ICS {
		if c.ICS[i].ID == "" {
			c.ICS[i].ID = fmt.Sprintf("ics-%d", i+1)
		}
	}
}

// Validate reports settings Normalize cannot repair.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q: %w", c.Timezone, err))
	}
	if _, err := cron.ParseStandard(c.Refresh); err != nil {
		errs = append(errs, fmt.Errorf("refresh %q: %w", c.Refresh, err))
	}
	seen := make(map[string]bool)
	for _, ics := range c.ICS {
		if ics.URL == "" {
			errs = append(errs, fmt.Errorf("ics %q: url is empty", ics.ID))
		}
		if seen[ics.ID] {
			errs = append(errs, fmt.Errorf("ics %q: duplicate id", ics.ID))
		}
		seen[ics.ID] = true
	}
	return errors.Join(errs...)
}

// Location resolves Timezone; empty means the system zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// ResolvedLocale returns Locale, or the first of LC_ALL, LC_TIME and LANG
// that is set.
func (c *Config) ResolvedLocale() string {
	if c.Locale != "" {
		return c.Locale
	}
	for _, env := range []string{"LC_ALL", "LC_TIME", "LANG"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return ""
}

// Load reads path. On first run the default config is written there and
// returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := Default()
		if err := Save(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes cfg to path atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return atomicfile.Write(path, data)
}
