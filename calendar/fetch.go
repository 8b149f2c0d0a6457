package calendar

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// cacheMeta is the conditional-request state kept beside a cached body.
type cacheMeta struct {
	URL          string    `yaml:"url"`
	ETag         string    `yaml:"etag,omitempty"`
	LastModified string    `yaml:"last_modified,omitempty"`
	UpdatedAt    time.Time `yaml:"updated_at"`
}

// Fetcher downloads ICS feeds, honoring ETag and Last-Modified, and falls
// back to the last good body on disk when the network or server fails.
type Fetcher struct {
	client   *http.Client
	cacheDir string
	log      *zap.Logger
}

// NewFetcher returns a Fetcher caching under cacheDir. A nil client gets a
// 15s timeout client.
func NewFetcher(client *http.Client, cacheDir string, log *zap.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{client: client, cacheDir: cacheDir, log: log}
}

// Fetch returns the feed body at url. fromCache is true when the body came
// from disk (304, network error, or non-OK status with a cached copy).
func (f *Fetcher) Fetch(ctx context.Context, url string) (body []byte, fromCache bool, err error) {
	if url == "" {
		return nil, false, errors.New("feed URL is empty")
	}

	dir := f.cachePath(url)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, false, fmt.Errorf("create cache dir: %w", err)
	}
	meta, _ := loadCacheMeta(dir)
	cached, _ := os.ReadFile(filepath.Join(dir, "body.ics"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if len(cached) > 0 {
			f.log.Warn("feed unreachable, using cache", zap.String("url", redactURL(url)), zap.Error(err))
			return cached, true, nil
		}
		return nil, false, fmt.Errorf("fetch %s: %w", redactURL(url), err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, false, fmt.Errorf("read %s: %w", redactURL(url), err)
		}
		m := cacheMeta{
			URL:          url,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}
		if err := saveCache(dir, m, data); err != nil {
			f.log.Warn("cache save failed", zap.String("url", redactURL(url)), zap.Error(err))
		}
		return data, false, nil

	case http.StatusNotModified:
		if len(cached) == 0 {
			return nil, false, errors.New("304 Not Modified without a cached body")
		}
		return cached, true, nil

	default:
		if len(cached) > 0 {
			f.log.Warn("feed returned error, using cache", zap.String("url", redactURL(url)), zap.Int("status", resp.StatusCode))
			return cached, true, nil
		}
		return nil, false, fmt.Errorf("fetch %s: %s", redactURL(url), resp.Status)
	}
}

func (f *Fetcher) cachePath(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:8]))
}

func loadCacheMeta(dir string) (cacheMeta, error) {
	var m cacheMeta
	data, err := os.ReadFile(filepath.Join(dir, "meta.yaml"))
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return cacheMeta{}, err
	}
	return m, nil
}

// saveCache writes the body before the metadata so meta never names a
// body that is not on disk.
func saveCache(dir string, m cacheMeta, body []byte) error {
	if err := os.WriteFile(filepath.Join(dir, "body.ics"), body, 0o600); err != nil {
		return err
	}
	m.UpdatedAt = time.Now().UTC()
	data, err := yaml.Marshal(&m)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "meta.yaml"), data, 0o600)
}

// redactURL keeps scheme and host only; feed URLs usually embed a secret
// token in the path or query.
func redactURL(u string) string {
	i := strings.Index(u, "://")
	if i < 0 {
		return "ics://...(redacted)"
	}
	rest := u[i+3:]
	if j := strings.IndexByte(rest, '/'); j >= 0 {
		rest = rest[:j]
	}
	return u[:i+3] + rest + "/...(redacted)"
}

// ICSSource reads one iCalendar feed, either over HTTP(S) or from a local
// file path.
type ICSSource struct {
	ID      string
	Label   string
	URL     string
	Loc     *time.Location
	Fetcher *Fetcher
	Log     *zap.Logger
}

// Name implements Source.
func (s *ICSSource) Name() string {
	if s.Label != "" {
		return s.Label
	}
	return s.ID
}

// IsLocal reports whether the feed is a file on disk rather than a URL.
func (s *ICSSource) IsLocal() bool {
	return !strings.HasPrefix(s.URL, "http://") && !strings.HasPrefix(s.URL, "https://") &&
		!strings.HasPrefix(s.URL, "webcal://")
}

// LocalPath returns the file path of a local feed, with "file://" removed.
func (s *ICSSource) LocalPath() string {
	return strings.TrimPrefix(s.URL, "file://")
}

// Fetch implements Source.
func (s *ICSSource) Fetch(ctx context.Context, from, to time.Time) ([]Event, error) {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("source", s.ID))

	var body []byte
	var err error
	if s.IsLocal() {
		body, err = os.ReadFile(s.LocalPath())
	} else {
		if s.Fetcher == nil {
			return nil, fmt.Errorf("%s: no fetcher configured", s.Name())
		}
		// webcal:// is plain HTTPS by convention.
		url := s.URL
		if strings.HasPrefix(url, "webcal://") {
			url = "https://" + strings.TrimPrefix(url, "webcal://")
		}
		body, _, err = s.Fetcher.Fetch(ctx, url)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name(), err)
	}

	parsed, err := ParseICS(body, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name(), err)
	}
	events, err := expandEvents(parsed, ExpandOptions{
		CalendarID: s.ID,
		Location:   s.Loc,
		From:       from,
		To:         to,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name(), err)
	}
	log.Debug("feed loaded", zap.Int("vevents", len(parsed)), zap.Int("events", len(events)))
	return events, nil
}
