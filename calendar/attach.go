package calendar

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/kylesnowschwartz/agenda/atomicfile"
)

// DefaultMeetingServer hosts rooms created by the "Add URL" action when no
// server is configured.
const DefaultMeetingServer = "https://meet.jit.si"

// NewMeetingURL returns a fresh room URL on server.
func NewMeetingURL(server string) string {
	server = strings.TrimRight(strings.TrimSpace(server), "/")
	if server == "" {
		server = DefaultMeetingServer
	}
	return server + "/" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// AttachmentStore remembers meeting URLs the user attached to events that
// had none. It is safe for concurrent use and persists to a YAML file
// shaped as calendar ID -> event ID -> URL.
type AttachmentStore struct {
	mu   sync.RWMutex
	path string
	urls map[string]map[string]string
}

// LoadAttachments reads path. A missing file yields an empty store.
func LoadAttachments(path string) (*AttachmentStore, error) {
	s := &AttachmentStore{path: path, urls: make(map[string]map[string]string)}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path is the backing file.
func (s *AttachmentStore) Path() string { return s.path }

// Reload re-reads the backing file, replacing the in-memory state.
func (s *AttachmentStore) Reload() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read attachments: %w", err)
	}
	urls := make(map[string]map[string]string)
	if err := yaml.Unmarshal(data, &urls); err != nil {
		return fmt.Errorf("parse attachments %s: %w", s.path, err)
	}
	if urls == nil {
		urls = make(map[string]map[string]string)
	}
	s.mu.Lock()
	s.urls = urls
	s.mu.Unlock()
	return nil
}

// Lookup returns the URL attached to an event.
func (s *AttachmentStore) Lookup(calendarID, eventID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.urls[calendarID][eventID]
	return u, ok
}

// Attach records url for the event and saves the file.
func (s *AttachmentStore) Attach(calendarID, eventID, url string) error {
	if eventID == "" {
		return errors.New("attach: empty event ID")
	}
	if url == "" {
		return errors.New("attach: empty URL")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The map is only swapped in once the file is saved.
	next := make(map[string]map[string]string, len(s.urls)+1)
	for cal, byEvent := range s.urls {
		next[cal] = maps.Clone(byEvent)
	}
	if next[calendarID] == nil {
		next[calendarID] = make(map[string]string)
	}
	next[calendarID][eventID] = url

	data, err := yaml.Marshal(next)
	if err != nil {
		return err
	}
	if err := atomicfile.Write(s.path, data); err != nil {
		return fmt.Errorf("save attachments: %w", err)
	}
	s.urls = next
	return nil
}

// Apply fills in attached URLs on events that have no URL of their own.
// Every instance of a recurring event shares the attachment.
func (s *AttachmentStore) Apply(events []Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range events {
		if events[i].URL != "" {
			continue
		}
		if u, ok := s.urls[events[i].CalendarID][events[i].ID]; ok {
			events[i].URL = u
		}
	}
}
