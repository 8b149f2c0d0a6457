package main

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// fileWatcher watches local calendar files and the attachments file and
// calls onChange once per changed path after a 500ms quiet period. The
// parent directories are watched rather than the files so atomic
// rename-over-target saves are seen.
type fileWatcher struct {
	files    map[string]bool
	dirs     []string
	onChange func(path string)
	log      *zap.Logger
	debounce time.Duration
	done     chan struct{}
}

func newFileWatcher(paths []string, onChange func(string), log *zap.Logger) *fileWatcher {
	fw := &fileWatcher{
		files:    make(map[string]bool),
		onChange: onChange,
		log:      log,
		debounce: 500 * time.Millisecond,
		done:     make(chan struct{}),
	}
	seenDir := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		fw.files[abs] = true
		dir := filepath.Dir(abs)
		if !seenDir[dir] {
			seenDir[dir] = true
			fw.dirs = append(fw.dirs, dir)
		}
	}
	return fw
}

// run blocks until stop() is called.
func (fw *fileWatcher) run() {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		fw.log.Warn("file watcher unavailable", zap.Error(err))
		return
	}
	defer w.Close()

	// Missing dirs are skipped; the attachments dir may not exist until
	// the first "Add URL".
	for _, dir := range fw.dirs {
		if _, err := os.Stat(dir); err == nil {
			if err := w.Add(dir); err != nil {
				fw.log.Warn("watch failed", zap.String("dir", dir), zap.Error(err))
			}
		}
	}

	var debounce *time.Timer
	var fire <-chan time.Time
	pending := make(map[string]bool)

	for {
		select {
		case <-fw.done:
			if debounce != nil {
				debounce.Stop()
			}
			return

		case <-fire:
			fire = nil
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			sort.Strings(paths)
			for _, p := range paths {
				fw.onChange(p)
			}

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if !fw.files[filepath.Clean(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			pending[filepath.Clean(event.Name)] = true
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.NewTimer(fw.debounce)
			fire = debounce.C

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			fw.log.Debug("watch error", zap.Error(err))
		}
	}
}

// stop signals the watcher to exit.
func (fw *fileWatcher) stop() {
	select {
	case <-fw.done:
	default:
		close(fw.done)
	}
}
