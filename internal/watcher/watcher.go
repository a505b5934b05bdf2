package watcher

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	DefaultPattern      = "*.gamelog.json"
	DefaultPollInterval = 500 * time.Millisecond
)

type fileStamp struct {
	size    int64
	modTime time.Time
}

// DirWatcher monitors a directory of game log exports and reports files that
// appear or change.
type DirWatcher struct {
	Dir      string
	pattern  string
	poll     time.Duration
	watcher  *fsnotify.Watcher
	done     chan struct{}
	mu       sync.Mutex
	scanMu   sync.Mutex
	stopOnce sync.Once

	seen           map[string]fileStamp
	notifyExisting bool
	onChanged      func(path string)
	onRemoved      func(path string)
	onError        func(err error)
}

type WatcherConfig struct {
	Pattern      string
	PollInterval time.Duration
	// NotifyExisting reports files already present at Start. Otherwise they
	// are recorded as the baseline and only later changes are reported.
	NotifyExisting bool
	OnChanged      func(path string)
	OnRemoved      func(path string)
	OnError        func(err error)
}

// NewDirWatcher creates a watcher for the given export directory
func NewDirWatcher(dir string, cfg WatcherConfig) (*DirWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	pattern := cfg.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	return &DirWatcher{
		Dir:            filepath.Clean(dir),
		pattern:        pattern,
		poll:           poll,
		watcher:        w,
		done:           make(chan struct{}),
		seen:           make(map[string]fileStamp),
		notifyExisting: cfg.NotifyExisting,
		onChanged:      cfg.OnChanged,
		onRemoved:      cfg.OnRemoved,
		onError:        cfg.OnError,
	}, nil
}

// Start begins watching for file changes
func (dw *DirWatcher) Start() error {
	slog.Info("watcher starting", "dir", dw.Dir, "pattern", dw.pattern)
	if err := dw.watcher.Add(dw.Dir); err != nil {
		return fmt.Errorf("watch directory %s: %w", dw.Dir, err)
	}

	if err := dw.scan(dw.notifyExisting); err != nil && dw.onError != nil {
		dw.onError(err)
	}

	go dw.watchLoop()
	return nil
}

// Stop stops the watcher
func (dw *DirWatcher) Stop() {
	dw.stopOnce.Do(func() {
		slog.Info("watcher stopped", "dir", dw.Dir)
		close(dw.done)
		_ = dw.watcher.Close()
	})
}

// Forget drops the recorded stamp so the next event or poll reports the file
// again, e.g. after a failed import of a half-written file.
func (dw *DirWatcher) Forget(path string) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	delete(dw.seen, filepath.Clean(path))
}

func (dw *DirWatcher) watchLoop() {
	ticker := time.NewTicker(dw.poll)
	defer ticker.Stop()

	for {
		select {
		case <-dw.done:
			return
		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			if !dw.matches(event.Name) {
				continue
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				dw.removed(event.Name)
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if err := dw.check(event.Name, true); err != nil && dw.onError != nil {
					dw.onError(err)
				}
			}
		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			if dw.onError != nil {
				dw.onError(err)
			}
		case <-ticker.C:
			// Periodic poll as fallback
			if err := dw.scan(true); err != nil && dw.onError != nil {
				dw.onError(err)
			}
		}
	}
}

func (dw *DirWatcher) matches(path string) bool {
	matched, err := filepath.Match(dw.pattern, filepath.Base(path))
	return err == nil && matched
}

// scan stats every matching file and reports changed ones. Files that
// vanished since the last scan are reported as removed.
func (dw *DirWatcher) scan(notify bool) error {
	dw.scanMu.Lock()
	defer dw.scanMu.Unlock()

	matches, err := filepath.Glob(filepath.Join(dw.Dir, dw.pattern))
	if err != nil {
		return err
	}
	present := make(map[string]bool, len(matches))
	for _, path := range matches {
		path = filepath.Clean(path)
		present[path] = true
		if err := dw.checkLocked(path, notify); err != nil {
			return err
		}
	}

	dw.mu.Lock()
	var gone []string
	for path := range dw.seen {
		if !present[path] {
			gone = append(gone, path)
		}
	}
	dw.mu.Unlock()
	sort.Strings(gone)
	for _, path := range gone {
		dw.removed(path)
	}
	return nil
}

func (dw *DirWatcher) check(path string, notify bool) error {
	dw.scanMu.Lock()
	defer dw.scanMu.Unlock()
	return dw.checkLocked(filepath.Clean(path), notify)
}

func (dw *DirWatcher) checkLocked(path string, notify bool) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	stamp := fileStamp{size: info.Size(), modTime: info.ModTime()}

	dw.mu.Lock()
	prev, ok := dw.seen[path]
	changed := !ok || prev != stamp
	if changed {
		dw.seen[path] = stamp
	}
	dw.mu.Unlock()

	if changed && notify && dw.onChanged != nil {
		slog.Debug("export changed", "path", path, "size", stamp.size)
		dw.onChanged(path)
	}
	return nil
}

func (dw *DirWatcher) removed(path string) {
	path = filepath.Clean(path)
	dw.mu.Lock()
	_, ok := dw.seen[path]
	delete(dw.seen, path)
	dw.mu.Unlock()
	if ok && dw.onRemoved != nil {
		dw.onRemoved(path)
	}
}

// ListExports returns every export in dir, newest first.
func ListExports(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	matches, err := filepath.Glob(filepath.Join(expandHome(dir), pattern))
	if err != nil {
		return nil, fmt.Errorf("list exports in %s: %w", dir, err)
	}
	sortByModTimeDesc(matches)
	return matches, nil
}

// DefaultExportDir is the per-user directory the exporter writes into.
func DefaultExportDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "gamelog-lines", "exports")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "gamelog-lines", "exports")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "gamelog-lines", "exports")
		}
		return filepath.Join(home, ".local", "share", "gamelog-lines", "exports")
	}
}

// sortByModTimeDesc sorts paths newest-first using a single os.Stat per file,
// avoiding the O(n²) stat calls that arise from calling os.Stat inside the
// sort comparator.
func sortByModTimeDesc(paths []string) {
	modTimes := make(map[string]time.Time, len(paths))
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil {
			modTimes[p] = info.ModTime()
		}
	}
	sort.SliceStable(paths, func(i, j int) bool {
		return modTimes[paths[i]].After(modTimes[paths[j]])
	})
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.Getenv("HOME")
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
