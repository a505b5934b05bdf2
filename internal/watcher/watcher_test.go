package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDirWatcherStopIsIdempotent(t *testing.T) {
	t.Parallel()

	dw, err := NewDirWatcher(t.TempDir(), WatcherConfig{})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}

	dw.Stop()
	dw.Stop()
}

func TestDirWatcherReportsNewExport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	existing := filepath.Join(dir, "old.gamelog.json")
	if err := os.WriteFile(existing, []byte("{}"), 0o600); err != nil {
		t.Fatalf("write existing export: %v", err)
	}

	changed := make(chan string, 4)
	dw, err := NewDirWatcher(dir, WatcherConfig{OnChanged: func(path string) {
		select {
		case changed <- path:
		default:
		}
	}})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer dw.Stop()

	if err := dw.Start(); err != nil {
		t.Fatalf("start watcher: %v", err)
	}

	newPath := filepath.Join(dir, "p1.gamelog.json")
	if err := os.WriteFile(newPath, []byte(`{"subject":{"id":"p1"}}`), 0o600); err != nil {
		t.Fatalf("write new export: %v", err)
	}

	select {
	case got := <-changed:
		if filepath.Clean(got) != filepath.Clean(newPath) {
			t.Fatalf("changed path = %q, want %q", got, newPath)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for export detection")
	}
}

func TestDirWatcherNotifyExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	existing := filepath.Join(dir, "old.gamelog.json")
	if err := os.WriteFile(existing, []byte("{}"), 0o600); err != nil {
		t.Fatalf("write existing export: %v", err)
	}

	changed := make(chan string, 4)
	dw, err := NewDirWatcher(dir, WatcherConfig{NotifyExisting: true, OnChanged: func(path string) {
		changed <- path
	}})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer dw.Stop()

	if err := dw.Start(); err != nil {
		t.Fatalf("start watcher: %v", err)
	}
	select {
	case got := <-changed:
		if filepath.Clean(got) != filepath.Clean(existing) {
			t.Fatalf("changed path = %q, want %q", got, existing)
		}
	case <-time.After(time.Second):
		t.Fatalf("existing export not reported")
	}
}

func TestDirWatcherIgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	changed := make(chan string, 1)
	dw, err := NewDirWatcher(dir, WatcherConfig{OnChanged: func(path string) {
		select {
		case changed <- path:
		default:
		}
	}})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer dw.Stop()

	if err := dw.Start(); err != nil {
		t.Fatalf("start watcher: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "notes.json"), []byte("ignore me"), 0o600); err != nil {
		t.Fatalf("write non-export file: %v", err)
	}

	select {
	case got := <-changed:
		t.Fatalf("unexpected export detection: %q", got)
	case <-time.After(700 * time.Millisecond):
	}
}

func TestDirWatcherReportsRemoval(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "p1.gamelog.json")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatalf("write export: %v", err)
	}

	removed := make(chan string, 2)
	dw, err := NewDirWatcher(dir, WatcherConfig{OnRemoved: func(p string) {
		select {
		case removed <- p:
		default:
		}
	}})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer dw.Stop()

	if err := dw.Start(); err != nil {
		t.Fatalf("start watcher: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove export: %v", err)
	}

	select {
	case got := <-removed:
		if filepath.Clean(got) != filepath.Clean(path) {
			t.Fatalf("removed path = %q, want %q", got, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for removal")
	}
}

func TestListExportsNewestFirst(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	older := filepath.Join(dir, "a.gamelog.json")
	newer := filepath.Join(dir, "b.gamelog.json")
	for _, p := range []string{older, newer, filepath.Join(dir, "c.txt")} {
		if err := os.WriteFile(p, []byte("{}"), 0o600); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	got, err := ListExports(dir, "")
	if err != nil {
		t.Fatalf("ListExports: %v", err)
	}
	if len(got) != 2 || got[0] != newer || got[1] != older {
		t.Fatalf("ListExports = %v, want [%s %s]", got, newer, older)
	}
}
