package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/AkatukiSora/gamelog-lines/internal/application"
	"github.com/AkatukiSora/gamelog-lines/internal/config"
)

func testConfig(t *testing.T, dbPath string) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	cfg.Storage.DBPath = dbPath
	return cfg
}

func TestOpenCreatesSQLiteDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "lines.db")
	var applied bool
	rt := Open(context.Background(), testConfig(t, dbPath), func(c *application.Config) { applied = c.Repo != nil })
	t.Cleanup(func() { _ = rt.Close() })

	if !rt.Persistent {
		t.Fatalf("Persistent = false, want sqlite")
	}
	if !applied {
		t.Fatalf("option did not see the repository")
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database file: %v", err)
	}
	subjects, err := rt.Service.Subjects(context.Background())
	if err != nil || len(subjects) != 0 {
		t.Fatalf("Subjects() = %v, %v on empty db", subjects, err)
	}
}

func TestOpenFallsBackToMemory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	rt := Open(context.Background(), testConfig(t, filepath.Join(blocker, "lines.db")))
	t.Cleanup(func() { _ = rt.Close() })

	if rt.Persistent {
		t.Fatalf("Persistent = true under a regular file")
	}
	if _, ok := rt.Service.BestLine(context.Background(), "p1", "pts"); ok {
		t.Fatalf("BestLine found a line in an empty repository")
	}
}
