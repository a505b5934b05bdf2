package persistence

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"

	// Go migrations register themselves with goose's global registry.
	_ "github.com/AkatukiSora/gamelog-lines/internal/persistence/migrations"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// runMigrations brings db to the latest schema version. SQL migrations come
// from the embedded directory and Go backfills from the global registry.
func runMigrations(ctx context.Context, db *sql.DB) error {
	sqlFiles, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, sqlFiles)
	if err != nil {
		return fmt.Errorf("setup goose: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	for _, r := range results {
		slog.Info("applied migration", "version", r.Source.Version, "path", r.Source.Path, "duration", r.Duration)
	}
	return nil
}
