// Package bootstrap wires storage, the best-line providers and the
// application service from a loaded config. The desktop app and the terminal
// viewer share it.
package bootstrap

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/AkatukiSora/gamelog-lines/internal/application"
	"github.com/AkatukiSora/gamelog-lines/internal/bestline"
	"github.com/AkatukiSora/gamelog-lines/internal/config"
	"github.com/AkatukiSora/gamelog-lines/internal/persistence"
)

// Runtime is the wired service plus what must be closed with it.
type Runtime struct {
	Service *application.Service
	// Persistent is false when the sqlite database could not be opened and
	// the in-memory repository took over.
	Persistent bool
	redis      *redis.Client
}

// Open builds the service. A broken database or an unreachable Redis is
// logged and replaced by a fallback rather than failing startup.
func Open(ctx context.Context, cfg *config.Config, opts ...func(*application.Config)) *Runtime {
	rt := &Runtime{}

	var repo persistence.ImportBatchRepository
	sqliteRepo, err := openSQLite(cfg.Storage.DBPath)
	if err != nil {
		slog.Warn("failed to initialize sqlite repository, using memory", "path", cfg.Storage.DBPath, "error", err)
		repo = persistence.NewMemoryRepository()
	} else {
		repo = sqliteRepo
		rt.Persistent = true
	}

	chain := bestline.Chain{bestline.NewRepositoryProvider(repo)}
	if addr := cfg.BestLine.RedisAddr; addr != "" {
		client, err := bestline.Dial(ctx, addr)
		if err != nil {
			slog.Warn("redis best lines unavailable", "error", err)
		} else {
			rt.redis = client
			// live lines win over persisted snapshots
			chain = append(bestline.Chain{bestline.NewRedisProvider(client, cfg.BestLine.RedisPrefix)}, chain...)
		}
	}

	appCfg := application.Config{
		Repo:             repo,
		BestLines:        chain,
		Pattern:          cfg.Ingest.Pattern,
		SeasonStartMonth: cfg.SeasonStartMonth(),
	}
	for _, opt := range opts {
		opt(&appCfg)
	}
	rt.Service = application.NewService(appCfg)
	return rt
}

func openSQLite(path string) (*persistence.SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return persistence.NewSQLiteRepository(path)
}

// Close releases the repository and the Redis client.
func (r *Runtime) Close() error {
	err := r.Service.Close()
	if r.redis != nil {
		if cerr := r.redis.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
