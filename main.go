package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/AkatukiSora/gamelog-lines/internal/applog"
	"github.com/AkatukiSora/gamelog-lines/internal/bootstrap"
	"github.com/AkatukiSora/gamelog-lines/internal/config"
	"github.com/AkatukiSora/gamelog-lines/internal/series"
	"github.com/AkatukiSora/gamelog-lines/internal/ui"
)

var (
	version   = "dev"
	commit    = "local"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	applog.Init(cfg.Logging.Debug)
	slog.Info("starting", "version", version, "commit", commit, "built", buildDate, "db", cfg.Storage.DBPath)

	rt := bootstrap.Open(context.Background(), cfg)
	defer func() {
		if err := rt.Close(); err != nil {
			slog.Warn("close runtime", "error", err)
		}
	}()

	filter := series.DefaultFilterConfig()
	filter.N = cfg.Filter.DefaultLastN
	filter.SeasonStartMonth = cfg.SeasonStartMonth()

	ui.Run(rt.Service, ui.Options{
		ExportDir:    cfg.Ingest.Dir,
		Pattern:      cfg.Ingest.Pattern,
		PollInterval: cfg.Ingest.PollInterval,
		DBPath:       cfg.Storage.DBPath,
		Debounce:     cfg.Chart.Debounce,
		RetryDelay:   cfg.Chart.RetryDelay,
		NarrowWidth:  cfg.Chart.NarrowWidth,
		Filter:       filter,
	})
}
