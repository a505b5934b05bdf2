// termview is a terminal front-end for the line explorer. It imports the
// configured export directory, keeps watching it and draws the chart with
// bubbletea.
//
// Usage:
//
//	go run ./tools/termview [flags]
//
// Flags:
//
//	--config   path to a YAML config file (default: none)
//	--subject  subject ID to open first (default: first imported)
//	--narrow   terminal width below which the chart is drawn narrow (default: 80)
//	--no-watch import once and do not watch for changes
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AkatukiSora/gamelog-lines/internal/application"
	"github.com/AkatukiSora/gamelog-lines/internal/applog"
	"github.com/AkatukiSora/gamelog-lines/internal/bootstrap"
	"github.com/AkatukiSora/gamelog-lines/internal/config"
	"github.com/AkatukiSora/gamelog-lines/internal/series"
	"github.com/AkatukiSora/gamelog-lines/internal/termui"
	"github.com/AkatukiSora/gamelog-lines/internal/watcher"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	subject := flag.String("subject", "", "subject ID to open first")
	narrow := flag.Int("narrow", 80, "narrow layout below this many columns")
	noWatch := flag.Bool("no-watch", false, "import once and do not watch the export directory")
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

	// the terminal belongs to bubbletea, so logs only go to the file
	applog.InitFileOnly(cfg.Logging.Debug)
	slog.Info("termview starting", "db", cfg.Storage.DBPath, "dir", cfg.Ingest.Dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt := bootstrap.Open(ctx, cfg)
	defer func() {
		if err := rt.Close(); err != nil {
			slog.Warn("close runtime", "error", err)
		}
	}()

	summary, err := rt.Service.ImportDir(ctx, cfg.Ingest.Dir, nil)
	if err != nil {
		// stored subjects are still browsable
		slog.Warn("import exports", "dir", cfg.Ingest.Dir, "error", err)
	} else {
		slog.Info("imported exports", "files", summary.Files, "imported", summary.Imported, "games", summary.Games)
	}

	filter := series.DefaultFilterConfig()
	filter.N = cfg.Filter.DefaultLastN
	filter.SeasonStartMonth = cfg.SeasonStartMonth()

	m := termui.New(ctx, rt.Service, termui.Options{
		Debounce:    cfg.Chart.Debounce,
		RetryDelay:  cfg.Chart.RetryDelay,
		NarrowWidth: *narrow,
		Filter:      filter,
		SubjectID:   *subject,
	})
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	rt.Service.Tracker().SetOnSwitch(func(sw application.OpponentSwitch) {
		p.Send(termui.SwitchMsg(sw))
	})

	if !*noWatch {
		w, err := watch(ctx, rt.Service, cfg, p)
		if err != nil {
			slog.Warn("watcher disabled", "error", err)
		} else {
			defer w.Stop()
		}
	}

	if _, err := p.Run(); err != nil {
		slog.Error("termview", "error", err)
		fmt.Fprintf(os.Stderr, "termview: %v\n", err)
		os.Exit(1)
	}
}

// watch re-imports changed exports and asks the model to reload.
func watch(ctx context.Context, service *application.Service, cfg *config.Config, p *tea.Program) (*watcher.DirWatcher, error) {
	var w *watcher.DirWatcher
	w, err := watcher.NewDirWatcher(cfg.Ingest.Dir, watcher.WatcherConfig{
		Pattern:      cfg.Ingest.Pattern,
		PollInterval: cfg.Ingest.PollInterval,
		OnChanged: func(path string) {
			res, err := service.ImportFile(ctx, path)
			if err != nil {
				// half-written exports are retried on the next event
				w.Forget(path)
				p.Send(termui.StatusMsg(fmt.Sprintf("import error: %v", err)))
				return
			}
			if res.Skipped {
				return
			}
			p.Send(termui.ReloadMsg{})
			p.Send(termui.StatusMsg(fmt.Sprintf("updated %s (%d games)", path, res.Games)))
		},
		OnError: func(err error) {
			p.Send(termui.StatusMsg(fmt.Sprintf("watcher error: %v", err)))
		},
	})
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		return nil, err
	}
	return w, nil
}
