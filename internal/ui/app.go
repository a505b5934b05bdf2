package ui

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/AkatukiSora/gamelog-lines/internal/application"
	"github.com/AkatukiSora/gamelog-lines/internal/series"
	"github.com/AkatukiSora/gamelog-lines/internal/watcher"
)

// Options carries the startup configuration the UI needs.
type Options struct {
	ExportDir    string
	Pattern      string
	PollInterval time.Duration
	DBPath       string
	Debounce     time.Duration
	RetryDelay   time.Duration
	NarrowWidth  float32
	Filter       series.FilterConfig
}

// App is the main application controller
type App struct {
	ctx            context.Context
	cancel         context.CancelFunc
	fyneApp        fyne.App
	win            fyne.Window
	opts           Options
	exportDir      string
	service        application.AppService
	watcher        *watcher.DirWatcher
	watcherGen     uint64
	changeReqCh    chan string
	workerStopCh   chan struct{}
	workerWG       sync.WaitGroup
	closeOnce      sync.Once
	isShuttingDown bool
	mu             sync.Mutex
	chartView      *chartTabView
	leagueView     *leagueTabView
	settingsDir    string
	settingsHolder *fyne.Container
	tabs           *container.AppTabs
	statusText     *widget.Label
}

// Run starts the application
func Run(service application.AppService, opts Options) {
	if service == nil {
		return
	}

	a := app.New()
	loadTranslations()
	a.Settings().SetTheme(newLinesTheme())

	win := a.NewWindow(lang.X("app.window.title", "Game Log Lines"))
	win.Resize(fyne.NewSize(1280, 820))
	win.SetMaster()

	ctx, cancel := context.WithCancel(context.Background())

	appCtrl := &App{
		ctx:       ctx,
		cancel:    cancel,
		fyneApp:   a,
		win:       win,
		opts:      opts,
		exportDir: opts.ExportDir,
		service:   service,
	}
	appCtrl.startDirChangeWorker()
	win.SetCloseIntercept(func() {
		appCtrl.shutdown()
		win.SetCloseIntercept(nil)
		win.Close()
	})

	win.SetContent(appCtrl.buildUI())
	win.ShowAndRun()
}

func (a *App) buildUI() fyne.CanvasObject {
	a.statusText = widget.NewLabel(lang.X("app.status.initializing", "Initializing..."))
	a.statusText.Wrapping = fyne.TextWrapOff

	statusRow := container.NewHBox(widget.NewIcon(theme.InfoIcon()), a.statusText)
	statusBar := newSectionCard(statusRow)

	a.chartView = newChartTabView(a.ctx, a.service, chartViewConfig{
		Debounce:    a.opts.Debounce,
		RetryDelay:  a.opts.RetryDelay,
		NarrowWidth: a.opts.NarrowWidth,
		Filter:      a.opts.Filter,
	})
	a.leagueView = newLeagueTabView(a.ctx, a.service)
	a.service.Tracker().SetOnSwitch(func(sw application.OpponentSwitch) {
		fyne.Do(func() {
			if a.chartView != nil {
				a.chartView.followOpponent(sw)
			}
		})
	})

	a.settingsHolder = container.NewStack()
	a.tabs = container.NewAppTabs(
		container.NewTabItemWithIcon(lang.X("app.tab.chart", "Lines"), theme.HomeIcon(), a.chartView.CanvasObject()),
		container.NewTabItemWithIcon(lang.X("app.tab.league", "League"), theme.GridIcon(), a.leagueView.CanvasObject()),
		container.NewTabItemWithIcon(lang.X("app.tab.settings", "Settings"), theme.SettingsIcon(), a.settingsHolder),
	)
	a.tabs.SetTabLocation(container.TabLocationLeading)
	a.tabs.OnSelected = func(item *container.TabItem) {
		if item.Content == a.settingsHolder {
			a.doRefreshSettings()
		}
	}
	a.doRefreshSettings()

	// Import the export folder, then start watching it
	go a.initExports()

	return container.NewBorder(nil, container.NewPadded(statusBar), nil, nil, a.tabs)
}

func (a *App) initExports() {
	a.mu.Lock()
	dir := a.exportDir
	a.mu.Unlock()
	a.requestDirChange(dir)
}

func (a *App) startDirChangeWorker() {
	a.mu.Lock()
	if a.changeReqCh != nil {
		a.mu.Unlock()
		return
	}
	a.changeReqCh = make(chan string, 1)
	a.workerStopCh = make(chan struct{})
	changeReqCh := a.changeReqCh
	stopCh := a.workerStopCh
	a.mu.Unlock()

	a.workerWG.Add(1)
	go func() {
		defer a.workerWG.Done()
		for {
			select {
			case <-stopCh:
				return
			case dir := <-changeReqCh:
				a.changeExportDir(dir)
			}
		}
	}()
}

// requestDirChange queues a switch of the export folder. Only the latest
// request is kept.
func (a *App) requestDirChange(dir string) {
	if dir == "" {
		return
	}
	a.mu.Lock()
	if a.isShuttingDown || a.changeReqCh == nil {
		a.mu.Unlock()
		return
	}
	changeReqCh := a.changeReqCh
	a.mu.Unlock()

	select {
	case changeReqCh <- dir:
	default:
		select {
		case <-changeReqCh:
		default:
		}
		select {
		case changeReqCh <- dir:
		default:
		}
	}
}

func (a *App) changeExportDir(dir string) {
	// Stop existing watcher and invalidate stale callbacks.
	a.mu.Lock()
	a.watcherGen++
	gen := a.watcherGen
	prevWatcher := a.watcher
	a.watcher = nil
	a.exportDir = dir
	a.mu.Unlock()
	if prevWatcher != nil {
		prevWatcher.Stop()
	}

	a.doSetStatus(lang.X("app.status.importing", "Importing exports from {{.Path}}...", map[string]any{"Path": shortPath(dir)}))

	summary, err := a.service.ImportDir(a.ctx, dir, func(p application.ImportProgress) {
		a.doSetStatus(lang.X("app.status.progress", "Importing {{.Current}}/{{.Total}}: {{.Path}}", map[string]any{
			"Current": p.Current, "Total": p.Total, "Path": shortPath(p.Path),
		}))
	})
	if err != nil {
		a.doSetStatus(lang.X("app.error.import", "Import error: {{.Error}}", map[string]any{"Error": err}))
		return
	}
	if !a.isCurrentWatcherGeneration(gen) {
		return
	}
	a.doRefreshViews()
	a.doSetStatus(lang.X("app.status.loaded", "Imported {{.Imported}} of {{.Files}} exports ({{.Games}} games), watching for changes...", map[string]any{
		"Imported": summary.Imported, "Files": summary.Files, "Games": summary.Games,
	}))

	var w *watcher.DirWatcher
	w, err = watcher.NewDirWatcher(dir, watcher.WatcherConfig{
		Pattern:      a.opts.Pattern,
		PollInterval: a.opts.PollInterval,
		OnChanged: func(path string) {
			if !a.isCurrentWatcherGeneration(gen) {
				return
			}
			res, err := a.service.ImportFile(a.ctx, path)
			if err != nil {
				// half-written exports are retried on the next event
				w.Forget(path)
				a.doSetStatus(lang.X("app.error.import", "Import error: {{.Error}}", map[string]any{"Error": err}))
				return
			}
			if res.Skipped || !a.isCurrentWatcherGeneration(gen) {
				return
			}
			a.doRefreshViews()
			a.doSetStatus(lang.X("app.status.updated", "Updated {{.Path}} ({{.Games}} games)", map[string]any{"Path": shortPath(path), "Games": res.Games}))
		},
		OnError: func(err error) {
			if !a.isCurrentWatcherGeneration(gen) {
				return
			}
			a.doSetStatus(lang.X("app.error.watcher", "Watcher error: {{.Error}}", map[string]any{"Error": err}))
		},
	})
	if err != nil {
		a.doSetStatus(lang.X("app.error.watcher", "Watcher error: {{.Error}}", map[string]any{"Error": err}))
		return
	}
	if err := w.Start(); err != nil {
		a.doSetStatus(lang.X("app.error.watcher_start", "Failed to start watcher: {{.Error}}", map[string]any{"Error": err}))
		return
	}

	a.mu.Lock()
	if a.watcherGen == gen && !a.isShuttingDown {
		a.watcher = w
	} else {
		w.Stop()
	}
	a.mu.Unlock()
}

func (a *App) isCurrentWatcherGeneration(gen uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.isShuttingDown && a.watcherGen == gen
}

// shutdown runs on the main thread from the close intercept.
func (a *App) shutdown() {
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.isShuttingDown = true
		a.watcherGen++
		if a.cancel != nil {
			a.cancel()
		}
		stopCh := a.workerStopCh
		prevWatcher := a.watcher
		a.watcher = nil
		a.mu.Unlock()

		if prevWatcher != nil {
			prevWatcher.Stop()
		}
		if stopCh != nil {
			close(stopCh)
		}
		a.workerWG.Wait()
		if a.chartView != nil {
			a.chartView.unmount()
		}
		if a.service != nil {
			if err := a.service.Close(); err != nil {
				slog.Warn("close service", "error", err)
			}
		}
	})
}

// doRefreshViews reloads the data views on the Fyne main thread.
func (a *App) doRefreshViews() {
	fyne.Do(func() {
		if a.chartView != nil {
			a.chartView.refresh()
		}
		if a.leagueView != nil {
			a.leagueView.refresh()
		}
		a.doRefreshSettings()
	})
}

// doRefreshSettings rebuilds the settings form when the export folder
// changed since it was last built. Main thread only.
func (a *App) doRefreshSettings() {
	if a.settingsHolder == nil {
		return
	}
	a.mu.Lock()
	dir := a.exportDir
	a.mu.Unlock()
	if len(a.settingsHolder.Objects) > 0 && a.settingsDir == dir {
		return
	}
	a.settingsHolder.Objects = []fyne.CanvasObject{NewSettingsTab(
		dir,
		a.opts.DBPath,
		a.win,
		a.requestDirChange,
		func() {
			a.mu.Lock()
			current := a.exportDir
			a.mu.Unlock()
			a.requestDirChange(current)
		},
		a.restart,
	)}
	a.settingsDir = dir
	a.settingsHolder.Refresh()
}

// restart closes storage and relaunches with the new debug setting.
func (a *App) restart(debug bool) {
	a.shutdown()
	if err := restartSelf(debugEnv(debug)); err != nil {
		slog.Error("restart failed", "error", err)
		a.fyneApp.Quit()
	}
}

// doSetStatus safely updates the status bar label from any goroutine.
func (a *App) doSetStatus(msg string) {
	fyne.Do(func() {
		if a.statusText != nil {
			a.statusText.SetText(msg)
		}
	})
}

func shortPath(path string) string {
	if len(path) > 60 {
		return "..." + path[len(path)-57:]
	}
	return path
}
