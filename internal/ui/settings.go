package ui

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/widget"

	"github.com/AkatukiSora/gamelog-lines/internal/applog"
	"github.com/AkatukiSora/gamelog-lines/internal/config"
)

// SettingsTab holds settings UI state
type SettingsTab struct {
	ExportDir   string
	DBPath      string
	OnDirChange func(string)
	OnReimport  func()
	OnRestart   func(debug bool)
	win         fyne.Window
}

// NewSettingsTab creates the settings tab
func NewSettingsTab(
	exportDir string,
	dbPath string,
	win fyne.Window,
	onDirChange func(string),
	onReimport func(),
	onRestart func(debug bool),
) fyne.CanvasObject {
	st := &SettingsTab{
		ExportDir:   exportDir,
		DBPath:      dbPath,
		OnDirChange: onDirChange,
		OnReimport:  onReimport,
		OnRestart:   onRestart,
		win:         win,
	}
	return st.build()
}

func (st *SettingsTab) build() fyne.CanvasObject {
	title := widget.NewLabelWithStyle(lang.X("settings.title", "Settings"), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	// Export directory
	dirLabel := widget.NewLabel(lang.X("settings.export_dir_label", "Game log export folder:"))
	dirEntry := widget.NewEntry()
	dirEntry.SetPlaceHolder(lang.X("settings.export_dir_placeholder", "Folder containing *.gamelog.json exports"))
	dirEntry.SetText(st.ExportDir)

	apply := func(dir string) {
		st.ExportDir = dir
		if st.OnDirChange != nil {
			st.OnDirChange(dir)
		}
	}
	browseBtn := widget.NewButton(lang.X("settings.browse", "Browse..."), func() {
		dialog.ShowFolderOpen(func(u fyne.ListableURI, err error) {
			if err != nil || u == nil {
				return
			}
			dirEntry.SetText(u.Path())
			apply(u.Path())
		}, st.win)
	})
	applyBtn := widget.NewButton(lang.X("settings.apply", "Apply"), func() {
		apply(dirEntry.Text)
	})
	applyBtn.Importance = widget.HighImportance
	dirRow := container.NewBorder(nil, nil, nil, container.NewHBox(browseBtn, applyBtn), dirEntry)

	reimportBtn := widget.NewButton(lang.X("settings.reimport", "Import folder now"), func() {
		if st.OnReimport != nil {
			st.OnReimport()
		}
	})

	// Storage
	storageTitle := widget.NewLabelWithStyle(lang.X("settings.storage_title", "Storage"), fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	dbLabel := widget.NewLabel(lang.X("settings.db_path", "Database: {{.Path}}", map[string]any{"Path": st.DBPath}))
	dbLabel.Wrapping = fyne.TextWrapBreak
	logLabel := widget.NewLabel(lang.X("settings.log_path", "Log file: {{.Path}}", map[string]any{"Path": applog.LogPath()}))
	logLabel.Wrapping = fyne.TextWrapBreak

	// Debug logging is read once at startup, so switching it restarts.
	debugCheck := widget.NewCheck(lang.X("settings.debug", "Debug logging"), nil)
	debugCheck.SetChecked(applog.IsDebug())
	debugCheck.OnChanged = func(on bool) {
		if on == applog.IsDebug() {
			return
		}
		dialog.ShowConfirm(
			lang.X("settings.restart.title", "Restart required"),
			lang.X("settings.restart.body", "Restart now to change the log level?"),
			func(ok bool) {
				if !ok {
					debugCheck.SetChecked(applog.IsDebug())
					return
				}
				if st.OnRestart != nil {
					st.OnRestart(on)
				}
			}, st.win)
	}

	infoLabel := widget.NewLabel(lang.X("settings.info_text", "The application watches the export folder and imports every new or changed game log export.\nSettings can also be given in a config file or with {{.Prefix}}_* environment variables.", map[string]any{"Prefix": config.EnvPrefix}))
	infoLabel.Wrapping = fyne.TextWrapWord

	form := container.NewVBox(
		title,
		widget.NewSeparator(),
		dirLabel,
		dirRow,
		reimportBtn,
		widget.NewSeparator(),
		storageTitle,
		dbLabel,
		logLabel,
		debugCheck,
		widget.NewSeparator(),
		infoLabel,
	)

	return container.NewScroll(container.NewPadded(form))
}

// debugEnv is the override that carries the debug switch across a restart.
func debugEnv(on bool) string {
	return config.EnvPrefix + "_LOGGING_DEBUG=" + strconv.FormatBool(on)
}
