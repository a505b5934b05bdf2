package ui

import (
	"embed"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2/lang"
)

//go:embed translations
var translationsFS embed.FS

var loadTranslationsOnce sync.Once

// loadTranslations registers the embedded catalogues with fyne. Run calls it
// before building any widget.
func loadTranslations() {
	loadTranslationsOnce.Do(func() {
		if err := lang.AddTranslationsFS(translationsFS, "translations"); err != nil {
			slog.Error("load translations", "error", err)
		}
	})
}
