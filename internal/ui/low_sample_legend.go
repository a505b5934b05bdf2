package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/theme"
)

func newLowSampleLegend(text string) fyne.CanvasObject {
	mark := canvas.NewText(lang.X("warn_icon.mark", "!"), uiWarningColor)
	mark.TextStyle = fyne.TextStyle{Bold: true}
	mark.TextSize = theme.TextSize() * 0.95

	legend := newSubtleText(text)
	return container.NewPadded(container.NewBorder(nil, nil, mark, nil, legend))
}

// withFixedLowSampleLegend pins the thin-sample legend under content.
func withFixedLowSampleLegend(content fyne.CanvasObject) fyne.CanvasObject {
	legend := newLowSampleLegend(lang.X("chart.low_sample_legend", "! marks a line backed by too few games to trust."))
	return container.NewBorder(nil, legend, nil, nil, content)
}
