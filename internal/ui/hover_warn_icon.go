package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/widget"
)

// hoverWarnIcon is the round "!" badge that reveals a hint on hover.
type hoverWarnIcon struct {
	widget.BaseWidget
	accent  color.NRGBA
	onHover func(bool)
}

func newHoverWarnIcon(accent color.Color, onHover func(bool)) *hoverWarnIcon {
	w := &hoverWarnIcon{accent: toNRGBA(accent), onHover: onHover}
	w.ExtendBaseWidget(w)
	return w
}

func (w *hoverWarnIcon) CreateRenderer() fyne.WidgetRenderer {
	a := w.accent
	bg := canvas.NewCircle(color.NRGBA{R: a.R, G: a.G, B: a.B, A: 0x24})
	bg.StrokeColor = color.NRGBA{R: a.R, G: a.G, B: a.B, A: 0xD8}
	bg.StrokeWidth = 1.5

	mark := canvas.NewText(lang.X("warn_icon.mark", "!"), color.NRGBA{R: a.R, G: a.G, B: a.B, A: 0xFF})
	mark.TextStyle = fyne.TextStyle{Bold: true}
	mark.Alignment = fyne.TextAlignCenter
	mark.TextSize = 13

	return widget.NewSimpleRenderer(container.NewStack(bg, container.NewCenter(mark)))
}

func (w *hoverWarnIcon) MinSize() fyne.Size {
	return fyne.NewSize(24, 24)
}

func (w *hoverWarnIcon) MouseIn(*desktop.MouseEvent) {
	if w.onHover != nil {
		w.onHover(true)
	}
}

func (w *hoverWarnIcon) MouseMoved(*desktop.MouseEvent) {}

func (w *hoverWarnIcon) MouseOut() {
	if w.onHover != nil {
		w.onHover(false)
	}
}
