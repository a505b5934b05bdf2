package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
)

type HintSide int

const (
	HintSideLeft HintSide = iota
	HintSideRight
)

// newHoverHint returns a warning badge and the overlay that shows message
// while the badge is hovered. The hint opens on the preferred side of the
// badge and flips when the overlay is too narrow.
func newHoverHint(message string, preferred HintSide) (fyne.CanvasObject, *fyne.Container) {
	hintLabel := canvas.NewText(message, color.White)
	hintLabel.TextSize = 12

	hintBg := canvas.NewRectangle(color.NRGBA{R: 0x26, G: 0x2B, B: 0x33, A: 0xF2})
	hintBg.CornerRadius = 6
	hintBg.StrokeColor = uiWarningColor
	hintBg.StrokeWidth = 1

	hintContent := container.NewPadded(hintLabel)
	hintMin := hintContent.MinSize()
	hint := container.NewStack(hintBg, hintContent)
	hint.Resize(fyne.NewSize(hintMin.Width+6, hintMin.Height+4))
	hint.Hide()

	overlay := container.NewWithoutLayout(hint)

	var icon *hoverWarnIcon
	icon = newHoverWarnIcon(uiWarningColor, func(hover bool) {
		if !hover {
			hint.Hide()
			overlay.Refresh()
			return
		}
		width := overlay.Size().Width
		hintW := hint.Size().Width
		iconW := icon.MinSize().Width
		left := -hintW - 2
		right := iconW + 2

		x := left
		if preferred == HintSideRight {
			x = right
		}
		// flip when the preferred side does not fit
		if x == right && width > 0 && right+hintW > width {
			x = left
		}
		hint.Move(fyne.NewPos(x, 0))
		hint.Show()
		overlay.Refresh()
	})

	return icon, overlay
}
