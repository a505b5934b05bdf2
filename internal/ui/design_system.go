package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

var (
	uiMutedTextColor    = color.NRGBA{R: 0xA8, G: 0xAF, B: 0xB8, A: 0xFF}
	uiWarningColor      = color.NRGBA{R: 0xFF, G: 0xC1, B: 0x07, A: 0xE8}
	uiCardBorderColor   = color.NRGBA{R: 0x8A, G: 0x92, B: 0x9C, A: 0x2E}
	uiSurfaceTint       = color.NRGBA{R: 0x72, G: 0x86, B: 0x9A, A: 0x12}
	uiSuccessAccent     = color.NRGBA{R: 0x4C, G: 0xAF, B: 0x50, A: 0xFF}
	uiDangerAccent      = color.NRGBA{R: 0xF4, G: 0x43, B: 0x36, A: 0xFF}
	uiInfoAccent        = color.NRGBA{R: 0x29, G: 0xB6, B: 0xF6, A: 0xFF}
	uiNeutralChipAccent = color.NRGBA{R: 0x90, G: 0xA4, B: 0xAE, A: 0xFF}
)

const (
	cardRadius = 10
	pillRadius = 999
)

// roundedLayers returns a filled rectangle and a stroked outline with the
// same radius.
func roundedLayers(fill, stroke color.Color, radius float32) (*canvas.Rectangle, *canvas.Rectangle) {
	bg := canvas.NewRectangle(fill)
	bg.CornerRadius = radius
	border := canvas.NewRectangle(color.Transparent)
	border.CornerRadius = radius
	border.StrokeColor = stroke
	border.StrokeWidth = 1
	return bg, border
}

// withAlpha keeps the hue of c at a new opacity.
func withAlpha(c color.Color, a uint8) color.NRGBA {
	n := toNRGBA(c)
	n.A = a
	return n
}

func newSectionCard(content fyne.CanvasObject) fyne.CanvasObject {
	bg, border := roundedLayers(theme.InputBackgroundColor(), uiCardBorderColor, cardRadius)
	tint := canvas.NewRectangle(uiSurfaceTint)
	tint.CornerRadius = cardRadius
	return container.NewStack(bg, tint, border, container.NewPadded(content))
}

// newMetricChip is a bold label in a pill tinted with accent. A nil accent
// draws a neutral outline.
func newMetricChip(text string, accent color.Color) fyne.CanvasObject {
	lbl := widget.NewLabel(text)
	lbl.TextStyle = fyne.TextStyle{Bold: true}

	fill, stroke := color.Color(color.Transparent), color.Color(uiCardBorderColor)
	if accent != nil {
		fill, stroke = withAlpha(accent, 0x2E), withAlpha(accent, 0x8A)
	}
	bg, border := roundedLayers(fill, stroke, pillRadius)
	return container.NewStack(bg, border, container.NewPadded(lbl))
}

func newSubtleText(content string) *canvas.Text {
	t := canvas.NewText(content, uiMutedTextColor)
	t.TextSize = theme.TextSize() * 0.86
	return t
}

func toNRGBA(c color.Color) color.NRGBA {
	if c == nil {
		return color.NRGBA{}
	}
	if n, ok := c.(color.NRGBA); ok {
		return n
	}
	r, g, b, a := c.RGBA()
	if a == 0 {
		return color.NRGBA{}
	}
	// RGBA is alpha-premultiplied
	return color.NRGBA{R: uint8(r * 0xFF / a), G: uint8(g * 0xFF / a), B: uint8(b * 0xFF / a), A: uint8(a >> 8)}
}

func newCenteredEmptyState(message string) fyne.CanvasObject {
	label := widget.NewLabel(message)
	label.Alignment = fyne.TextAlignCenter
	label.Wrapping = fyne.TextWrapWord

	card := newSectionCard(container.NewPadded(label))
	widthLock := canvas.NewRectangle(color.Transparent)
	widthLock.SetMinSize(fyne.NewSize(420, 0))

	return container.NewCenter(container.NewStack(widthLock, card))
}
