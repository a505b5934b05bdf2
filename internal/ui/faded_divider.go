package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
)

const (
	dividerFadeStartFromEdge = 0.30
	dividerFadeEndFromEdge   = 0.10
)

var dividerBaseColor = color.NRGBA{R: 0xAC, G: 0xAF, B: 0xB5, A: 0xFF}

// dividerPixel is the divider colour at pos along a line of length n. Both
// ends fade out.
func dividerPixel(pos, n int) color.Color {
	if n <= 1 {
		return dividerBaseColor
	}
	t := float32(pos) / float32(n-1)
	edge := min(t, 1-t)
	c := dividerBaseColor
	switch {
	case edge <= dividerFadeEndFromEdge:
		c.A = 0
	case edge < dividerFadeStartFromEdge:
		c.A = uint8(float32(c.A) * (edge - dividerFadeEndFromEdge) / (dividerFadeStartFromEdge - dividerFadeEndFromEdge))
	}
	return c
}

func newSectionDivider() fyne.CanvasObject {
	r := canvas.NewRasterWithPixels(func(x, _, w, _ int) color.Color { return dividerPixel(x, w) })
	r.SetMinSize(fyne.NewSize(0, 1))
	return r
}

func newSectionDividerVertical() fyne.CanvasObject {
	r := canvas.NewRasterWithPixels(func(_, y, _, h int) color.Color { return dividerPixel(y, h) })
	r.SetMinSize(fyne.NewSize(1, theme.TextSize()*1.8))
	return r
}
