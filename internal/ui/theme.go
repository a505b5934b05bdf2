package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// linesTheme is the dark theme of the line explorer. Accents follow the
// over/under palette of the chart.
type linesTheme struct{}

var _ fyne.Theme = (*linesTheme)(nil)

func newLinesTheme() fyne.Theme {
	return linesTheme{}
}

func (t linesTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	base := theme.DarkTheme().Color(name, theme.VariantDark)
	switch name {
	case theme.ColorNamePrimary:
		return color.NRGBA{R: 0x3F, G: 0x81, B: 0xC6, A: 0xFF}
	case theme.ColorNameFocus:
		return color.NRGBA{R: 0x66, G: 0xA8, B: 0xE0, A: 0xAA}
	case theme.ColorNameSuccess:
		return uiSuccessAccent
	case theme.ColorNameError:
		return uiDangerAccent
	case theme.ColorNameWarning:
		return uiWarningColor
	case theme.ColorNameInputBackground:
		return color.NRGBA{R: 0x20, G: 0x26, B: 0x2D, A: 0xFF}
	case theme.ColorNameOverlayBackground:
		return color.NRGBA{R: 0x23, G: 0x2A, B: 0x32, A: 0xFF}
	default:
		return base
	}
}

func (t linesTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DarkTheme().Font(style)
}

func (t linesTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DarkTheme().Icon(name)
}

// Size tightens padding a little so the filter row fits narrow windows.
func (t linesTheme) Size(name fyne.ThemeSizeName) float32 {
	if name == theme.SizeNameInnerPadding {
		return theme.DarkTheme().Size(name) - 1
	}
	return theme.DarkTheme().Size(name)
}
