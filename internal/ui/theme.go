package ui

import "github.com/gdamore/tcell/v2"

var (
	ColorBg        = tcell.NewRGBColor(16, 18, 24)
	ColorFg        = tcell.ColorWhite
	ColorBorder    = tcell.NewRGBColor(70, 80, 110)
	ColorTitle     = tcell.NewRGBColor(210, 215, 230)
	ColorHighlight = tcell.NewRGBColor(120, 140, 255)
	ColorToastOK   = tcell.NewRGBColor(20, 90, 60)
	ColorToastErr  = tcell.NewRGBColor(120, 40, 40)
	ColorStatusBar = tcell.NewRGBColor(30, 34, 44)
)
