package tui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/pefman/cr-calc/internal/calc"
)

var (
	styleDefault  = tcell.StyleDefault
	styleTitle    = tcell.StyleDefault.Bold(true)
	styleSelected = tcell.StyleDefault.Reverse(true)
	styleDim      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleDefence  = tcell.StyleDefault.Foreground(tcell.ColorAqua)
)

// putText writes s at (x, y) and returns the column after it. Wide runes
// take two cells; drawing stops at maxX.
func putText(scr tcell.Screen, x, y, maxX int, s string, st tcell.Style) int {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > maxX {
			break
		}
		scr.SetContent(x, y, r, nil, st)
		if w == 2 {
			scr.SetContent(x+1, y, ' ', nil, st)
		}
		x += w
	}
	return x
}

// fit truncates or pads s to exactly width display columns.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = runewidth.Truncate(s, width, "…")
	return runewidth.FillRight(s, width)
}

// hpStyle colours the hit point bar by health state.
func hpStyle(state calc.HealthState) tcell.Style {
	switch state {
	case calc.HealthLow:
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	case calc.HealthMedium:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow)
	default:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	}
}

// hpBar renders percent (0..100) as a bar of width cells.
func hpBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	p := min(100, max(0, percent))
	filled := int(p / 100 * float64(width))
	if p > 0 && filled == 0 {
		filled = 1
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
