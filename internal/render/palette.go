package render

import (
	"image/color"

	"ca-sandbox/internal/core"
)

// palette cycles for rules with more than 32 states. State 0 is a neutral
// grey so empty space stays dark.
var palette = [32]color.RGBA{
	{0x60, 0x60, 0x60, 0xff}, {0xff, 0xa0, 0xa0, 0xff}, {0xff, 0x7d, 0x00, 0xff}, {0xff, 0x96, 0x19, 0xff},
	{0xff, 0xaf, 0x32, 0xff}, {0xff, 0xc8, 0x4b, 0xff}, {0xff, 0xe1, 0x64, 0xff}, {0xff, 0xfa, 0x7d, 0xff},
	{0xfb, 0xff, 0x00, 0xff}, {0x59, 0x59, 0xff, 0xff}, {0x6a, 0x6a, 0xff, 0xff}, {0x7a, 0x7a, 0xff, 0xff},
	{0x8b, 0x8b, 0xff, 0xff}, {0x1b, 0xb0, 0x1b, 0xff}, {0x24, 0xc8, 0x24, 0xff}, {0x49, 0xff, 0x49, 0xff},
	{0x6a, 0xff, 0x6a, 0xff}, {0xeb, 0x24, 0x24, 0xff}, {0xff, 0x38, 0x38, 0xff}, {0xff, 0x49, 0x49, 0xff},
	{0xff, 0x59, 0x59, 0xff}, {0xb9, 0x38, 0xff, 0xff}, {0xbf, 0x49, 0xff, 0xff}, {0xc5, 0x59, 0xff, 0xff},
	{0xcb, 0x6a, 0xff, 0xff}, {0x00, 0xff, 0x80, 0xff}, {0xff, 0x80, 0x40, 0xff}, {0xff, 0xff, 0x80, 0xff},
	{0x21, 0xd7, 0xd7, 0xff}, {0x1b, 0xb0, 0xb0, 0xff}, {0x18, 0x9c, 0x9c, 0xff}, {0x15, 0x89, 0x89, 0xff},
}

// DebugColour is drawn for cells whose transition could not be evaluated.
var DebugColour = color.RGBA{R: 0xff, G: 0x00, B: 0xff, A: 0xff}

// StateColour returns the display colour of s.
func StateColour(s core.CellState) color.RGBA {
	if s == core.DebugState {
		return DebugColour
	}
	return palette[s%core.CellState(len(palette))]
}

// Lighten moves c a fifth of the way towards white.
func Lighten(c color.RGBA) color.RGBA {
	f := func(v uint8) uint8 { return v + (0xff-v)/5 }
	return color.RGBA{R: f(c.R), G: f(c.G), B: f(c.B), A: c.A}
}

// Darken moves c a fifth of the way towards black.
func Darken(c color.RGBA) color.RGBA {
	f := func(v uint8) uint8 { return v - v/5 }
	return color.RGBA{R: f(c.R), G: f(c.G), B: f(c.B), A: c.A}
}
