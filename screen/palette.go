// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/palette.go
// Summary: Color palette with DOS and xterm defaults and nearest-color matching.

package screen

import (
	"github.com/lucasb-eyer/go-colorful"
)

// RGB is one palette slot.
type RGB struct {
	R, G, B uint8
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// dosPalette is the classic 16-color CGA/VGA text palette.
var dosPalette = [16]RGB{
	{0x00, 0x00, 0x00}, {0x00, 0x00, 0xAA}, {0x00, 0xAA, 0x00}, {0x00, 0xAA, 0xAA},
	{0xAA, 0x00, 0x00}, {0xAA, 0x00, 0xAA}, {0xAA, 0x55, 0x00}, {0xAA, 0xAA, 0xAA},
	{0x55, 0x55, 0x55}, {0x55, 0x55, 0xFF}, {0x55, 0xFF, 0x55}, {0x55, 0xFF, 0xFF},
	{0xFF, 0x55, 0x55}, {0xFF, 0x55, 0xFF}, {0xFF, 0xFF, 0x55}, {0xFF, 0xFF, 0xFF},
}

// Palette is an ordered color table. Index 0..len-1 are valid cell
// color indices.
type Palette struct {
	Colors []RGB
}

// DOSPalette returns the 16-color DOS default.
func DOSPalette() *Palette {
	p := &Palette{Colors: make([]RGB, 16)}
	copy(p.Colors, dosPalette[:])
	return p
}

// XTerm256Palette returns the 256-color xterm table: the 16 base
// colors, a 6x6x6 color cube, and a 24-step gray ramp.
func XTerm256Palette() *Palette {
	p := &Palette{Colors: make([]RGB, 0, 256)}
	p.Colors = append(p.Colors, dosPalette[:]...)
	levels := [6]uint8{0, 95, 135, 175, 215, 255}
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p.Colors = append(p.Colors, RGB{levels[r], levels[g], levels[b]})
			}
		}
	}
	for i := 0; i < 24; i++ {
		v := uint8(8 + i*10)
		p.Colors = append(p.Colors, RGB{v, v, v})
	}
	return p
}

func (p *Palette) Len() int { return len(p.Colors) }

// Color returns the slot color, black for out-of-range indices.
func (p *Palette) Color(idx int) RGB {
	if idx < 0 || idx >= len(p.Colors) {
		return RGB{}
	}
	return p.Colors[idx]
}

// SetColor redefines a slot, extending the table if needed.
func (p *Palette) SetColor(idx int, c RGB) {
	if idx < 0 {
		return
	}
	for len(p.Colors) <= idx {
		p.Colors = append(p.Colors, RGB{})
	}
	p.Colors[idx] = c
}

// Insert returns the index of c, appending it if not already present.
func (p *Palette) Insert(c RGB) int {
	for i, have := range p.Colors {
		if have == c {
			return i
		}
	}
	p.Colors = append(p.Colors, c)
	return len(p.Colors) - 1
}

// Nearest returns the palette index perceptually closest to c, using
// CIE Lab distance.
func (p *Palette) Nearest(c RGB) int {
	if len(p.Colors) == 0 {
		return 0
	}
	want := c.colorful()
	best, bestDist := 0, -1.0
	for i, have := range p.Colors {
		d := want.DistanceLab(have.colorful())
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Resolve maps an AttributeColor to a concrete RGB against this
// palette. foreground selects the RGB fallback plane.
func (p *Palette) Resolve(c AttributeColor, foreground bool) RGB {
	switch c.Model {
	case ColorRGB:
		return RGB{c.R, c.G, c.B}
	case ColorTransparent:
		return RGB{}
	default:
		return p.Color(int(c.paletteIndex(foreground)))
	}
}
