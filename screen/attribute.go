// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/attribute.go
// Summary: Per-cell text attributes and the legacy DOS attribute byte codec.

package screen

// IceMode selects how the high background bit of a legacy attribute byte
// decodes: as blink, as a bright background (ice colors), or ignored
// because the palette is unlimited.
type IceMode int

const (
	IceBlink IceMode = iota
	IceColors
	IceUnlimited
)

// ColorModel tags an AttributeColor.
type ColorModel int

const (
	ColorPalette  ColorModel = iota // base palette index
	ColorExtended                   // xterm 256 palette index
	ColorRGB
	ColorTransparent
)

// AttributeColor is one plane of a cell color.
type AttributeColor struct {
	Model   ColorModel
	Index   uint8
	R, G, B uint8
}

func PaletteColor(idx uint8) AttributeColor  { return AttributeColor{Model: ColorPalette, Index: idx} }
func ExtendedColor(idx uint8) AttributeColor { return AttributeColor{Model: ColorExtended, Index: idx} }
func RGBColor(r, g, b uint8) AttributeColor {
	return AttributeColor{Model: ColorRGB, R: r, G: g, B: b}
}
func TransparentColor() AttributeColor { return AttributeColor{Model: ColorTransparent} }

// ToU32 packs the color for the scrollback wire format. Transparent is
// 0xFF000000, palette 0x000000nn, extended 0x010000nn, RGB 0x02rrggbb.
func (c AttributeColor) ToU32() uint32 {
	switch c.Model {
	case ColorTransparent:
		return 0xFF000000
	case ColorExtended:
		return 0x01000000 | uint32(c.Index)
	case ColorRGB:
		return 0x02000000 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
	default:
		return uint32(c.Index)
	}
}

// ColorFromU32 unpacks a color from the scrollback wire format.
func ColorFromU32(v uint32) AttributeColor {
	switch v >> 24 {
	case 0xFF:
		return TransparentColor()
	case 0x02:
		return RGBColor(uint8(v>>16), uint8(v>>8), uint8(v))
	case 0x01:
		return ExtendedColor(uint8(v))
	default:
		return PaletteColor(uint8(v))
	}
}

// PaletteIndex returns the index for indexed models, 7/0 fallbacks
// otherwise (matching how legacy encoders degrade RGB cells).
func (c AttributeColor) paletteIndex(foreground bool) uint8 {
	switch c.Model {
	case ColorPalette, ColorExtended:
		return c.Index
	case ColorRGB:
		if foreground {
			return 7
		}
		return 0
	default:
		return 0
	}
}

// AttrFlags is the style bitfield of a cell.
type AttrFlags uint16

const (
	FlagBold AttrFlags = 1 << iota
	FlagFaint
	FlagItalic
	FlagBlink
	FlagUnderline
	FlagDoubleUnderline
	FlagConceal
	FlagCrossedOut
	FlagDoubleHeight
	FlagOverline
	// FlagInvisible marks a never-written cell (end of visible line in
	// the wire format).
	FlagInvisible AttrFlags = 1 << 15
)

// TextAttribute is the full attribute of one cell or of the caret.
type TextAttribute struct {
	Foreground AttributeColor
	Background AttributeColor
	Flags      AttrFlags
	FontPage   uint8
	// Protected is the DECSCA guard honored by selective erase.
	Protected bool
}

// DefaultAttribute is light grey on black, the terminal power-on state.
func DefaultAttribute() TextAttribute {
	return TextAttribute{Foreground: PaletteColor(7), Background: PaletteColor(0)}
}

func (a TextAttribute) Has(f AttrFlags) bool { return a.Flags&f != 0 }

func (a *TextAttribute) Set(f AttrFlags, on bool) {
	if on {
		a.Flags |= f
	} else {
		a.Flags &^= f
	}
}

// AttributeFromU8 decodes a legacy DOS attribute byte. In ice mode the
// high bit selects a bright background; otherwise it is blink.
func AttributeFromU8(attr uint8, ice IceMode) TextAttribute {
	var bg uint8
	blink := false
	if ice == IceColors {
		bg = attr >> 4
	} else {
		blink = attr&0x80 != 0
		bg = (attr >> 4) & 0x07
	}
	a := TextAttribute{
		Foreground: PaletteColor(attr & 0x0F),
		Background: PaletteColor(bg),
	}
	a.Set(FlagBlink, blink)
	return a
}

// AsU8 encodes the attribute as a legacy DOS byte under the given ice
// mode. RGB planes degrade to the 7/0 fallbacks.
func (a TextAttribute) AsU8(ice IceMode) uint8 {
	fg := a.Foreground.paletteIndex(true) & 0x0F
	if a.Has(FlagBold) {
		fg |= 0x08
	}
	bg := a.Background.paletteIndex(false)
	if ice == IceBlink {
		bg &= 0x07
		if a.Has(FlagBlink) {
			bg |= 0x08
		}
	} else {
		bg &= 0x0F
	}
	return fg | bg<<4
}
