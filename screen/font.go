// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/font.go
// Summary: Bitmap font slots referenced by the font-page attribute.

package screen

// BitFont is a font table entry. Glyph bitmaps are only needed by
// pixel renderers; the text engine tracks identity and cell metrics.
type BitFont struct {
	Name string
	Size Size
	// Data holds the raw glyph bitmap, height bytes per glyph, when a
	// loader supplied one.
	Data []byte
}

// DefaultFont is the builtin slot-0 font: the VGA 8x16 metrics every
// legacy format assumes.
func DefaultFont() BitFont {
	return BitFont{Name: "IBM VGA", Size: Size{Width: 8, Height: 16}}
}
