// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/char.go
// Summary: The attributed character, the atomic cell of the grid.

package screen

// AttributedChar pairs a character with its display attribute.
type AttributedChar struct {
	Ch   rune
	Attr TextAttribute
}

// DefaultChar is a blank visible cell with the default attribute.
func DefaultChar() AttributedChar {
	return AttributedChar{Ch: ' ', Attr: DefaultAttribute()}
}

// InvisibleChar marks a cell that was never written. Reads outside a
// layer's written area return it.
func InvisibleChar() AttributedChar {
	a := DefaultAttribute()
	a.Flags |= FlagInvisible
	return AttributedChar{Ch: ' ', Attr: a}
}

func (c AttributedChar) IsVisible() bool { return !c.Attr.Has(FlagInvisible) }

// IsTransparent reports whether the cell contributes nothing when
// layers are composited.
func (c AttributedChar) IsTransparent() bool {
	return !c.IsVisible() || (c.Ch == ' ' && c.Attr.Background.Model == ColorTransparent)
}
