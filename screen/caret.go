// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/caret.go
// Summary: Cursor state owned by the screen, mutated only by command application.

package screen

// CaretStyle mirrors the DECSCUSR parameter values.
type CaretStyle int

const (
	CaretBlinkingBlock CaretStyle = iota
	CaretSteadyBlock
	CaretBlinkingUnderline
	CaretSteadyUnderline
	CaretBlinkingBar
	CaretSteadyBar
)

// Caret is the cursor: position, write attribute, and input modes.
type Caret struct {
	Pos        Position
	Attr       TextAttribute
	Visible    bool
	InsertMode bool
	Style      CaretStyle
}

func NewCaret() Caret {
	return Caret{Attr: DefaultAttribute(), Visible: true}
}

// Reset restores power-on caret state.
func (c *Caret) Reset() {
	*c = NewCaret()
}

// ResetColors restores the default colors but keeps position and modes.
func (c *Caret) ResetColors() {
	page := c.Attr.FontPage
	c.Attr = DefaultAttribute()
	c.Attr.FontPage = page
}
