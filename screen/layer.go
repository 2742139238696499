// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/layer.go
// Summary: One plane of the character grid with write-protection flags.
// Notes: Lines are ragged: a line shorter than the layer width reads as
//        invisible cells past its end. Out-of-bounds access is a no-op.

package screen

// LayerRole distinguishes ordinary layers from paste previews managed
// by editing front ends.
type LayerRole int

const (
	RoleNormal LayerRole = iota
	RolePastePreview
	RoleImage
)

// Line is one row of a layer.
type Line struct {
	Chars []AttributedChar
}

// SetChar writes at column x, extending the row with invisible cells as
// needed. Negative columns are ignored.
func (l *Line) SetChar(x int, ch AttributedChar) {
	if x < 0 {
		return
	}
	for len(l.Chars) <= x {
		l.Chars = append(l.Chars, InvisibleChar())
	}
	l.Chars[x] = ch
}

// Length is the visible line length: trailing invisible cells excluded.
func (l *Line) Length() int {
	n := len(l.Chars)
	for n > 0 && !l.Chars[n-1].IsVisible() {
		n--
	}
	return n
}

// Layer is a 2D grid of attributed characters.
type Layer struct {
	Role    LayerRole
	Title   string
	Visible bool
	Locked  bool
	// PositionLocked prevents offset changes, AlphaLocked prevents
	// writes to cells that are currently transparent.
	PositionLocked bool
	AlphaLocked    bool
	HasAlpha       bool
	Offset         Position

	size  Size
	Lines []*Line
}

func NewLayer(title string, size Size) *Layer {
	l := &Layer{Title: title, Visible: true, size: size}
	for i := 0; i < size.Height; i++ {
		l.Lines = append(l.Lines, &Line{})
	}
	return l
}

func (l *Layer) Width() int  { return l.size.Width }
func (l *Layer) Height() int { return l.size.Height }
func (l *Layer) Size() Size  { return l.size }

func (l *Layer) SetWidth(w int)  { l.size.Width = w }
func (l *Layer) SetHeight(h int) { l.size.Height = h }

// CharAt returns the cell at pos, or an invisible cell when pos is out
// of range or past the written part of its row.
func (l *Layer) CharAt(pos Position) AttributedChar {
	if pos.X < 0 || pos.Y < 0 || pos.X >= l.size.Width || pos.Y >= l.size.Height {
		return InvisibleChar()
	}
	if pos.Y < len(l.Lines) {
		line := l.Lines[pos.Y]
		if pos.X < len(line.Chars) {
			return line.Chars[pos.X]
		}
	}
	return InvisibleChar()
}

// SetChar writes the cell at pos. Writes outside the layer, to a locked
// or hidden layer, or over transparent cells of an alpha-locked layer
// are silently dropped.
func (l *Layer) SetChar(pos Position, ch AttributedChar) {
	if pos.X < 0 || pos.Y < 0 || pos.X >= l.size.Width || pos.Y >= l.size.Height {
		return
	}
	if l.Locked || !l.Visible {
		return
	}
	for len(l.Lines) <= pos.Y {
		l.Lines = append(l.Lines, &Line{})
	}
	if l.HasAlpha && l.AlphaLocked && !l.CharAt(pos).IsVisible() {
		return
	}
	l.Lines[pos.Y].SetChar(pos.X, ch)
}

// LineLength returns the visible length of a row, 0 out of range.
func (l *Layer) LineLength(y int) int {
	if y < 0 || y >= len(l.Lines) {
		return 0
	}
	return l.Lines[y].Length()
}

// InsertLine inserts a row at index, padding with empty rows if index
// is past the end.
func (l *Layer) InsertLine(index int, line *Line) {
	if l.Locked || !l.Visible || index < 0 {
		return
	}
	for len(l.Lines) < index {
		l.Lines = append(l.Lines, &Line{})
	}
	l.Lines = append(l.Lines, nil)
	copy(l.Lines[index+1:], l.Lines[index:])
	l.Lines[index] = line
}

// RemoveLine deletes a row; out-of-range indices are ignored.
func (l *Layer) RemoveLine(index int) {
	if l.Locked || !l.Visible || index < 0 || index >= len(l.Lines) {
		return
	}
	l.Lines = append(l.Lines[:index], l.Lines[index+1:]...)
}

// Clear drops all rows.
func (l *Layer) Clear() {
	l.Lines = l.Lines[:0]
}

// LineCount reports how many rows have been written.
func (l *Layer) LineCount() int { return len(l.Lines) }
