// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/selection.go
// Summary: Drag-selection geometry over the character grid.

package screen

import "strings"

// SelectionShape picks between rectangular and line-flow selection.
type SelectionShape int

const (
	ShapeLines SelectionShape = iota
	ShapeRectangle
)

// Selection is a live drag gesture: an anchor where the drag started
// and a lead that follows the pointer. It is never persisted.
type Selection struct {
	Anchor Position
	Lead   Position
	Shape  SelectionShape

	// Add selects when true, deselects when combined subtractively.
	Add bool

	Locked bool
}

// NewSelection starts a drag at pos.
func NewSelection(pos Position) *Selection {
	return &Selection{Anchor: pos, Lead: pos, Add: true}
}

// Rect returns the bounding rectangle over both endpoints, inclusive.
func (sel *Selection) Rect() Rectangle {
	return RectFromCorners(sel.Anchor, sel.Lead)
}

// Contains reports whether a cell falls inside the selection.
//
// Line-flow selection follows editor convention: dragging downward
// takes the anchor row from anchor.x to end of line, whole rows in
// between, and the lead row from the start of line up to lead.x.
// Dragging upward mirrors the treatment.
func (sel *Selection) Contains(pos Position) bool {
	if sel.Shape == ShapeRectangle {
		return sel.Rect().Contains(pos)
	}
	a, l := sel.Anchor, sel.Lead
	if a.Y == l.Y {
		if pos.Y != a.Y {
			return false
		}
		lo, hi := a.X, l.X
		if lo > hi {
			lo, hi = hi, lo
		}
		return lo <= pos.X && pos.X <= hi
	}
	if a.Y > l.Y {
		a, l = l, a
	}
	switch {
	case pos.Y == a.Y:
		return pos.X >= a.X
	case pos.Y == l.Y:
		return pos.X <= l.X
	default:
		return pos.Y > a.Y && pos.Y < l.Y
	}
}

// SelectedText extracts the selected cells of the current layer as
// newline-joined text.
func (s *TextScreen) SelectedText() string {
	sel := s.Selection
	l := s.layer()
	if sel == nil || l == nil {
		return ""
	}
	r := sel.Rect()
	var sb strings.Builder
	for y := r.Start.Y; y < r.Bottom(); y++ {
		if y > r.Start.Y {
			sb.WriteByte('\n')
		}
		end := l.LineLength(y)
		for x := 0; x < s.Buffer.Width() && x < end; x++ {
			pos := Position{X: x, Y: y}
			if !sel.Contains(pos) {
				continue
			}
			cell := l.CharAt(pos)
			if cell.Ch == 0 {
				cell.Ch = ' '
			}
			sb.WriteRune(cell.Ch)
		}
	}
	return sb.String()
}

// ClearSelection commits or cancels the drag.
func (s *TextScreen) ClearSelection() { s.Selection = nil }
