// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/geometry.go
// Summary: Cell-coordinate value types used throughout the screen engine.

package screen

// Position is an integer cell coordinate. Negative values are legal in
// intermediate cursor math; accessors clamp at the buffer boundary.
type Position struct {
	X, Y int
}

func Pos(x, y int) Position { return Position{X: x, Y: y} }

func (p Position) Add(o Position) Position { return Position{p.X + o.X, p.Y + o.Y} }
func (p Position) Sub(o Position) Position { return Position{p.X - o.X, p.Y - o.Y} }

// Size is a width/height pair in cells.
type Size struct {
	Width, Height int
}

// Rectangle is a half-open cell region [Start, Start+Size).
type Rectangle struct {
	Start Position
	Size  Size
}

// RectFromMinSize builds a rectangle from its top-left corner and size.
func RectFromMinSize(start Position, size Size) Rectangle {
	return Rectangle{Start: start, Size: size}
}

// RectFromCorners builds the smallest rectangle covering both corners,
// inclusive.
func RectFromCorners(a, b Position) Rectangle {
	minX, maxX := a.X, b.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := a.Y, b.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	return Rectangle{
		Start: Position{minX, minY},
		Size:  Size{maxX - minX + 1, maxY - minY + 1},
	}
}

func (r Rectangle) Contains(p Position) bool {
	return p.X >= r.Start.X && p.X < r.Start.X+r.Size.Width &&
		p.Y >= r.Start.Y && p.Y < r.Start.Y+r.Size.Height
}

func (r Rectangle) Right() int  { return r.Start.X + r.Size.Width }
func (r Rectangle) Bottom() int { return r.Start.Y + r.Size.Height }

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
