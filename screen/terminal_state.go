// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/terminal_state.go
// Summary: Scroll margins, tab stops, and mode flags of a live terminal.
// Notes: Margins are stored 0-based inclusive; commands deliver them
//        1-indexed and ScreenSink converts.

package screen

// Margins is a 0-based inclusive range. Valid only when Set.
type Margins struct {
	Set        bool
	Start, End int
}

// TerminalState carries the modal state of the terminal.
type TerminalState struct {
	size Size

	TopBottom Margins
	LeftRight Margins

	// OriginWithinMargins is DECOM: cursor addressing relative to the
	// top margin instead of the screen corner.
	OriginWithinMargins bool
	AutoWrap            bool
	InverseVideo        bool
	IceColors           bool
	SmoothScroll        bool

	// IsTerminalBuffer distinguishes a live scrolling console from a
	// fixed-size document canvas.
	IsTerminalBuffer bool
	ClearedScreen    bool

	// BaudRate is the emulated line speed, 0 = unthrottled. The engine
	// records it; pacing is the embedding application's concern.
	BaudRate int

	tabStops map[int]bool
}

// NewTerminalState returns power-on state for the given screen size:
// autowrap on, tabs every 8 columns, no margins.
func NewTerminalState(size Size) *TerminalState {
	t := &TerminalState{size: size, AutoWrap: true}
	t.ResetTabStops()
	return t
}

func (t *TerminalState) Width() int  { return t.size.Width }
func (t *TerminalState) Height() int { return t.size.Height }
func (t *TerminalState) Size() Size  { return t.size }

func (t *TerminalState) SetSize(size Size) { t.size = size }
func (t *TerminalState) SetWidth(w int)    { t.size.Width = w }
func (t *TerminalState) SetHeight(h int)   { t.size.Height = h }

// Reset restores power-on state at the given size.
func (t *TerminalState) Reset(size Size) {
	stops := t.tabStops
	*t = TerminalState{size: size, AutoWrap: true, tabStops: stops}
	t.ResetTabStops()
}

// NeedsScrolling reports whether a vertical margin region is active.
func (t *TerminalState) NeedsScrolling() bool {
	return t.TopBottom.Set
}

// InMargin reports whether pos lies inside the active margin region.
func (t *TerminalState) InMargin(pos Position) bool {
	if t.TopBottom.Set && (pos.Y < t.TopBottom.Start || pos.Y > t.TopBottom.End) {
		return false
	}
	if t.LeftRight.Set && (pos.X < t.LeftRight.Start || pos.X > t.LeftRight.End) {
		return false
	}
	return t.TopBottom.Set || t.LeftRight.Set
}

// InScrollRegion reports whether pos is affected by margin scrolling.
// Without margins every position is.
func (t *TerminalState) InScrollRegion(pos Position) bool {
	if !t.TopBottom.Set {
		return true
	}
	return pos.Y >= t.TopBottom.Start && pos.Y <= t.TopBottom.End
}

// SetTopBottomMargins activates a vertical scroll region. Values are
// 0-based inclusive; an inverted or degenerate region clears margins.
func (t *TerminalState) SetTopBottomMargins(top, bottom int) {
	if top < 0 {
		top = 0
	}
	if bottom >= t.size.Height {
		bottom = t.size.Height - 1
	}
	if top >= bottom {
		t.TopBottom = Margins{}
		return
	}
	t.TopBottom = Margins{Set: true, Start: top, End: bottom}
}

// SetLeftRightMargins activates a horizontal margin region, same rules.
func (t *TerminalState) SetLeftRightMargins(left, right int) {
	if left < 0 {
		left = 0
	}
	if right >= t.size.Width {
		right = t.size.Width - 1
	}
	if left >= right {
		t.LeftRight = Margins{}
		return
	}
	t.LeftRight = Margins{Set: true, Start: left, End: right}
}

// ResetMargins clears both margin regions.
func (t *TerminalState) ResetMargins() {
	t.TopBottom = Margins{}
	t.LeftRight = Margins{}
}

// Tab stops.

// ResetTabStops restores the default stop at every 8th column.
func (t *TerminalState) ResetTabStops() {
	t.tabStops = make(map[int]bool)
	for x := 8; x < t.size.Width; x += 8 {
		t.tabStops[x] = true
	}
}

func (t *TerminalState) SetTabStop(x int)   { t.tabStops[x] = true }
func (t *TerminalState) ClearTabStop(x int) { delete(t.tabStops, x) }
func (t *TerminalState) ClearAllTabStops()  { t.tabStops = make(map[int]bool) }

// NextTabStop returns the first stop after x, or the last column.
func (t *TerminalState) NextTabStop(x int) int {
	for col := x + 1; col < t.size.Width; col++ {
		if t.tabStops[col] {
			return col
		}
	}
	return t.size.Width - 1
}

// PrevTabStop returns the last stop before x, or column 0.
func (t *TerminalState) PrevTabStop(x int) int {
	for col := x - 1; col > 0; col-- {
		if t.tabStops[col] {
			return col
		}
	}
	return 0
}
