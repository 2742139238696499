// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/text_screen.go
// Summary: Terminal-accurate command application on a text buffer.
// Notes: Coordinates in here are absolute buffer rows. A terminal
//        buffer grows downward: line feeds past the last row append
//        rows and the viewport follows the bottom. Invalid targets
//        clamp or no-op, never panic.

package screen

import "github.com/mattn/go-runewidth"

// SavedCaretState is the DECSC snapshot.
type SavedCaretState struct {
	Caret               Caret
	OriginWithinMargins bool
	AutoWrap            bool
}

// TextScreen couples a caret with a text buffer and applies commands.
type TextScreen struct {
	Caret        Caret
	Buffer       *TextBuffer
	CurrentLayer int

	Selection *Selection

	saved    SavedCaretState
	savedSet bool

	lastPrinted AttributedChar
	hasPrinted  bool
}

// NewTextScreen creates a terminal-mode screen of the given size.
func NewTextScreen(size Size) *TextScreen {
	s := &TextScreen{Caret: NewCaret(), Buffer: NewTextBuffer(size)}
	s.Buffer.Terminal.IsTerminalBuffer = true
	return s
}

// NewCanvasScreen creates a fixed-size document canvas (no viewport
// growth, no scrolling).
func NewCanvasScreen(size Size) *TextScreen {
	return &TextScreen{Caret: NewCaret(), Buffer: NewTextBuffer(size)}
}

// layer returns the current layer, nil when the index is stale. A nil
// layer silently short-circuits every operation.
func (s *TextScreen) layer() *Layer {
	if s.CurrentLayer < 0 || s.CurrentLayer >= len(s.Buffer.Layers) {
		return nil
	}
	return s.Buffer.Layers[s.CurrentLayer]
}

func (s *TextScreen) CharAt(pos Position) AttributedChar {
	if l := s.layer(); l != nil {
		return l.CharAt(pos)
	}
	return InvisibleChar()
}

func (s *TextScreen) SetChar(pos Position, ch AttributedChar) {
	if l := s.layer(); l != nil {
		l.SetChar(pos, ch)
		s.Buffer.MarkLineDirty(pos.Y)
	}
}

// UpperLeft is the origin for absolute cursor addressing under the
// current origin mode.
func (s *TextScreen) UpperLeft() Position {
	if s.Buffer.Terminal.OriginWithinMargins {
		return Position{X: s.Buffer.FirstEditableColumn(), Y: s.Buffer.FirstEditableLine()}
	}
	return Position{Y: s.Buffer.FirstVisibleLine()}
}

// SetCaretPosition moves the caret to an absolute buffer position and
// clamps it to the legal area.
func (s *TextScreen) SetCaretPosition(pos Position) {
	s.Caret.Pos = pos
	s.limitCaret(s.Buffer.Terminal.InMargin(pos))
}

// limitCaret clamps the caret per origin mode, mirroring how a real
// terminal pins the cursor inside margins only when it started there.
func (s *TextScreen) limitCaret(wasInMargin bool) {
	pos := s.Caret.Pos
	t := s.Buffer.Terminal
	if !wasInMargin || !t.OriginWithinMargins {
		if t.IsTerminalBuffer {
			first := s.Buffer.FirstVisibleLine()
			pos.Y = clamp(pos.Y, first, first+t.Height()-1)
		}
		pos.X = clamp(pos.X, 0, s.Buffer.Width()-1)
	} else {
		pos.Y = clamp(pos.Y, s.Buffer.FirstEditableLine(), s.Buffer.LastEditableLine())
		pos.X = clamp(pos.X, s.Buffer.FirstEditableColumn(), s.Buffer.LastEditableColumn())
	}
	s.Caret.Pos = pos
}

// growTo extends a terminal buffer so row y exists, trimming the top
// into history once the scrollback cap is exceeded. Each trim shifts
// the content up one row, so the returned value is the row y maps to
// afterwards.
func (s *TextScreen) growTo(y int) int {
	l := s.layer()
	if l == nil {
		return y
	}
	for s.Buffer.Height() <= y {
		h := s.Buffer.Height() + 1
		s.Buffer.SetHeight(h)
		l.SetHeight(h)
		if s.Buffer.MaxScrollbackLines > 0 &&
			h-s.Buffer.Terminal.Height() > s.Buffer.MaxScrollbackLines {
			s.trimTopLine()
			y--
		}
	}
	s.Buffer.MarkDirty()
	return y
}

// trimTopLine drops buffer row 0, handing it to the history sink. A
// row that was never written still counts: it goes to history blank.
func (s *TextScreen) trimTopLine() {
	l := s.layer()
	if l == nil {
		return
	}
	var row []AttributedChar
	if len(l.Lines) > 0 {
		row = make([]AttributedChar, len(l.Lines[0].Chars))
		copy(row, l.Lines[0].Chars)
		l.Lines = l.Lines[1:]
	}
	if s.Buffer.History != nil {
		s.Buffer.History.AddHistoryLine(row)
	}
	h := s.Buffer.Height() - 1
	s.Buffer.SetHeight(h)
	l.SetHeight(h)
	if s.Caret.Pos.Y > 0 {
		s.Caret.Pos.Y--
	}
}

// PrintChar writes one cell at the caret and advances it, wrapping per
// DECAWM. Wide runes occupy two cells.
func (s *TextScreen) PrintChar(ch AttributedChar) {
	if s.layer() == nil {
		return
	}
	if s.Caret.InsertMode {
		s.InsertChar(1)
	}
	pos := s.Caret.Pos
	if !s.Buffer.Terminal.IsTerminalBuffer && pos.Y >= s.Buffer.Height() {
		h := pos.Y + 1
		s.Buffer.SetHeight(h)
		s.layer().SetHeight(h)
	}
	if s.Buffer.Terminal.IsTerminalBuffer {
		pos.Y = s.growTo(pos.Y)
	}

	s.SetChar(pos, ch)
	s.lastPrinted, s.hasPrinted = ch, true
	advance := runewidth.RuneWidth(ch.Ch)
	if advance < 1 {
		advance = 1
	}
	if advance == 2 {
		cont := ch
		cont.Ch = ' '
		s.SetChar(Position{X: pos.X + 1, Y: pos.Y}, cont)
	}
	pos.X += advance

	// Left/right margins bind only while the caret is inside them, so
	// status areas beyond the right margin stay reachable.
	lastCol := s.Buffer.Width() - 1
	if s.Buffer.FirstEditableLine() <= pos.Y && pos.Y <= s.Buffer.LastEditableLine() {
		lastCol = s.Buffer.LastEditableColumn()
	}
	if pos.X > lastCol {
		pos.X = lastCol
		if s.Buffer.Terminal.AutoWrap {
			s.Caret.Pos = pos
			s.LineFeed()
			return
		}
	}
	s.Caret.Pos = pos
}

// PrintRune writes a rune with the caret attribute.
func (s *TextScreen) PrintRune(r rune) {
	attr := s.Caret.Attr
	if s.Buffer.Terminal.InverseVideo {
		attr.Foreground, attr.Background = attr.Background, attr.Foreground
	}
	s.PrintChar(AttributedChar{Ch: r, Attr: attr})
}

// RepeatLastChar re-prints the last printed cell n times (REP).
func (s *TextScreen) RepeatLastChar(n int) {
	if !s.hasPrinted {
		return
	}
	for i := 0; i < n; i++ {
		s.PrintChar(s.lastPrinted)
	}
}

// LineFeed moves the caret down one row. Inside an active margin
// region at the bottom it scrolls the region; otherwise a terminal
// buffer grows downward.
func (s *TextScreen) LineFeed() {
	t := s.Buffer.Terminal
	pos := s.Caret.Pos
	inRegion := t.InScrollRegion(pos)
	pos.X = s.Buffer.FirstEditableColumn()
	pos.Y++

	if !t.IsTerminalBuffer {
		if pos.Y >= s.Buffer.Height() {
			s.Buffer.SetHeight(pos.Y + 1)
			if l := s.layer(); l != nil {
				l.SetHeight(pos.Y + 1)
			}
		}
		s.Caret.Pos = pos
		return
	}

	if t.TopBottom.Set && inRegion {
		for pos.Y > s.Buffer.LastEditableLine() {
			s.ScrollRegionUp()
			pos.Y--
		}
		s.Caret.Pos = pos
		return
	}

	pos.Y = s.growTo(pos.Y)
	pos.Y = clamp(pos.Y, 0, s.Buffer.Height()-1)
	s.Caret.Pos = pos
}

func (s *TextScreen) CarriageReturn() {
	wasInMargin := s.Buffer.Terminal.InMargin(s.Caret.Pos)
	s.Caret.Pos.X = 0
	s.limitCaret(wasInMargin)
}

// Backspace is non-destructive cursor-left.
func (s *TextScreen) Backspace() {
	minX := 0
	if s.Buffer.Terminal.InMargin(s.Caret.Pos) {
		minX = s.Buffer.FirstEditableColumn()
	}
	if s.Caret.Pos.X > minX {
		s.Caret.Pos.X--
	}
}

// FormFeed resets the terminal and clears the screen.
func (s *TextScreen) FormFeed() {
	s.ResetTerminal()
	s.ClearScreen()
}

// ResetTerminal restores power-on terminal and caret state.
func (s *TextScreen) ResetTerminal() {
	s.Buffer.ResetTerminal()
	s.Caret.Reset()
	s.savedSet = false
}

func (s *TextScreen) TabForward(n int) {
	for i := 0; i < n; i++ {
		s.Caret.Pos.X = s.Buffer.Terminal.NextTabStop(s.Caret.Pos.X)
	}
	s.Caret.Pos.X = clamp(s.Caret.Pos.X, 0, s.Buffer.Width()-1)
}

func (s *TextScreen) TabBackward(n int) {
	for i := 0; i < n; i++ {
		s.Caret.Pos.X = s.Buffer.Terminal.PrevTabStop(s.Caret.Pos.X)
	}
}

// Cursor movement, clamped per origin mode.

func (s *TextScreen) MoveUp(n int) {
	wasInMargin := s.Buffer.Terminal.InMargin(s.Caret.Pos)
	s.Caret.Pos.Y -= n
	s.limitCaret(wasInMargin)
}

func (s *TextScreen) MoveDown(n int) {
	wasInMargin := s.Buffer.Terminal.InMargin(s.Caret.Pos)
	s.Caret.Pos.Y += n
	s.limitCaret(wasInMargin)
}

func (s *TextScreen) MoveLeft(n int) {
	wasInMargin := s.Buffer.Terminal.InMargin(s.Caret.Pos)
	s.Caret.Pos.X -= n
	s.limitCaret(wasInMargin)
}

func (s *TextScreen) MoveRight(n int) {
	wasInMargin := s.Buffer.Terminal.InMargin(s.Caret.Pos)
	s.Caret.Pos.X += n
	s.limitCaret(wasInMargin)
}

// Index moves down one row, scrolling the region at its bottom edge.
func (s *TextScreen) Index() {
	t := s.Buffer.Terminal
	if t.TopBottom.Set && t.InScrollRegion(s.Caret.Pos) &&
		s.Caret.Pos.Y >= s.Buffer.LastEditableLine() {
		s.ScrollRegionUp()
		return
	}
	s.LineFeedKeepColumn()
}

// LineFeedKeepColumn is LF without the column reset (IND semantics).
func (s *TextScreen) LineFeedKeepColumn() {
	x := s.Caret.Pos.X
	s.LineFeed()
	s.Caret.Pos.X = x
}

// ReverseIndex moves up one row, scrolling the region down at its top
// edge.
func (s *TextScreen) ReverseIndex() {
	t := s.Buffer.Terminal
	top := s.Buffer.FirstEditableLine()
	if s.Caret.Pos.Y <= top && (t.TopBottom.Set || t.IsTerminalBuffer) {
		s.ScrollRegionDown()
		return
	}
	s.MoveUp(1)
}

// NextLine is CR+LF as a single command (NEL).
func (s *TextScreen) NextLine() {
	s.LineFeed()
	s.Caret.Pos.X = 0
}

// Erase operations. EraseMode values match parser.EraseMode.

func (s *TextScreen) blank() AttributedChar {
	return AttributedChar{Ch: ' ', Attr: s.Caret.Attr}
}

// EraseLine clears part of the caret row: 0 to end, 1 to start, 2 all.
func (s *TextScreen) EraseLine(mode int) {
	l := s.layer()
	if l == nil {
		return
	}
	pos := s.Caret.Pos
	if pos.Y < 0 || pos.Y >= len(l.Lines) {
		return
	}
	line := l.Lines[pos.Y]
	switch mode {
	case 1:
		for x := 0; x <= pos.X && x < len(line.Chars); x++ {
			line.Chars[x] = DefaultChar()
		}
	case 2:
		line.Chars = line.Chars[:0]
	default:
		if pos.X < len(line.Chars) {
			line.Chars = line.Chars[:pos.X]
		}
	}
	s.Buffer.MarkLineDirty(pos.Y)
}

// EraseDisplay clears part of the visible screen: 0 caret to end,
// 1 start to caret, 2 everything.
func (s *TextScreen) EraseDisplay(mode int) {
	switch mode {
	case 1:
		s.clearBufferUp()
	case 2:
		s.ClearScreen()
	default:
		s.clearBufferDown()
	}
}

func (s *TextScreen) clearBufferDown() {
	pos := s.Caret.Pos
	ch := s.blank()
	for y := pos.Y; y <= s.Buffer.LastVisibleLine(); y++ {
		for x := 0; x < s.Buffer.Width(); x++ {
			s.SetChar(Position{X: x, Y: y}, ch)
		}
	}
}

func (s *TextScreen) clearBufferUp() {
	pos := s.Caret.Pos
	ch := s.blank()
	for y := s.Buffer.FirstVisibleLine(); y < pos.Y; y++ {
		for x := 0; x < s.Buffer.Width(); x++ {
			s.SetChar(Position{X: x, Y: y}, ch)
		}
	}
	for x := 0; x <= pos.X; x++ {
		s.SetChar(Position{X: x, Y: pos.Y}, ch)
	}
}

// ClearScreen wipes the current layer and homes the caret. Terminal
// buffers snap back to the viewport size, dropping scrollback rows
// into history.
func (s *TextScreen) ClearScreen() {
	l := s.layer()
	if l == nil {
		return
	}
	if s.Buffer.Terminal.IsTerminalBuffer && s.Buffer.History != nil {
		for _, line := range l.Lines {
			if line.Length() > 0 {
				row := make([]AttributedChar, len(line.Chars))
				copy(row, line.Chars)
				s.Buffer.History.AddHistoryLine(row)
			}
		}
	}
	l.Clear()
	if s.Buffer.Terminal.IsTerminalBuffer {
		s.Buffer.SetSize(s.Buffer.Terminal.Size())
		l.SetHeight(s.Buffer.Terminal.Height())
	}
	s.Caret.Pos = s.UpperLeft()
	s.Buffer.MarkDirty()
}

// Selective erase honors the protected attribute.

func (s *TextScreen) SelectiveEraseLine(mode int) {
	pos := s.Caret.Pos
	from, to := pos.X, s.Buffer.Width()-1
	switch mode {
	case 1:
		from, to = 0, pos.X
	case 2:
		from, to = 0, s.Buffer.Width()-1
	}
	s.selectiveEraseRow(pos.Y, from, to)
}

func (s *TextScreen) SelectiveEraseDisplay(mode int) {
	first, last := s.Buffer.FirstVisibleLine(), s.Buffer.LastVisibleLine()
	pos := s.Caret.Pos
	switch mode {
	case 1:
		for y := first; y < pos.Y; y++ {
			s.selectiveEraseRow(y, 0, s.Buffer.Width()-1)
		}
		s.selectiveEraseRow(pos.Y, 0, pos.X)
	case 2:
		for y := first; y <= last; y++ {
			s.selectiveEraseRow(y, 0, s.Buffer.Width()-1)
		}
	default:
		s.selectiveEraseRow(pos.Y, pos.X, s.Buffer.Width()-1)
		for y := pos.Y + 1; y <= last; y++ {
			s.selectiveEraseRow(y, 0, s.Buffer.Width()-1)
		}
	}
}

func (s *TextScreen) selectiveEraseRow(y, from, to int) {
	for x := from; x <= to; x++ {
		p := Position{X: x, Y: y}
		if cell := s.CharAt(p); !cell.Attr.Protected {
			s.SetChar(p, s.blank())
		}
	}
}

// Rectangular operations take absolute buffer coordinates, inclusive.

func (s *TextScreen) FillRect(r Rectangle, ch AttributedChar) {
	for y := r.Start.Y; y < r.Bottom(); y++ {
		for x := r.Start.X; x < r.Right(); x++ {
			s.SetChar(Position{X: x, Y: y}, ch)
		}
	}
}

func (s *TextScreen) EraseRect(r Rectangle) {
	s.FillRect(r, s.blank())
}

func (s *TextScreen) SelectiveEraseRect(r Rectangle) {
	for y := r.Start.Y; y < r.Bottom(); y++ {
		s.selectiveEraseRow(y, r.Start.X, r.Right()-1)
	}
}

// Scrolling. The region is the editable area (margins if set, the
// whole viewport otherwise); content moves in place.

func (s *TextScreen) ScrollRegionUp() {
	l := s.layer()
	if l == nil {
		return
	}
	top, bottom := s.Buffer.FirstEditableLine(), s.Buffer.LastEditableLine()
	left, right := s.Buffer.FirstEditableColumn(), s.Buffer.LastEditableColumn()
	if !s.Buffer.Terminal.TopBottom.Set && s.Buffer.Terminal.IsTerminalBuffer && s.Buffer.History != nil {
		if top < len(l.Lines) && l.Lines[top].Length() > 0 {
			row := make([]AttributedChar, len(l.Lines[top].Chars))
			copy(row, l.Lines[top].Chars)
			s.Buffer.History.AddHistoryLine(row)
		}
	}
	for x := left; x <= right; x++ {
		for y := top; y < bottom; y++ {
			l.SetChar(Position{X: x, Y: y}, l.CharAt(Position{X: x, Y: y + 1}))
		}
		l.SetChar(Position{X: x, Y: bottom}, DefaultChar())
	}
	s.Buffer.MarkDirty()
}

func (s *TextScreen) ScrollRegionDown() {
	l := s.layer()
	if l == nil {
		return
	}
	top, bottom := s.Buffer.FirstEditableLine(), s.Buffer.LastEditableLine()
	left, right := s.Buffer.FirstEditableColumn(), s.Buffer.LastEditableColumn()
	for x := left; x <= right; x++ {
		for y := bottom; y > top; y-- {
			l.SetChar(Position{X: x, Y: y}, l.CharAt(Position{X: x, Y: y - 1}))
		}
		l.SetChar(Position{X: x, Y: top}, DefaultChar())
	}
	s.Buffer.MarkDirty()
}

func (s *TextScreen) ScrollLeft(n int) {
	l := s.layer()
	if l == nil {
		return
	}
	top, bottom := s.Buffer.FirstEditableLine(), s.Buffer.LastEditableLine()
	left, right := s.Buffer.FirstEditableColumn(), s.Buffer.LastEditableColumn()
	for i := 0; i < n; i++ {
		for y := top; y <= bottom; y++ {
			for x := left; x < right; x++ {
				l.SetChar(Position{X: x, Y: y}, l.CharAt(Position{X: x + 1, Y: y}))
			}
			l.SetChar(Position{X: right, Y: y}, DefaultChar())
		}
	}
	s.Buffer.MarkDirty()
}

func (s *TextScreen) ScrollRight(n int) {
	l := s.layer()
	if l == nil {
		return
	}
	top, bottom := s.Buffer.FirstEditableLine(), s.Buffer.LastEditableLine()
	left, right := s.Buffer.FirstEditableColumn(), s.Buffer.LastEditableColumn()
	for i := 0; i < n; i++ {
		for y := top; y <= bottom; y++ {
			for x := right; x > left; x-- {
				l.SetChar(Position{X: x, Y: y}, l.CharAt(Position{X: x - 1, Y: y}))
			}
			l.SetChar(Position{X: left, Y: y}, DefaultChar())
		}
	}
	s.Buffer.MarkDirty()
}

// InsertTerminalLine inserts blank rows at the caret, pushing rows
// toward the bottom margin (IL). Outside an active region on a canvas
// it inserts a plain row.
func (s *TextScreen) InsertTerminalLine(n int) {
	l := s.layer()
	if l == nil {
		return
	}
	line := s.Caret.Pos.Y
	top, bottom := s.Buffer.FirstEditableLine(), s.Buffer.LastEditableLine()
	if s.Buffer.Terminal.TopBottom.Set {
		if line < top || line > bottom {
			return
		}
		left, right := s.Buffer.FirstEditableColumn(), s.Buffer.LastEditableColumn()
		for i := 0; i < n; i++ {
			for x := left; x <= right; x++ {
				for y := bottom; y > line; y-- {
					l.SetChar(Position{X: x, Y: y}, l.CharAt(Position{X: x, Y: y - 1}))
				}
				l.SetChar(Position{X: x, Y: line}, DefaultChar())
			}
		}
	} else {
		for i := 0; i < n; i++ {
			l.InsertLine(line, &Line{})
		}
	}
	s.Buffer.MarkDirty()
}

// RemoveTerminalLine deletes rows at the caret, pulling rows up from
// the bottom margin (DL).
func (s *TextScreen) RemoveTerminalLine(n int) {
	l := s.layer()
	if l == nil {
		return
	}
	line := s.Caret.Pos.Y
	top, bottom := s.Buffer.FirstEditableLine(), s.Buffer.LastEditableLine()
	if s.Buffer.Terminal.TopBottom.Set {
		if line < top || line > bottom {
			return
		}
		left, right := s.Buffer.FirstEditableColumn(), s.Buffer.LastEditableColumn()
		for i := 0; i < n; i++ {
			for x := left; x <= right; x++ {
				for y := line; y < bottom; y++ {
					l.SetChar(Position{X: x, Y: y}, l.CharAt(Position{X: x, Y: y + 1}))
				}
				l.SetChar(Position{X: x, Y: bottom}, DefaultChar())
			}
		}
	} else {
		for i := 0; i < n; i++ {
			l.RemoveLine(line)
		}
	}
	s.Buffer.MarkDirty()
}

// InsertChar shifts the caret row right by n cells (ICH).
func (s *TextScreen) InsertChar(n int) {
	pos := s.Caret.Pos
	last := s.Buffer.LastEditableColumn()
	for i := 0; i < n; i++ {
		for x := last; x > pos.X; x-- {
			s.SetChar(Position{X: x, Y: pos.Y}, s.CharAt(Position{X: x - 1, Y: pos.Y}))
		}
		s.SetChar(pos, s.blank())
	}
}

// DeleteChar shifts the caret row left by n cells (DCH).
func (s *TextScreen) DeleteChar(n int) {
	pos := s.Caret.Pos
	last := s.Buffer.LastEditableColumn()
	for i := 0; i < n; i++ {
		for x := pos.X; x < last; x++ {
			s.SetChar(Position{X: x, Y: pos.Y}, s.CharAt(Position{X: x + 1, Y: pos.Y}))
		}
		s.SetChar(Position{X: last, Y: pos.Y}, s.blank())
	}
}

// EraseChar blanks n cells at the caret without shifting (ECH).
func (s *TextScreen) EraseChar(n int) {
	pos := s.Caret.Pos
	for i := 0; i < n; i++ {
		s.SetChar(Position{X: pos.X + i, Y: pos.Y}, s.blank())
	}
}

// SaveCaret / RestoreCaret implement DECSC/DECRC.

func (s *TextScreen) SaveCaret() {
	s.saved = SavedCaretState{
		Caret:               s.Caret,
		OriginWithinMargins: s.Buffer.Terminal.OriginWithinMargins,
		AutoWrap:            s.Buffer.Terminal.AutoWrap,
	}
	s.savedSet = true
}

func (s *TextScreen) RestoreCaret() {
	if !s.savedSet {
		s.Caret.Pos = s.UpperLeft()
		return
	}
	s.Caret = s.saved.Caret
	s.Buffer.Terminal.OriginWithinMargins = s.saved.OriginWithinMargins
	s.Buffer.Terminal.AutoWrap = s.saved.AutoWrap
}

// SetMargins activates margins from 0-based inclusive bounds and homes
// the caret, per DECSTBM.
func (s *TextScreen) SetTopBottomMargins(top, bottom int) {
	s.Buffer.Terminal.SetTopBottomMargins(top, bottom)
	s.Caret.Pos = s.UpperLeft()
}

func (s *TextScreen) SetLeftRightMargins(left, right int) {
	s.Buffer.Terminal.SetLeftRightMargins(left, right)
	s.Caret.Pos = s.UpperLeft()
}

// Resize changes the terminal viewport size.
func (s *TextScreen) Resize(size Size) {
	s.Buffer.Terminal.SetSize(size)
	if !s.Buffer.Terminal.IsTerminalBuffer || s.Buffer.Height() < size.Height {
		s.Buffer.SetSize(size)
	} else {
		s.Buffer.SetWidth(size.Width)
	}
	for _, l := range s.Buffer.Layers {
		l.SetWidth(size.Width)
		if l.Height() < size.Height {
			l.SetHeight(size.Height)
		}
	}
	s.Buffer.Terminal.ResetTabStops()
	s.limitCaret(false)
	s.Buffer.MarkDirty()
}
