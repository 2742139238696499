// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/buffer.go
// Summary: The multi-layer text buffer: palette, fonts, terminal state,
//          layers, metadata, and dirty tracking.

package screen

// Tag is an inline replaceable text marker (MCI-style code) anchored at
// a buffer position.
type Tag struct {
	Pos         Position
	Placeholder string
	Replacement string
	Visible     bool
}

// Metadata carries SAUCE-adjacent document info.
type Metadata struct {
	Title    string
	Author   string
	Group    string
	Comments []string
}

// HistorySink receives rows that scroll off a terminal buffer past the
// scrollback cap. Implementations must not block.
type HistorySink interface {
	AddHistoryLine(line []AttributedChar)
}

// TextBuffer is the document: an ordered stack of layers sharing one
// width, plus everything needed to interpret their attributes.
type TextBuffer struct {
	Palette  *Palette
	IceMode  IceMode
	Terminal *TerminalState
	Layers   []*Layer
	Meta     Metadata
	Tags     []Tag

	// MaxScrollbackLines caps buffer growth in terminal mode; rows
	// scrolled past the cap go to History when one is attached.
	MaxScrollbackLines int
	History            HistorySink

	fonts        map[uint8]BitFont
	size         Size
	originalSize Size

	version              uint64
	dirtyStart, dirtyEnd int
	dirty                bool
	fontCellSize         Size
}

// NewTextBuffer creates a single-layer buffer of the given size with
// the DOS palette and the default font in slot 0.
func NewTextBuffer(size Size) *TextBuffer {
	b := &TextBuffer{
		Palette:            DOSPalette(),
		IceMode:            IceUnlimited,
		Terminal:           NewTerminalState(size),
		Layers:             []*Layer{NewLayer("Background", size)},
		MaxScrollbackLines: 10000,
		fonts:              map[uint8]BitFont{0: DefaultFont()},
		size:               size,
		originalSize:       size,
		fontCellSize:       Size{Width: 8, Height: 16},
		dirtyStart:         -1,
		dirtyEnd:           -1,
	}
	return b
}

func (b *TextBuffer) Width() int  { return b.size.Width }
func (b *TextBuffer) Height() int { return b.size.Height }
func (b *TextBuffer) Size() Size  { return b.size }

func (b *TextBuffer) SetSize(size Size) { b.size = size }
func (b *TextBuffer) SetWidth(w int)    { b.size.Width = w }
func (b *TextBuffer) SetHeight(h int)   { b.size.Height = h }

func (b *TextBuffer) FontCellSize() Size { return b.fontCellSize }

// Font returns the font in a slot, and whether it exists.
func (b *TextBuffer) Font(slot uint8) (BitFont, bool) {
	f, ok := b.fonts[slot]
	return f, ok
}

func (b *TextBuffer) SetFont(slot uint8, f BitFont) { b.fonts[slot] = f }
func (b *TextBuffer) RemoveFont(slot uint8)         { delete(b.fonts, slot) }
func (b *TextBuffer) FontCount() int                { return len(b.fonts) }

// Version increments on every mutation; renderers use it for cache
// invalidation.
func (b *TextBuffer) Version() uint64 { return b.version }

// MarkDirty invalidates the whole buffer.
func (b *TextBuffer) MarkDirty() {
	b.dirty = true
	b.version++
	b.dirtyStart = 0
	b.dirtyEnd = b.size.Height
}

// MarkLineDirty extends the dirty range to include one row.
func (b *TextBuffer) MarkLineDirty(y int) {
	b.dirty = true
	b.version++
	if b.dirtyStart < 0 || y < b.dirtyStart {
		b.dirtyStart = y
	}
	if b.dirtyEnd < 0 || y+1 > b.dirtyEnd {
		b.dirtyEnd = y + 1
	}
}

// DirtyLines returns the dirty row range [start, end) and clears it.
// ok is false when nothing changed since the last call.
func (b *TextBuffer) DirtyLines() (start, end int, ok bool) {
	if !b.dirty || b.dirtyStart < 0 {
		return 0, 0, false
	}
	start, end = b.dirtyStart, b.dirtyEnd
	b.dirty = false
	b.dirtyStart, b.dirtyEnd = -1, -1
	return start, end, true
}

// FirstVisibleLine is the top of the viewport. Terminal buffers keep
// the viewport pinned to the bottom of the grown buffer.
func (b *TextBuffer) FirstVisibleLine() int {
	if b.Terminal.IsTerminalBuffer {
		if d := b.size.Height - b.Terminal.Height(); d > 0 {
			return d
		}
	}
	return 0
}

// LastVisibleLine is the row just past the viewport bottom.
func (b *TextBuffer) LastVisibleLine() int {
	return b.FirstVisibleLine() + b.Terminal.Height() - 1
}

// FirstEditableLine is the top of the scroll region in buffer rows.
func (b *TextBuffer) FirstEditableLine() int {
	if b.Terminal.IsTerminalBuffer && b.Terminal.TopBottom.Set {
		return b.FirstVisibleLine() + b.Terminal.TopBottom.Start
	}
	return b.FirstVisibleLine()
}

// LastEditableLine is the bottom of the scroll region in buffer rows.
func (b *TextBuffer) LastEditableLine() int {
	if b.Terminal.IsTerminalBuffer && b.Terminal.TopBottom.Set {
		return b.FirstVisibleLine() + b.Terminal.TopBottom.End
	}
	return b.FirstVisibleLine() + b.Terminal.Height() - 1
}

func (b *TextBuffer) FirstEditableColumn() int {
	if b.Terminal.IsTerminalBuffer && b.Terminal.LeftRight.Set {
		return b.Terminal.LeftRight.Start
	}
	return 0
}

func (b *TextBuffer) LastEditableColumn() int {
	if b.Terminal.IsTerminalBuffer && b.Terminal.LeftRight.Set {
		return b.Terminal.LeftRight.End
	}
	return b.size.Width - 1
}

// ResetTerminal restores power-on terminal state. Terminal buffers also
// shrink back to their original size.
func (b *TextBuffer) ResetTerminal() {
	if b.Terminal.IsTerminalBuffer {
		b.Terminal.Reset(b.originalSize)
		b.Terminal.IsTerminalBuffer = true
		b.size = b.originalSize
	} else {
		b.Terminal.Reset(b.size)
	}
	b.Terminal.ClearedScreen = true
	b.MarkDirty()
}
