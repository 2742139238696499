// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/vt52.go
// Summary: VT52 parser with Atari ST color and cursor extensions.

package parser

// Vt52Mode selects which flavor of the dialect the parser accepts.
type Vt52Mode int

const (
	// Vt52Mixed accepts both the classic '0'-based color codes and the
	// Atari ST raw-byte extension.
	Vt52Mixed Vt52Mode = iota
	Vt52Atari
	Vt52Standard
)

type vt52State int

const (
	vt52Default vt52State = iota
	vt52Escape
	vt52ReadFgColor
	vt52ReadBgColor
	vt52ReadCursorLine
	vt52ReadCursorRow
	vt52ReadInsertLineCount
)

// Vt52Parser decodes VT52 escape sequences into generic commands.
type Vt52Parser struct {
	mode         Vt52Mode
	state        vt52State
	cursorLine   int
	reverseVideo bool
}

func NewVt52Parser(mode Vt52Mode) *Vt52Parser {
	return &Vt52Parser{mode: mode}
}

func (p *Vt52Parser) color(b byte) (uint8, bool) {
	switch p.mode {
	case Vt52Atari:
		if b <= 0x0F {
			return b, true
		}
	case Vt52Standard:
		if b >= '0' && b <= '0'+15 {
			return b - '0', true
		}
	default:
		if b <= 0x0F {
			return b, true
		}
		if b >= '0' && b <= '0'+15 {
			return b - '0', true
		}
	}
	return 0, false
}

func (p *Vt52Parser) emitColor(b byte, foreground bool, sink CommandSink) {
	idx, ok := p.color(b)
	if !ok {
		return
	}
	// Reverse video swaps which plane a color lands on.
	if foreground != p.reverseVideo {
		sink.Emit(fgCmd(idx))
	} else {
		sink.Emit(bgCmd(idx))
	}
}

func (p *Vt52Parser) cursorLinePos(b byte) (int, bool) {
	if p.mode == Vt52Atari {
		if b <= 25 {
			return int(b) + 1, true
		}
		return 0, false
	}
	if b >= ' ' && b <= '8' {
		return int(b-' ') + 1, true
	}
	return 0, false
}

func (p *Vt52Parser) cursorRowPos(b byte) (int, bool) {
	if p.mode == Vt52Atari {
		if b <= 132 {
			return int(b) + 1, true
		}
		return 0, false
	}
	if b >= ' ' && b <= 'p' {
		return int(b-' ') + 1, true
	}
	return 0, false
}

func (p *Vt52Parser) Parse(input []byte, sink CommandSink) {
	start := -1
	flush := func(end int) {
		if start >= 0 {
			sink.Print(input[start:end])
			start = -1
		}
	}

	for i := 0; i < len(input); i++ {
		b := input[i]
		switch p.state {
		case vt52Default:
			switch {
			case b == 0x1B:
				flush(i)
				p.state = vt52Escape
			case b == 0x08, b == 0x0B, b == 0x0C:
				flush(i)
				sink.Emit(cmd(OpBackspace))
			case b == 0x0D:
				flush(i)
				sink.Emit(cmd(OpCarriageReturn))
			case b == 0x0A:
				flush(i)
				sink.Emit(cmd(OpLineFeed))
			case b <= 0x0F:
				// Atari ST direct foreground color codes.
				flush(i)
				if p.mode != Vt52Standard {
					if idx, ok := p.color(b); ok {
						if p.reverseVideo {
							sink.Emit(bgCmd(idx))
						} else {
							sink.Emit(fgCmd(idx))
						}
					}
				}
			case b <= 0x1F:
				flush(i)
			default:
				if start < 0 {
					start = i
				}
			}

		case vt52Escape:
			p.state = vt52Default
			switch b {
			case 'A':
				sink.Emit(cmdN(OpCursorUp, 1))
			case 'B':
				sink.Emit(cmdN(OpCursorDown, 1))
			case 'C':
				sink.Emit(cmdN(OpCursorRight, 1))
			case 'D':
				sink.Emit(cmdN(OpCursorLeft, 1))
			case 'E':
				sink.Emit(cmdN(OpEraseDisplay, int(EraseAll)))
				sink.Emit(cmdXY(OpCursorPosition, 1, 1))
			case 'H':
				sink.Emit(cmdXY(OpCursorPosition, 1, 1))
			case 'I':
				sink.Emit(cmd(OpReverseIndex))
			case 'J':
				sink.Emit(cmdN(OpEraseDisplay, int(EraseToEnd)))
			case 'K':
				sink.Emit(cmdN(OpEraseLine, int(EraseToEnd)))
			case 'Y':
				p.state = vt52ReadCursorLine
			case '3', 'b':
				p.state = vt52ReadFgColor
			case '4', 'c':
				p.state = vt52ReadBgColor
			case 'e':
				sink.Emit(modeCmd(OpSetMode, ModeCaretVisible))
			case 'f':
				sink.Emit(modeCmd(OpResetMode, ModeCaretVisible))
			case 'j':
				sink.Emit(cmd(OpSaveCaret))
			case 'k':
				sink.Emit(cmd(OpRestoreCaret))
			case 'L':
				sink.Emit(cmdN(OpInsertLine, 1))
			case 'M':
				sink.Emit(cmdN(OpDeleteLine, 1))
			case 'p':
				p.reverseVideo = true
			case 'q':
				p.reverseVideo = false
			case 'v':
				sink.Emit(modeCmd(OpSetMode, ModeAutoWrap))
			case 'w':
				sink.Emit(modeCmd(OpResetMode, ModeAutoWrap))
			case 'd':
				sink.Emit(cmdN(OpEraseDisplay, int(EraseToStart)))
			case 'o':
				sink.Emit(cmdN(OpEraseLine, int(EraseToStart)))
			case 'i':
				p.state = vt52ReadInsertLineCount
			case 'l':
				sink.Emit(cmdN(OpEraseLine, int(EraseAll)))
			default:
				// Unknown escape, ignore.
			}

		case vt52ReadFgColor:
			p.emitColor(b, true, sink)
			p.state = vt52Default

		case vt52ReadBgColor:
			p.emitColor(b, false, sink)
			p.state = vt52Default

		case vt52ReadCursorLine:
			if line, ok := p.cursorLinePos(b); ok {
				p.cursorLine = line
				p.state = vt52ReadCursorRow
			} else {
				p.state = vt52Default
			}

		case vt52ReadCursorRow:
			if row, ok := p.cursorRowPos(b); ok {
				sink.Emit(cmdXY(OpCursorPosition, row, p.cursorLine))
			}
			p.state = vt52Default

		case vt52ReadInsertLineCount:
			if b > 0 {
				sink.Emit(cmdN(OpInsertLine, int(b)))
			}
			p.state = vt52Default
		}
	}
	flush(len(input))
}
