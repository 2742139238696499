// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/pcboard.go
// Summary: PCBoard @X color code and @-macro parser.
// Notes: @X carries a DOS attribute as two hex nibbles, background
//        first. Unknown @ runs are flushed back out as literal text.

package parser

type pcboardState int

const (
	pcbGround pcboardState = iota
	pcbSawAt
	pcbReadBg
	pcbReadFg
	pcbReadMacro
)

// Macro names are short; anything longer is literal text that happened
// to contain an @.
const pcbMaxMacroLen = 16

// PcBoardParser decodes @X color pairs and the small @MACRO@ set PCBoard
// art relies on (@CLS@, @POS:n@).
type PcBoardParser struct {
	state pcboardState
	bg    uint8
	macro []byte
}

func NewPcBoardParser() *PcBoardParser { return &PcBoardParser{} }

func pcbHexNibble(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	}
	return 0, false
}

func (p *PcBoardParser) Parse(input []byte, sink CommandSink) {
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
		case pcbGround:
			switch b {
			case '@':
				flush(i)
				p.state = pcbSawAt
			case 0x07, 0x08, 0x09, 0x0A, 0x0C, 0x0D:
				flush(i)
				c, _ := asciiControl(b)
				sink.Emit(c)
			default:
				if start < 0 {
					start = i
				}
			}

		case pcbSawAt:
			switch {
			case b == 'X':
				p.state = pcbReadBg
			case b == '@':
				// @@ is a literal @.
				sink.Print([]byte{'@'})
				p.state = pcbGround
			case (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9'):
				p.macro = append(p.macro[:0], b)
				p.state = pcbReadMacro
			default:
				sink.Print([]byte{'@'})
				p.state = pcbGround
				i-- // reprocess in ground state
			}

		case pcbReadBg:
			if v, ok := pcbHexNibble(b); ok {
				p.bg = v
				p.state = pcbReadFg
			} else {
				sink.Print([]byte{'@', 'X'})
				p.state = pcbGround
				i--
			}

		case pcbReadFg:
			if v, ok := pcbHexNibble(b); ok {
				sink.Emit(fgCmd(v))
				sink.Emit(bgCmd(p.bg))
			} else {
				sink.ReportError(invalidParameter("@X", string(b), "hex color nibble"), LevelWarning)
				i--
			}
			p.state = pcbGround

		case pcbReadMacro:
			switch {
			case b == '@':
				p.emitMacro(sink)
				p.state = pcbGround
			case len(p.macro) >= pcbMaxMacroLen:
				sink.Print([]byte{'@'})
				sink.Print(p.macro)
				p.state = pcbGround
				i--
			case (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == ':':
				p.macro = append(p.macro, b)
			default:
				sink.Print([]byte{'@'})
				sink.Print(p.macro)
				p.state = pcbGround
				i--
			}
		}
	}
	if p.state == pcbGround {
		flush(len(input))
	}
}

func (p *PcBoardParser) emitMacro(sink CommandSink) {
	m := string(p.macro)
	switch {
	case m == "CLS":
		sink.Emit(cmd(OpFormFeed))
	case len(m) > 4 && m[:4] == "POS:":
		col := 0
		for j := 4; j < len(m); j++ {
			if m[j] < '0' || m[j] > '9' {
				sink.ReportError(invalidParameter("@POS", m[4:], "column number"), LevelWarning)
				return
			}
			col = col*10 + int(m[j]-'0')
		}
		sink.Emit(cmdN(OpCursorColumn, col))
	default:
		// Unknown macro, pass it through as text.
		sink.Print([]byte{'@'})
		sink.Print(p.macro)
		sink.Print([]byte{'@'})
	}
}
