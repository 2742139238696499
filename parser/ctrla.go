// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/ctrla.go
// Summary: Wildcat/Synchronet CTRL-A attribute code parser.
// Notes: High-intensity and high-background are parser-local toggles;
//        the N (normal) code resets both.

package parser

// ctrlaFg maps foreground letters onto DOS palette slots 0-7.
var ctrlaFg = map[byte]uint8{
	'K': 0, 'B': 1, 'G': 2, 'C': 3, 'R': 4, 'M': 5, 'Y': 6, 'W': 7,
}

// CtrlAParser decodes \x01-prefixed attribute codes.
type CtrlAParser struct {
	pending bool // saw \x01, waiting for the code byte
	isBold  bool
	highBg  bool
}

func NewCtrlAParser() *CtrlAParser { return &CtrlAParser{} }

func (p *CtrlAParser) Parse(input []byte, sink CommandSink) {
	start := -1
	flush := func(end int) {
		if start >= 0 {
			sink.Print(input[start:end])
			start = -1
		}
	}

	for i := 0; i < len(input); i++ {
		b := input[i]

		if p.pending {
			p.pending = false
			p.handleCode(b, sink)
			continue
		}

		switch b {
		case 0x01:
			flush(i)
			p.pending = true
		case 0x07, 0x08, 0x09, 0x0A, 0x0C, 0x0D:
			flush(i)
			c, _ := asciiControl(b)
			sink.Emit(c)
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(input))
}

func (p *CtrlAParser) handleCode(b byte, sink CommandSink) {
	if idx, ok := ctrlaFg[b]; ok {
		if p.isBold {
			idx += 8
		}
		sink.Emit(fgCmd(idx))
		return
	}
	if b >= '0' && b <= '7' {
		idx := b - '0'
		if p.highBg {
			idx += 8
		}
		sink.Emit(bgCmd(idx))
		return
	}

	switch b {
	case 'N':
		p.isBold = false
		p.highBg = false
		sink.Emit(attrCmd(AttrReset))
	case 'H':
		p.isBold = true
		sink.Emit(attrCmd(AttrBold))
	case 'E':
		p.highBg = true
	case 'I':
		sink.Emit(attrCmd(AttrBlink))
	case 'L':
		sink.Emit(cmd(OpFormFeed))
	case '\'':
		sink.Emit(cmdXY(OpCursorPosition, 1, 1))
	case 'J':
		sink.Emit(cmdN(OpEraseDisplay, int(EraseToEnd)))
	case '>':
		sink.Emit(cmdN(OpEraseLine, int(EraseToEnd)))
	case '<':
		sink.Emit(cmd(OpBackspace))
	case '[':
		sink.Emit(cmd(OpCarriageReturn))
	case ']':
		sink.Emit(cmd(OpLineFeed))
	case 'A', 0x01:
		// Literal control byte.
		sink.Print([]byte{0x01})
	case 'Z':
		// Premature EOF marker, nothing to emit.
	default:
		sink.ReportError(invalidParameter("CTRL-A", string(b), "attribute or cursor code"), LevelWarning)
	}
}
