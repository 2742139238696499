// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/atascii.go
// Summary: ATASCII (Atari 8-bit) control code parser.
// Notes: Bytes >= 0x80 other than the 0x9B-0x9F and 0xFD-0xFF controls
//        are inverse-video printables and pass through untouched.

package parser

// AtasciiParser decodes Atari 8-bit screen controls. ESC makes the next
// byte print literally, controls included.
type AtasciiParser struct {
	escaped bool
}

func NewAtasciiParser() *AtasciiParser { return &AtasciiParser{} }

func (p *AtasciiParser) Parse(input []byte, sink CommandSink) {
	start := -1
	flush := func(end int) {
		if start >= 0 {
			sink.Print(input[start:end])
			start = -1
		}
	}

	for i := 0; i < len(input); i++ {
		b := input[i]

		if p.escaped {
			flush(i)
			sink.Print(input[i : i+1])
			p.escaped = false
			continue
		}

		var c TerminalCommand
		handled := true
		switch b {
		case 0x1B:
			p.escaped = true
		case 0x1C:
			c = cmdN(OpCursorUp, 1)
		case 0x1D:
			c = cmdN(OpCursorDown, 1)
		case 0x1E:
			c = cmdN(OpCursorLeft, 1)
		case 0x1F:
			c = cmdN(OpCursorRight, 1)
		case 0x7D:
			c = cmdN(OpEraseDisplay, int(EraseAll))
		case 0x7E:
			c = cmd(OpBackspace)
		case 0x7F:
			c = cmd(OpTab)
		case 0x9B:
			c = cmd(OpLineFeed)
		case 0x9C:
			c = cmdN(OpDeleteLine, 1)
		case 0x9D:
			c = cmdN(OpInsertLine, 1)
		case 0x9E:
			c = cmd(OpTabClear)
		case 0x9F:
			c = cmd(OpTabSet)
		case 0xFD:
			c = cmd(OpBell)
		case 0xFE:
			c = cmdN(OpDeleteChar, 1)
		case 0xFF:
			// Insert: renders as a blank pushed in at the caret.
			flush(i)
			sink.Print([]byte{' '})
			continue
		default:
			handled = false
		}

		if handled {
			flush(i)
			if b != 0x1B {
				sink.Emit(c)
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(input))
}
