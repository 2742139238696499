// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/viewdata.go
// Summary: Viewdata/Prestel (UK videotex) parser with serial attributes.
// Notes: Attributes are spacing: each ESC code occupies a cell and applies
//        from that cell to the end of the row. Rows reset attribute state.

package parser

// ViewDataOp identifies a Viewdata-specific screen operation.
type ViewDataOp int

const (
	// VdSetChar places Ch at the caret without advancing it.
	VdSetChar ViewDataOp = iota
	// VdMoveCaret moves one cell in Dir, wrapping at the 40x24 edges.
	VdMoveCaret
	// VdFillToEol re-applies the caret attribute from the caret to the
	// end of the current row.
	VdFillToEol
	// VdSetBgToFg copies the foreground color into the background.
	VdSetBgToFg
	// VdDoubleHeight toggles double-height rendering; Enabled valid.
	VdDoubleHeight
	// VdClearScreen resets the page, preserving caret visibility.
	VdClearScreen
)

// VdDirection is a caret step for VdMoveCaret.
type VdDirection int

const (
	VdUp VdDirection = iota
	VdDown
	VdLeft
	VdRight
)

// ViewDataCommand is a screen operation that has no generic ANSI
// equivalent. Everything expressible as a TerminalCommand goes through
// Emit instead.
type ViewDataCommand struct {
	Op      ViewDataOp
	Ch      byte
	Dir     VdDirection
	Enabled bool
}

// ViewdataParser decodes the Viewdata/Prestel videotex dialect.
// Display is 40x24; colors, blink, conceal and graphics mode are set
// by ESC codes that each occupy one screen cell.
type ViewdataParser struct {
	gotEsc bool

	// Hold graphics: re-print the last mosaic character in place of
	// control cells instead of a space.
	holdGraphics     bool
	heldGraphicsChar byte
	isContiguous     bool
	isInGraphicMode  bool
}

func NewViewdataParser() *ViewdataParser {
	p := &ViewdataParser{}
	p.resetScreen()
	return p
}

func (p *ViewdataParser) resetScreen() {
	p.gotEsc = false
	p.holdGraphics = false
	p.heldGraphicsChar = ' '
	p.isContiguous = true
	p.isInGraphicMode = false
}

// resetOnRowChange clears the serial attribute state when the caret
// lands on a new row.
func (p *ViewdataParser) resetOnRowChange(sink CommandSink) {
	p.resetScreen()
	sink.Emit(attrCmd(AttrReset))
}

func vdCmd(op ViewDataOp) ViewDataCommand { return ViewDataCommand{Op: op} }

func vdMove(dir VdDirection) ViewDataCommand {
	return ViewDataCommand{Op: VdMoveCaret, Dir: dir}
}

func (p *ViewdataParser) Parse(input []byte, sink CommandSink) {
	for _, b := range input {
		switch b {
		case 0x08:
			sink.EmitViewData(vdMove(VdLeft))
		case 0x09:
			if sink.EmitViewData(vdMove(VdRight)) {
				p.resetOnRowChange(sink)
			}
		case 0x0A:
			sink.EmitViewData(vdMove(VdDown))
			p.resetOnRowChange(sink)
		case 0x0B:
			sink.EmitViewData(vdMove(VdUp))
		case 0x0C:
			sink.EmitViewData(vdCmd(VdClearScreen))
			sink.Emit(attrCmd(AttrReset))
			p.resetScreen()
		case 0x0D:
			sink.Emit(cmd(OpCarriageReturn))
		case 0x11:
			sink.Emit(modeCmd(OpSetMode, ModeCaretVisible))
		case 0x14:
			sink.Emit(modeCmd(OpResetMode, ModeCaretVisible))
		case 0x0E, 0x0F, 0x1C, 0x1D:
			// Charset shifts (SO/SI/SS2/SS3) are not implemented and do
			// not disturb a pending ESC.
			continue
		case 0x1B:
			p.gotEsc = true
			continue
		case 0x1E:
			// Home.
			sink.Emit(cmdXY(OpCursorPosition, 1, 1))
		default:
			if b >= 0x20 {
				p.interpretChar(sink, b)
				continue
			}
			// Remaining C0 bytes (STX, ENQ, SO/SI shifts, CAN, SS2/SS3)
			// are ignored.
		}
		p.gotEsc = false
	}
}

// interpretChar handles one character cell: ESC attribute codes take
// effect around the cell they occupy, and mosaic graphics characters
// are remapped into the teletext block range.
func (p *ViewdataParser) interpretChar(sink CommandSink, ch byte) {
	if p.gotEsc {
		// Codes whose effect precedes the cell they occupy.
		switch ch {
		case '\\': // black background
			sink.Emit(attrCmd(AttrReveal))
			sink.Emit(bgCmd(0))
			sink.EmitViewData(vdCmd(VdFillToEol))
		case ']': // new background from current foreground
			sink.EmitViewData(vdCmd(VdSetBgToFg))
			sink.EmitViewData(vdCmd(VdFillToEol))
		case 'I': // steady
			sink.Emit(attrCmd(AttrNoBlink))
			sink.EmitViewData(vdCmd(VdFillToEol))
		case 'L': // normal height
			sink.EmitViewData(ViewDataCommand{Op: VdDoubleHeight})
			sink.EmitViewData(vdCmd(VdFillToEol))
		case 'X': // conceal display
			if !p.isInGraphicMode {
				sink.Emit(attrCmd(AttrConceal))
				sink.EmitViewData(vdCmd(VdFillToEol))
			}
		case 'Y':
			p.isContiguous = true
			p.isInGraphicMode = true
		case 'Z':
			p.isContiguous = false
		case '^': // hold graphics
			p.holdGraphics = true
			p.isInGraphicMode = true
		}
	}
	if !p.holdGraphics {
		p.heldGraphicsChar = ' '
	}

	printCh := ch
	if p.gotEsc || ch < 0x20 {
		printCh = ' '
		if p.holdGraphics {
			printCh = p.heldGraphicsChar
		}
	} else if p.isInGraphicMode {
		if (ch >= 0x20 && ch < 0x40) || (ch >= 0x60 && ch < 0x80) {
			if printCh < 0x40 {
				printCh -= 0x20
			} else {
				printCh -= 0x40
			}
			if p.isContiguous {
				printCh += 0x80
			} else {
				printCh += 0xC0
			}
		}
		p.heldGraphicsChar = printCh
	}
	sink.EmitViewData(ViewDataCommand{Op: VdSetChar, Ch: printCh})
	if sink.EmitViewData(vdMove(VdRight)) {
		p.resetOnRowChange(sink)
	}

	if p.gotEsc {
		// Codes whose effect follows the cell they occupy.
		switch {
		case ch >= 'A' && ch <= 'G':
			// Alpha red through white.
			p.isInGraphicMode = false
			sink.Emit(attrCmd(AttrReveal))
			p.heldGraphicsChar = ' '
			sink.Emit(fgCmd(1 + ch - 'A'))
			sink.EmitViewData(vdCmd(VdFillToEol))
		case ch >= 'Q' && ch <= 'W':
			// Mosaic red through white.
			if !p.isInGraphicMode {
				p.isInGraphicMode = true
				p.heldGraphicsChar = ' '
			}
			sink.Emit(attrCmd(AttrReveal))
			sink.Emit(fgCmd(1 + ch - 'Q'))
			sink.EmitViewData(vdCmd(VdFillToEol))
		case ch == 'H': // flash
			sink.Emit(attrCmd(AttrBlink))
			sink.EmitViewData(vdCmd(VdFillToEol))
		case ch == 'M': // double height
			sink.EmitViewData(ViewDataCommand{Op: VdDoubleHeight, Enabled: true})
			sink.EmitViewData(vdCmd(VdFillToEol))
		case ch == '_': // release graphics
			p.holdGraphics = false
		}
	}

	p.gotEsc = false
}
