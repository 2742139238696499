// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/skypix.go
// Summary: SkyPix (Amiga BBS graphics) parser.
// Notes: Commands are ESC [ n ; params ! on a 640x200 screen; anything
//        that is not a command is printable text. A reduced CSI subset
//        (letter-terminated) is honored alongside the ! commands.

package parser

import "strconv"

// amigaColorOffsets maps ANSI SGR color order onto the SkyPix palette.
var amigaColorOffsets = [8]uint8{0, 3, 4, 6, 1, 7, 5, 2}

// SkypixOp identifies a SkyPix command by its wire number.
type SkypixOp int

const (
	SkypixComment       SkypixOp = 0  // Text valid
	SkypixSetPixel      SkypixOp = 1  // x y
	SkypixDrawLine      SkypixOp = 2  // x y, from the current pen position
	SkypixAreaFill      SkypixOp = 3  // mode x y
	SkypixRectangleFill SkypixOp = 4  // x1 y1 x2 y2
	SkypixEllipse       SkypixOp = 5  // x y a b
	SkypixGrabBrush     SkypixOp = 6  // x1 y1 width height
	SkypixUseBrush      SkypixOp = 7  // srcX srcY dstX dstY width height minterm mask
	SkypixMovePen       SkypixOp = 8  // x y
	SkypixPlaySample    SkypixOp = 9  // speed start end loops
	SkypixSetFont       SkypixOp = 10 // size; Text is the font name
	SkypixNewPalette    SkypixOp = 11 // 16 packed 12-bit RGB values
	SkypixResetPalette  SkypixOp = 12
	SkypixFilledEllipse SkypixOp = 13 // x y a b
	SkypixDelay         SkypixOp = 14 // jiffies (1/60 s)
	SkypixSetPenA       SkypixOp = 15 // color
	SkypixCrcTransfer   SkypixOp = 16 // mode width height; Text is the file name
	SkypixDisplayMode   SkypixOp = 17 // 1 = 8 colors, 2 = 16 colors
	SkypixSetPenB       SkypixOp = 18 // color
	SkypixMoveCursor    SkypixOp = 19 // x y in pixels
	SkypixEnd           SkypixOp = 20 // leave SkyPix mode (unofficial)
	SkypixController    SkypixOp = 21 // c x y
	SkypixDefineGadget  SkypixOp = 22 // num cmd x1 y1 x2 y2

	// SkypixResetFont is the size-zero special case of SkypixSetFont.
	SkypixResetFont SkypixOp = -1
)

// Fill modes for SkypixAreaFill.
const (
	SkypixFillOutline = 0 // fill bounded by the outline pen color
	SkypixFillColor   = 1 // replace the connected run of the start color
)

// SkypixCommand is one decoded SkyPix command. Args holds numeric
// parameters in wire order; see the SkypixOp constants for layouts.
type SkypixCommand struct {
	Op   SkypixOp
	Args []int
	Text string
}

type skypixState int

const (
	skypixGround skypixState = iota
	skypixGotEscape
	skypixGotBracket
	skypixReadingParams
	skypixReadingString
)

// SkypixParser decodes the SkyPix dialect. The CSI subset it accepts is
// deliberately smaller than the full ANSI parser's.
type SkypixParser struct {
	state skypixState

	params     []int
	current    int
	hasParam   bool
	isNegative bool
	cmdNum     int
	text       []byte
}

func NewSkypixParser() *SkypixParser {
	return &SkypixParser{}
}

func (p *SkypixParser) resetBuilder() {
	p.params = p.params[:0]
	p.current = 0
	p.hasParam = false
	p.isNegative = false
	p.cmdNum = 0
	p.text = p.text[:0]
}

func (p *SkypixParser) pushParam() {
	if !p.hasParam {
		return
	}
	v := p.current
	if p.isNegative {
		v = -v
	}
	p.params = append(p.params, v)
	p.current = 0
	p.hasParam = false
	p.isNegative = false
}

func (p *SkypixParser) Parse(input []byte, sink CommandSink) {
	start := 0

	for i := 0; i < len(input); i++ {
		ch := input[i]
		switch p.state {
		case skypixGround:
			switch ch {
			case 0x1B:
				flushPrintable(input, start, i, sink)
				p.state = skypixGotEscape
				p.resetBuilder()
				start = i + 1
			case 0x07:
				flushPrintable(input, start, i, sink)
				sink.Emit(cmd(OpBell))
				start = i + 1
			case 0x08:
				flushPrintable(input, start, i, sink)
				sink.Emit(cmd(OpBackspace))
				start = i + 1
			case 0x09:
				flushPrintable(input, start, i, sink)
				sink.Emit(cmd(OpTab))
				start = i + 1
			case 0x0A:
				flushPrintable(input, start, i, sink)
				sink.Emit(cmd(OpLineFeed))
				start = i + 1
			case 0x0B:
				// Vertical tab moves the cursor up in SkyPix.
				flushPrintable(input, start, i, sink)
				sink.Emit(cmdN(OpCursorUp, 1))
				start = i + 1
			case 0x0C:
				flushPrintable(input, start, i, sink)
				sink.Emit(cmd(OpFormFeed))
				start = i + 1
			case 0x0D:
				flushPrintable(input, start, i, sink)
				sink.Emit(cmd(OpCarriageReturn))
				start = i + 1
			case 0x7F:
				flushPrintable(input, start, i, sink)
				sink.Emit(cmdN(OpDeleteChar, 1))
				start = i + 1
			}

		case skypixGotEscape:
			if ch == '[' {
				p.state = skypixGotBracket
			} else {
				sink.Print([]byte{0x1B})
				p.state = skypixGround
				// Reprocess the byte as ground text/control.
				i--
			}
			start = i + 1

		case skypixGotBracket:
			switch {
			case ch >= '0' && ch <= '9':
				p.addDigit(int(ch - '0'))
				p.state = skypixReadingParams
			case ch == '-':
				p.isNegative = true
				p.state = skypixReadingParams
			case ch == '!':
				p.emitSkypixCommand(sink)
				p.state = skypixGround
				start = i + 1
			case isAsciiLetter(ch):
				p.emitAnsiSubset(ch, sink)
				p.state = skypixGround
				start = i + 1
			default:
				sink.ReportError(malformedSequence(
					"invalid character after CSI",
					"ESC["+printableByte(ch),
					"expected digit, '!', or letter"), LevelWarning)
				p.state = skypixGround
				start = i + 1
			}

		case skypixReadingParams:
			switch {
			case ch >= '0' && ch <= '9':
				p.addDigit(int(ch - '0'))
			case ch == '-':
				p.isNegative = true
			case ch == ';':
				p.pushParam()
			case ch == '!':
				p.pushParam()
				if len(p.params) == 0 {
					p.emitSkypixCommand(sink)
					p.state = skypixGround
					start = i + 1
					break
				}
				p.cmdNum = p.params[0]
				p.params = p.params[1:]
				if p.wantsString() {
					p.state = skypixReadingString
				} else {
					p.emitSkypixCommand(sink)
					p.state = skypixGround
					start = i + 1
				}
			case isAsciiLetter(ch):
				p.emitAnsiSubset(ch, sink)
				p.state = skypixGround
				start = i + 1
			default:
				sink.ReportError(malformedSequence(
					"invalid character in CSI parameters",
					"ESC[..."+printableByte(ch),
					"expected digit, ';', '!', or letter"), LevelWarning)
				p.state = skypixGround
				start = i + 1
			}

		case skypixReadingString:
			if ch == '!' {
				p.emitSkypixCommand(sink)
				p.state = skypixGround
				start = i + 1
			} else {
				p.text = append(p.text, ch)
			}
		}
	}

	if p.state == skypixGround {
		flushPrintable(input, start, len(input), sink)
	}
}

func (p *SkypixParser) addDigit(d int) {
	p.current = p.current*10 + d
	p.hasParam = true
}

// wantsString reports whether the current command reads a !-terminated
// string payload after its numeric parameters.
func (p *SkypixParser) wantsString() bool {
	switch SkypixOp(p.cmdNum) {
	case SkypixComment, SkypixCrcTransfer:
		return true
	case SkypixSetFont:
		// Size zero resets the font and carries no name.
		return len(p.params) == 0 || p.params[0] != 0
	}
	return false
}

func (p *SkypixParser) checkParams(sink CommandSink, name string, required int) bool {
	if len(p.params) >= required {
		return true
	}
	sink.ReportError(invalidParameter(name,
		strconv.Itoa(len(p.params))+" parameters",
		strconv.Itoa(required)+" parameters"), LevelWarning)
	return false
}

func (p *SkypixParser) emitSkypixCommand(sink CommandSink) {
	p.pushParam()

	op := SkypixOp(p.cmdNum)
	required := 0
	switch op {
	case SkypixComment, SkypixResetPalette, SkypixEnd, SkypixSetPenA, SkypixSetPenB:
	case SkypixSetPixel, SkypixDrawLine, SkypixMovePen, SkypixMoveCursor:
		required = 2
	case SkypixAreaFill, SkypixController, SkypixCrcTransfer:
		required = 3
	case SkypixRectangleFill, SkypixEllipse, SkypixGrabBrush,
		SkypixPlaySample, SkypixFilledEllipse:
		required = 4
	case SkypixUseBrush:
		required = 8
	case SkypixSetFont, SkypixDelay, SkypixDisplayMode:
		required = 1
	case SkypixNewPalette:
		required = 16
	case SkypixDefineGadget:
		required = 6
	default:
		if p.cmdNum > 0 {
			sink.ReportError(invalidParameter("SkypixCommand",
				"command "+strconv.Itoa(p.cmdNum),
				"valid command number"), LevelWarning)
		}
		return
	}
	if !p.checkParams(sink, skypixOpName(op), required) {
		return
	}

	switch op {
	case SkypixAreaFill:
		if p.params[0] != SkypixFillOutline && p.params[0] != SkypixFillColor {
			sink.ReportError(invalidParameter("AreaFill",
				strconv.Itoa(p.params[0]),
				"0 (outline) or 1 (color)"), LevelWarning)
			return
		}
	case SkypixCrcTransfer:
		switch p.params[0] {
		case 1, 2, 3, 20:
		default:
			sink.ReportError(invalidParameter("CrcTransfer",
				strconv.Itoa(p.params[0]),
				"1, 2, 3, or 20"), LevelWarning)
			return
		}
	case SkypixDisplayMode:
		if p.params[0] != 1 && p.params[0] != 2 {
			sink.ReportError(invalidParameter("SetDisplayMode",
				strconv.Itoa(p.params[0]),
				"1 (8 colors) or 2 (16 colors)"), LevelWarning)
			return
		}
	case SkypixSetFont:
		if p.params[0] == 0 {
			sink.EmitSkypix(SkypixCommand{Op: SkypixResetFont})
			return
		}
	case SkypixSetPenA:
		if len(p.params) == 0 {
			p.params = append(p.params, 2)
		}
	case SkypixSetPenB:
		if len(p.params) == 0 {
			p.params = append(p.params, 0)
		}
	}

	args := make([]int, len(p.params))
	copy(args, p.params)
	sink.EmitSkypix(SkypixCommand{Op: op, Args: args, Text: string(p.text)})
}

// emitAnsiSubset handles the letter-terminated ANSI commands SkyPix
// supports.
func (p *SkypixParser) emitAnsiSubset(terminator byte, sink CommandSink) {
	p.pushParam()

	first := func(def int) int {
		if len(p.params) > 0 {
			return p.params[0]
		}
		return def
	}
	count := func() int { return maxInt(1, first(1)) }

	switch terminator {
	case 'A':
		sink.Emit(cmdN(OpCursorUp, count()))
	case 'B':
		sink.Emit(cmdN(OpCursorDown, count()))
	case 'C':
		sink.Emit(cmdN(OpCursorRight, count()))
	case 'D':
		sink.Emit(cmdN(OpCursorLeft, count()))
	case 'E':
		sink.Emit(cmdN(OpCursorNextLine, count()))
	case 'F':
		sink.Emit(cmdN(OpCursorPrevLine, count()))
	case 'G':
		sink.Emit(cmdN(OpCursorColumn, count()))
	case 'H', 'f':
		row := maxInt(1, first(1))
		col := 1
		if len(p.params) > 1 {
			col = maxInt(1, p.params[1])
		}
		sink.Emit(cmdXY(OpCursorPosition, col, row))
	case 'J':
		p.emitErase(OpEraseDisplay, "EraseDisplay", sink)
	case 'K':
		p.emitErase(OpEraseLine, "EraseLine", sink)
	case 'L':
		sink.Emit(cmdN(OpInsertLine, count()))
	case 'M':
		sink.Emit(cmdN(OpDeleteLine, count()))
	case 'P':
		sink.Emit(cmdN(OpDeleteChar, count()))
	case 'S':
		sink.Emit(cmdN(OpScrollUp, count()))
	case 'T':
		sink.Emit(cmdN(OpScrollDown, count()))
	case '@':
		sink.Emit(cmdN(OpInsertChar, count()))
	case 'm':
		p.emitSgrSubset(sink)
	}
}

func (p *SkypixParser) emitErase(op TerminalOp, name string, sink CommandSink) {
	n := 0
	if len(p.params) > 0 {
		n = p.params[0]
	}
	switch n {
	case 0:
		sink.Emit(cmdN(op, int(EraseToEnd)))
	case 1:
		sink.Emit(cmdN(op, int(EraseToStart)))
	case 2:
		sink.Emit(cmdN(op, int(EraseAll)))
	default:
		sink.ReportError(invalidParameter(name, strconv.Itoa(n), "0, 1, or 2"), LevelWarning)
	}
}

// emitSgrSubset applies the restricted SGR set SkyPix honors, with the
// Amiga palette ordering for base colors.
func (p *SkypixParser) emitSgrSubset(sink CommandSink) {
	if len(p.params) == 0 {
		sink.Emit(attrCmd(AttrReset))
		return
	}
	for _, param := range p.params {
		switch {
		case param == 0:
			sink.Emit(attrCmd(AttrReset))
			sink.Emit(TerminalCommand{Op: OpAttribute, Attr: AttrChange{Op: AttrFont}})
		case param == 1:
			sink.Emit(attrCmd(AttrBold))
		case param == 3:
			sink.Emit(attrCmd(AttrItalic))
		case param == 5:
			sink.Emit(attrCmd(AttrBlink))
		case param == 7:
			sink.Emit(attrCmd(AttrInverse))
		case param >= 30 && param <= 37:
			sink.Emit(fgCmd(amigaColorOffsets[param-30]))
		case param >= 40 && param <= 47:
			sink.Emit(bgCmd(amigaColorOffsets[param-40]))
		default:
			sink.ReportError(invalidParameter("SGR",
				strconv.Itoa(param),
				"0, 1, 3, 5, 7, 30-37, or 40-47"), LevelWarning)
		}
	}
}

func skypixOpName(op SkypixOp) string {
	switch op {
	case SkypixSetPixel:
		return "SetPixel"
	case SkypixDrawLine:
		return "DrawLine"
	case SkypixAreaFill:
		return "AreaFill"
	case SkypixRectangleFill:
		return "RectangleFill"
	case SkypixEllipse:
		return "Ellipse"
	case SkypixGrabBrush:
		return "GrabBrush"
	case SkypixUseBrush:
		return "UseBrush"
	case SkypixMovePen:
		return "MovePen"
	case SkypixPlaySample:
		return "PlaySample"
	case SkypixSetFont:
		return "SetFont"
	case SkypixNewPalette:
		return "NewPalette"
	case SkypixFilledEllipse:
		return "FilledEllipse"
	case SkypixDelay:
		return "Delay"
	case SkypixCrcTransfer:
		return "CrcTransfer"
	case SkypixDisplayMode:
		return "SetDisplayMode"
	case SkypixMoveCursor:
		return "PositionCursor"
	case SkypixController:
		return "ControllerReturn"
	case SkypixDefineGadget:
		return "DefineGadget"
	}
	return "SkypixCommand"
}

func isAsciiLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func printableByte(ch byte) string {
	if ch > 0x20 && ch < 0x7F {
		return string(rune(ch))
	}
	return "?"
}
