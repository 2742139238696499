// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/ansi.go
// Summary: ANSI/VT100 escape sequence parser (CSI, ESC, OSC, DCS, APS).
// Usage: Feed byte chunks to Parse; the state machine survives any split.
// Notes: Bytes 0x80-0xFF are printable (CP437 art), never C1 controls.

package parser

import (
	"encoding/base64"
	"strconv"
)

type ansiState int

const (
	ansiGround ansiState = iota
	ansiEscape
	ansiCsiEntry
	ansiCsiParam
	ansiCsiDecPrivate // CSI ? ...
	ansiCsiAsterisk   // CSI ... *
	ansiCsiDollar     // CSI ... $
	ansiCsiSpace      // CSI ... SP
	ansiCsiGreater    // CSI > ...
	ansiCsiExclaim    // CSI ! ...
	ansiCsiEquals     // CSI = ...
	ansiCsiQuote      // CSI ... "
	ansiOscString
	ansiOscEscape
	ansiDcsString
	ansiDcsEscape
	ansiApsString
	ansiApsEscape
)

// AnsiParser decodes ANSI/VT100 sequences. The zero value is ready to use.
type AnsiParser struct {
	state  ansiState
	params []int
	buf    []byte
	macros map[int][]byte

	macroDepth int
}

func NewAnsiParser() *AnsiParser {
	return &AnsiParser{macros: make(map[int][]byte)}
}

func (p *AnsiParser) reset() {
	p.params = p.params[:0]
	p.state = ansiGround
}

// addDigit accumulates a digit into the current (last) parameter.
func (p *AnsiParser) addDigit(b byte) {
	d := int(b - '0')
	if len(p.params) == 0 {
		p.params = append(p.params, d)
		return
	}
	p.params[len(p.params)-1] = p.params[len(p.params)-1]*10 + d
}

// param returns the i-th parameter or def when absent.
func (p *AnsiParser) param(i, def int) int {
	if i < len(p.params) {
		return p.params[i]
	}
	return def
}

func (p *AnsiParser) Parse(input []byte, sink CommandSink) {
	i := 0
	printableStart := 0

	for i < len(input) {
		b := input[i]

		switch p.state {
		case ansiGround:
			switch b {
			case 0x1B:
				flushPrintable(input, printableStart, i, sink)
				p.state = ansiEscape
				i++
				printableStart = i
			case 0x07, 0x08, 0x09, 0x0A, 0x0C, 0x0D:
				flushPrintable(input, printableStart, i, sink)
				c, _ := asciiControl(b)
				sink.Emit(c)
				i++
				printableStart = i
			case 0x7F:
				flushPrintable(input, printableStart, i, sink)
				sink.Emit(cmdN(OpDeleteChar, 1))
				i++
				printableStart = i
			default:
				i++
			}

		case ansiEscape:
			switch b {
			case '[':
				p.params = p.params[:0]
				p.state = ansiCsiEntry
			case ']':
				p.buf = p.buf[:0]
				p.state = ansiOscString
			case 'P':
				p.buf = p.buf[:0]
				p.state = ansiDcsString
			case '_':
				p.buf = p.buf[:0]
				p.state = ansiApsString
			case 'D':
				sink.Emit(cmd(OpIndex))
				p.reset()
			case 'E':
				sink.Emit(cmd(OpNextLine))
				p.reset()
			case 'H':
				sink.Emit(cmd(OpTabSet))
				p.reset()
			case 'M':
				sink.Emit(cmd(OpReverseIndex))
				p.reset()
			case '7':
				sink.Emit(cmd(OpSaveCaret))
				p.reset()
			case '8':
				sink.Emit(cmd(OpRestoreCaret))
				p.reset()
			case 'c':
				sink.Emit(cmd(OpResetTerminal))
				p.reset()
			default:
				sink.ReportError(malformedSequence("unknown escape sequence", "ESC "+string(b), "ansi"), LevelWarning)
				p.reset()
			}
			i++
			printableStart = i

		case ansiCsiEntry:
			switch {
			case b >= '0' && b <= '9':
				p.params = append(p.params, int(b-'0'))
				p.state = ansiCsiParam
				i++
			case b == ';':
				p.params = append(p.params, 0)
				i++
			case b == '?':
				p.state = ansiCsiDecPrivate
				i++
			case b == '>':
				p.state = ansiCsiGreater
				i++
			case b == '!':
				p.state = ansiCsiExclaim
				i++
			case b == '=':
				p.state = ansiCsiEquals
				i++
			case b == '*':
				p.state = ansiCsiAsterisk
				i++
			case b == '$':
				p.state = ansiCsiDollar
				i++
			case b == '"':
				p.state = ansiCsiQuote
				i++
			case b == ' ':
				p.state = ansiCsiSpace
				i++
			case b >= '@' && b <= '~':
				p.handleCsiFinal(b, sink)
				p.reset()
				i++
				printableStart = i
			default:
				p.reset()
				i++
				printableStart = i
			}

		case ansiCsiParam:
			switch {
			case b >= '0' && b <= '9':
				p.addDigit(b)
				i++
			case b == ';':
				p.params = append(p.params, 0)
				i++
			case b == ' ':
				p.state = ansiCsiSpace
				i++
			case b == '*':
				p.state = ansiCsiAsterisk
				i++
			case b == '$':
				p.state = ansiCsiDollar
				i++
			case b == '"':
				p.state = ansiCsiQuote
				i++
			case b == '\'':
				// HPA variant final used by some BBS art
				p.handleCsiFinal(b, sink)
				p.reset()
				i++
				printableStart = i
			case b >= '@' && b <= '~':
				p.handleCsiFinal(b, sink)
				p.reset()
				i++
				printableStart = i
			default:
				p.reset()
				i++
				printableStart = i
			}

		case ansiCsiDecPrivate:
			switch {
			case b >= '0' && b <= '9':
				p.addDigit(b)
				i++
			case b == ';':
				p.params = append(p.params, 0)
				i++
			case b >= '@' && b <= '~':
				p.handleDecPrivateFinal(b, sink)
				p.reset()
				i++
				printableStart = i
			default:
				p.reset()
				i++
				printableStart = i
			}

		case ansiCsiAsterisk:
			switch {
			case b >= '0' && b <= '9':
				p.addDigit(b)
				i++
			case b == ';':
				p.params = append(p.params, 0)
				i++
			case b == 'z':
				// DECINVM - invoke macro
				id := p.param(0, 0)
				p.invokeMacro(id, sink)
				p.reset()
				i++
				printableStart = i
			case b == 'r':
				sink.Emit(cmdXY(OpSelectCommunicationSpeed, p.param(0, 0), p.param(1, 0)))
				p.reset()
				i++
				printableStart = i
			case b == 'y':
				// DECRQCRA - request checksum of rectangular area
				sink.Request(TerminalRequest{
					Kind: RequestRectChecksum,
					N:    p.param(0, 0),
					Page: p.param(1, 0),
					Rect: Rect{Top: p.param(2, 0), Left: p.param(3, 0), Bottom: p.param(4, 0), Right: p.param(5, 0)},
				})
				p.reset()
				i++
				printableStart = i
			default:
				sink.ReportError(malformedSequence("unsupported CSI * sequence", string(b), "ansi"), LevelWarning)
				p.reset()
				i++
				printableStart = i
			}

		case ansiCsiDollar:
			switch {
			case b >= '0' && b <= '9':
				p.addDigit(b)
				i++
			case b == ';':
				p.params = append(p.params, 0)
				i++
			case b == 'w':
				sink.Request(TerminalRequest{Kind: RequestTabStops, N: p.param(0, 0)})
				p.reset()
				i++
				printableStart = i
			case b == 'x':
				// DECFRA - fill rectangular area
				sink.Emit(TerminalCommand{
					Op: OpFillRect,
					N:  p.param(0, 0),
					Rect: Rect{Top: p.param(1, 1), Left: p.param(2, 1), Bottom: p.param(3, 1), Right: p.param(4, 1)},
				})
				p.reset()
				i++
				printableStart = i
			case b == 'z':
				// DECERA - erase rectangular area
				sink.Emit(TerminalCommand{
					Op:   OpEraseRect,
					Rect: Rect{Top: p.param(0, 1), Left: p.param(1, 1), Bottom: p.param(2, 1), Right: p.param(3, 1)},
				})
				p.reset()
				i++
				printableStart = i
			case b == '{':
				// DECSERA - selective erase rectangular area
				sink.Emit(TerminalCommand{
					Op:   OpSelectiveEraseRect,
					Rect: Rect{Top: p.param(0, 1), Left: p.param(1, 1), Bottom: p.param(2, 1), Right: p.param(3, 1)},
				})
				p.reset()
				i++
				printableStart = i
			default:
				sink.ReportError(malformedSequence("unsupported CSI $ sequence", string(b), "ansi"), LevelWarning)
				p.reset()
				i++
				printableStart = i
			}

		case ansiCsiSpace:
			switch {
			case b >= '0' && b <= '9':
				p.addDigit(b)
				i++
			case b == ';':
				p.params = append(p.params, 0)
				i++
			case b == 'q':
				// DECSCUSR
				sink.Emit(cmdN(OpCaretStyle, int(caretStyleFromParam(p.param(0, 1)))))
				p.reset()
				i++
				printableStart = i
			case b == 'D':
				// Font selection
				sink.Emit(TerminalCommand{Op: OpAttribute, Attr: AttrChange{Op: AttrFont}, X: p.param(0, 0), N: p.param(1, 0)})
				p.reset()
				i++
				printableStart = i
			case b == 'A':
				sink.Emit(cmdN(OpScrollRight, p.param(0, 1)))
				p.reset()
				i++
				printableStart = i
			case b == '@':
				sink.Emit(cmdN(OpScrollLeft, p.param(0, 1)))
				p.reset()
				i++
				printableStart = i
			case b == 'd':
				if p.param(0, 0) == 0 {
					sink.Emit(cmd(OpTabClear))
				} else {
					sink.Emit(cmd(OpTabClearAll))
				}
				p.reset()
				i++
				printableStart = i
			default:
				sink.ReportError(malformedSequence("unsupported CSI SP sequence", string(b), "ansi"), LevelWarning)
				p.reset()
				i++
				printableStart = i
			}

		case ansiCsiQuote:
			switch {
			case b >= '0' && b <= '9':
				p.addDigit(b)
				i++
			case b == ';':
				p.params = append(p.params, 0)
				i++
			case b == 'q':
				// DECSCA - protected attribute (1 = protect, 0/2 = unprotect)
				prot := 0
				if p.param(0, 0) == 1 {
					prot = 1
				}
				sink.Emit(cmdN(OpSetProtectedAttribute, prot))
				p.reset()
				i++
				printableStart = i
			default:
				sink.ReportError(malformedSequence("unsupported CSI \" sequence", string(b), "ansi"), LevelWarning)
				p.reset()
				i++
				printableStart = i
			}

		case ansiCsiGreater, ansiCsiExclaim, ansiCsiEquals:
			switch {
			case b >= '0' && b <= '9':
				p.addDigit(b)
				i++
			case b == ';':
				p.params = append(p.params, 0)
				i++
			case b == 'c' && p.state == ansiCsiGreater:
				sink.Request(TerminalRequest{Kind: RequestSecondaryDeviceAttributes})
				p.reset()
				i++
				printableStart = i
			case b == 'c' && p.state == ansiCsiEquals:
				sink.Request(TerminalRequest{Kind: RequestTertiaryDeviceAttributes})
				p.reset()
				i++
				printableStart = i
			default:
				sink.ReportError(malformedSequence("unsupported CSI prefix sequence", string(b), "ansi"), LevelWarning)
				p.reset()
				i++
				printableStart = i
			}

		case ansiOscString:
			switch b {
			case 0x07:
				sink.OperatingSystemCommand(string(p.buf))
				p.reset()
				i++
				printableStart = i
			case 0x1B:
				p.state = ansiOscEscape
				i++
			default:
				p.buf = append(p.buf, b)
				i++
			}

		case ansiOscEscape:
			if b == '\\' {
				sink.OperatingSystemCommand(string(p.buf))
				p.reset()
				i++
				printableStart = i
			} else {
				p.buf = append(p.buf, 0x1B, b)
				p.state = ansiOscString
				i++
			}

		case ansiDcsString:
			if b == 0x1B {
				p.state = ansiDcsEscape
			} else {
				p.buf = append(p.buf, b)
			}
			i++

		case ansiDcsEscape:
			if b == '\\' {
				p.parseDcs(sink)
				p.buf = p.buf[:0]
				p.reset()
				i++
				printableStart = i
			} else {
				p.buf = append(p.buf, 0x1B, b)
				p.state = ansiDcsString
				i++
			}

		case ansiApsString:
			if b == 0x1B {
				p.state = ansiApsEscape
			} else {
				p.buf = append(p.buf, b)
			}
			i++

		case ansiApsEscape:
			if b == '\\' {
				sink.Aps(p.buf)
				p.reset()
				i++
				printableStart = i
			} else {
				p.buf = append(p.buf, 0x1B, b)
				p.state = ansiApsString
				i++
			}
		}
	}

	if i > printableStart && p.state == ansiGround {
		sink.Print(input[printableStart:i])
	}
}

func caretStyleFromParam(n int) CaretStyle {
	switch n {
	case 0, 1:
		return CaretBlinkingBlock
	case 2:
		return CaretSteadyBlock
	case 3:
		return CaretBlinkingUnderline
	case 4:
		return CaretSteadyUnderline
	case 5:
		return CaretBlinkingBar
	case 6:
		return CaretSteadyBar
	}
	return CaretBlinkingBlock
}

func (p *AnsiParser) handleCsiFinal(final byte, sink CommandSink) {
	switch final {
	case 'A':
		sink.Emit(cmdN(OpCursorUp, p.param(0, 1)))
	case 'B':
		sink.Emit(cmdN(OpCursorDown, p.param(0, 1)))
	case 'C':
		sink.Emit(cmdN(OpCursorRight, p.param(0, 1)))
	case 'D':
		sink.Emit(cmdN(OpCursorLeft, p.param(0, 1)))
	case 'E':
		sink.Emit(cmdN(OpCursorNextLine, p.param(0, 1)))
	case 'F':
		sink.Emit(cmdN(OpCursorPrevLine, p.param(0, 1)))
	case 'G', '\'':
		sink.Emit(cmdN(OpCursorColumn, p.param(0, 1)))
	case 'H', 'f':
		sink.Emit(cmdXY(OpCursorPosition, p.param(1, 1), p.param(0, 1)))
	case 'j':
		sink.Emit(cmdN(OpCursorLeft, p.param(0, 1)))
	case 'k':
		sink.Emit(cmdN(OpCursorUp, p.param(0, 1)))
	case 'd':
		sink.Emit(cmdN(OpCursorRow, p.param(0, 1)))
	case 'e':
		sink.Emit(cmdN(OpCursorDown, p.param(0, 1)))
	case 'a':
		sink.Emit(cmdN(OpCursorRight, p.param(0, 1)))
	case 'J':
		n := p.param(0, 0)
		if n > 2 {
			sink.ReportError(invalidParameter("ED", strconv.Itoa(n), "0-2"), LevelWarning)
			n = 0
		}
		sink.Emit(cmdN(OpEraseDisplay, n))
	case 'K':
		n := p.param(0, 0)
		if n > 2 {
			sink.ReportError(invalidParameter("EL", strconv.Itoa(n), "0-2"), LevelWarning)
			n = 0
		}
		sink.Emit(cmdN(OpEraseLine, n))
	case 'S':
		sink.Emit(cmdN(OpScrollUp, p.param(0, 1)))
	case 'T':
		sink.Emit(cmdN(OpScrollDown, p.param(0, 1)))
	case 'm':
		if len(p.params) == 0 {
			parseSgr([]int{0}, sink)
		} else {
			parseSgr(p.params, sink)
		}
	case 'r':
		sink.Emit(cmdXY(OpSetTopBottomMargins, p.param(0, 1), p.param(1, 0)))
	case '@':
		sink.Emit(cmdN(OpInsertChar, p.param(0, 1)))
	case 'P':
		sink.Emit(cmdN(OpDeleteChar, p.param(0, 1)))
	case 'X':
		sink.Emit(cmdN(OpEraseChar, p.param(0, 1)))
	case 'L':
		sink.Emit(cmdN(OpInsertLine, p.param(0, 1)))
	case 'M':
		sink.Emit(cmdN(OpDeleteLine, p.param(0, 1)))
	case 'b':
		sink.Emit(cmdN(OpRepeatLastChar, p.param(0, 1)))
	case 's':
		if len(p.params) >= 2 {
			// DECSLRM when left/right margin mode parameters are present
			sink.Emit(cmdXY(OpSetLeftRightMargins, p.param(0, 1), p.param(1, 0)))
		} else {
			sink.Emit(cmd(OpSaveCaret))
		}
	case 'u':
		sink.Emit(cmd(OpRestoreCaret))
	case 'g':
		if p.param(0, 0) == 0 {
			sink.Emit(cmd(OpTabClear))
		} else {
			sink.Emit(cmd(OpTabClearAll))
		}
	case 'Y':
		sink.Emit(cmdN(OpForwardTab, p.param(0, 1)))
	case 'Z':
		sink.Emit(cmdN(OpBackwardTab, p.param(0, 1)))
	case 't':
		p.handleWindowOp(sink)
	case 'c':
		sink.Request(TerminalRequest{Kind: RequestDeviceAttributes})
	case 'n':
		switch p.param(0, 0) {
		case 5:
			sink.Request(TerminalRequest{Kind: RequestTerminalStatus})
		case 6:
			sink.Request(TerminalRequest{Kind: RequestCursorPosition})
		default:
			sink.ReportError(invalidParameter("DSR", strconv.Itoa(p.param(0, 0)), "5 or 6"), LevelWarning)
		}
	case 'h':
		for _, m := range p.paramsOrZero() {
			if m == 4 {
				sink.Emit(modeCmd(OpSetMode, ModeInsert))
			} else {
				sink.ReportError(invalidParameter("SM", strconv.Itoa(m), "4"), LevelWarning)
			}
		}
	case 'l':
		for _, m := range p.paramsOrZero() {
			if m == 4 {
				sink.Emit(modeCmd(OpResetMode, ModeInsert))
			} else {
				sink.ReportError(invalidParameter("RM", strconv.Itoa(m), "4"), LevelWarning)
			}
		}
	default:
		sink.ReportError(malformedSequence("unknown CSI final byte", string(final), "ansi"), LevelWarning)
	}
}

// handleWindowOp covers the XTWINOPS subset BBS servers use: resize and
// the CTerm 24-bit color extension.
func (p *AnsiParser) handleWindowOp(sink CommandSink) {
	switch len(p.params) {
	case 3:
		if p.param(0, 0) == 8 {
			h := clampInt(p.param(1, 1), 1, 60)
			w := clampInt(p.param(2, 1), 1, 132)
			sink.Emit(cmdXY(OpResize, w, h))
			return
		}
	case 4:
		c := Color{Kind: ColorRGB, R: uint8(p.param(1, 0)), G: uint8(p.param(2, 0)), B: uint8(p.param(3, 0))}
		switch p.param(0, 0) {
		case 0:
			sink.Emit(TerminalCommand{Op: OpAttribute, Attr: AttrChange{Op: AttrBackground, Color: c}})
			return
		case 1:
			sink.Emit(TerminalCommand{Op: OpAttribute, Attr: AttrChange{Op: AttrForeground, Color: c}})
			return
		}
	}
	sink.ReportError(malformedSequence("unknown window operation", "", "CSI t"), LevelWarning)
}

func (p *AnsiParser) handleDecPrivateFinal(final byte, sink CommandSink) {
	var op TerminalOp
	switch final {
	case 'h':
		op = OpSetMode
	case 'l':
		op = OpResetMode
	case 'J':
		// DECSED - selective erase in display
		n := p.param(0, 0)
		if n > 2 {
			n = 0
		}
		sink.Emit(cmdN(OpSelectiveEraseDisplay, n))
		return
	case 'K':
		n := p.param(0, 0)
		if n > 2 {
			n = 0
		}
		sink.Emit(cmdN(OpSelectiveEraseLine, n))
		return
	case 'n':
		if p.param(0, 0) == 6 {
			sink.Request(TerminalRequest{Kind: RequestExtendedCursorPosition})
		} else {
			sink.ReportError(invalidParameter("DECDSR", strconv.Itoa(p.param(0, 0)), "6"), LevelWarning)
		}
		return
	default:
		sink.ReportError(malformedSequence("unknown DEC private final byte", string(final), "ansi"), LevelWarning)
		return
	}

	for _, m := range p.paramsOrZero() {
		mode, ok := decPrivateMode(m)
		if !ok {
			sink.ReportError(invalidParameter("DECSET/DECRST", strconv.Itoa(m), "supported DEC private mode"), LevelWarning)
			continue
		}
		sink.Emit(modeCmd(op, mode))
	}
}

func decPrivateMode(n int) (TerminalMode, bool) {
	switch n {
	case 4:
		return ModeSmoothScroll, true
	case 6:
		return ModeOrigin, true
	case 7:
		return ModeAutoWrap, true
	case 25:
		return ModeCaretVisible, true
	case 33:
		return ModeIceColors, true
	case 69:
		return ModeLeftRightMargin, true
	}
	return 0, false
}

func (p *AnsiParser) paramsOrZero() []int {
	if len(p.params) == 0 {
		return []int{0}
	}
	return p.params
}

// parseDcs classifies a completed DCS payload: CTerm font loads, macro
// definitions (!z) and Sixel graphics (q).
func (p *AnsiParser) parseDcs(sink CommandSink) {
	const fontPrefix = "CTerm:Font:"
	if len(p.buf) > len(fontPrefix) && string(p.buf[:len(fontPrefix)]) == fontPrefix {
		p.parseCTermFont(sink)
		return
	}

	// Leading numeric parameters.
	p.params = p.params[:0]
	p.params = append(p.params, 0)
	i := 0
	for i < len(p.buf) {
		b := p.buf[i]
		if b >= '0' && b <= '9' {
			p.params[len(p.params)-1] = p.params[len(p.params)-1]*10 + int(b-'0')
		} else if b == ';' {
			p.params = append(p.params, 0)
		} else {
			break
		}
		i++
	}

	if i+2 < len(p.buf) && p.buf[i] == '!' && p.buf[i+1] == 'z' {
		p.defineMacro(i+2, sink)
		return
	}

	if i < len(p.buf) && p.buf[i] == 'q' {
		scale := sixelVerticalScale(p.param(0, 0), len(p.params) > 0)
		data := make([]byte, len(p.buf)-i-1)
		copy(data, p.buf[i+1:])
		task := StartSixelDecode(scale, data)
		sink.DeviceControl(DeviceControlString{Kind: DCSSixel, Sixel: task})
		return
	}

	sink.ReportError(malformedSequence("unknown DCS payload", "", "ansi"), LevelWarning)
}

func sixelVerticalScale(p0 int, hasParams bool) int {
	if !hasParams {
		return 2
	}
	switch p0 {
	case 0, 1, 5, 6:
		return 2
	case 2:
		return 5
	case 3, 4:
		return 3
	}
	return 1
}

func (p *AnsiParser) parseCTermFont(sink CommandSink) {
	rest := p.buf[len("CTerm:Font:"):]
	colon := -1
	for j, b := range rest {
		if b == ':' {
			colon = j
			break
		}
	}
	if colon > 0 {
		slot := 0
		valid := true
		for _, b := range rest[:colon] {
			if b < '0' || b > '9' {
				valid = false
				break
			}
			slot = slot*10 + int(b-'0')
		}
		if valid {
			decoded, err := base64.StdEncoding.DecodeString(string(rest[colon+1:]))
			if err == nil {
				sink.DeviceControl(DeviceControlString{Kind: DCSFontSelection, FontSlot: slot, FontData: decoded})
				return
			}
			sink.ReportError(malformedSequence("invalid base64 in DCS font data", "", "CTerm:Font"), LevelWarning)
			return
		}
	}
	sink.ReportError(malformedSequence("malformed CTerm font DCS", "", "CTerm:Font"), LevelWarning)
}

func (p *AnsiParser) defineMacro(start int, sink CommandSink) {
	pid := p.param(0, 0)
	pdt := p.param(1, 0)
	encoding := p.param(2, 0)

	if p.macros == nil {
		p.macros = make(map[int][]byte)
	}
	if pdt == 1 {
		p.macros = make(map[int][]byte)
	}

	switch encoding {
	case 0:
		body := make([]byte, len(p.buf)-start)
		copy(body, p.buf[start:])
		p.macros[pid] = body
		sink.DeviceControl(DeviceControlString{Kind: DCSMacroDefinition, MacroID: pid, MacroEncoding: MacroPlainText, MacroBody: body})
	case 1:
		body, ok := decodeHexMacro(p.buf[start:])
		if !ok {
			sink.ReportError(malformedSequence("invalid hex macro body", "", "DCS !z"), LevelWarning)
			return
		}
		p.macros[pid] = body
		sink.DeviceControl(DeviceControlString{Kind: DCSMacroDefinition, MacroID: pid, MacroEncoding: MacroHexCode, MacroBody: body})
	default:
		sink.ReportError(invalidParameter("DECDMAC", strconv.Itoa(encoding), "0 or 1"), LevelWarning)
	}
}

// decodeHexMacro expands a hex-encoded macro body with !{count};{data};
// run-length repeats.
func decodeHexMacro(data []byte) ([]byte, bool) {
	var result []byte
	i := 0
	repeatCount := 0
	inRepeat := false
	repeatStart := 0

	for i < len(data) {
		switch {
		case data[i] == '!':
			i++
			repeatCount = 0
			for i < len(data) && data[i] >= '0' && data[i] <= '9' {
				repeatCount = repeatCount*10 + int(data[i]-'0')
				i++
			}
			if i < len(data) && data[i] == ';' {
				i++
				inRepeat = true
				repeatStart = len(result)
			}
		case inRepeat && data[i] == ';':
			result = appendRepeats(result, repeatStart, repeatCount)
			inRepeat = false
			i++
		case i+1 < len(data):
			hi, ok1 := hexDigit(data[i])
			lo, ok2 := hexDigit(data[i+1])
			if !ok1 || !ok2 {
				return nil, false
			}
			result = append(result, hi<<4|lo)
			i += 2
		default:
			i++
		}
	}
	if inRepeat {
		result = appendRepeats(result, repeatStart, repeatCount)
	}
	return result, true
}

func appendRepeats(result []byte, start, count int) []byte {
	section := make([]byte, len(result)-start)
	copy(section, result[start:])
	for n := 1; n < count; n++ {
		result = append(result, section...)
	}
	return result
}

func hexDigit(b byte) (byte, bool) {
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

// maxMacroDepth bounds nested macro invocation; a macro whose body
// invokes itself would otherwise recurse without limit.
const maxMacroDepth = 8

func (p *AnsiParser) invokeMacro(id int, sink CommandSink) {
	body, ok := p.macros[id]
	if !ok {
		return
	}
	if p.macroDepth >= maxMacroDepth {
		sink.ReportError(malformedSequence("macro invocation nested too deeply",
			strconv.Itoa(id), "CSI *z"), LevelWarning)
		return
	}
	// The macro body is replayed through a fresh state so a macro cannot
	// leave this parser mid-sequence.
	saved := p.state
	p.state = ansiGround
	p.macroDepth++
	p.Parse(body, sink)
	p.macroDepth--
	p.state = saved
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
