// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/rip.go
// Summary: RIPscrip vector-graphics parser with ANSI passthrough.
// Notes: Commands start with !| and carry base-36 fixed-width parameters.
//        A trailing backslash continues a command across a line break.

package parser

import "strconv"

// RipOp identifies a RIPscrip command. The comment on each constant
// documents the Args layout where one applies.
type RipOp int

const (
	RipTextWindow RipOp = iota // x0 y0 x1 y1 wrap size
	RipViewPort                // x0 y0 x1 y1
	RipResetWindows
	RipEraseWindow
	RipEraseView
	RipGotoXY // x y
	RipHome
	RipEraseEOL
	RipColor      // c
	RipSetPalette // 16 palette slots
	RipOnePalette // color value
	RipWriteMode  // mode
	RipMove       // x y
	RipText       // Text valid
	RipTextXY     // x y; Text valid
	RipFontStyle  // font direction size res
	RipPixel      // x y
	RipLine       // x0 y0 x1 y1
	RipRectangle  // x0 y0 x1 y1
	RipBar        // x0 y0 x1 y1
	RipCircle     // xc yc radius
	RipOval       // x y startAngle endAngle xRad yRad
	RipFilledOval // x y xRad yRad
	RipArc        // x y startAngle endAngle radius
	RipOvalArc    // x y startAngle endAngle xRad yRad
	RipPieSlice   // x y startAngle endAngle radius
	RipOvalPieSlice
	RipBezier        // x1 y1 x2 y2 x3 y3 x4 y4 cnt
	RipPolygon       // x,y pairs
	RipFilledPolygon // x,y pairs
	RipPolyLine      // x,y pairs
	RipFill          // x y border
	RipLineStyle     // style userPattern thickness
	RipFillStyle     // pattern color
	RipFillPattern   // 8 row bytes, color
	RipTextVariable  // Text valid
	RipNoMore

	RipMouse // num x0 y0 x1 y1 clk clr res; Text valid
	RipMouseFields
	RipBeginText  // x0 y0 x1 y1 res
	RipRegionText // justify; Text valid
	RipEndText
	RipGetImage    // x0 y0 x1 y1 res
	RipPutImage    // x y mode res
	RipWriteIcon   // Ch and Text valid
	RipLoadIcon    // x y mode clipboard res; Text is the file name
	RipButtonStyle // wid hgt orient flags bevsize dfore dback bright dark surface grp flags2 uline corner res
	RipButton      // x0 y0 x1 y1 hotkey flags res; Text valid
	RipDefine      // flags res; Text valid
	RipQuery       // mode res; Text valid
	RipCopyRegion  // x0 y0 x1 y1 res destLine
	RipReadScene   // Text is the file name
	RipFileQuery   // Text is the file name

	RipEnterBlockMode // mode proto fileType res; Text is the file name
)

// RipCommand is one decoded RIPscrip command. Args holds the numeric
// parameters in wire order; see the RipOp constants for each layout.
type RipCommand struct {
	Op   RipOp
	Args []int
	Text string
	Ch   byte
}

type ripState int

const (
	ripGround ripState = iota
	ripGotExclaim
	ripGotPipe
	ripReadLevel1
	ripReadLevel9
	ripReadParams
	ripSkipToEOL
	ripGotEscape
	ripGotEscBracket
	ripReadAnsiNumber
)

// ripBuilder accumulates one command's parameters.
type ripBuilder struct {
	cmdChar    byte
	level      int
	paramState int
	npoints    int
	params     []int
	text       []byte
	charParam  byte
}

func (b *ripBuilder) reset() {
	b.cmdChar = 0
	b.level = 0
	b.paramState = 0
	b.npoints = 0
	b.params = b.params[:0]
	b.text = b.text[:0]
	b.charParam = 0
}

func (b *ripBuilder) setDigit(targetIdx, digit int) {
	for len(b.params) <= targetIdx {
		b.params = append(b.params, 0)
	}
	if b.paramState%2 == 0 {
		b.params[targetIdx] = digit
	} else {
		b.params[targetIdx] = b.params[targetIdx]*36 + digit
	}
	b.paramState++
}

// accumDigit folds a digit into params[targetIdx] without the two-digit
// reset, for parameters wider than two base-36 digits.
func (b *ripBuilder) accumDigit(targetIdx, digit int) {
	for len(b.params) <= targetIdx {
		b.params = append(b.params, 0)
	}
	b.params[targetIdx] = b.params[targetIdx]*36 + digit
	b.paramState++
}

// parseBase36Complete reads fixed-width two-digit pairs; it reports
// (done, ok) where done means paramState passed finalState.
func (b *ripBuilder) parseBase36Complete(ch byte, targetIdx, finalState int) (bool, bool) {
	digit, ok := ripBase36Digit(ch)
	if !ok {
		return false, false
	}
	b.setDigit(targetIdx, digit)
	return b.paramState > finalState, true
}

func ripBase36Digit(ch byte) (int, bool) {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0'), true
	case ch >= 'A' && ch <= 'Z':
		return int(ch-'A') + 10, true
	case ch >= 'a' && ch <= 'z':
		return int(ch-'a') + 10, true
	}
	return 0, false
}

// RipParser decodes RIPscrip, delegating non-RIP text to an embedded
// resumable AnsiParser.
type RipParser struct {
	ripMode    bool
	enabled    bool
	state      ripState
	skipReturn ripState
	ansiDigits []byte
	builder    ripBuilder
	ansi       AnsiParser
}

func NewRipParser() *RipParser {
	return &RipParser{enabled: true}
}

func (p *RipParser) Parse(input []byte, sink CommandSink) {
	for _, ch := range input {
		// Backslash continues the current command past a line break.
		if p.ripMode && ch == '\\' {
			switch p.state {
			case ripSkipToEOL, ripGround, ripGotEscape, ripGotEscBracket, ripReadAnsiNumber:
			default:
				p.skipReturn = p.state
				p.state = ripSkipToEOL
				continue
			}
		}

		switch p.state {
		case ripGround:
			switch {
			case ch == 0x1B:
				p.state = ripGotEscape
			case ch == '!' && (p.ripMode || p.enabled):
				p.ripMode = true
				p.state = ripGotExclaim
			default:
				p.ripMode = false
				p.ansi.Parse([]byte{ch}, sink)
			}

		case ripGotEscape:
			if ch == '[' {
				p.state = ripGotEscBracket
			} else {
				p.state = ripGround
				p.ansi.Parse([]byte{0x1B, ch}, sink)
			}

		case ripGotEscBracket:
			switch {
			case ch == '!':
				// ESC[! queries the RIPscrip terminal version.
				sink.Request(TerminalRequest{Kind: RequestRipTerminalID})
				p.state = ripGround
			case ch >= '0' && ch <= '9':
				p.ansiDigits = append(p.ansiDigits[:0], ch)
				p.state = ripReadAnsiNumber
			default:
				p.state = ripGround
				p.ansi.Parse([]byte{0x1B, '['}, sink)
				p.ansi.Parse([]byte{ch}, sink)
			}

		case ripReadAnsiNumber:
			switch {
			case ch == '!':
				n, err := strconv.Atoi(string(p.ansiDigits))
				switch {
				case err == nil && n == 0:
					sink.Request(TerminalRequest{Kind: RequestRipTerminalID})
				case err == nil && n == 1:
					p.enabled = false
				case err == nil && n == 2:
					p.enabled = true
				default:
					p.ansi.Parse([]byte{0x1B, '['}, sink)
					p.ansi.Parse(p.ansiDigits, sink)
					p.ansi.Parse([]byte{'!'}, sink)
				}
				p.state = ripGround
			case ch >= '0' && ch <= '9':
				p.ansiDigits = append(p.ansiDigits, ch)
			default:
				p.state = ripGround
				p.ansi.Parse([]byte{0x1B, '['}, sink)
				p.ansi.Parse(p.ansiDigits, sink)
				p.ansi.Parse([]byte{ch}, sink)
			}

		case ripGotExclaim:
			switch {
			case ch == '!':
				// Stay; a run of ! only arms one command.
			case ch == '|':
				p.state = ripGotPipe
			case ch == '\n' || ch == '\r':
				p.ripMode = false
				p.state = ripGround
				p.ansi.Parse([]byte{ch}, sink)
			default:
				p.ripMode = false
				p.state = ripGround
				p.ansi.Parse([]byte{'!'}, sink)
				p.ansi.Parse([]byte{ch}, sink)
			}

		case ripGotPipe:
			switch ch {
			case '1':
				p.builder.level = 1
				p.state = ripReadLevel1
			case '9':
				p.builder.level = 9
				p.state = ripReadLevel9
			case '#':
				p.builder.cmdChar = '#'
				p.builder.level = 0
				p.emitCommand(sink)
				p.builder.reset()
				p.ripMode = false
				p.state = ripGround
			default:
				p.builder.level = 0
				p.builder.cmdChar = ch
				p.state = ripReadParams
			}

		case ripReadLevel1, ripReadLevel9:
			p.builder.cmdChar = ch
			p.state = ripReadParams

		case ripReadParams:
			p.parseParams(ch, sink)

		case ripSkipToEOL:
			if ch == '\n' {
				p.state = p.skipReturn
			}
		}
	}
}

// parseParams consumes one parameter byte of the current command.
func (p *RipParser) parseParams(ch byte, sink CommandSink) {
	b := &p.builder

	if ch == '\r' {
		return
	}
	if ch == '\n' {
		p.emitCommand(sink)
		b.reset()
		p.state = ripGround
		return
	}
	if ch == '|' {
		p.emitCommand(sink)
		b.reset()
		p.state = ripGotPipe
		return
	}

	done, ok := p.parseParamByte(ch, sink)
	switch {
	case !ok:
		sink.ReportError(malformedSequence(
			"invalid RIPscrip parameter",
			string(rune(ch)),
			string(rune(b.cmdChar))), LevelWarning)
		b.reset()
		p.ripMode = false
		p.state = ripGround
	case done:
		p.emitCommand(sink)
		b.reset()
		p.state = ripGotExclaim
	}
}

func (p *RipParser) parseParamByte(ch byte, sink CommandSink) (done, ok bool) {
	b := &p.builder
	key := ripKey(b.level, b.cmdChar)

	switch key {
	// Commands with no parameters complete on their first trailing
	// byte, which is discarded.
	case ripKey(0, '*'), ripKey(0, 'e'), ripKey(0, 'E'), ripKey(0, 'H'),
		ripKey(0, '>'), ripKey(0, '#'), ripKey(1, 'K'), ripKey(1, 'E'):
		p.emitCommand(sink)
		b.reset()
		p.state = ripGotExclaim
		return false, true

	// Commands that consume the remainder as text.
	case ripKey(0, 'T'), ripKey(0, '$'), ripKey(1, 'R'), ripKey(1, 'F'):
		b.text = append(b.text, ch)
		return false, true

	case ripKey(0, '@'):
		if b.paramState < 4 {
			_, ok := b.parseBase36Complete(ch, b.paramState/2, 3)
			return false, ok
		}
		b.text = append(b.text, ch)
		return false, true

	case ripKey(1, 'U'):
		if b.paramState < 14 {
			_, ok := b.parseBase36Complete(ch, b.paramState/2, 13)
			return false, ok
		}
		b.text = append(b.text, ch)
		return false, true

	case ripKey(1, 'M'):
		if b.paramState > 16 {
			b.text = append(b.text, ch)
			return false, true
		}
		digit, ok := ripBase36Digit(ch)
		if !ok {
			return false, false
		}
		for len(b.params) < 8 {
			b.params = append(b.params, 0)
		}
		var idx int
		switch {
		case b.paramState <= 1:
			idx = 0 // num
		case b.paramState <= 9:
			idx = (b.paramState - 2) / 2 // x0 y0 x1 y1
			idx++
		case b.paramState == 10:
			idx = 5 // clk
		case b.paramState == 11:
			idx = 6 // clr
		default:
			idx = 7 // res, 5 digits
		}
		b.params[idx] = b.params[idx]*36 + digit
		b.paramState++
		return false, true

	case ripKey(1, 'W'):
		if b.paramState == 0 {
			b.charParam = ch
			b.paramState++
			return false, true
		}
		b.text = append(b.text, ch)
		return false, true

	case ripKey(1, 'I'):
		if b.paramState < 10 {
			_, ok := b.parseBase36Complete(ch, b.paramState/2, 9)
			return false, ok
		}
		b.text = append(b.text, ch)
		return false, true

	case ripKey(0, 'c'), ripKey(0, 'W'):
		return b.parseBase36Complete(ch, 0, 1)

	case ripKey(0, 'g'), ripKey(0, 'm'), ripKey(0, 'X'), ripKey(0, 'a'), ripKey(0, 'S'):
		return b.parseBase36Complete(ch, b.paramState/2, 3)

	case ripKey(0, 'C'), ripKey(0, 'F'):
		return b.parseBase36Complete(ch, b.paramState/2, 5)

	case ripKey(0, 'v'), ripKey(0, 'L'), ripKey(0, 'R'), ripKey(0, 'B'),
		ripKey(0, 'o'), ripKey(0, 'Y'):
		return b.parseBase36Complete(ch, b.paramState/2, 7)

	case ripKey(0, 'w'):
		if b.paramState < 8 {
			return b.parseBase36Complete(ch, b.paramState/2, 8)
		}
		digit, ok := ripBase36Digit(ch)
		if !ok {
			return false, false
		}
		b.params = append(b.params, digit)
		b.paramState++
		return b.paramState > 9, true

	case ripKey(0, 'A'), ripKey(0, 'I'):
		return b.parseBase36Complete(ch, b.paramState/2, 9)

	case ripKey(0, 'O'), ripKey(0, 'V'), ripKey(0, 'i'):
		return b.parseBase36Complete(ch, b.paramState/2, 11)

	case ripKey(0, 'Z'), ripKey(0, 's'):
		return b.parseBase36Complete(ch, b.paramState/2, 17)

	case ripKey(0, '='):
		digit, ok := ripBase36Digit(ch)
		if !ok {
			return false, false
		}
		switch {
		case b.paramState <= 1:
			b.accumDigit(0, digit) // style
		case b.paramState <= 5:
			b.accumDigit(1, digit) // user pattern, 4 digits
		default:
			b.accumDigit(2, digit) // thickness
		}
		return b.paramState > 7, true

	case ripKey(0, 'Q'):
		digit, ok := ripBase36Digit(ch)
		if !ok {
			return false, false
		}
		if b.paramState%2 == 0 {
			b.params = append(b.params, digit)
		} else {
			b.params[len(b.params)-1] = b.params[len(b.params)-1]*36 + digit
		}
		b.paramState++
		return b.paramState >= 32, true

	case ripKey(0, 'P'), ripKey(0, 'p'), ripKey(0, 'l'):
		digit, ok := ripBase36Digit(ch)
		if !ok {
			return false, false
		}
		if b.paramState < 2 {
			if b.paramState == 0 {
				b.npoints = digit
			} else {
				b.npoints = b.npoints*36 + digit
			}
			b.paramState++
			return false, true
		}
		if b.paramState%2 == 0 {
			b.params = append(b.params, digit)
		} else {
			b.params[len(b.params)-1] = b.params[len(b.params)-1]*36 + digit
		}
		b.paramState++
		return b.paramState >= 2+b.npoints*4, true

	case ripKey(1, 'T'), ripKey(1, 'C'), ripKey(1, 'P'):
		return b.parseBase36Complete(ch, b.paramState/2, 9)

	case ripKey(1, 't'):
		if b.paramState == 0 {
			digit, ok := ripBase36Digit(ch)
			if !ok {
				return false, false
			}
			b.params = append(b.params, digit)
			b.paramState++
			return false, true
		}
		b.text = append(b.text, ch)
		return false, true

	case ripKey(1, 'B'):
		digit, ok := ripBase36Digit(ch)
		if !ok {
			return false, false
		}
		state := b.paramState
		switch {
		case state <= 5:
			// wid, hgt, orient
			idx := state / 2
			for len(b.params) <= idx {
				b.params = append(b.params, 0)
			}
			if state%2 == 0 {
				b.params[idx] = digit
			} else {
				b.params[idx] = b.params[idx]*36 + digit
			}
			b.paramState++
		case state <= 9:
			// flags, 4 digits
			b.accumDigit(3, digit)
		case state <= 29:
			// bevsize..corner_col, two digits each
			idx := 4 + (state-10)/2
			for len(b.params) <= idx {
				b.params = append(b.params, 0)
			}
			if (state-10)%2 == 0 {
				b.params[idx] = digit
			} else {
				b.params[idx] = b.params[idx]*36 + digit
			}
			b.paramState++
		default:
			// res, 7 digits
			b.accumDigit(14, digit)
		}
		return b.paramState > 36, true

	case ripKey(1, 'G'):
		return b.parseBase36Complete(ch, b.paramState/2, 11)

	case ripKey(1, 'D'):
		switch {
		case b.paramState <= 2:
			digit, ok := ripBase36Digit(ch)
			if !ok {
				return false, false
			}
			b.accumDigit(0, digit) // flags, 3 digits
		case b.paramState <= 4:
			digit, ok := ripBase36Digit(ch)
			if !ok {
				return false, false
			}
			b.accumDigit(1, digit) // res
		default:
			b.text = append(b.text, ch)
		}
		return false, true

	case ripKey(1, 0x1B):
		if b.paramState <= 3 {
			if digit, ok := ripBase36Digit(ch); ok {
				for len(b.params) < 2 {
					b.params = append(b.params, 0)
				}
				if b.paramState == 0 {
					b.params[0] = digit
				} else {
					b.params[1] = b.params[1]*36 + digit
				}
				b.paramState++
				return false, true
			}
			// The first non-digit starts the text payload.
			b.text = append(b.text, ch)
			b.paramState = 4
			return false, true
		}
		b.text = append(b.text, ch)
		return false, true

	case ripKey(9, 0x1B):
		if b.paramState < 8 {
			if digit, ok := ripBase36Digit(ch); ok {
				var idx int
				switch {
				case b.paramState <= 1:
					idx = b.paramState // mode, proto
				case b.paramState <= 3:
					idx = 2 // file type
				default:
					idx = 3 // res
				}
				for len(b.params) <= idx {
					b.params = append(b.params, 0)
				}
				b.params[idx] = b.params[idx]*36 + digit
				b.paramState++
				return false, true
			}
			b.text = append(b.text, ch)
			b.paramState = 8
			return false, true
		}
		b.text = append(b.text, ch)
		return false, true
	}

	return false, false
}

func ripKey(level int, cmdChar byte) int { return level<<8 | int(cmdChar) }

// emitCommand validates the accumulated parameters and hands the
// finished command to the sink. Incomplete commands are dropped.
func (p *RipParser) emitCommand(sink CommandSink) {
	b := &p.builder

	op, minArgs, known := ripLookup(b.level, b.cmdChar)
	if !known || len(b.params) < minArgs {
		return
	}

	args := make([]int, len(b.params))
	copy(args, b.params)
	cmd := RipCommand{Op: op, Args: args, Text: string(b.text), Ch: b.charParam}

	if op == RipRegionText {
		// justify flag folds into Args[0]; zero when absent.
		if len(cmd.Args) == 0 {
			cmd.Args = []int{0}
		}
	}

	sink.EmitRip(cmd)
}

// ripLookup maps a (level, command char) pair to its op and the minimum
// parameter count required to emit it.
func ripLookup(level int, cmdChar byte) (RipOp, int, bool) {
	switch ripKey(level, cmdChar) {
	case ripKey(0, 'w'):
		return RipTextWindow, 5, true
	case ripKey(0, 'v'):
		return RipViewPort, 4, true
	case ripKey(0, '*'):
		return RipResetWindows, 0, true
	case ripKey(0, 'e'):
		return RipEraseWindow, 0, true
	case ripKey(0, 'E'):
		return RipEraseView, 0, true
	case ripKey(0, 'g'):
		return RipGotoXY, 2, true
	case ripKey(0, 'H'):
		return RipHome, 0, true
	case ripKey(0, '>'):
		return RipEraseEOL, 0, true
	case ripKey(0, 'c'):
		return RipColor, 1, true
	case ripKey(0, 'Q'):
		return RipSetPalette, 0, true
	case ripKey(0, 'a'):
		return RipOnePalette, 2, true
	case ripKey(0, 'W'):
		return RipWriteMode, 1, true
	case ripKey(0, 'm'):
		return RipMove, 2, true
	case ripKey(0, 'T'):
		return RipText, 0, true
	case ripKey(0, '@'):
		return RipTextXY, 2, true
	case ripKey(0, 'Y'):
		return RipFontStyle, 4, true
	case ripKey(0, 'X'):
		return RipPixel, 2, true
	case ripKey(0, 'L'):
		return RipLine, 4, true
	case ripKey(0, 'R'):
		return RipRectangle, 4, true
	case ripKey(0, 'B'):
		return RipBar, 4, true
	case ripKey(0, 'C'):
		return RipCircle, 3, true
	case ripKey(0, 'O'):
		return RipOval, 6, true
	case ripKey(0, 'o'):
		return RipFilledOval, 4, true
	case ripKey(0, 'A'):
		return RipArc, 5, true
	case ripKey(0, 'V'):
		return RipOvalArc, 6, true
	case ripKey(0, 'I'):
		return RipPieSlice, 5, true
	case ripKey(0, 'i'):
		return RipOvalPieSlice, 6, true
	case ripKey(0, 'Z'):
		return RipBezier, 9, true
	case ripKey(0, 'P'):
		return RipPolygon, 0, true
	case ripKey(0, 'p'):
		return RipFilledPolygon, 0, true
	case ripKey(0, 'l'):
		return RipPolyLine, 0, true
	case ripKey(0, 'F'):
		return RipFill, 3, true
	case ripKey(0, '='):
		return RipLineStyle, 3, true
	case ripKey(0, 'S'):
		return RipFillStyle, 2, true
	case ripKey(0, 's'):
		return RipFillPattern, 9, true
	case ripKey(0, '$'):
		return RipTextVariable, 0, true
	case ripKey(0, '#'):
		return RipNoMore, 0, true

	case ripKey(1, 'M'):
		return RipMouse, 8, true
	case ripKey(1, 'K'):
		return RipMouseFields, 0, true
	case ripKey(1, 'T'):
		return RipBeginText, 5, true
	case ripKey(1, 't'):
		return RipRegionText, 0, true
	case ripKey(1, 'E'):
		return RipEndText, 0, true
	case ripKey(1, 'C'):
		return RipGetImage, 5, true
	case ripKey(1, 'P'):
		return RipPutImage, 4, true
	case ripKey(1, 'W'):
		return RipWriteIcon, 0, true
	case ripKey(1, 'I'):
		return RipLoadIcon, 5, true
	case ripKey(1, 'B'):
		return RipButtonStyle, 15, true
	case ripKey(1, 'U'):
		return RipButton, 7, true
	case ripKey(1, 'D'):
		return RipDefine, 2, true
	case ripKey(1, 0x1B):
		return RipQuery, 2, true
	case ripKey(1, 'G'):
		return RipCopyRegion, 6, true
	case ripKey(1, 'R'):
		return RipReadScene, 0, true
	case ripKey(1, 'F'):
		return RipFileQuery, 0, true

	case ripKey(9, 0x1B):
		return RipEnterBlockMode, 4, true
	}
	return 0, 0, false
}
