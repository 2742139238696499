// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/igs.go
// Summary: Atari ST Interactive Graphics System parser.
// Notes: IGS command lines start with "G#". Between command lines the
//        stream behaves like an Atari VT52 terminal, including the
//        raw-byte color codes. Commands chain with ':' and a line can
//        be broken anywhere since '\n' is formatting inside a command.

package parser

import "strconv"

type igsState int

const (
	igsDefault igsState = iota
	igsGotG
	igsGotIgsStart
	igsReadParams
	igsReadTextString
	igsReadLoopTokens
	igsReadZoneString
	igsReadFillPattern
	igsEscape
	igsReadFgColor
	igsReadBgColor
	igsReadCursorLine
	igsReadCursorRow
	igsReadInsertLineCount
)

// IgsParser decodes the IGS dialect into generic terminal commands and
// IgsCommand values.
type IgsParser struct {
	state        igsState
	letter       byte
	current      int
	params       []int
	text         []byte
	skipNextLf   bool
	reverseVideo bool
	cursorLine   int

	// Loop token accumulation.
	loopTokens  []string
	loopBuf     []byte
	inChainGang bool
}

func NewIgsParser() *IgsParser {
	return &IgsParser{}
}

func (p *IgsParser) resetCommand() {
	p.letter = 0
	p.current = 0
	p.params = p.params[:0]
	p.text = p.text[:0]
	p.loopTokens = p.loopTokens[:0]
	p.loopBuf = p.loopBuf[:0]
	p.inChainGang = false
}

func (p *IgsParser) startCommand(letter byte) {
	p.resetCommand()
	p.letter = letter
	if letter == '&' {
		p.state = igsReadLoopTokens
	} else {
		p.state = igsReadParams
	}
}

func (p *IgsParser) pushParam() {
	p.params = append(p.params, p.current)
	p.current = 0
}

func (p *IgsParser) emitCommand(sink CommandSink) {
	cmd, ok := igsCommandFromLetter(p.letter, p.params, string(p.text))
	if !ok {
		sink.ReportError(invalidParameter("IGS "+string(p.letter),
			strconv.Itoa(len(p.params))+" parameters", "the command's full parameter list"), LevelWarning)
		return
	}
	sink.EmitIgs(cmd)
}

// stringStateAfterComma reports the string-reading state an X command
// enters once its numeric parameters are complete, or igsReadParams when
// more numbers are expected.
func (p *IgsParser) stringStateAfterComma() igsState {
	if p.letter == 'W' && len(p.params) == 2 {
		return igsReadTextString
	}
	if p.letter == 'X' && len(p.params) > 0 {
		switch {
		case p.params[0] == 4 && len(p.params) == 7:
			return igsReadZoneString
		case p.params[0] == 7 && len(p.params) == 2:
			return igsReadFillPattern
		}
	}
	return igsReadParams
}

func (p *IgsParser) Parse(input []byte, sink CommandSink) {
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
		case igsDefault:
			switch {
			case b == 'G':
				flush(i)
				p.state = igsGotG
			case b == 0x1B:
				flush(i)
				p.state = igsEscape
			case b == 0x0A:
				flush(i)
				if p.skipNextLf {
					p.skipNextLf = false
				} else {
					sink.Emit(cmd(OpLineFeed))
				}
			case b == 0x0D:
				flush(i)
				sink.Emit(cmd(OpCarriageReturn))
			case b == 0x08, b == 0x0B, b == 0x0C:
				flush(i)
				sink.Emit(cmd(OpBackspace))
			case b <= 0x0F:
				// TOS direct color codes, even below the printable range.
				flush(i)
				if p.reverseVideo {
					sink.Emit(bgCmd(b))
				} else {
					sink.Emit(fgCmd(b))
				}
			case b <= 0x1F:
				flush(i)
			default:
				if start < 0 {
					start = i
				}
			}
			if b != 0x0A {
				p.skipNextLf = false
			}

		case igsGotG:
			if b == '#' {
				p.state = igsGotIgsStart
				p.skipNextLf = true
			} else {
				// Plain text that happened to start with 'G'.
				sink.Print([]byte{'G'})
				p.state = igsDefault
				i--
			}

		case igsGotIgsStart:
			switch {
			case b == ' ' || b == '\r' || b == '_' || b == ':' || b == '>':
				// Formatting between chained commands.
			case b == '\n':
				p.state = igsDefault
			case igsLetter(b) || b == '&':
				p.startCommand(b)
			default:
				sink.ReportError(malformedSequence("unknown IGS command",
					string(b), "after G#"), LevelWarning)
				p.state = igsDefault
			}

		case igsReadParams:
			switch {
			case b >= '0' && b <= '9':
				p.current = p.current*10 + int(b-'0')
			case b == ',':
				p.pushParam()
				p.state = p.stringStateAfterComma()
			case b == ':':
				p.pushParam()
				p.emitCommand(sink)
				p.resetCommand()
				p.state = igsGotIgsStart
			case b == '@' && p.letter == 'W' && len(p.params) >= 2:
				p.emitCommand(sink)
				p.resetCommand()
				p.state = igsGotIgsStart
			case b == ' ' || b == '>' || b == '\r' || b == '\n' || b == '_':
				// Formatting, ignored inside a command.
			default:
				// An X command whose numeric part is complete treats any
				// other byte as the first character of its string payload.
				if next := p.stringStateAfterComma(); next != igsReadParams && p.letter == 'X' {
					p.state = next
					p.text = append(p.text, b)
					break
				}
				sink.ReportError(invalidParameter("IGS "+string(p.letter),
					string(b), "a digit or separator"), LevelWarning)
				p.resetCommand()
				p.state = igsDefault
			}

		case igsReadTextString:
			switch b {
			case '@':
				p.emitCommand(sink)
				p.resetCommand()
				p.state = igsGotIgsStart
			case '\n':
				p.emitCommand(sink)
				p.resetCommand()
				p.state = igsDefault
			default:
				p.text = append(p.text, b)
			}

		case igsReadZoneString, igsReadFillPattern:
			switch b {
			case ':':
				p.emitCommand(sink)
				p.resetCommand()
				p.state = igsGotIgsStart
			case '\n':
				p.emitCommand(sink)
				p.resetCommand()
				p.state = igsDefault
			default:
				p.text = append(p.text, b)
			}

		case igsReadLoopTokens:
			p.parseLoopByte(b, sink)

		case igsEscape:
			p.parseEscape(b, sink)

		case igsReadFgColor:
			p.emitVtColor(b, true, sink)
			p.state = igsDefault

		case igsReadBgColor:
			p.emitVtColor(b, false, sink)
			p.state = igsDefault

		case igsReadCursorLine:
			if b >= ' ' && b <= '8' {
				p.cursorLine = int(b-' ') + 1
				p.state = igsReadCursorRow
			} else {
				p.state = igsDefault
			}

		case igsReadCursorRow:
			if b >= ' ' && b <= 'p' {
				sink.Emit(cmdXY(OpCursorPosition, int(b-' ')+1, p.cursorLine))
			}
			p.state = igsDefault

		case igsReadInsertLineCount:
			if b > 0 {
				sink.Emit(cmdN(OpInsertLine, int(b)))
			}
			p.state = igsDefault
		}
	}
	flush(len(input))
}

func (p *IgsParser) emitVtColor(b byte, foreground bool, sink CommandSink) {
	var idx uint8
	switch {
	case b <= 0x0F:
		idx = b
	case b >= '0' && b <= '0'+15:
		idx = b - '0'
	default:
		return
	}
	if foreground != p.reverseVideo {
		sink.Emit(fgCmd(idx))
	} else {
		sink.Emit(bgCmd(idx))
	}
}

// parseEscape handles the VT52 escape codes that remain live between
// IGS command lines on the Atari ST.
func (p *IgsParser) parseEscape(b byte, sink CommandSink) {
	p.state = igsDefault
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
		p.state = igsReadCursorLine
	case '3', 'b':
		p.state = igsReadFgColor
	case '4', 'c':
		p.state = igsReadBgColor
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
		p.state = igsReadInsertLineCount
	case 'l':
		sink.Emit(cmdN(OpEraseLine, int(EraseAll)))
	case 'r':
		sink.EmitIgs(IgsCommand{Op: IgsRememberCursor, Args: []int{0}})
	case 'm':
		// ESC m takes IGS-style parameters terminated by ':'.
		p.startCommand('m')
	default:
		// Unknown escape, ignore.
	}
}
