// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/avatar.go
// Summary: Avatar (AVT/0) parser: ^V command codes, ^Y repeat runs.
// Notes: Non-Avatar bytes are delegated to an embedded ANSI parser, so
//        mixed AVT/ANSI art decodes the way BBS clients rendered it.

package parser

const (
	avtCmd = 0x16 // ^V command introducer
	avtClr = 0x0C // ^L clear screen
	avtRep = 0x19 // ^Y repeat character
)

type avatarState int

const (
	avatarGround avatarState = iota
	avatarReadCommand
	avatarReadColor
	avatarReadGotoRow
	avatarReadGotoCol
	avatarReadRepeatChar
	avatarReadRepeatCount
)

// AvatarParser decodes the Avatar command set. The repeat accumulator is
// independent of the command accumulator, matching the dialect.
type AvatarParser struct {
	state      avatarState
	gotoRow    int
	repeatChar byte
	ansi       AnsiParser
}

func NewAvatarParser() *AvatarParser {
	return &AvatarParser{}
}

func (p *AvatarParser) Parse(input []byte, sink CommandSink) {
	i := 0
	runStart := 0

	// Runs between Avatar control bytes flow through the embedded ANSI
	// parser; it is resumable, so run boundaries cannot desynchronize it.
	flush := func(end int) {
		if end > runStart {
			p.ansi.Parse(input[runStart:end], sink)
		}
	}

	for i < len(input) {
		b := input[i]

		switch p.state {
		case avatarGround:
			switch b {
			case avtClr:
				flush(i)
				sink.Emit(cmd(OpFormFeed))
				i++
				runStart = i
			case avtCmd:
				flush(i)
				p.state = avatarReadCommand
				i++
				runStart = i
			case avtRep:
				flush(i)
				p.state = avatarReadRepeatChar
				i++
				runStart = i
			default:
				i++
			}

		case avatarReadCommand:
			switch b {
			case 1:
				p.state = avatarReadColor
			case 2:
				// Blink on
				sink.Emit(attrCmd(AttrBlink))
				p.state = avatarGround
			case 3:
				sink.Emit(cmdN(OpCursorUp, 1))
				p.state = avatarGround
			case 4:
				sink.Emit(cmdN(OpCursorDown, 1))
				p.state = avatarGround
			case 5:
				sink.Emit(cmdN(OpCursorLeft, 1))
				p.state = avatarGround
			case 6:
				sink.Emit(cmdN(OpCursorRight, 1))
				p.state = avatarGround
			case 7:
				sink.Emit(cmdN(OpEraseLine, int(EraseToEnd)))
				p.state = avatarGround
			case 8:
				p.state = avatarReadGotoRow
			default:
				sink.ReportError(malformedSequence("unknown Avatar command", string(b), "avatar"), LevelWarning)
				p.state = avatarGround
			}
			i++
			runStart = i

		case avatarReadColor:
			emitDosColor(b, sink)
			p.state = avatarGround
			i++
			runStart = i

		case avatarReadGotoRow:
			p.gotoRow = int(b)
			p.state = avatarReadGotoCol
			i++
			runStart = i

		case avatarReadGotoCol:
			sink.Emit(cmdXY(OpCursorPosition, int(b), p.gotoRow))
			p.state = avatarGround
			i++
			runStart = i

		case avatarReadRepeatChar:
			p.repeatChar = b
			p.state = avatarReadRepeatCount
			i++
			runStart = i

		case avatarReadRepeatCount:
			if b > 0 {
				run := make([]byte, int(b))
				for j := range run {
					run[j] = p.repeatChar
				}
				sink.Print(run)
			}
			p.state = avatarGround
			i++
			runStart = i
		}
	}
	if p.state == avatarGround {
		flush(len(input))
	}
}

// emitDosColor expands a DOS attribute byte (fg 0-3, bright 3, bg 4-6,
// blink/ice 7) into foreground and background commands.
func emitDosColor(attr byte, sink CommandSink) {
	sink.Emit(fgCmd(attr & 0x0F))
	sink.Emit(bgCmd((attr >> 4) & 0x0F))
}
