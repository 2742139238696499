// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/igs_command.go
// Summary: IGS (Atari ST Interactive Graphics System) command set.
// Notes: Commands arrive as G#<letter>params: with comma separators.
//        Loop commands carry unevaluated parameters; see igs_loop.go.

package parser

// IgsOp identifies an IGS command. The comment on each constant gives
// the wire letter and the Args layout.
type IgsOp int

const (
	IgsBox               IgsOp = iota // B: x1 y1 x2 y2 rounded
	IgsLine                           // L: x1 y1 x2 y2
	IgsLineDrawTo                     // D: x y
	IgsCircle                         // O: x y radius
	IgsEllipse                        // Q: x y xRadius yRadius
	IgsArc                            // K: x y radius startAngle endAngle
	IgsEllipticalArc                  // J: x y xRadius yRadius startAngle endAngle
	IgsPolyLine                       // z: x,y pairs (count stripped)
	IgsPolyFill                       // f: x,y pairs (count stripped)
	IgsFloodFill                      // F: x y
	IgsPolymarkerPlot                 // P: x y
	IgsColorSet                       // C: pen color (pen 0-3 selects marker/line/fill/text)
	IgsAttributeForFills              // A: patternType patternIndex border
	IgsLineStyle                      // T: kind style value
	IgsSetPenColor                    // S: pen red green blue (components 0-7)
	IgsDrawingMode                    // M: mode (1 replace, 2 transparent, 3 xor, 4 reverse transparent)
	IgsHollowSet                      // H: enabled
	IgsWriteText                      // W: x y; Text valid
	IgsTextEffects                    // E: effects size rotation
	IgsBellsAndWhistles               // b: soundNumber (0-19)
	IgsAlterSoundEffect               // b 20: playFlag sndNum elementNum negativeFlag thousands hundreds
	IgsStopAllSound                   // b 21
	IgsRestoreSoundEffect             // b 22: sndNum
	IgsSetEffectLoops                 // b 23: count
	IgsGraphicScaling                 // g: mode (1 = 10000x10000 virtual screen)
	IgsGrabScreen                     // G: blitType mode params...
	IgsInitialize                     // I: mode
	IgsCursor                         // k: mode
	IgsChipMusic                      // n: effect voice volume pitch timing stopType
	IgsNoise                          // N: operation params...
	IgsRoundedRect                    // U: x1 y1 x2 y2 fill
	IgsPieSlice                       // V: x y radius startAngle endAngle
	IgsEllipticalPieSlice             // Y: x y xRadius yRadius startAngle endAngle
	IgsFilledRect                     // Z: x1 y1 x2 y2
	IgsInput                          // <: inputType params...
	IgsAskIG                          // ?: query
	IgsScreenClear                    // s: mode
	IgsSetResolution                  // R: resolution palette
	IgsPauseSeconds                   // t: seconds
	IgsVsyncPause                     // q: vsyncs
	IgsLoopOp                         // &: Loop valid

	// Extended commands, G#X>n,...
	IgsSprayPaint           // X0: x y width height density
	IgsSetColorRegister     // X1: register value
	IgsSetRandomRange       // X2: min max (small) or min min max (big)
	IgsRightMouseMacro      // X3: operation params...
	IgsDefineZone           // X4: zoneID x1 y1 x2 y2 length; Text valid
	IgsFlowControl          // X5: mode params...
	IgsLeftMouseButton      // X6: mode
	IgsLoadFillPattern      // X7: pattern; Text is the row data
	IgsRotateColorRegisters // X8: startReg endReg count delay
	IgsLoadMidiBuffer       // X9: operation params...
	IgsSetDrawtoBegin       // X10: x y
	IgsLoadBitblitMemory    // X11: operation params...
	IgsLoadColorPalette     // X12: bank c0 c1 c2 c3

	// VT52-adjacent commands that also have G# forms.
	IgsSetForeground  // c 1 / ESC b: color
	IgsSetBackground  // c 0 / ESC c: color
	IgsDeleteLine     // d / ESC d: count
	IgsInsertLine     // i / ESC i: mode count
	IgsClearLine      // l / ESC l: mode
	IgsCursorMotion   // m / ESC m: direction count
	IgsPositionCursor // p: column row
	IgsRememberCursor // r / ESC r: value
	IgsInverseVideo   // v: enabled
	IgsLineWrap       // w: enabled
)

// IgsCommand is one decoded IGS command. Args holds the numeric
// parameters in wire order; Loop is set for IgsLoopOp only.
type IgsCommand struct {
	Op   IgsOp
	Args []int
	Text string
	Loop *IgsLoop
}

// igsLetter reports whether ch introduces a parameterized IGS command.
func igsLetter(ch byte) bool {
	switch ch {
	case 'A', 'b', 'B', 'C', 'c', 'D', 'd', 'E', 'F', 'f', 'G', 'g', 'H',
		'I', 'i', 'J', 'K', 'k', 'L', 'l', 'M', 'm', 'N', 'n', 'O', 'P',
		'p', 'Q', 'q', 'R', 'r', 'S', 's', 'T', 't', 'U', 'V', 'v', 'W',
		'w', 'X', 'Y', 'Z', 'z', '<', '?':
		return true
	}
	return false
}

// igsCommandFromLetter assembles a command from its accumulated numeric
// parameters and optional text. It reports false when the parameters do
// not form a valid command.
func igsCommandFromLetter(letter byte, args []int, text string) (IgsCommand, bool) {
	fixed := func(op IgsOp, n int) (IgsCommand, bool) {
		if len(args) < n {
			return IgsCommand{}, false
		}
		return IgsCommand{Op: op, Args: copyInts(args[:n])}, true
	}
	variadic := func(op IgsOp, min int) (IgsCommand, bool) {
		if len(args) < min {
			return IgsCommand{}, false
		}
		return IgsCommand{Op: op, Args: copyInts(args)}, true
	}
	points := func(op IgsOp) (IgsCommand, bool) {
		if len(args) < 1 {
			return IgsCommand{}, false
		}
		n := args[0]
		if n < 1 || len(args) < 1+2*n {
			return IgsCommand{}, false
		}
		return IgsCommand{Op: op, Args: copyInts(args[1 : 1+2*n])}, true
	}

	switch letter {
	case 'A':
		return fixed(IgsAttributeForFills, 3)
	case 'B':
		return fixed(IgsBox, 5)
	case 'b':
		if len(args) == 0 {
			return IgsCommand{}, false
		}
		switch args[0] {
		case 20:
			if len(args) < 7 {
				return IgsCommand{}, false
			}
			return IgsCommand{Op: IgsAlterSoundEffect, Args: copyInts(args[1:7])}, true
		case 21:
			return IgsCommand{Op: IgsStopAllSound}, true
		case 22:
			if len(args) < 2 {
				return IgsCommand{}, false
			}
			return IgsCommand{Op: IgsRestoreSoundEffect, Args: copyInts(args[1:2])}, true
		case 23:
			if len(args) < 2 {
				return IgsCommand{}, false
			}
			return IgsCommand{Op: IgsSetEffectLoops, Args: copyInts(args[1:2])}, true
		}
		return fixed(IgsBellsAndWhistles, 1)
	case 'C':
		return fixed(IgsColorSet, 2)
	case 'c':
		// G#c>1,color: sets foreground, G#c>0,color: background.
		if len(args) < 2 {
			return IgsCommand{}, false
		}
		op := IgsSetBackground
		if args[0] != 0 {
			op = IgsSetForeground
		}
		return IgsCommand{Op: op, Args: []int{args[1]}}, true
	case 'D':
		return fixed(IgsLineDrawTo, 2)
	case 'd':
		return fixed(IgsDeleteLine, 1)
	case 'E':
		return fixed(IgsTextEffects, 3)
	case 'F':
		return fixed(IgsFloodFill, 2)
	case 'f':
		return points(IgsPolyFill)
	case 'G':
		return variadic(IgsGrabScreen, 2)
	case 'g':
		return fixed(IgsGraphicScaling, 1)
	case 'H':
		return fixed(IgsHollowSet, 1)
	case 'I':
		return fixed(IgsInitialize, 1)
	case 'i':
		return fixed(IgsInsertLine, 2)
	case 'J':
		return fixed(IgsEllipticalArc, 6)
	case 'K':
		return fixed(IgsArc, 5)
	case 'k':
		return fixed(IgsCursor, 1)
	case 'L':
		return fixed(IgsLine, 4)
	case 'l':
		return fixed(IgsClearLine, 1)
	case 'M':
		return fixed(IgsDrawingMode, 1)
	case 'm':
		return fixed(IgsCursorMotion, 2)
	case 'N':
		return variadic(IgsNoise, 1)
	case 'n':
		return fixed(IgsChipMusic, 6)
	case 'O':
		return fixed(IgsCircle, 3)
	case 'P':
		return fixed(IgsPolymarkerPlot, 2)
	case 'p':
		return fixed(IgsPositionCursor, 2)
	case 'Q':
		return fixed(IgsEllipse, 4)
	case 'q':
		return fixed(IgsVsyncPause, 1)
	case 'R':
		return fixed(IgsSetResolution, 2)
	case 'r':
		return fixed(IgsRememberCursor, 1)
	case 'S':
		return fixed(IgsSetPenColor, 4)
	case 's':
		return fixed(IgsScreenClear, 1)
	case 'T':
		return fixed(IgsLineStyle, 3)
	case 't':
		return fixed(IgsPauseSeconds, 1)
	case 'U':
		return fixed(IgsRoundedRect, 5)
	case 'V':
		return fixed(IgsPieSlice, 5)
	case 'v':
		return fixed(IgsInverseVideo, 1)
	case 'W':
		if len(args) < 2 {
			return IgsCommand{}, false
		}
		return IgsCommand{Op: IgsWriteText, Args: copyInts(args[:2]), Text: text}, true
	case 'w':
		return fixed(IgsLineWrap, 1)
	case 'X':
		return igsExtendedCommand(args, text)
	case 'Y':
		return fixed(IgsEllipticalPieSlice, 6)
	case 'Z':
		return fixed(IgsFilledRect, 4)
	case 'z':
		return points(IgsPolyLine)
	case '<':
		return variadic(IgsInput, 1)
	case '?':
		return fixed(IgsAskIG, 1)
	}
	return IgsCommand{}, false
}

// igsExtendedCommand dispatches G#X by its first numeric parameter.
func igsExtendedCommand(args []int, text string) (IgsCommand, bool) {
	if len(args) == 0 {
		return IgsCommand{}, false
	}
	sub, rest := args[0], args[1:]
	fixed := func(op IgsOp, n int) (IgsCommand, bool) {
		if len(rest) < n {
			return IgsCommand{}, false
		}
		return IgsCommand{Op: op, Args: copyInts(rest[:n])}, true
	}
	variadic := func(op IgsOp, min int) (IgsCommand, bool) {
		if len(rest) < min {
			return IgsCommand{}, false
		}
		return IgsCommand{Op: op, Args: copyInts(rest)}, true
	}

	switch sub {
	case 0:
		return fixed(IgsSprayPaint, 5)
	case 1:
		return fixed(IgsSetColorRegister, 2)
	case 2:
		return variadic(IgsSetRandomRange, 2)
	case 3:
		return variadic(IgsRightMouseMacro, 1)
	case 4:
		// Special zone IDs 9997-9999 clear zones or toggle loopback and
		// carry no rectangle.
		if len(rest) == 1 && rest[0] >= 9997 && rest[0] <= 9999 {
			return IgsCommand{Op: IgsDefineZone, Args: copyInts(rest)}, true
		}
		if len(rest) < 6 {
			return IgsCommand{}, false
		}
		return IgsCommand{Op: IgsDefineZone, Args: copyInts(rest[:6]), Text: text}, true
	case 5:
		return variadic(IgsFlowControl, 1)
	case 6:
		return fixed(IgsLeftMouseButton, 1)
	case 7:
		if len(rest) < 1 {
			return IgsCommand{}, false
		}
		return IgsCommand{Op: IgsLoadFillPattern, Args: copyInts(rest[:1]), Text: text}, true
	case 8:
		return fixed(IgsRotateColorRegisters, 4)
	case 9:
		return variadic(IgsLoadMidiBuffer, 1)
	case 10:
		return fixed(IgsSetDrawtoBegin, 2)
	case 11:
		return variadic(IgsLoadBitblitMemory, 1)
	case 12:
		return variadic(IgsLoadColorPalette, 1)
	}
	return IgsCommand{}, false
}

func copyInts(src []int) []int {
	dst := make([]int, len(src))
	copy(dst, src)
	return dst
}
