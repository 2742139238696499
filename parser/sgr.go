// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/sgr.go
// Summary: SGR (Select Graphic Rendition) parameter decoding for CSI m.

package parser

import "strconv"

// ansiColorOffsets maps the ANSI color order (black, red, green, yellow,
// blue, magenta, cyan, white) onto DOS palette slots.
var ansiColorOffsets = [8]uint8{0, 4, 2, 6, 1, 5, 3, 7}

// parseSgr decodes a full SGR parameter list and emits one attribute
// command per recognized code. Unknown codes produce a single warning
// and no command.
func parseSgr(params []int, sink CommandSink) {
	i := 0
	for i < len(params) {
		code := params[i]
		switch {
		case code == 0:
			sink.Emit(attrCmd(AttrReset))
			i++
		case code == 1:
			sink.Emit(attrCmd(AttrBold))
			i++
		case code == 2:
			sink.Emit(attrCmd(AttrFaint))
			i++
		case code == 3:
			sink.Emit(attrCmd(AttrItalic))
			i++
		case code == 4:
			sink.Emit(attrCmd(AttrUnderline))
			i++
		case code == 5, code == 6:
			sink.Emit(attrCmd(AttrBlink))
			i++
		case code == 7:
			sink.Emit(attrCmd(AttrInverse))
			i++
		case code == 8:
			sink.Emit(attrCmd(AttrConceal))
			i++
		case code == 9:
			sink.Emit(attrCmd(AttrCrossedOut))
			i++
		case code >= 10 && code <= 19:
			sink.Emit(TerminalCommand{Op: OpAttribute, Attr: AttrChange{Op: AttrFont}, N: code - 10})
			i++
		case code == 21:
			sink.Emit(attrCmd(AttrDoubleUnderline))
			i++
		case code == 22:
			sink.Emit(attrCmd(AttrNormalIntensity))
			i++
		case code == 23:
			sink.Emit(attrCmd(AttrNoItalic))
			i++
		case code == 24:
			sink.Emit(attrCmd(AttrNoUnderline))
			i++
		case code == 25:
			sink.Emit(attrCmd(AttrNoBlink))
			i++
		case code == 27:
			sink.Emit(attrCmd(AttrNoInverse))
			i++
		case code == 28:
			sink.Emit(attrCmd(AttrReveal))
			i++
		case code == 29:
			sink.Emit(attrCmd(AttrNotCrossedOut))
			i++
		case code >= 30 && code <= 37:
			sink.Emit(fgCmd(ansiColorOffsets[code-30]))
			i++
		case code == 38:
			i = parseExtendedColor(params, i, AttrForeground, sink)
		case code == 39:
			sink.Emit(attrCmd(AttrDefaultForeground))
			i++
		case code >= 40 && code <= 47:
			sink.Emit(bgCmd(ansiColorOffsets[code-40]))
			i++
		case code == 48:
			i = parseExtendedColor(params, i, AttrBackground, sink)
		case code == 49:
			sink.Emit(attrCmd(AttrDefaultBackground))
			i++
		case code == 53:
			sink.Emit(attrCmd(AttrOverline))
			i++
		case code == 55:
			sink.Emit(attrCmd(AttrNoOverline))
			i++
		case code >= 90 && code <= 97:
			sink.Emit(fgCmd(8 + ansiColorOffsets[code-90]))
			i++
		case code >= 100 && code <= 107:
			sink.Emit(bgCmd(8 + ansiColorOffsets[code-100]))
			i++
		default:
			sink.ReportError(invalidParameter("SGR", strconv.Itoa(code), "valid SGR attribute code"), LevelWarning)
			i++
		}
	}
}

// parseExtendedColor handles 38/48 ; 5 ; n (256-color) and
// 38/48 ; 2 ; r ; g ; b (RGB). Returns the next parameter index.
func parseExtendedColor(params []int, i int, op AttrOp, sink CommandSink) int {
	if i+2 < len(params) && params[i+1] == 5 {
		n := params[i+2]
		if n < 0 || n > 255 {
			sink.ReportError(invalidParameter("SGR", strconv.Itoa(n), "palette index 0-255"), LevelWarning)
			return i + 3
		}
		c := Color{Kind: ColorExtended, Index: uint8(n)}
		sink.Emit(TerminalCommand{Op: OpAttribute, Attr: AttrChange{Op: op, Color: c}})
		return i + 3
	}
	if i+4 < len(params) && params[i+1] == 2 {
		c := Color{Kind: ColorRGB, R: uint8(params[i+2]), G: uint8(params[i+3]), B: uint8(params[i+4])}
		sink.Emit(TerminalCommand{Op: OpAttribute, Attr: AttrChange{Op: op, Color: c}})
		return i + 5
	}
	sink.ReportError(invalidParameter("SGR", strconv.Itoa(params[i]), "5;n or 2;r;g;b sub-parameters"), LevelWarning)
	return i + 1
}
