// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/command.go
// Summary: The terminal command intermediate representation shared by all dialects.
// Usage: Parsers emit these values through a CommandSink; consumers switch on Op.
// Notes: Pure data. Dialect-specific command sets live in their own files.

package parser

import "fmt"

// TerminalOp identifies a generic terminal command.
type TerminalOp int

const (
	OpBell TerminalOp = iota
	OpBackspace
	OpTab
	OpLineFeed
	OpCarriageReturn
	OpFormFeed

	// Cursor movement. N is the repeat count (>= 1).
	OpCursorUp
	OpCursorDown
	OpCursorLeft
	OpCursorRight
	OpCursorNextLine
	OpCursorPrevLine
	// OpCursorPosition uses X (column) and Y (row), both 1-indexed as
	// received on the wire.
	OpCursorPosition
	OpCursorColumn // CHA, N = 1-indexed column
	OpCursorRow    // VPA, N = 1-indexed row
	OpIndex
	OpReverseIndex
	OpNextLine

	// Erase. N holds an EraseMode.
	OpEraseDisplay
	OpEraseLine

	OpInsertLine
	OpDeleteLine
	OpInsertChar
	OpDeleteChar
	OpEraseChar
	OpRepeatLastChar

	OpScrollUp
	OpScrollDown
	OpScrollLeft
	OpScrollRight

	// Rectangular area operations carry 1-indexed inclusive bounds in
	// Rect. OpFillRect additionally carries the fill character in N.
	OpFillRect
	OpEraseRect
	OpSelectiveEraseRect

	// Margins. X = top/left, Y = bottom/right, 1-indexed; zero means
	// "default to edge".
	OpSetTopBottomMargins
	OpSetLeftRightMargins
	OpResetMargins

	OpTabSet
	OpTabClear
	OpTabClearAll
	OpForwardTab  // CHT, N tabs
	OpBackwardTab // CBT, N tabs

	OpSaveCaret
	OpRestoreCaret

	// OpSetMode / OpResetMode carry a TerminalMode in Mode.
	OpSetMode
	OpResetMode

	OpResize // X = width, Y = height in cells

	// OpAttribute carries an AttrChange.
	OpAttribute

	OpCaretStyle // N holds a CaretStyle

	// OpSelectiveEraseDisplay / Line honor the protected attribute.
	// N holds an EraseMode.
	OpSelectiveEraseDisplay
	OpSelectiveEraseLine
	OpSetProtectedAttribute // N != 0 protects subsequent cells

	// OpResetTerminal restores power-on state (RIS, IGS I, ATASCII reset).
	OpResetTerminal

	// OpSelectCommunicationSpeed carries baud emulation parameters in X, Y.
	OpSelectCommunicationSpeed
)

// EraseMode selects the span of an erase command.
type EraseMode int

const (
	EraseToEnd EraseMode = iota
	EraseToStart
	EraseAll
)

// TerminalMode is the target of a set/reset mode command.
type TerminalMode int

const (
	ModeInsert TerminalMode = iota
	ModeOrigin
	ModeAutoWrap
	ModeCaretVisible
	ModeIceColors
	ModeInverseVideo
	ModeAlternateFont // VT52/IGS style secondary font page
	ModeLeftRightMargin
	ModeSmoothScroll
)

// CaretStyle mirrors DECSCUSR parameter values.
type CaretStyle int

const (
	CaretBlinkingBlock CaretStyle = iota
	CaretSteadyBlock
	CaretBlinkingUnderline
	CaretSteadyUnderline
	CaretBlinkingBar
	CaretSteadyBar
)

// Rect is a 1-indexed inclusive rectangle as carried on the wire.
type Rect struct {
	Top, Left, Bottom, Right int
}

// ColorKind tags a Color value.
type ColorKind int

const (
	ColorPalette  ColorKind = iota // 0..15 base palette index
	ColorExtended                  // 0..255 xterm palette index
	ColorRGB
)

// Color is a wire-level color specification.
type Color struct {
	Kind    ColorKind
	Index   uint8
	R, G, B uint8
}

// AttrOp identifies a single SGR-style attribute change.
type AttrOp int

const (
	AttrReset AttrOp = iota
	AttrBold
	AttrFaint
	AttrItalic
	AttrUnderline
	AttrDoubleUnderline
	AttrBlink
	AttrConceal
	AttrCrossedOut
	AttrOverline
	AttrInverse
	AttrNoInverse
	AttrNormalIntensity
	AttrNoItalic
	AttrNoUnderline
	AttrNoBlink
	AttrReveal
	AttrNotCrossedOut
	AttrNoOverline
	AttrForeground // Color valid
	AttrBackground // Color valid
	AttrDefaultForeground
	AttrDefaultBackground
	AttrFont // N on the command selects the font page
)

// AttrChange is the payload of an OpAttribute command.
type AttrChange struct {
	Op    AttrOp
	Color Color
}

// TerminalCommand is the generic command emitted by every dialect.
// Fields beyond Op are meaningful per-Op as documented on the constants.
type TerminalCommand struct {
	Op   TerminalOp
	N    int
	X, Y int
	Rect Rect
	Attr AttrChange
	Mode TerminalMode
}

func (c TerminalCommand) String() string {
	switch c.Op {
	case OpCursorPosition:
		return fmt.Sprintf("CursorPosition(%d,%d)", c.X, c.Y)
	case OpAttribute:
		return fmt.Sprintf("Attribute(op=%d)", c.Attr.Op)
	case OpFillRect, OpEraseRect, OpSelectiveEraseRect:
		return fmt.Sprintf("Rect(op=%d %d;%d;%d;%d)", c.Op, c.Rect.Top, c.Rect.Left, c.Rect.Bottom, c.Rect.Right)
	default:
		return fmt.Sprintf("Command(op=%d n=%d)", c.Op, c.N)
	}
}

// Convenience constructors used throughout the dialect parsers.

func cmd(op TerminalOp) TerminalCommand          { return TerminalCommand{Op: op} }
func cmdN(op TerminalOp, n int) TerminalCommand  { return TerminalCommand{Op: op, N: n} }
func cmdXY(op TerminalOp, x, y int) TerminalCommand {
	return TerminalCommand{Op: op, X: x, Y: y}
}

func attrCmd(op AttrOp) TerminalCommand {
	return TerminalCommand{Op: OpAttribute, Attr: AttrChange{Op: op}}
}

func fgCmd(idx uint8) TerminalCommand {
	return TerminalCommand{Op: OpAttribute, Attr: AttrChange{Op: AttrForeground, Color: Color{Kind: ColorPalette, Index: idx}}}
}

func bgCmd(idx uint8) TerminalCommand {
	return TerminalCommand{Op: OpAttribute, Attr: AttrChange{Op: AttrBackground, Color: Color{Kind: ColorPalette, Index: idx}}}
}

func modeCmd(op TerminalOp, m TerminalMode) TerminalCommand {
	return TerminalCommand{Op: op, Mode: m}
}
