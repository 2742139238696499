// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/sink.go
// Summary: The CommandSink boundary between parsers and their consumers.
// Usage: Implement CommandSink to receive decoded commands; see screen.ScreenSink.
// Notes: Parsers depend only on this interface, never on a concrete screen.

package parser

// CommandSink receives the output of a dialect parser. Every method must
// return promptly; implementations may mutate their own state but must
// not block, since parsers drive the sink from a tight per-byte loop.
type CommandSink interface {
	// Print receives a run of printable bytes, pre-validated as free of
	// the dialect's control bytes.
	Print(data []byte)

	// Emit receives a generic terminal command.
	Emit(cmd TerminalCommand)

	// Dialect-specific command sets that do not map onto generic ANSI
	// semantics.
	EmitRip(cmd RipCommand)
	EmitIgs(cmd IgsCommand)
	EmitSkypix(cmd SkypixCommand)

	// EmitViewData receives a Viewdata command. The return value reports
	// whether the caret wrapped onto a new row, which resets the parser's
	// per-row serial attribute state.
	EmitViewData(cmd ViewDataCommand) bool

	// DeviceControl receives a complete DCS payload (Sixel image task,
	// macro definition, font selection).
	DeviceControl(dcs DeviceControlString)

	// OperatingSystemCommand receives a complete OSC string body.
	OperatingSystemCommand(data string)

	// Aps receives an application program string body.
	Aps(data []byte)

	// Request asks the consumer to eventually answer the remote peer.
	Request(req TerminalRequest)

	// ReportError carries non-fatal parse diagnostics out of band.
	ReportError(err ParseError, level ErrorLevel)
}

// RequestKind tags a TerminalRequest.
type RequestKind int

const (
	RequestDeviceAttributes RequestKind = iota
	RequestSecondaryDeviceAttributes
	RequestTertiaryDeviceAttributes
	RequestCursorPosition
	RequestExtendedCursorPosition
	RequestTerminalStatus
	RequestScreenSize
	RequestRipTerminalID
	RequestAvatarInit
	RequestFontState
	RequestModeState      // DECRQM; N = mode number
	RequestTabStops       // DECRQTSR; N = report type
	RequestRectChecksum   // DECRQCRA; Page and Rect valid
)

// TerminalRequest asks the embedding application to write a specific
// response string back to the remote peer. Actual I/O is external.
type TerminalRequest struct {
	Kind RequestKind
	N    int
	Page int
	Rect Rect
}

// DCSKind tags a DeviceControlString.
type DCSKind int

const (
	DCSSixel DCSKind = iota
	DCSMacroDefinition
	DCSFontSelection
	DCSInvokeMacro
)

// MacroEncoding selects how a DCS macro body was transmitted.
type MacroEncoding int

const (
	MacroPlainText MacroEncoding = iota
	MacroHexCode // hex pairs with !n;…; run-length repeats
)

// DeviceControlString is the decoded payload of ESC P … ESC \.
type DeviceControlString struct {
	Kind DCSKind

	// Sixel carries the background decode task.
	Sixel *SixelTask

	// Macro definition fields.
	MacroID       int
	MacroEncoding MacroEncoding
	MacroBody     []byte

	// Font selection fields (CTerm:Font DCS).
	FontSlot int
	FontData []byte
}
