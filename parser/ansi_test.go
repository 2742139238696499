// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/ansi_test.go
// Summary: ANSI parser tests: CSI decoding, diagnostics, DCS, chunk resume.

package parser

import (
	"reflect"
	"testing"
)

func TestCursorPositionDefaults(t *testing.T) {
	sink := parseAll(NewAnsiParser(), []byte("\x1b[H\x1b[10;20H"))
	want := []TerminalCommand{
		{Op: OpCursorPosition, X: 1, Y: 1},
		{Op: OpCursorPosition, X: 20, Y: 10},
	}
	if !reflect.DeepEqual(sink.cmds, want) {
		t.Fatalf("got %v, want %v", sink.cmds, want)
	}
}

func TestEraseRectangularArea(t *testing.T) {
	sink := parseAll(NewAnsiParser(), []byte("\x1b[5;5;15;20$z"))
	want := TerminalCommand{Op: OpEraseRect, Rect: Rect{Top: 5, Left: 5, Bottom: 15, Right: 20}}
	if len(sink.cmds) != 1 || sink.cmds[0] != want {
		t.Fatalf("got %v, want %v", sink.cmds, want)
	}
}

func TestFillRectangularArea(t *testing.T) {
	sink := parseAll(NewAnsiParser(), []byte("\x1b[65;2;3;8;9$x"))
	want := TerminalCommand{Op: OpFillRect, N: 65, Rect: Rect{Top: 2, Left: 3, Bottom: 8, Right: 9}}
	if len(sink.cmds) != 1 || sink.cmds[0] != want {
		t.Fatalf("got %v, want %v", sink.cmds, want)
	}
}

func TestInvalidSgrWarnsOnce(t *testing.T) {
	sink := parseAll(NewAnsiParser(), []byte("\x1b[99m"))
	if len(sink.warnings) != 1 {
		t.Fatalf("want exactly one warning, got %d: %v", len(sink.warnings), sink.warnings)
	}
	w := sink.warnings[0]
	if w.Kind != ErrInvalidParameter || w.Command != "SGR" || w.Value != "99" {
		t.Errorf("unexpected warning %+v", w)
	}
	if len(sink.cmds) != 0 {
		t.Errorf("invalid SGR emitted commands: %v", sink.cmds)
	}
}

func TestSgrColors(t *testing.T) {
	sink := parseAll(NewAnsiParser(), []byte("\x1b[0;1;34;47m"))
	want := []TerminalCommand{
		attrCmd(AttrReset),
		attrCmd(AttrBold),
		fgCmd(1), // ANSI blue is DOS slot 1
		bgCmd(7),
	}
	if !reflect.DeepEqual(sink.cmds, want) {
		t.Fatalf("got %v, want %v", sink.cmds, want)
	}
}

func TestSgrExtendedColors(t *testing.T) {
	sink := parseAll(NewAnsiParser(), []byte("\x1b[38;5;123m\x1b[48;2;10;20;30m"))
	if len(sink.cmds) != 2 {
		t.Fatalf("want 2 commands, got %v", sink.cmds)
	}
	fg := sink.cmds[0].Attr
	if fg.Op != AttrForeground || fg.Color.Kind != ColorExtended || fg.Color.Index != 123 {
		t.Errorf("extended fg: %+v", fg)
	}
	bg := sink.cmds[1].Attr
	if bg.Op != AttrBackground || bg.Color.Kind != ColorRGB || bg.Color.R != 10 || bg.Color.G != 20 || bg.Color.B != 30 {
		t.Errorf("rgb bg: %+v", bg)
	}
}

func TestSgrExtendedColorIndexOutOfRange(t *testing.T) {
	sink := parseAll(NewAnsiParser(), []byte("\x1b[38;5;300m"))
	if len(sink.cmds) != 0 {
		t.Fatalf("index 300 must not emit a color, got %v", sink.cmds)
	}
	if len(sink.warnings) != 1 || sink.warnings[0].Kind != ErrInvalidParameter {
		t.Fatalf("warnings = %+v, want one invalid-parameter", sink.warnings)
	}
}

func TestTopBottomMargins(t *testing.T) {
	sink := parseAll(NewAnsiParser(), []byte("\x1b[1;25r"))
	want := TerminalCommand{Op: OpSetTopBottomMargins, X: 1, Y: 25}
	if len(sink.cmds) != 1 || sink.cmds[0] != want {
		t.Fatalf("got %v, want %v", sink.cmds, want)
	}
}

func TestDecPrivateModes(t *testing.T) {
	sink := parseAll(NewAnsiParser(), []byte("\x1b[?25l\x1b[?7h\x1b[?6h"))
	want := []TerminalCommand{
		modeCmd(OpResetMode, ModeCaretVisible),
		modeCmd(OpSetMode, ModeAutoWrap),
		modeCmd(OpSetMode, ModeOrigin),
	}
	if !reflect.DeepEqual(sink.cmds, want) {
		t.Fatalf("got %v, want %v", sink.cmds, want)
	}
}

func TestSaveRestoreAndAnsiSys(t *testing.T) {
	sink := parseAll(NewAnsiParser(), []byte("\x1b7\x1b8\x1b[s\x1b[u"))
	want := []TerminalCommand{
		cmd(OpSaveCaret), cmd(OpRestoreCaret), cmd(OpSaveCaret), cmd(OpRestoreCaret),
	}
	if !reflect.DeepEqual(sink.cmds, want) {
		t.Fatalf("got %v, want %v", sink.cmds, want)
	}
}

func TestRepeatLastChar(t *testing.T) {
	sink := parseAll(NewAnsiParser(), []byte("X\x1b[3b"))
	if string(sink.printed) != "X" {
		t.Errorf("printed %q", sink.printed)
	}
	want := TerminalCommand{Op: OpRepeatLastChar, N: 3}
	if len(sink.cmds) != 1 || sink.cmds[0] != want {
		t.Fatalf("got %v, want %v", sink.cmds, want)
	}
}

func TestWindowOpResize(t *testing.T) {
	sink := parseAll(NewAnsiParser(), []byte("\x1b[8;50;100t"))
	want := TerminalCommand{Op: OpResize, X: 100, Y: 50}
	if len(sink.cmds) != 1 || sink.cmds[0] != want {
		t.Fatalf("got %v, want %v", sink.cmds, want)
	}
}

func TestOscTerminators(t *testing.T) {
	sink := parseAll(NewAnsiParser(), []byte("\x1b]0;first\x07\x1b]0;second\x1b\\"))
	want := []string{"osc 0;first", "osc 0;second"}
	if !reflect.DeepEqual(sink.events, want) {
		t.Fatalf("got %v, want %v", sink.events, want)
	}
}

func TestDeviceStatusRequests(t *testing.T) {
	sink := parseAll(NewAnsiParser(), []byte("\x1b[6n\x1b[c\x1b[>c"))
	if len(sink.reqs) != 3 {
		t.Fatalf("want 3 requests, got %v", sink.reqs)
	}
	kinds := []RequestKind{sink.reqs[0].Kind, sink.reqs[1].Kind, sink.reqs[2].Kind}
	want := []RequestKind{RequestCursorPosition, RequestDeviceAttributes, RequestSecondaryDeviceAttributes}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
}

func TestMacroDefineAndInvoke(t *testing.T) {
	p := NewAnsiParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1bP1;0;0!zHi there\x1b\\"), sink)
	p.Parse([]byte("\x1b[1*z"), sink)
	if string(sink.printed) != "Hi there" {
		t.Errorf("macro replay printed %q", sink.printed)
	}

	// Hex-encoded body with a run-length repeat.
	p.Parse([]byte("\x1bP2;0;1!z!3;41;\x1b\\"), sink)
	sink.printed = nil
	p.Parse([]byte("\x1b[2*z"), sink)
	if string(sink.printed) != "AAA" {
		t.Errorf("hex macro replay printed %q", sink.printed)
	}
}

func TestUnknownMacroInvokeIsSilent(t *testing.T) {
	sink := parseAll(NewAnsiParser(), []byte("\x1b[9*z"))
	if len(sink.events) != 0 {
		t.Fatalf("unexpected events %v", sink.events)
	}
}

func TestSelfInvokingMacroIsBounded(t *testing.T) {
	p := NewAnsiParser()
	sink := &recordSink{}
	// Macro 0 invokes itself; replay must stop at the nesting limit
	// instead of recursing forever.
	p.Parse([]byte("\x1bP0;0;0!z\x1b[0*z\x1b\\"), sink)
	p.Parse([]byte("\x1b[0*z"), sink)
	if len(sink.warnings) != 1 {
		t.Fatalf("warnings = %+v, want one depth warning", sink.warnings)
	}
	if sink.warnings[0].Kind != ErrMalformedSequence {
		t.Fatalf("warning kind = %v", sink.warnings[0].Kind)
	}

	// The parser stays usable afterwards.
	p.Parse([]byte("ok"), sink)
	if string(sink.printed) != "ok" {
		t.Fatalf("printed %q after bounded replay", sink.printed)
	}
}

func TestProtectedAttribute(t *testing.T) {
	sink := parseAll(NewAnsiParser(), []byte("\x1b[1\"q\x1b[0\"q"))
	want := []TerminalCommand{
		cmdN(OpSetProtectedAttribute, 1),
		cmdN(OpSetProtectedAttribute, 0),
	}
	if !reflect.DeepEqual(sink.cmds, want) {
		t.Fatalf("got %v, want %v", sink.cmds, want)
	}
}

func TestSelectiveEraseDisplay(t *testing.T) {
	sink := parseAll(NewAnsiParser(), []byte("\x1b[?2J\x1b[?1K"))
	want := []TerminalCommand{
		cmdN(OpSelectiveEraseDisplay, 2),
		cmdN(OpSelectiveEraseLine, 1),
	}
	if !reflect.DeepEqual(sink.cmds, want) {
		t.Fatalf("got %v, want %v", sink.cmds, want)
	}
}

func TestEraseModeOutOfRange(t *testing.T) {
	sink := parseAll(NewAnsiParser(), []byte("\x1b[5J"))
	if len(sink.warnings) != 1 {
		t.Fatalf("want 1 warning, got %v", sink.warnings)
	}
	if len(sink.cmds) != 1 || sink.cmds[0] != cmdN(OpEraseDisplay, 0) {
		t.Fatalf("got %v", sink.cmds)
	}
}

func TestCTermFontLoad(t *testing.T) {
	// "AA==" decodes to a single zero byte.
	sink := parseAll(NewAnsiParser(), []byte("\x1bPCTerm:Font:3:AA==\x1b\\"))
	want := []string{"dcs font 3 len=1"}
	if !reflect.DeepEqual(sink.events, want) {
		t.Fatalf("got %v, want %v", sink.events, want)
	}
}

func TestSixelDcsStartsTask(t *testing.T) {
	sink := parseAll(NewAnsiParser(), []byte("\x1bP0;0;0q\"1;1;6;1#0;2;0;0;0#0~\x1b\\"))
	want := []string{"dcs sixel"}
	if !reflect.DeepEqual(sink.events, want) {
		t.Fatalf("got %v, want %v", sink.events, want)
	}
}

// ansiSample exercises every parser state at least once.
var ansiSample = []byte("plain \x1b[1;34mtext\x1b[0m\r\n" +
	"\x1b[10;20H\x1b[2J\x1b[K\x1b[3A\x1b[?25h" +
	"\x1b]2;title\x1b\\" +
	"\x1bP5;0;0!zmacro body\x1b\\" +
	"\x1b_app data\x1b\\" +
	"\x1b[5;5;15;20$z\x1b[1;25r\x1b[8;25;80t" +
	"tail\x1b[99mrest")

func TestAnsiChunkBoundaryInvariance(t *testing.T) {
	whole := parseAll(NewAnsiParser(), ansiSample)
	split := parseBytewise(NewAnsiParser(), ansiSample)
	if !reflect.DeepEqual(whole.events, split.events) {
		t.Fatalf("one-shot and byte-at-a-time parses diverge:\n%v\nvs\n%v", whole.events, split.events)
	}
}
