// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/ctrla_test.go
// Summary: Wildcat/Synchronet CTRL-A code parser tests.

package parser

import (
	"reflect"
	"testing"
)

func TestCtrlAColors(t *testing.T) {
	sink := parseAll(NewCtrlAParser(), []byte("\x01R\x014"))
	want := []TerminalCommand{fgCmd(4), bgCmd(4)}
	if !reflect.DeepEqual(sink.cmds, want) {
		t.Fatalf("got %v, want %v", sink.cmds, want)
	}
}

func TestCtrlAHighIntensityIsSticky(t *testing.T) {
	sink := parseAll(NewCtrlAParser(), []byte("\x01H\x01W\x01N\x01W"))
	want := []TerminalCommand{
		attrCmd(AttrBold),
		fgCmd(15), // bold lifts the foreground to the bright range
		attrCmd(AttrReset),
		fgCmd(7),
	}
	if !reflect.DeepEqual(sink.cmds, want) {
		t.Fatalf("got %v, want %v", sink.cmds, want)
	}
}

func TestCtrlAHighBackground(t *testing.T) {
	sink := parseAll(NewCtrlAParser(), []byte("\x01E\x013"))
	want := []TerminalCommand{bgCmd(11)}
	if !reflect.DeepEqual(sink.cmds, want) {
		t.Fatalf("got %v, want %v", sink.cmds, want)
	}
}

func TestCtrlALiteralByte(t *testing.T) {
	sink := parseAll(NewCtrlAParser(), []byte("a\x01\x01b"))
	if string(sink.printed) != "a\x01b" {
		t.Fatalf("printed %q", sink.printed)
	}
}

func TestCtrlACursorCodes(t *testing.T) {
	sink := parseAll(NewCtrlAParser(), []byte("\x01'\x01J\x01>\x01<\x01[\x01]"))
	want := []TerminalCommand{
		cmdXY(OpCursorPosition, 1, 1),
		cmdN(OpEraseDisplay, int(EraseToEnd)),
		cmdN(OpEraseLine, int(EraseToEnd)),
		cmd(OpBackspace),
		cmd(OpCarriageReturn),
		cmd(OpLineFeed),
	}
	if !reflect.DeepEqual(sink.cmds, want) {
		t.Fatalf("got %v, want %v", sink.cmds, want)
	}
}

func TestCtrlAUnknownCodeWarns(t *testing.T) {
	sink := parseAll(NewCtrlAParser(), []byte("\x01!"))
	if len(sink.warnings) != 1 {
		t.Fatalf("want 1 warning, got %v", sink.warnings)
	}
}

func TestCtrlAChunkBoundaryInvariance(t *testing.T) {
	sample := []byte("hello\x01H\x01Rworld\x01N\r\n\x01L")
	whole := parseAll(NewCtrlAParser(), sample)
	split := parseBytewise(NewCtrlAParser(), sample)
	if !reflect.DeepEqual(whole.events, split.events) {
		t.Fatalf("parses diverge:\n%v\nvs\n%v", whole.events, split.events)
	}
}
