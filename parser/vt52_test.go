// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/vt52_test.go
// Summary: VT52 parser tests covering classic and Atari ST extensions.

package parser

import (
	"reflect"
	"testing"
)

func TestVt52CursorAddressing(t *testing.T) {
	// ESC Y line row, both offset from 0x20.
	sink := parseAll(NewVt52Parser(Vt52Mixed), []byte("\x1bY\x25\x30"))
	want := TerminalCommand{Op: OpCursorPosition, X: 17, Y: 6}
	if len(sink.cmds) != 1 || sink.cmds[0] != want {
		t.Fatalf("got %v, want %v", sink.cmds, want)
	}
}

func TestVt52CursorAddressingOutOfRange(t *testing.T) {
	// Row byte past 'p' aborts the sequence without a command.
	sink := parseAll(NewVt52Parser(Vt52Standard), []byte("\x1bY\x25\xF0after"))
	if len(sink.cmds) != 0 {
		t.Fatalf("unexpected commands %v", sink.cmds)
	}
	if string(sink.printed) != "after" {
		t.Errorf("printed %q", sink.printed)
	}
}

func TestVt52ClearAndHome(t *testing.T) {
	sink := parseAll(NewVt52Parser(Vt52Mixed), []byte("\x1bE"))
	want := []TerminalCommand{
		cmdN(OpEraseDisplay, int(EraseAll)),
		cmdXY(OpCursorPosition, 1, 1),
	}
	if !reflect.DeepEqual(sink.cmds, want) {
		t.Fatalf("got %v, want %v", sink.cmds, want)
	}
}

func TestVt52ReverseVideoSwapsColorPlanes(t *testing.T) {
	sink := parseAll(NewVt52Parser(Vt52Mixed), []byte("\x1bb\x05\x1bp\x1bb\x05\x1bq\x1bc\x03"))
	want := []TerminalCommand{
		fgCmd(5), // before reverse
		bgCmd(5), // fg set lands on bg while reversed
		bgCmd(3), // back to normal
	}
	if !reflect.DeepEqual(sink.cmds, want) {
		t.Fatalf("got %v, want %v", sink.cmds, want)
	}
}

func TestVt52AtariDirectColorBytes(t *testing.T) {
	sink := parseAll(NewVt52Parser(Vt52Atari), []byte{0x03, 'h', 'i'})
	if len(sink.cmds) != 1 || sink.cmds[0] != fgCmd(3) {
		t.Fatalf("got %v", sink.cmds)
	}
	if string(sink.printed) != "hi" {
		t.Errorf("printed %q", sink.printed)
	}
}

func TestVt52StandardIgnoresRawColorBytes(t *testing.T) {
	sink := parseAll(NewVt52Parser(Vt52Standard), []byte{0x03})
	if len(sink.cmds) != 0 {
		t.Fatalf("got %v", sink.cmds)
	}
}

func TestVt52InsertLineCount(t *testing.T) {
	sink := parseAll(NewVt52Parser(Vt52Mixed), []byte{0x1B, 'i', 4})
	if len(sink.cmds) != 1 || sink.cmds[0] != cmdN(OpInsertLine, 4) {
		t.Fatalf("got %v", sink.cmds)
	}
}

func TestVt52ChunkBoundaryInvariance(t *testing.T) {
	sample := []byte("\x1bEhello\x1bY\x22\x28world\x1bb\x07\x1bp\x1bc\x02\x1bJ\x1bK")
	whole := parseAll(NewVt52Parser(Vt52Mixed), sample)
	split := parseBytewise(NewVt52Parser(Vt52Mixed), sample)
	if !reflect.DeepEqual(whole.events, split.events) {
		t.Fatalf("parses diverge:\n%v\nvs\n%v", whole.events, split.events)
	}
}
