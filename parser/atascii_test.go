// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/atascii_test.go
// Summary: ATASCII control code parser tests.

package parser

import (
	"reflect"
	"testing"
)

func TestAtasciiControls(t *testing.T) {
	sink := parseAll(NewAtasciiParser(), []byte{0x7D, 0x1C, 0x1D, 0x1E, 0x1F, 0x9B, 0x7E, 0x7F})
	want := []TerminalCommand{
		cmdN(OpEraseDisplay, int(EraseAll)),
		cmdN(OpCursorUp, 1),
		cmdN(OpCursorDown, 1),
		cmdN(OpCursorLeft, 1),
		cmdN(OpCursorRight, 1),
		cmd(OpLineFeed),
		cmd(OpBackspace),
		cmd(OpTab),
	}
	if !reflect.DeepEqual(sink.cmds, want) {
		t.Fatalf("got %v, want %v", sink.cmds, want)
	}
}

func TestAtasciiEscapePrintsControlLiterally(t *testing.T) {
	sink := parseAll(NewAtasciiParser(), []byte{0x1B, 0x7D, 'A'})
	if len(sink.cmds) != 0 {
		t.Fatalf("escaped control emitted %v", sink.cmds)
	}
	if !reflect.DeepEqual(sink.printed, []byte{0x7D, 'A'}) {
		t.Errorf("printed %v", sink.printed)
	}
}

func TestAtasciiInverseVideoBytesPassThrough(t *testing.T) {
	sink := parseAll(NewAtasciiParser(), []byte{0xC1, 0xC2, 0xFD})
	if !reflect.DeepEqual(sink.printed, []byte{0xC1, 0xC2}) {
		t.Errorf("printed %v", sink.printed)
	}
	if len(sink.cmds) != 1 || sink.cmds[0] != cmd(OpBell) {
		t.Fatalf("got %v", sink.cmds)
	}
}

func TestAtasciiLineAndTabOps(t *testing.T) {
	sink := parseAll(NewAtasciiParser(), []byte{0x9C, 0x9D, 0x9E, 0x9F, 0xFE})
	want := []TerminalCommand{
		cmdN(OpDeleteLine, 1),
		cmdN(OpInsertLine, 1),
		cmd(OpTabClear),
		cmd(OpTabSet),
		cmdN(OpDeleteChar, 1),
	}
	if !reflect.DeepEqual(sink.cmds, want) {
		t.Fatalf("got %v, want %v", sink.cmds, want)
	}
}

func TestAtasciiChunkBoundaryInvariance(t *testing.T) {
	sample := []byte{'h', 'i', 0x9B, 0x1B, 0x1C, 'x', 0x7D, 0xFF, 'z'}
	whole := parseAll(NewAtasciiParser(), sample)
	split := parseBytewise(NewAtasciiParser(), sample)
	if !reflect.DeepEqual(whole.events, split.events) {
		t.Fatalf("parses diverge:\n%v\nvs\n%v", whole.events, split.events)
	}
}
