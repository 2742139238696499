// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/pcboard_test.go
// Summary: PCBoard @X color and @-macro parser tests.

package parser

import (
	"reflect"
	"testing"
)

func TestPcBoardColorPair(t *testing.T) {
	// Background nibble comes first on the wire.
	sink := parseAll(NewPcBoardParser(), []byte("@X1F"))
	want := []TerminalCommand{fgCmd(15), bgCmd(1)}
	if !reflect.DeepEqual(sink.cmds, want) {
		t.Fatalf("got %v, want %v", sink.cmds, want)
	}
}

func TestPcBoardLiteralAt(t *testing.T) {
	sink := parseAll(NewPcBoardParser(), []byte("a@@b"))
	if string(sink.printed) != "a@b" {
		t.Fatalf("printed %q", sink.printed)
	}
}

func TestPcBoardClsMacro(t *testing.T) {
	sink := parseAll(NewPcBoardParser(), []byte("@CLS@"))
	if len(sink.cmds) != 1 || sink.cmds[0] != cmd(OpFormFeed) {
		t.Fatalf("got %v", sink.cmds)
	}
}

func TestPcBoardPosMacro(t *testing.T) {
	sink := parseAll(NewPcBoardParser(), []byte("@POS:12@"))
	if len(sink.cmds) != 1 || sink.cmds[0] != cmdN(OpCursorColumn, 12) {
		t.Fatalf("got %v", sink.cmds)
	}
}

func TestPcBoardUnknownMacroIsLiteral(t *testing.T) {
	sink := parseAll(NewPcBoardParser(), []byte("@USER@"))
	if string(sink.printed) != "@USER@" {
		t.Fatalf("printed %q", sink.printed)
	}
	if len(sink.cmds) != 0 {
		t.Errorf("commands %v", sink.cmds)
	}
}

func TestPcBoardBareAtBeforeText(t *testing.T) {
	sink := parseAll(NewPcBoardParser(), []byte("mail@ example"))
	if string(sink.printed) != "mail@ example" {
		t.Fatalf("printed %q", sink.printed)
	}
}

func TestPcBoardBadColorNibbleWarns(t *testing.T) {
	sink := parseAll(NewPcBoardParser(), []byte("@X1Ztext"))
	if len(sink.warnings) != 1 {
		t.Fatalf("want 1 warning, got %v", sink.warnings)
	}
	// The bad final byte is reprocessed as ordinary text.
	if string(sink.printed) != "Ztext" {
		t.Errorf("printed %q", sink.printed)
	}
}

func TestPcBoardChunkBoundaryInvariance(t *testing.T) {
	sample := []byte("hi @X0Ethere@CLS@@POS:4@ @@done\r\n")
	whole := parseAll(NewPcBoardParser(), sample)
	split := parseBytewise(NewPcBoardParser(), sample)
	if !reflect.DeepEqual(whole.events, split.events) {
		t.Fatalf("parses diverge:\n%v\nvs\n%v", whole.events, split.events)
	}
}
