// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/rip_test.go
// Summary: RIPscrip parser tests.

package parser

import (
	"reflect"
	"testing"
)

func TestRipColorCommand(t *testing.T) {
	sink := parseAll(NewRipParser(), []byte("!|c0F\n"))
	want := []RipCommand{{Op: RipColor, Args: []int{15}}}
	if !reflect.DeepEqual(sink.rips, want) {
		t.Fatalf("rips = %+v, want %+v", sink.rips, want)
	}
}

func TestRipLineBase36Params(t *testing.T) {
	// Base 36: "0A" is 10, "ZZ" is 1295.
	sink := parseAll(NewRipParser(), []byte("!|L00010AZZ\n"))
	want := []RipCommand{{Op: RipLine, Args: []int{0, 1, 10, 1295}}}
	if !reflect.DeepEqual(sink.rips, want) {
		t.Fatalf("rips = %+v, want %+v", sink.rips, want)
	}
}

func TestRipPipeChainsCommands(t *testing.T) {
	sink := parseAll(NewRipParser(), []byte("!|c0F|g0102\n"))
	want := []RipCommand{
		{Op: RipColor, Args: []int{15}},
		{Op: RipGotoXY, Args: []int{1, 2}},
	}
	if !reflect.DeepEqual(sink.rips, want) {
		t.Fatalf("rips = %+v, want %+v", sink.rips, want)
	}
}

func TestRipTextXY(t *testing.T) {
	sink := parseAll(NewRipParser(), []byte("!|@0102Hello\n"))
	want := []RipCommand{{Op: RipTextXY, Args: []int{1, 2}, Text: "Hello"}}
	if !reflect.DeepEqual(sink.rips, want) {
		t.Fatalf("rips = %+v, want %+v", sink.rips, want)
	}
}

func TestRipPolygonVariableLength(t *testing.T) {
	// Two digits of point count, then count x,y pairs.
	sink := parseAll(NewRipParser(), []byte("!|P0200010203\n"))
	want := []RipCommand{{Op: RipPolygon, Args: []int{0, 1, 2, 3}}}
	if !reflect.DeepEqual(sink.rips, want) {
		t.Fatalf("rips = %+v, want %+v", sink.rips, want)
	}
}

func TestRipBackslashContinuation(t *testing.T) {
	sink := parseAll(NewRipParser(), []byte("!|L0001\\\r\n0A0B\n"))
	want := []RipCommand{{Op: RipLine, Args: []int{0, 1, 10, 11}}}
	if !reflect.DeepEqual(sink.rips, want) {
		t.Fatalf("rips = %+v, want %+v", sink.rips, want)
	}
	if len(sink.printed) != 0 {
		t.Fatalf("printed = %q, want nothing", sink.printed)
	}
}

func TestRipNoParamCommandDiscardsTrailingByte(t *testing.T) {
	sink := parseAll(NewRipParser(), []byte("!|*X!|c0F\n"))
	want := []RipCommand{
		{Op: RipResetWindows, Args: []int{}},
		{Op: RipColor, Args: []int{15}},
	}
	if !reflect.DeepEqual(sink.rips, want) {
		t.Fatalf("rips = %+v, want %+v", sink.rips, want)
	}
}

func TestRipTerminalIDQuery(t *testing.T) {
	sink := parseAll(NewRipParser(), []byte("\x1b[!"))
	if len(sink.reqs) != 1 || sink.reqs[0].Kind != RequestRipTerminalID {
		t.Fatalf("reqs = %+v, want one RIP terminal ID request", sink.reqs)
	}

	sink = parseAll(NewRipParser(), []byte("\x1b[0!"))
	if len(sink.reqs) != 1 || sink.reqs[0].Kind != RequestRipTerminalID {
		t.Fatalf("reqs = %+v, want one RIP terminal ID request", sink.reqs)
	}
}

func TestRipDisableEnable(t *testing.T) {
	p := NewRipParser()
	sink := &recordSink{}
	p.Parse([]byte("\x1b[1!"), sink)
	p.Parse([]byte("!|c0F"), sink)
	if len(sink.rips) != 0 {
		t.Fatalf("rips = %+v, want none while disabled", sink.rips)
	}
	if string(sink.printed) != "!|c0F" {
		t.Fatalf("printed = %q, want literal text while disabled", sink.printed)
	}

	p.Parse([]byte("\x1b[2!"), sink)
	p.Parse([]byte("!|c0F\n"), sink)
	if len(sink.rips) != 1 || sink.rips[0].Op != RipColor {
		t.Fatalf("rips = %+v, want color after re-enable", sink.rips)
	}
}

func TestRipAnsiPassthrough(t *testing.T) {
	sink := parseAll(NewRipParser(), []byte("hello \x1b[2Jworld"))
	if string(sink.printed) != "hello world" {
		t.Fatalf("printed = %q", sink.printed)
	}
	want := []TerminalCommand{cmdN(OpEraseDisplay, 2)}
	if !reflect.DeepEqual(sink.cmds, want) {
		t.Fatalf("cmds = %+v, want %+v", sink.cmds, want)
	}
}

func TestRipBareExclaimIsText(t *testing.T) {
	sink := parseAll(NewRipParser(), []byte("wow! neat"))
	if string(sink.printed) != "wow! neat" {
		t.Fatalf("printed = %q", sink.printed)
	}
}

func TestRipInvalidParameterWarns(t *testing.T) {
	sink := parseAll(NewRipParser(), []byte("!|c0*after"))
	if len(sink.warnings) != 1 || sink.warnings[0].Kind != ErrMalformedSequence {
		t.Fatalf("warnings = %+v, want one malformed sequence", sink.warnings)
	}
	if string(sink.printed) != "after" {
		t.Fatalf("printed = %q", sink.printed)
	}
}

func TestRipChunkBoundaryInvariance(t *testing.T) {
	input := []byte("plain text\x1b[1;33m!|c0F|L00010A0B|@0102Hi there\n" +
		"!|P0200010203\n!|Z000102030405060708\n" +
		"\x1b[!more !|*X\x1b[2Jtail")
	whole := parseAll(NewRipParser(), input)
	split := parseBytewise(NewRipParser(), input)
	if !reflect.DeepEqual(whole.events, split.events) {
		t.Fatalf("bytewise parse diverged\nwhole: %v\nsplit: %v", whole.events, split.events)
	}
}
