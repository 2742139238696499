// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/igs_test.go
// Summary: IGS parser tests.

package parser

import (
	"reflect"
	"testing"
)

func TestIgsLineCommand(t *testing.T) {
	sink := parseAll(NewIgsParser(), []byte("G#L>0,0,100,150:"))
	want := []IgsCommand{{Op: IgsLine, Args: []int{0, 0, 100, 150}}}
	if !reflect.DeepEqual(sink.igs, want) {
		t.Fatalf("igs = %+v, want %+v", sink.igs, want)
	}
}

func TestIgsChainedCommands(t *testing.T) {
	sink := parseAll(NewIgsParser(), []byte("G#C>2,3:L>0,0,50,50:"))
	want := []IgsCommand{
		{Op: IgsColorSet, Args: []int{2, 3}},
		{Op: IgsLine, Args: []int{0, 0, 50, 50}},
	}
	if !reflect.DeepEqual(sink.igs, want) {
		t.Fatalf("igs = %+v, want %+v", sink.igs, want)
	}
}

func TestIgsWriteText(t *testing.T) {
	sink := parseAll(NewIgsParser(), []byte("G#W>10,20,Hello world@"))
	want := []IgsCommand{{Op: IgsWriteText, Args: []int{10, 20}, Text: "Hello world"}}
	if !reflect.DeepEqual(sink.igs, want) {
		t.Fatalf("igs = %+v, want %+v", sink.igs, want)
	}
}

func TestIgsCommandLineSwallowsFollowingLf(t *testing.T) {
	sink := parseAll(NewIgsParser(), []byte("G#W>1,1,Hi\n\nmore"))
	for _, c := range sink.cmds {
		if c.Op == OpLineFeed {
			t.Fatalf("line feed emitted after command line: %+v", sink.cmds)
		}
	}
	if string(sink.printed) != "more" {
		t.Fatalf("printed = %q", sink.printed)
	}
}

func TestIgsPolyLinePointCount(t *testing.T) {
	sink := parseAll(NewIgsParser(), []byte("G#z>3,0,0,10,10,20,20:"))
	want := []IgsCommand{{Op: IgsPolyLine, Args: []int{0, 0, 10, 10, 20, 20}}}
	if !reflect.DeepEqual(sink.igs, want) {
		t.Fatalf("igs = %+v, want %+v", sink.igs, want)
	}
}

func TestIgsDefineZoneWithText(t *testing.T) {
	sink := parseAll(NewIgsParser(), []byte("G#X>4,1,0,0,100,100,5,hello:"))
	want := []IgsCommand{{Op: IgsDefineZone, Args: []int{1, 0, 0, 100, 100, 5}, Text: "hello"}}
	if !reflect.DeepEqual(sink.igs, want) {
		t.Fatalf("igs = %+v, want %+v", sink.igs, want)
	}
}

func TestIgsLoadFillPattern(t *testing.T) {
	sink := parseAll(NewIgsParser(), []byte("G#X>7,2,ABCD:"))
	want := []IgsCommand{{Op: IgsLoadFillPattern, Args: []int{2}, Text: "ABCD"}}
	if !reflect.DeepEqual(sink.igs, want) {
		t.Fatalf("igs = %+v, want %+v", sink.igs, want)
	}
}

func TestIgsVt52EscapesBetweenCommands(t *testing.T) {
	sink := parseAll(NewIgsParser(), []byte("\x1bE\x1bY\x25\x30"))
	want := []TerminalCommand{
		cmdN(OpEraseDisplay, int(EraseAll)),
		cmdXY(OpCursorPosition, 1, 1),
		cmdXY(OpCursorPosition, 17, 6),
	}
	if !reflect.DeepEqual(sink.cmds, want) {
		t.Fatalf("cmds = %+v, want %+v", sink.cmds, want)
	}
}

func TestIgsReverseVideoColorPlanes(t *testing.T) {
	sink := parseAll(NewIgsParser(), []byte("\x1bb\x03\x1bp\x1bb\x04"))
	want := []TerminalCommand{fgCmd(3), bgCmd(4)}
	if !reflect.DeepEqual(sink.cmds, want) {
		t.Fatalf("cmds = %+v, want %+v", sink.cmds, want)
	}
}

func TestIgsDirectColorBytes(t *testing.T) {
	sink := parseAll(NewIgsParser(), []byte{0x05})
	want := []TerminalCommand{fgCmd(5)}
	if !reflect.DeepEqual(sink.cmds, want) {
		t.Fatalf("cmds = %+v, want %+v", sink.cmds, want)
	}
}

func TestIgsEscMCursorMotion(t *testing.T) {
	sink := parseAll(NewIgsParser(), []byte("\x1bm1,2:"))
	want := []IgsCommand{{Op: IgsCursorMotion, Args: []int{1, 2}}}
	if !reflect.DeepEqual(sink.igs, want) {
		t.Fatalf("igs = %+v, want %+v", sink.igs, want)
	}
}

func TestIgsPlainTextStartingWithG(t *testing.T) {
	sink := parseAll(NewIgsParser(), []byte("Good day"))
	if string(sink.printed) != "Good day" {
		t.Fatalf("printed = %q", sink.printed)
	}
}

func TestIgsUnknownCommandWarns(t *testing.T) {
	sink := parseAll(NewIgsParser(), []byte("G#~"))
	if len(sink.warnings) != 1 || sink.warnings[0].Kind != ErrMalformedSequence {
		t.Fatalf("warnings = %+v, want one malformed sequence", sink.warnings)
	}
}

func TestIgsShortParameterListWarns(t *testing.T) {
	sink := parseAll(NewIgsParser(), []byte("G#L>1,2:"))
	if len(sink.igs) != 0 {
		t.Fatalf("igs = %+v, want nothing emitted", sink.igs)
	}
	if len(sink.warnings) != 1 || sink.warnings[0].Kind != ErrInvalidParameter {
		t.Fatalf("warnings = %+v, want one invalid parameter", sink.warnings)
	}
}

func TestIgsChunkBoundaryInvariance(t *testing.T) {
	input := []byte("Welcome\r\nG#C>2,3:L>0,0,50,50:W>10,20,Hi@s>0:\n" +
		"G#&>0,10,5,0,L,4,x,0,x,199:\n" +
		"\x1bE\x1bY\x25\x30\x1bp\x05text G#X>4,1,0,0,9,9,2,zz:\ntail")
	whole := parseAll(NewIgsParser(), input)
	split := parseBytewise(NewIgsParser(), input)
	if !reflect.DeepEqual(whole.events, split.events) {
		t.Fatalf("bytewise parse diverged\nwhole: %v\nsplit: %v", whole.events, split.events)
	}
}
