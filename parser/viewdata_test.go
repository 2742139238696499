// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/viewdata_test.go
// Summary: Viewdata/Prestel parser tests.

package parser

import (
	"reflect"
	"testing"
)

func TestViewdataPlainCells(t *testing.T) {
	sink := parseAll(NewViewdataParser(), []byte("A"))
	want := []ViewDataCommand{
		{Op: VdSetChar, Ch: 'A'},
		{Op: VdMoveCaret, Dir: VdRight},
	}
	if !reflect.DeepEqual(sink.vds, want) {
		t.Fatalf("vds = %+v, want %+v", sink.vds, want)
	}
}

func TestViewdataAlphaColorIsSpacing(t *testing.T) {
	// The attribute code occupies a blank cell, then colors to end of row.
	sink := parseAll(NewViewdataParser(), []byte("\x1bB"))
	wantVds := []ViewDataCommand{
		{Op: VdSetChar, Ch: ' '},
		{Op: VdMoveCaret, Dir: VdRight},
		{Op: VdFillToEol},
	}
	if !reflect.DeepEqual(sink.vds, wantVds) {
		t.Fatalf("vds = %+v, want %+v", sink.vds, wantVds)
	}
	wantCmds := []TerminalCommand{attrCmd(AttrReveal), fgCmd(2)}
	if !reflect.DeepEqual(sink.cmds, wantCmds) {
		t.Fatalf("cmds = %+v, want %+v", sink.cmds, wantCmds)
	}
}

func TestViewdataMosaicRemap(t *testing.T) {
	sink := parseAll(NewViewdataParser(), []byte("\x1bQ!\x1bZ!"))
	var cells []byte
	for _, vd := range sink.vds {
		if vd.Op == VdSetChar {
			cells = append(cells, vd.Ch)
		}
	}
	// Attribute cells are spaces; contiguous mosaic maps 0x21 to 0x81,
	// separated to 0xC1.
	want := []byte{' ', 0x81, ' ', 0xC1}
	if !reflect.DeepEqual(cells, want) {
		t.Fatalf("cells = %x, want %x", cells, want)
	}
}

func TestViewdataHoldGraphics(t *testing.T) {
	sink := parseAll(NewViewdataParser(), []byte("\x1bQ!\x1b^\x1bH"))
	var cells []byte
	for _, vd := range sink.vds {
		if vd.Op == VdSetChar {
			cells = append(cells, vd.Ch)
		}
	}
	// With hold graphics on, control cells repeat the last mosaic char.
	want := []byte{' ', 0x81, 0x81, 0x81}
	if !reflect.DeepEqual(cells, want) {
		t.Fatalf("cells = %x, want %x", cells, want)
	}
}

func TestViewdataRowWrapResetsAttributes(t *testing.T) {
	p := NewViewdataParser()
	sink := &recordSink{vdWrap: true}
	p.Parse([]byte("A"), sink)
	want := []TerminalCommand{attrCmd(AttrReset)}
	if !reflect.DeepEqual(sink.cmds, want) {
		t.Fatalf("cmds = %+v, want attr reset after row wrap", sink.cmds)
	}
}

func TestViewdataLineFeedResetsAttributes(t *testing.T) {
	sink := parseAll(NewViewdataParser(), []byte("\x0a"))
	wantVds := []ViewDataCommand{{Op: VdMoveCaret, Dir: VdDown}}
	if !reflect.DeepEqual(sink.vds, wantVds) {
		t.Fatalf("vds = %+v, want %+v", sink.vds, wantVds)
	}
	wantCmds := []TerminalCommand{attrCmd(AttrReset)}
	if !reflect.DeepEqual(sink.cmds, wantCmds) {
		t.Fatalf("cmds = %+v, want %+v", sink.cmds, wantCmds)
	}
}

func TestViewdataControls(t *testing.T) {
	sink := parseAll(NewViewdataParser(), []byte("\x0c\x1e\x11\x14\x0d"))
	wantVds := []ViewDataCommand{{Op: VdClearScreen}}
	if !reflect.DeepEqual(sink.vds, wantVds) {
		t.Fatalf("vds = %+v, want %+v", sink.vds, wantVds)
	}
	wantCmds := []TerminalCommand{
		attrCmd(AttrReset),
		cmdXY(OpCursorPosition, 1, 1),
		modeCmd(OpSetMode, ModeCaretVisible),
		modeCmd(OpResetMode, ModeCaretVisible),
		cmd(OpCarriageReturn),
	}
	if !reflect.DeepEqual(sink.cmds, wantCmds) {
		t.Fatalf("cmds = %+v, want %+v", sink.cmds, wantCmds)
	}
}

func TestViewdataDoubleHeight(t *testing.T) {
	sink := parseAll(NewViewdataParser(), []byte("\x1bM\x1bL"))
	var toggles []bool
	for _, vd := range sink.vds {
		if vd.Op == VdDoubleHeight {
			toggles = append(toggles, vd.Enabled)
		}
	}
	want := []bool{true, false}
	if !reflect.DeepEqual(toggles, want) {
		t.Fatalf("double height toggles = %v, want %v", toggles, want)
	}
}

func TestViewdataShiftDoesNotDisturbPendingEscape(t *testing.T) {
	sink := parseAll(NewViewdataParser(), []byte("\x1b\x0eB"))
	want := []TerminalCommand{attrCmd(AttrReveal), fgCmd(2)}
	if !reflect.DeepEqual(sink.cmds, want) {
		t.Fatalf("cmds = %+v, want %+v", sink.cmds, want)
	}
}

func TestViewdataChunkBoundaryInvariance(t *testing.T) {
	input := []byte("Hello\x1bB green\x0a\x1bQ!!!\x1b^\x1bH\x1b_ \x0c\x1eEnd")
	whole := parseAll(NewViewdataParser(), input)
	split := parseBytewise(NewViewdataParser(), input)
	if !reflect.DeepEqual(whole.events, split.events) {
		t.Fatalf("bytewise parse diverged\nwhole: %v\nsplit: %v", whole.events, split.events)
	}
}
