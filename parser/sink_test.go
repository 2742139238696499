// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/sink_test.go
// Summary: Recording CommandSink shared by the dialect parser tests.

package parser

import "fmt"

// recordSink captures every sink call as a normalized string so tests
// can compare full event streams.
type recordSink struct {
	events   []string
	warnings []ParseError

	cmds    []TerminalCommand
	rips    []RipCommand
	igs     []IgsCommand
	sky     []SkypixCommand
	vds     []ViewDataCommand
	reqs    []TerminalRequest
	printed []byte

	// vdWrap is returned from EmitViewData.
	vdWrap bool
}

func (r *recordSink) Print(data []byte) {
	r.printed = append(r.printed, data...)
	// Merge adjacent prints: chunked input may split a printable run,
	// which is invisible to a real consumer.
	if n := len(r.events); n > 0 && len(r.events[n-1]) > 6 && r.events[n-1][:6] == "print " {
		r.events[n-1] += string(data)
		return
	}
	r.events = append(r.events, "print "+string(data))
}

func (r *recordSink) Emit(cmd TerminalCommand) {
	r.cmds = append(r.cmds, cmd)
	r.events = append(r.events, fmt.Sprintf("cmd %d n=%d x=%d y=%d rect=%v attr=%v mode=%d",
		cmd.Op, cmd.N, cmd.X, cmd.Y, cmd.Rect, cmd.Attr, cmd.Mode))
}

func (r *recordSink) EmitRip(cmd RipCommand) {
	r.rips = append(r.rips, cmd)
	r.events = append(r.events, fmt.Sprintf("rip %d %v %q %d", cmd.Op, cmd.Args, cmd.Text, cmd.Ch))
}

func (r *recordSink) EmitIgs(cmd IgsCommand) {
	r.igs = append(r.igs, cmd)
	if cmd.Op == IgsLoopOp {
		r.events = append(r.events, fmt.Sprintf("igsloop %+v", *cmd.Loop))
		return
	}
	r.events = append(r.events, fmt.Sprintf("igs %d %v %q", cmd.Op, cmd.Args, cmd.Text))
}

func (r *recordSink) EmitSkypix(cmd SkypixCommand) {
	r.sky = append(r.sky, cmd)
	r.events = append(r.events, fmt.Sprintf("skypix %d %v %q", cmd.Op, cmd.Args, cmd.Text))
}

func (r *recordSink) EmitViewData(cmd ViewDataCommand) bool {
	r.vds = append(r.vds, cmd)
	r.events = append(r.events, fmt.Sprintf("vd %d ch=%d dir=%d on=%v", cmd.Op, cmd.Ch, cmd.Dir, cmd.Enabled))
	return r.vdWrap
}

func (r *recordSink) DeviceControl(dcs DeviceControlString) {
	switch dcs.Kind {
	case DCSSixel:
		r.events = append(r.events, "dcs sixel")
	case DCSMacroDefinition:
		r.events = append(r.events, fmt.Sprintf("dcs macro %d %q", dcs.MacroID, dcs.MacroBody))
	case DCSFontSelection:
		r.events = append(r.events, fmt.Sprintf("dcs font %d len=%d", dcs.FontSlot, len(dcs.FontData)))
	default:
		r.events = append(r.events, fmt.Sprintf("dcs %d", dcs.Kind))
	}
}

func (r *recordSink) OperatingSystemCommand(data string) {
	r.events = append(r.events, "osc "+data)
}

func (r *recordSink) Aps(data []byte) {
	r.events = append(r.events, "aps "+string(data))
}

func (r *recordSink) Request(req TerminalRequest) {
	r.reqs = append(r.reqs, req)
	r.events = append(r.events, fmt.Sprintf("req %d n=%d", req.Kind, req.N))
}

func (r *recordSink) ReportError(err ParseError, level ErrorLevel) {
	r.warnings = append(r.warnings, err)
	r.events = append(r.events, fmt.Sprintf("warn %s", err))
}

// parseAll runs a fresh parser over the whole input.
func parseAll(p CommandParser, input []byte) *recordSink {
	sink := &recordSink{}
	p.Parse(input, sink)
	return sink
}

// parseBytewise feeds the input one byte per call.
func parseBytewise(p CommandParser, input []byte) *recordSink {
	sink := &recordSink{}
	for i := range input {
		p.Parse(input[i:i+1], sink)
	}
	return sink
}
