// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/parser.go
// Summary: The common parser contract and the baseline ASCII dialect.
// Usage: Feed byte chunks to Parse; state survives arbitrary chunk splits.
// Notes: A single parser instance must own one session's byte stream.

package parser

// CommandParser converts raw bytes into calls on a CommandSink. A parser
// holds only the state needed to resume across chunk boundaries; a
// single byte is a valid chunk, and the final state never depends on
// where the caller splits the stream. Instances are not safe for
// concurrent use.
type CommandParser interface {
	Parse(input []byte, sink CommandSink)
}

// AsciiParser handles the plain-text baseline: single-byte controls are
// emitted as commands, everything else passes through as printable runs.
type AsciiParser struct{}

func NewAsciiParser() *AsciiParser { return &AsciiParser{} }

func (p *AsciiParser) Parse(input []byte, sink CommandSink) {
	start := 0
	for i := 0; i < len(input); i++ {
		c, isCtrl := asciiControl(input[i])
		if !isCtrl {
			continue
		}
		flushPrintable(input, start, i, sink)
		start = i + 1
		sink.Emit(c)
	}
	flushPrintable(input, start, len(input), sink)
}

// asciiControl maps the single-byte controls every text dialect shares.
func asciiControl(b byte) (TerminalCommand, bool) {
	switch b {
	case 0x07:
		return cmd(OpBell), true
	case 0x08:
		return cmd(OpBackspace), true
	case 0x09:
		return cmd(OpTab), true
	case 0x0A:
		return cmd(OpLineFeed), true
	case 0x0C:
		return cmd(OpFormFeed), true
	case 0x0D:
		return cmd(OpCarriageReturn), true
	}
	return TerminalCommand{}, false
}

func flushPrintable(input []byte, start, end int, sink CommandSink) {
	if start < end {
		sink.Print(input[start:end])
	}
}
