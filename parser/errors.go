// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/errors.go
// Summary: Parse diagnostics carried out of band through the sink.

package parser

import "fmt"

// ErrorLevel grades a ParseError. Every anomaly the parsers produce is a
// warning: the offending token is discarded and parsing continues.
type ErrorLevel int

const (
	LevelWarning ErrorLevel = iota
	LevelError
)

func (l ErrorLevel) String() string {
	if l == LevelError {
		return "error"
	}
	return "warning"
}

// ParseErrorKind tags a ParseError.
type ParseErrorKind int

const (
	// ErrInvalidParameter: a structurally valid sequence carried a value
	// the command does not accept.
	ErrInvalidParameter ParseErrorKind = iota
	// ErrMalformedSequence: the byte stream itself violated the
	// dialect's grammar.
	ErrMalformedSequence
)

// ParseError is descriptive data, not control flow. Parsers never return
// Go errors for malformed input.
type ParseError struct {
	Kind ParseErrorKind

	// InvalidParameter fields.
	Command  string
	Value    string
	Expected string

	// MalformedSequence fields.
	Description string
	Sequence    string
	Context     string
}

func invalidParameter(command, value, expected string) ParseError {
	return ParseError{Kind: ErrInvalidParameter, Command: command, Value: value, Expected: expected}
}

func malformedSequence(description, sequence, context string) ParseError {
	return ParseError{Kind: ErrMalformedSequence, Description: description, Sequence: sequence, Context: context}
}

func (e ParseError) String() string {
	switch e.Kind {
	case ErrInvalidParameter:
		if e.Expected != "" {
			return fmt.Sprintf("invalid %s parameter %q (expected %s)", e.Command, e.Value, e.Expected)
		}
		return fmt.Sprintf("invalid %s parameter %q", e.Command, e.Value)
	default:
		if e.Sequence != "" {
			return fmt.Sprintf("malformed sequence %q: %s (%s)", e.Sequence, e.Description, e.Context)
		}
		return fmt.Sprintf("malformed sequence: %s (%s)", e.Description, e.Context)
	}
}
