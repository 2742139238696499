// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/scrollhist/recorder.go
// Summary: HistorySink that persists and indexes scrollback in one step.

package scrollhist

import (
	"time"

	"github.com/framegrace/retroterm/screen"
)

// Recorder fans scrolled-off lines out to the line log and, when an
// index is attached, the search index.
type Recorder struct {
	Store *Store
	Index SearchIndex

	nextLine int64
}

// NewRecorder wraps a store with an optional search index.
func NewRecorder(store *Store, index SearchIndex) *Recorder {
	return &Recorder{Store: store, Index: index}
}

// AddHistoryLine implements screen.HistorySink.
func (r *Recorder) AddHistoryLine(line []screen.AttributedChar) {
	idx := r.nextLine
	r.nextLine++
	if r.Store != nil {
		r.Store.AddHistoryLine(line)
	}
	if r.Index != nil {
		r.Index.IndexLine(idx, time.Now(), LineText(line))
	}
}

// LineCount returns how many lines have passed through.
func (r *Recorder) LineCount() int64 { return r.nextLine }

// Close flushes and closes both backends.
func (r *Recorder) Close(meta SessionMetadata) error {
	var firstErr error
	if r.Index != nil {
		r.Index.Flush()
		if err := r.Index.Close(); err != nil {
			firstErr = err
		}
	}
	if r.Store != nil {
		if err := r.Store.Close(meta); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
