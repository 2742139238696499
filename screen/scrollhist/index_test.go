// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/scrollhist/index_test.go
// Summary: Search index tests against a throwaway database.

package scrollhist

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestIndex(t *testing.T) SearchIndex {
	t.Helper()
	cfg := DefaultIndexConfig(filepath.Join(t.TempDir(), "index.db"))
	cfg.BatchSize = 2
	cfg.BatchTimeout = 50 * time.Millisecond
	idx, err := NewSearchIndexWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewSearchIndexWithConfig: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestIndexSearchSubstring(t *testing.T) {
	idx := newTestIndex(t)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	idx.IndexLine(0, base, "Welcome to The Cave BBS")
	idx.IndexLine(1, base.Add(time.Second), "Press ESC twice for the menu")
	idx.IndexLine(2, base.Add(2*time.Second), "welcome back, sysop")
	if err := idx.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	results, err := idx.Search("welcome", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results: %+v", len(results), results)
	}
	// Newest first.
	if results[0].LineIdx != 2 || results[1].LineIdx != 0 {
		t.Fatalf("result order = %d, %d", results[0].LineIdx, results[1].LineIdx)
	}
	if results[0].Content != "welcome back, sysop" {
		t.Fatalf("content = %q", results[0].Content)
	}
	if !results[0].Timestamp.Equal(base.Add(2 * time.Second)) {
		t.Fatalf("timestamp = %v", results[0].Timestamp)
	}
}

func TestIndexShortQueryFallsBackToLike(t *testing.T) {
	idx := newTestIndex(t)
	now := time.Now()
	idx.IndexLine(0, now, "total 48K free")
	idx.IndexLine(1, now.Add(time.Second), "no match here")
	idx.Flush()

	results, err := idx.Search("48", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].LineIdx != 0 {
		t.Fatalf("results = %+v", results)
	}
}

func TestIndexEmptyLinesSkipped(t *testing.T) {
	idx := newTestIndex(t)
	idx.IndexLine(0, time.Now(), "")
	idx.IndexLine(1, time.Now(), "kept")
	idx.Flush()

	results, err := idx.Search("kept", 10)
	if err != nil || len(results) != 1 {
		t.Fatalf("results = %+v, err = %v", results, err)
	}
	if results, _ := idx.Search("", 10); results != nil {
		t.Fatalf("empty query returned %+v", results)
	}
}

func TestIndexDeleteLine(t *testing.T) {
	idx := newTestIndex(t)
	idx.IndexLine(0, time.Now(), "password hunter2")
	idx.Flush()

	if err := idx.DeleteLine(0); err != nil {
		t.Fatalf("DeleteLine: %v", err)
	}
	results, err := idx.Search("hunter2", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("deleted line still matches: %+v", results)
	}
}

func TestIndexFindLineAt(t *testing.T) {
	idx := newTestIndex(t)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	idx.IndexLine(10, base, "first")
	idx.IndexLine(20, base.Add(time.Minute), "second")
	idx.Flush()

	got, err := idx.FindLineAt(base.Add(30 * time.Second))
	if err != nil || got != 10 {
		t.Fatalf("FindLineAt mid = %d, err = %v", got, err)
	}
	// Before the first line: fall forward to the earliest.
	got, err = idx.FindLineAt(base.Add(-time.Hour))
	if err != nil || got != 10 {
		t.Fatalf("FindLineAt early = %d, err = %v", got, err)
	}
	got, err = idx.FindLineAt(base.Add(time.Hour))
	if err != nil || got != 20 {
		t.Fatalf("FindLineAt late = %d, err = %v", got, err)
	}
}

func TestIndexFindLineAtEmpty(t *testing.T) {
	idx := newTestIndex(t)
	got, err := idx.FindLineAt(time.Now())
	if err != nil || got != -1 {
		t.Fatalf("FindLineAt on empty index = %d, err = %v", got, err)
	}
}
