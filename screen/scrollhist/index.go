// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/scrollhist/index.go
// Summary: SQLite FTS5 search index over captured scrollback.
//
// Indexing is asynchronous and batched: session replay produces lines
// far faster than per-row inserts can keep up with.

package scrollhist

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SearchIndex provides substring search over captured lines.
type SearchIndex interface {
	// IndexLine queues one line for indexing.
	IndexLine(lineIdx int64, timestamp time.Time, text string) error

	// DeleteLine removes a line, preventing stale matches after erases.
	DeleteLine(lineIdx int64) error

	// Search matches any substring of the indexed content and returns
	// up to limit results, newest first.
	Search(query string, limit int) ([]SearchResult, error)

	// FindLineAt returns the line index at or just before t.
	FindLineAt(t time.Time) (int64, error)

	// Flush blocks until all queued lines are indexed.
	Flush() error

	Close() error
}

// SearchResult is one matched line.
type SearchResult struct {
	LineIdx   int64
	Timestamp time.Time
	Content   string
}

// IndexConfig tunes the batch indexer.
type IndexConfig struct {
	DBPath        string
	BatchSize     int
	BatchTimeout  time.Duration
	ChannelBuffer int
}

// DefaultIndexConfig returns sensible defaults.
func DefaultIndexConfig(dbPath string) IndexConfig {
	return IndexConfig{
		DBPath:        dbPath,
		BatchSize:     100,
		BatchTimeout:  5 * time.Second,
		ChannelBuffer: 1000,
	}
}

type indexEntry struct {
	lineIdx   int64
	timestamp time.Time
	text      string
}

// sqliteIndex implements SearchIndex on SQLite FTS5 with a trigram
// tokenizer so partial tokens ("docker", "ls -l") match.
type sqliteIndex struct {
	config IndexConfig
	db     *sql.DB

	batchChan chan indexEntry
	stopCh    chan struct{}
	doneCh    chan struct{}
	flushCh   chan chan struct{}

	mu sync.RWMutex
}

const indexSchema = `
CREATE TABLE IF NOT EXISTS lines (
    id INTEGER PRIMARY KEY,           -- global line index
    timestamp INTEGER NOT NULL,       -- UnixNano
    content TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lines_timestamp ON lines(timestamp);

CREATE VIRTUAL TABLE IF NOT EXISTS lines_fts USING fts5(
    content,
    content='lines',
    content_rowid='id',
    tokenize='trigram'
);

CREATE TRIGGER IF NOT EXISTS lines_ai AFTER INSERT ON lines BEGIN
    INSERT INTO lines_fts(rowid, content) VALUES (new.id, new.content);
END;

CREATE TRIGGER IF NOT EXISTS lines_au AFTER UPDATE ON lines BEGIN
    INSERT INTO lines_fts(lines_fts, rowid, content) VALUES ('delete', old.id, old.content);
    INSERT INTO lines_fts(rowid, content) VALUES (new.id, new.content);
END;

CREATE TRIGGER IF NOT EXISTS lines_ad AFTER DELETE ON lines BEGIN
    INSERT INTO lines_fts(lines_fts, rowid, content) VALUES ('delete', old.id, old.content);
END;
`

// NewSearchIndex opens or creates the index database.
func NewSearchIndex(dbPath string) (SearchIndex, error) {
	return NewSearchIndexWithConfig(DefaultIndexConfig(dbPath))
}

// NewSearchIndexWithConfig opens an index with custom batching.
func NewSearchIndexWithConfig(config IndexConfig) (SearchIndex, error) {
	if err := os.MkdirAll(filepath.Dir(config.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dsn := config.DBPath +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=temp_store(MEMORY)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(indexSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	si := &sqliteIndex{
		config:    config,
		db:        db,
		batchChan: make(chan indexEntry, config.ChannelBuffer),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		flushCh:   make(chan chan struct{}),
	}
	go si.batchIndexer()
	return si, nil
}

// batchIndexer accumulates entries and writes them in transactions.
func (si *sqliteIndex) batchIndexer() {
	defer close(si.doneCh)

	batch := make([]indexEntry, 0, si.config.BatchSize)
	timer := time.NewTimer(si.config.BatchTimeout)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		si.flushBatch(batch)
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-si.batchChan:
			batch = append(batch, entry)
			if len(batch) >= si.config.BatchSize {
				flush()
				timer.Reset(si.config.BatchTimeout)
			}

		case <-timer.C:
			flush()
			timer.Reset(si.config.BatchTimeout)

		case done := <-si.flushCh:
			draining := true
			for draining {
				select {
				case entry := <-si.batchChan:
					batch = append(batch, entry)
				default:
					draining = false
				}
			}
			flush()
			close(done)

		case <-si.stopCh:
			for {
				select {
				case entry := <-si.batchChan:
					batch = append(batch, entry)
				default:
					flush()
					return
				}
			}
		}
	}
}

func (si *sqliteIndex) flushBatch(batch []indexEntry) {
	si.mu.Lock()
	defer si.mu.Unlock()

	tx, err := si.db.Begin()
	if err != nil {
		log.Printf("scrollhist: begin failed: %v", err)
		return
	}
	stmt, err := tx.Prepare("INSERT OR REPLACE INTO lines (id, timestamp, content) VALUES (?, ?, ?)")
	if err != nil {
		log.Printf("scrollhist: prepare failed: %v", err)
		tx.Rollback()
		return
	}
	defer stmt.Close()

	for _, e := range batch {
		if _, err := stmt.Exec(e.lineIdx, e.timestamp.UnixNano(), e.text); err != nil {
			log.Printf("scrollhist: insert line %d failed: %v", e.lineIdx, err)
			tx.Rollback()
			return
		}
	}
	if err := tx.Commit(); err != nil {
		log.Printf("scrollhist: commit failed: %v", err)
	}
}

func (si *sqliteIndex) IndexLine(lineIdx int64, timestamp time.Time, text string) error {
	if text == "" {
		return nil
	}
	select {
	case si.batchChan <- indexEntry{lineIdx: lineIdx, timestamp: timestamp, text: text}:
	default:
		// Channel full: drop rather than stall the replay path.
	}
	return nil
}

func (si *sqliteIndex) DeleteLine(lineIdx int64) error {
	si.mu.Lock()
	defer si.mu.Unlock()
	_, err := si.db.Exec("DELETE FROM lines WHERE id = ?", lineIdx)
	return err
}

func (si *sqliteIndex) Search(query string, limit int) ([]SearchResult, error) {
	if query == "" {
		return nil, nil
	}

	si.mu.RLock()
	defer si.mu.RUnlock()

	var rows *sql.Rows
	var err error
	if len(query) < 3 {
		// The trigram tokenizer needs three characters; fall back to
		// LIKE for shorter queries.
		pattern := "%" + strings.ReplaceAll(strings.ReplaceAll(query, "%", `\%`), "_", `\_`) + "%"
		rows, err = si.db.Query(`
			SELECT id, timestamp, content
			FROM lines
			WHERE content LIKE ? ESCAPE '\'
			ORDER BY timestamp DESC
			LIMIT ?
		`, pattern, limit)
	} else {
		// Double quotes force literal substring matching through FTS5.
		quoted := `"` + strings.ReplaceAll(query, `"`, `""`) + `"`
		rows, err = si.db.Query(`
			SELECT l.id, l.timestamp, l.content
			FROM lines_fts
			JOIN lines l ON l.id = lines_fts.rowid
			WHERE lines_fts MATCH ?
			ORDER BY l.timestamp DESC
			LIMIT ?
		`, quoted, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var tsNano int64
		if err := rows.Scan(&r.LineIdx, &tsNano, &r.Content); err != nil {
			continue
		}
		r.Timestamp = time.Unix(0, tsNano)
		results = append(results, r)
	}
	return results, rows.Err()
}

func (si *sqliteIndex) FindLineAt(t time.Time) (int64, error) {
	si.mu.RLock()
	defer si.mu.RUnlock()

	var lineIdx int64
	err := si.db.QueryRow(
		"SELECT id FROM lines WHERE timestamp <= ? ORDER BY timestamp DESC LIMIT 1",
		t.UnixNano(),
	).Scan(&lineIdx)
	if err == sql.ErrNoRows {
		err = si.db.QueryRow("SELECT id FROM lines ORDER BY timestamp ASC LIMIT 1").Scan(&lineIdx)
	}
	if err == sql.ErrNoRows {
		return -1, nil
	}
	return lineIdx, err
}

func (si *sqliteIndex) Flush() error {
	done := make(chan struct{})
	select {
	case si.flushCh <- done:
		<-done
	case <-si.stopCh:
	}
	return nil
}

func (si *sqliteIndex) Close() error {
	close(si.stopCh)
	<-si.doneCh
	return si.db.Close()
}
