// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/scrollhist/store.go
// Summary: File-based persistence for scrollback lines.
// Usage: A Store is plugged into a TextBuffer as its HistorySink.
// Notes: The cell codec reuses the attribute wire packing so extended
//        and RGB colors round-trip losslessly.

package scrollhist

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/framegrace/retroterm/screen"
)

const (
	storeMagic      = "RTHIST01" // 8 bytes
	cellEncodedSize = 16         // rune(4) + fg(4) + bg(4) + flags(2) + font(1) + protected(1)
)

// FileFlags describe the store file header.
type FileFlags uint32

const (
	FlagCompressed FileFlags = 1 << 0
)

// Config selects where and how scrollback is persisted.
type Config struct {
	PersistDir string
	Compress   bool
}

// SessionMetadata is written next to the line log on Close.
type SessionMetadata struct {
	SessionID string    `json:"session_id"`
	Dialect   string    `json:"dialect"`
	Width     int       `json:"width"`
	Started   time.Time `json:"started"`
	Ended     time.Time `json:"ended,omitempty"`
	LineCount int       `json:"line_count"`
}

// Store appends scrollback lines to a per-session file under a dated
// directory. It implements screen.HistorySink.
type Store struct {
	sessionFile string
	metaFile    string

	// Write pipeline: file -> buffer -> gzip.
	file       *os.File
	bufWriter  *bufio.Writer
	gzipWriter *gzip.Writer

	compress bool

	lineCount    int
	bytesWritten int64

	mu sync.Mutex
}

// NewStore opens a session log for writing.
func NewStore(config Config, meta SessionMetadata) (*Store, error) {
	now := time.Now()
	dateDir := filepath.Join(
		config.PersistDir,
		fmt.Sprintf("%04d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		fmt.Sprintf("%02d", now.Day()),
	)
	if err := os.MkdirAll(dateDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	ext := ".hist"
	if config.Compress {
		ext += ".gz"
	}
	sessionFile := filepath.Join(dateDir, meta.SessionID+ext)
	metaFile := filepath.Join(dateDir, meta.SessionID+".meta")

	file, err := os.OpenFile(sessionFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create history file: %w", err)
	}

	s := &Store{
		sessionFile: sessionFile,
		metaFile:    metaFile,
		file:        file,
		compress:    config.Compress,
	}
	if err := s.writeHeader(); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	s.bufWriter = bufio.NewWriter(file)
	if config.Compress {
		s.gzipWriter = gzip.NewWriter(s.bufWriter)
	}
	return s, nil
}

func (s *Store) writeHeader() error {
	var flags FileFlags
	if s.compress {
		flags |= FlagCompressed
	}
	header := make([]byte, len(storeMagic)+4)
	copy(header, storeMagic)
	binary.LittleEndian.PutUint32(header[len(storeMagic):], uint32(flags))

	n, err := s.file.Write(header)
	if err != nil {
		return err
	}
	s.bytesWritten += int64(n)
	return nil
}

func (s *Store) writer() io.Writer {
	if s.gzipWriter != nil {
		return s.gzipWriter
	}
	return s.bufWriter
}

// AddHistoryLine receives one line scrolled off the top of the buffer.
// Write errors are swallowed here because the sink is called from the
// command application path; check them at Flush or Close.
func (s *Store) AddHistoryLine(line []screen.AttributedChar) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.writeLineLocked(line)
}

// WriteLines appends multiple lines and flushes.
func (s *Store) WriteLines(lines [][]screen.AttributedChar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range lines {
		if err := s.writeLineLocked(line); err != nil {
			return err
		}
	}
	return s.flushLocked()
}

func (s *Store) writeLineLocked(line []screen.AttributedChar) error {
	w := s.writer()

	// Line format: [length:4][cell data...]
	lenBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBuf, uint32(len(line)))
	if _, err := w.Write(lenBuf); err != nil {
		return err
	}

	cellBuf := make([]byte, cellEncodedSize)
	for _, cell := range line {
		encodeCell(cell, cellBuf)
		if _, err := w.Write(cellBuf); err != nil {
			return err
		}
	}
	s.lineCount++
	return nil
}

func encodeCell(cell screen.AttributedChar, buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(cell.Ch))
	binary.LittleEndian.PutUint32(buf[4:8], cell.Attr.Foreground.ToU32())
	binary.LittleEndian.PutUint32(buf[8:12], cell.Attr.Background.ToU32())
	binary.LittleEndian.PutUint16(buf[12:14], uint16(cell.Attr.Flags))
	buf[14] = cell.Attr.FontPage
	if cell.Attr.Protected {
		buf[15] = 1
	} else {
		buf[15] = 0
	}
}

func decodeCell(buf []byte) screen.AttributedChar {
	var cell screen.AttributedChar
	cell.Ch = rune(binary.LittleEndian.Uint32(buf[0:4]))
	cell.Attr.Foreground = screen.ColorFromU32(binary.LittleEndian.Uint32(buf[4:8]))
	cell.Attr.Background = screen.ColorFromU32(binary.LittleEndian.Uint32(buf[8:12]))
	cell.Attr.Flags = screen.AttrFlags(binary.LittleEndian.Uint16(buf[12:14]))
	cell.Attr.FontPage = buf[14]
	cell.Attr.Protected = buf[15] != 0
	return cell
}

func (s *Store) flushLocked() error {
	if s.gzipWriter != nil {
		if err := s.gzipWriter.Flush(); err != nil {
			return err
		}
	}
	if s.bufWriter != nil {
		if err := s.bufWriter.Flush(); err != nil {
			return err
		}
	}
	return s.file.Sync()
}

// Flush forces buffered lines to disk.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

// Close flushes, closes the log and writes the metadata file.
func (s *Store) Close(meta SessionMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	flushErr := s.flushLocked()
	if s.gzipWriter != nil {
		if err := s.gzipWriter.Close(); err != nil && flushErr == nil {
			flushErr = err
		}
	}
	if err := s.file.Close(); err != nil && flushErr == nil {
		flushErr = err
	}

	meta.LineCount = s.lineCount
	meta.Ended = time.Now()
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.metaFile, data, 0600); err != nil {
		return err
	}
	return flushErr
}

// LineCount returns the number of lines written so far.
func (s *Store) LineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lineCount
}

// Path returns the session log location.
func (s *Store) Path() string { return s.sessionFile }

// ReadSession loads every line of a session log.
func ReadSession(path string) ([][]screen.AttributedChar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header := make([]byte, len(storeMagic)+4)
	if _, err := io.ReadFull(f, header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if string(header[:len(storeMagic)]) != storeMagic {
		return nil, fmt.Errorf("not a session log: %s", path)
	}
	flags := FileFlags(binary.LittleEndian.Uint32(header[len(storeMagic):]))

	var r io.Reader = bufio.NewReader(f)
	if flags&FlagCompressed != 0 {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}

	var lines [][]screen.AttributedChar
	lenBuf := make([]byte, 4)
	cellBuf := make([]byte, cellEncodedSize)
	for {
		if _, err := io.ReadFull(r, lenBuf); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return lines, nil
			}
			return lines, err
		}
		n := int(binary.LittleEndian.Uint32(lenBuf))
		line := make([]screen.AttributedChar, 0, n)
		for i := 0; i < n; i++ {
			if _, err := io.ReadFull(r, cellBuf); err != nil {
				return lines, err
			}
			line = append(line, decodeCell(cellBuf))
		}
		lines = append(lines, line)
	}
}

// LineText flattens an attributed line for indexing and display.
func LineText(line []screen.AttributedChar) string {
	runes := make([]rune, 0, len(line))
	for _, cell := range line {
		if cell.Ch == 0 {
			runes = append(runes, ' ')
			continue
		}
		runes = append(runes, cell.Ch)
	}
	// Trim trailing blanks.
	end := len(runes)
	for end > 0 && runes[end-1] == ' ' {
		end--
	}
	return string(runes[:end])
}
