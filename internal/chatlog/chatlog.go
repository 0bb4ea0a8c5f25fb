// Package chatlog stores chat exchanges as JSON lines in an append-only
// file and reads them back for the admin views.
package chatlog

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

var (
	// ErrNoLog is returned by Export when the log file does not exist.
	ErrNoLog = errors.New("no chat logs found")
	// ErrNoData is returned by Export when the file holds no valid records.
	ErrNoData = errors.New("no chat data to export")
)

// Record is one chat exchange
type Record struct {
	TS      int64  `json:"ts"`
	Message string `json:"message"`
	Lang    string `json:"lang"`
	Reply   string `json:"reply"`
	Intent  string `json:"intent"`
}

// Log is an append-only JSON lines file
type Log struct {
	path string
	mu   sync.Mutex
}

// New returns a Log writing to path. The file is created on first Append.
func New(path string) *Log {
	return &Log{path: path}
}

// Path returns the log file location
func (l *Log) Path() string {
	return l.path
}

// Append writes rec as a single line. The file is opened with O_APPEND for
// each write so separate processes can share it.
func (l *Log) Append(rec Record) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to encode chat record: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create chat log directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open chat log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to append chat record: %w", err)
	}
	return nil
}

// Tail returns the records parsed from the last limit lines of the file.
// Malformed lines are skipped, so fewer than limit records may come back.
// A missing file yields an empty slice.
func (l *Log) Tail(limit int) ([]Record, error) {
	lines, err := l.lines()
	if errors.Is(err, os.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, err
	}

	if limit >= 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return parse(lines), nil
}

// All returns every valid record in file order. It returns ErrNoLog when
// the file does not exist.
func (l *Log) All() ([]Record, error) {
	lines, err := l.lines()
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoLog
	}
	if err != nil {
		return nil, err
	}
	return parse(lines), nil
}

// Export writes every record as CSV with the header
// timestamp,message,language,reply. It returns ErrNoLog or ErrNoData
// before writing anything when there is nothing to export.
func (l *Log) Export(w io.Writer) (int, error) {
	records, err := l.All()
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, ErrNoData
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "message", "language", "reply"}); err != nil {
		return 0, err
	}
	for _, r := range records {
		row := []string{strconv.FormatInt(r.TS, 10), r.Message, r.Lang, r.Reply}
		if err := cw.Write(row); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(records), cw.Error()
}

func (l *Log) lines() ([][]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines [][]byte
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		lines = append(lines, append([]byte(nil), line...))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chat log: %w", err)
	}
	return lines, nil
}

func parse(lines [][]byte) []Record {
	out := make([]Record, 0, len(lines))
	for _, ln := range lines {
		var r Record
		if err := json.Unmarshal(ln, &r); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out
}
