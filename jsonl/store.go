// Package jsonl keeps a line-per-run history of analysis reports.
package jsonl

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/sdkdrift"
)

// Compile-time interface verification.
var _ sdkdrift.HistoryStore = (*Store)(nil)

// maxLineSize bounds a single history line.
const maxLineSize = 1024 * 1024

// Store appends and reads HistoryEntry records, one JSON object per line.
type Store struct{}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// Append writes e as the last line of the file at path, creating the file
// and its parent directories if needed.
func (s *Store) Append(path string, e sdkdrift.HistoryEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Load reads every entry in the file at path, oldest first. A missing file
// is an empty history. A malformed final line is dropped, since it is what
// an interrupted Append leaves behind; a malformed line anywhere else is an
// error.
func (s *Store) Load(path string) ([]sdkdrift.HistoryEntry, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		entries []sdkdrift.HistoryEntry
		torn    error
	)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if torn != nil {
			return nil, torn
		}
		var e sdkdrift.HistoryEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			torn = fmt.Errorf("line %d: %w", lineNum, err)
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// LastWithFingerprint returns the most recent entry for the same diff, if any.
func LastWithFingerprint(entries []sdkdrift.HistoryEntry, fingerprint string) (sdkdrift.HistoryEntry, bool) {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].DiffFingerprint == fingerprint {
			return entries[i], true
		}
	}
	return sdkdrift.HistoryEntry{}, false
}
