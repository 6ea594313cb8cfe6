// Package loader reads the harvested JSONL record stream and removes
// duplicate identifiers before any enrichment work starts.
package loader

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/valpere/arxenrich/internal"
)

// maxLineBytes bounds a single JSONL line. Abstracts with long author lists
// easily exceed bufio's 64KiB default.
const maxLineBytes = 16 * 1024 * 1024

// ErrMalformed marks a line that is not a valid record object.
var ErrMalformed = errors.New("malformed record")

// Load reads every record from the JSONL file at path. Any malformed line
// aborts the load.
func Load(path string) ([]internal.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses records from r, one JSON object per line. Blank lines are
// skipped; line numbers in errors are 1-based.
func Read(r io.Reader) ([]internal.Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var records []internal.Record
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec internal.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w: %v", lineNo, ErrMalformed, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	return records, nil
}

// Dedup keeps the first occurrence of every id and preserves input order.
// It returns the surviving records and the number removed.
func Dedup(records []internal.Record) ([]internal.Record, int) {
	seen := make(map[string]struct{}, len(records))
	unique := make([]internal.Record, 0, len(records))
	for _, rec := range records {
		if _, dup := seen[rec.ID]; dup {
			continue
		}
		seen[rec.ID] = struct{}{}
		unique = append(unique, rec)
	}
	return unique, len(records) - len(unique)
}
