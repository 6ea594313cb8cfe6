// Package writer persists enriched records as line-delimited JSON.
package writer

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/valpere/arxenrich/internal"
)

// OutputPath derives the enriched file name from the input file name, e.g.
// data/2025-01-01.jsonl -> data/2025-01-01_AI_enhanced_Chinese.jsonl.
func OutputPath(input, language string) string {
	suffix := "_AI_enhanced_" + language + ".jsonl"
	if base, ok := strings.CutSuffix(input, ".jsonl"); ok {
		return base + suffix
	}
	return input + suffix
}

// RemoveStale deletes a previous run's output. A missing file is not an error.
func RemoveStale(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove stale output: %w", err)
	}
	return nil
}

// Write replaces the file at path with one JSON line per record, in order.
func Write(path string, records []internal.Record) error {
	if err := RemoveStale(path); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i := range records {
		if err := enc.Encode(records[i]); err != nil {
			f.Close()
			return fmt.Errorf("failed to encode record %s: %w", records[i].ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync output file: %w", err)
	}
	return f.Close()
}
