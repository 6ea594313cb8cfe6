// Package repair recovers partial structured commentary from a failed
// generation attempt.
//
// This is a best-effort scraper over the diagnostic text of a schema
// failure. Its input grammar is narrow:
//
//	... Function Structure arguments: <payload> are not valid JSON ...
//
// The payload is taken verbatim between the two markers (to end of text when
// the trailing marker is absent), every backslash is doubled so raw LaTeX such
// as \alpha survives json decoding, and the result is parsed as a JSON object.
// The grammar is tied to the diagnostic format of the generator package; any
// mismatch degrades to sentinel defaults rather than an error.
package repair

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/valpere/arxenrich/internal"
)

const (
	// ArgumentsMarker precedes the raw arguments payload in a diagnostic.
	ArgumentsMarker = "Function Structure arguments:"
	// TrailingMarker follows the payload.
	TrailingMarker = "are not valid JSON"
)

var errNoPayload = errors.New("diagnostic carries no arguments payload")

// ErrNothingRecovered is returned when the payload parses but carries no
// non-empty field.
var ErrNothingRecovered = errors.New("no fields recovered")

// Recover builds a complete StructuredResult from diagnostic text. Recovered
// string fields override sentinel defaults; everything else stays default.
// The returned error reports why nothing could be recovered and is
// informational only: the result is always complete.
func Recover(diagnostic string) (internal.StructuredResult, error) {
	result := internal.DefaultStructuredResult()

	payload, err := ExtractPayload(diagnostic)
	if err != nil {
		return result, err
	}

	var partial map[string]any
	if err := json.Unmarshal([]byte(Sanitize(payload)), &partial); err != nil {
		return result, err
	}

	if Merge(&result, partial) == 0 {
		return Backfill(result), ErrNothingRecovered
	}
	return Backfill(result), nil
}

// ExtractPayload returns the trimmed text between ArgumentsMarker and
// TrailingMarker.
func ExtractPayload(diagnostic string) (string, error) {
	_, rest, ok := strings.Cut(diagnostic, ArgumentsMarker)
	if !ok {
		return "", errNoPayload
	}
	if before, _, found := strings.Cut(rest, TrailingMarker); found {
		rest = before
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", errNoPayload
	}
	return rest, nil
}

// Sanitize doubles every backslash in payload.
func Sanitize(payload string) string {
	return strings.ReplaceAll(payload, `\`, `\\`)
}

// Merge copies known string-valued keys of partial into dst and returns how
// many non-empty values it copied.
func Merge(dst *internal.StructuredResult, partial map[string]any) int {
	n := 0
	for _, field := range internal.Fields {
		if v, ok := partial[field].(string); ok {
			dst.Set(field, v)
			if v != "" {
				n++
			}
		}
	}
	return n
}

// Backfill replaces every empty field with its sentinel default. It is the
// final guarantee that no record leaves enrichment with a missing key.
func Backfill(r internal.StructuredResult) internal.StructuredResult {
	for _, field := range internal.Fields {
		if r.Get(field) == "" {
			r.Set(field, internal.Sentinel(field))
		}
	}
	return r
}
