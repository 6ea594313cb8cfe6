package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field names of the structured commentary, in the order they are checked
// and rendered.
const (
	FieldTLDR       = "tldr"
	FieldMotivation = "motivation"
	FieldMethod     = "method"
	FieldResult     = "result"
	FieldConclusion = "conclusion"
)

// Fields lists the five required StructuredResult keys in canonical order.
var Fields = []string{FieldTLDR, FieldMotivation, FieldMethod, FieldResult, FieldConclusion}

// sentinels are the placeholder values used when a field could not be
// generated or recovered.
var sentinels = map[string]string{
	FieldTLDR:       "Summary generation failed",
	FieldMotivation: "Motivation analysis unavailable",
	FieldMethod:     "Method extraction failed",
	FieldResult:     "Result analysis unavailable",
	FieldConclusion: "Conclusion extraction failed",
}

// Sentinel returns the placeholder value for field, or "" for unknown fields.
func Sentinel(field string) string {
	return sentinels[field]
}

// StructuredResult is the five-field commentary attached to a record.
type StructuredResult struct {
	TLDR       string `json:"tldr"`
	Motivation string `json:"motivation"`
	Method     string `json:"method"`
	Result     string `json:"result"`
	Conclusion string `json:"conclusion"`
}

// DefaultStructuredResult returns a result made entirely of sentinel values.
func DefaultStructuredResult() StructuredResult {
	return StructuredResult{
		TLDR:       sentinels[FieldTLDR],
		Motivation: sentinels[FieldMotivation],
		Method:     sentinels[FieldMethod],
		Result:     sentinels[FieldResult],
		Conclusion: sentinels[FieldConclusion],
	}
}

// Get returns the value of the named field.
func (s *StructuredResult) Get(field string) string {
	switch field {
	case FieldTLDR:
		return s.TLDR
	case FieldMotivation:
		return s.Motivation
	case FieldMethod:
		return s.Method
	case FieldResult:
		return s.Result
	case FieldConclusion:
		return s.Conclusion
	}
	return ""
}

// Set assigns the named field. Unknown names are ignored and reported false.
func (s *StructuredResult) Set(field, value string) bool {
	switch field {
	case FieldTLDR:
		s.TLDR = value
	case FieldMotivation:
		s.Motivation = value
	case FieldMethod:
		s.Method = value
	case FieldResult:
		s.Result = value
	case FieldConclusion:
		s.Conclusion = value
	default:
		return false
	}
	return true
}

// Record is one harvested paper. Every JSON key other than id, summary and
// AI is kept verbatim in Extra and written back unchanged.
type Record struct {
	ID      string
	Summary string
	AI      *StructuredResult
	Extra   map[string]json.RawMessage
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("record is not a JSON object")
	}

	idRaw, ok := raw["id"]
	if !ok {
		return fmt.Errorf("record has no id")
	}
	if err := json.Unmarshal(idRaw, &r.ID); err != nil {
		return fmt.Errorf("record id: %w", err)
	}
	delete(raw, "id")

	if s, ok := raw["summary"]; ok {
		if err := json.Unmarshal(s, &r.Summary); err != nil {
			return fmt.Errorf("record %s summary: %w", r.ID, err)
		}
		delete(raw, "summary")
	}

	if ai, ok := raw["AI"]; ok && string(ai) != "null" {
		r.AI = &StructuredResult{}
		if err := json.Unmarshal(ai, r.AI); err != nil {
			return fmt.Errorf("record %s AI: %w", r.ID, err)
		}
	}
	delete(raw, "AI")

	r.Extra = raw
	return nil
}

// MarshalJSON writes the record with its pass-through metadata. Keys are
// emitted in sorted order, so output is byte-stable for identical input.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+3)
	for k, v := range r.Extra {
		out[k] = v
	}
	out["id"] = r.ID
	out["summary"] = r.Summary
	if r.AI != nil {
		out["AI"] = r.AI
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
