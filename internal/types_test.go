package internal

import (
	"encoding/json"
	"testing"
)

func TestRecord_RoundTripKeepsMetadata(t *testing.T) {
	in := `{"id":"2401.00001","summary":"We study <attention> & more.","title":"Sparse","authors":["A","B"],"categories":["cs.LG"]}`

	var r Record
	if err := json.Unmarshal([]byte(in), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if r.ID != "2401.00001" {
		t.Errorf("unexpected id %q", r.ID)
	}
	if r.AI != nil {
		t.Error("expected no AI field")
	}

	ai := DefaultStructuredResult()
	r.AI = &ai

	out, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var back map[string]any
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if back["title"] != "Sparse" {
		t.Errorf("title not preserved: %v", back["title"])
	}
	if authors, _ := back["authors"].([]any); len(authors) != 2 {
		t.Errorf("authors not preserved: %v", back["authors"])
	}
	aiOut, _ := back["AI"].(map[string]any)
	if aiOut["tldr"] != "Summary generation failed" {
		t.Errorf("unexpected AI.tldr: %v", aiOut["tldr"])
	}
}

func TestRecord_MarshalIsStable(t *testing.T) {
	in := `{"zeta":1,"id":"x","alpha":"a","summary":"s"}`
	var r Record
	if err := json.Unmarshal([]byte(in), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	first, _ := json.Marshal(r)
	second, _ := json.Marshal(r)
	if string(first) != string(second) {
		t.Errorf("marshal not stable:\n%s\n%s", first, second)
	}
	want := `{"alpha":"a","id":"x","summary":"s","zeta":1}`
	if string(first) != want {
		t.Errorf("got %s, want %s", first, want)
	}
}

func TestRecord_UnmarshalErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not an object", `["id"]`},
		{"null", `null`},
		{"missing id", `{"summary":"s"}`},
		{"numeric id", `{"id":42,"summary":"s"}`},
		{"numeric summary", `{"id":"x","summary":7}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Record
			if err := json.Unmarshal([]byte(tt.input), &r); err == nil {
				t.Errorf("expected error for %s", tt.input)
			}
		})
	}
}

func TestRecord_MissingSummaryIsEmpty(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(`{"id":"x"}`), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if r.Summary != "" {
		t.Errorf("expected empty summary, got %q", r.Summary)
	}
}

func TestStructuredResult_GetSet(t *testing.T) {
	var s StructuredResult
	for _, f := range Fields {
		if !s.Set(f, f+"-value") {
			t.Errorf("Set(%q) reported unknown field", f)
		}
		if got := s.Get(f); got != f+"-value" {
			t.Errorf("Get(%q) = %q", f, got)
		}
	}
	if s.Set("abstract", "x") {
		t.Error("expected unknown field to be rejected")
	}
	if Sentinel("abstract") != "" {
		t.Error("expected no sentinel for unknown field")
	}
}
