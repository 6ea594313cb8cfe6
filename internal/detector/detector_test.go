package detector

import (
	"testing"

	lingua "github.com/pemistahl/lingua-go"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		lang lingua.Language
		want string
		ok   bool
	}{
		{lingua.Chinese, "Chinese", true},
		{lingua.Chinese, "chinese", true},
		{lingua.Chinese, "zh", true},
		{lingua.English, "EN", true},
		{lingua.English, "Chinese", false},
		{lingua.German, "", false},
	}
	for _, tt := range tests {
		if got := Matches(tt.lang, tt.want); got != tt.ok {
			t.Errorf("Matches(%v, %q) = %v, want %v", tt.lang, tt.want, got, tt.ok)
		}
	}
}

func TestKnown(t *testing.T) {
	if !Known("Japanese") {
		t.Error("expected Japanese to be known")
	}
	if Known("Klingon") {
		t.Error("expected Klingon to be unknown")
	}
}

func TestDetect_Empty(t *testing.T) {
	d := New()
	if _, ok := d.Detect("   "); ok {
		t.Error("expected no detection for blank text")
	}
}
