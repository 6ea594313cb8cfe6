package validator

import (
	"sync"
	"testing"
)

var shared = New()

func TestNew_BuildsDetectorLazily(t *testing.T) {
	v := New()
	if v.det != nil {
		t.Fatal("expected no detector before first check")
	}

	v.IsValid("Hi", "English")
	v.IsValid("Some generated text long enough to check.", "")
	v.IsValid("Some generated text long enough to check.", "Elvish")
	if v.det != nil {
		t.Error("expected checks that skip detection to leave the detector unbuilt")
	}

	v.IsValid("The authors propose a new method for training models.", "English")
	if v.det == nil {
		t.Error("expected detector after a full check")
	}
}

func TestIsValid_Concurrent(t *testing.T) {
	v := New()
	text := "The authors propose a new method for training large language models efficiently."

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := v.IsValid(text, "English"); !ok {
				t.Errorf("expected English text to validate, got %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestIsValid_EmptyLanguage(t *testing.T) {
	valid, err := shared.IsValid("Some generated text", "")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !valid {
		t.Error("expected valid=true for empty language")
	}
}

func TestIsValid_UnknownLanguage(t *testing.T) {
	valid, err := shared.IsValid("This is clearly an English sentence about transformers.", "Elvish")
	if err != nil || !valid {
		t.Errorf("expected unknown language to pass, got valid=%v err=%v", valid, err)
	}
}

func TestIsValid_EmptyText(t *testing.T) {
	valid, err := shared.IsValid("   ", "English")
	if err == nil {
		t.Error("expected error for empty text")
	}
	if valid {
		t.Error("expected valid=false for empty text")
	}
}

func TestIsValid_ShortText(t *testing.T) {
	valid, err := shared.IsValid("Hi", "Chinese")
	if err != nil || !valid {
		t.Errorf("expected short text to pass, got valid=%v err=%v", valid, err)
	}
}

func TestIsValid_Match(t *testing.T) {
	text := "The authors propose a new method for training large language models efficiently."
	valid, err := shared.IsValid(text, "English")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !valid {
		t.Error("expected English text to validate as English")
	}

	valid, _ = shared.IsValid(text, "en")
	if !valid {
		t.Error("expected ISO code to be accepted")
	}
}

func TestIsValid_Mismatch(t *testing.T) {
	text := "The authors propose a new method for training large language models efficiently."
	valid, err := shared.IsValid(text, "Chinese")
	if valid {
		t.Error("expected English text to fail Chinese validation")
	}
	if err == nil {
		t.Error("expected mismatch error")
	}
}
