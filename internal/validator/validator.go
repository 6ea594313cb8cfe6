// Package validator checks that generated commentary is written in the
// requested output language.
package validator

import (
	"fmt"
	"strings"
	"sync"

	"github.com/valpere/arxenrich/internal/detector"
)

// minValidationLength is the minimum rune count required to attempt language
// detection. Shorter texts are accepted without validation.
const minValidationLength = 20

// Validator is safe for concurrent use. The detector is built on the first
// text long enough to check.
type Validator struct {
	once sync.Once
	det  *detector.Detector
}

// New creates a Validator backed by the lingua-go language detector.
func New() *Validator {
	return &Validator{}
}

func (v *Validator) lazyDetector() *detector.Detector {
	v.once.Do(func() { v.det = detector.New() })
	return v.det
}

// IsValid reports whether text appears to be written in language, given as
// an English name or ISO 639-1 code.
//
// Short texts, ambiguous texts and languages the detector does not know all
// pass. A mismatch returns false with an error naming both languages.
func (v *Validator) IsValid(text, language string) (bool, error) {
	if language == "" || !detector.Known(language) {
		return true, nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return false, fmt.Errorf("text is empty")
	}

	if len([]rune(text)) < minValidationLength {
		return true, nil
	}

	detected, ok := v.lazyDetector().Detect(text)
	if !ok {
		return true, nil
	}

	if !detector.Matches(detected, language) {
		return false, fmt.Errorf("expected %s but detected %s", language, detected)
	}

	return true, nil
}
