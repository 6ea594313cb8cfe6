package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

type Detector struct {
	detector lingua.LanguageDetector
}

func New() *Detector {
	// Models load lazily on first use of each language.
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Detector{detector: detector}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// Matches reports whether lang is named by want, either by English name
// ("Chinese") or by ISO 639-1 code ("zh"), case-insensitively.
func Matches(lang lingua.Language, want string) bool {
	want = strings.TrimSpace(want)
	return strings.EqualFold(lang.String(), want) ||
		strings.EqualFold(lang.IsoCode639_1().String(), want)
}

// Known reports whether want names any language the detector supports.
func Known(want string) bool {
	for _, lang := range lingua.AllLanguages() {
		if Matches(lang, want) {
			return true
		}
	}
	return false
}
