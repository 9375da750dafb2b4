// Package lemma provides word-form normalization and the lemmatizer hook
// consumed by form lookups.
package lemma

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Lemmatizer expands a surface form into candidate dictionary forms for
// lookup. pos narrows the expansion when non-empty; implementations may
// ignore it. The surface form itself should not be included; lookups try it
// first regardless.
type Lemmatizer interface {
	Lemmatize(form, pos string) []string
}

// stripMarks removes combining marks after canonical decomposition, then
// recomposes.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize returns the diacritic-insensitive lookup key of a form:
// lowercased with combining marks stripped.
func Normalize(form string) string {
	lowered := strings.ToLower(form)
	stripped, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		return lowered
	}
	return stripped
}
