// Package lexicon turns user-supplied specifier patterns and language
// filters into concrete, ordered lexicon sets, and walks the
// extension/dependency edges between installed lexicons.
package lexicon

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Specifier names lexicons by id and version. Either part may be a glob
// pattern; an omitted part is the universal wildcard.
type Specifier struct {
	ID      string
	Version string
}

// Parse splits an "id:version" pattern. "ewn" means "ewn:*"; the empty
// string means "*:*".
func Parse(s string) Specifier {
	s = strings.TrimSpace(s)
	if s == "" {
		return Specifier{ID: "*", Version: "*"}
	}
	if id, version, ok := strings.Cut(s, ":"); ok {
		if version == "" {
			version = "*"
		}
		return Specifier{ID: id, Version: version}
	}
	return Specifier{ID: s, Version: "*"}
}

// ParseAll splits a whitespace-separated list of specifier patterns.
func ParseAll(s string) []Specifier {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return []Specifier{{ID: "*", Version: "*"}}
	}
	specs := make([]Specifier, len(fields))
	for i, f := range fields {
		specs[i] = Parse(f)
	}
	return specs
}

// String renders the canonical id:version form.
func (s Specifier) String() string { return s.ID + ":" + s.Version }

// IsWild reports whether either part contains glob metacharacters. A
// non-wild specifier that resolves to nothing is an error; a wild one is
// not.
func (s Specifier) IsWild() bool {
	return strings.ContainsAny(s.ID, `*?[\`) || strings.ContainsAny(s.Version, `*?[\`)
}

// Match tests a concrete id and version against the pattern parts.
func (s Specifier) Match(id, version string) (bool, error) {
	ok, err := doublestar.Match(s.ID, id)
	if err != nil || !ok {
		return false, err
	}
	return doublestar.Match(s.Version, version)
}
