package lexicon

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/lexigraph/wordnet/pkg/db"
)

// ErrNoMatch is returned when an explicit (non-wildcard) specifier or a
// language filter resolves to no installed lexicon.
var ErrNoMatch = errors.New("no matching lexicons")

// Lexicon is one installed lexicon row.
type Lexicon struct {
	RowID    int64
	ID       string
	Version  string
	Label    string
	Language string
	Email    string
	License  string
	URL      string
	Citation string
	Logo     string
	Metadata map[string]string
}

// Specifier returns the concrete id:version specifier of the row.
func (l *Lexicon) Specifier() Specifier {
	return Specifier{ID: l.ID, Version: l.Version}
}

// Confidence returns the lexicon's confidence score: 1.0 unless the
// metadata overrides it.
func (l *Lexicon) Confidence() float64 {
	if s, ok := l.Metadata["confidence"]; ok {
		if c, err := strconv.ParseFloat(s, 64); err == nil {
			return c
		}
	}
	return 1.0
}

const lexiconColumns = `rowid, id, version, label, language,
	IFNULL(email, ''), IFNULL(license, ''), IFNULL(url, ''),
	IFNULL(citation, ''), IFNULL(logo, ''), metadata`

func scanLexicon(rows *sql.Rows) (*Lexicon, error) {
	var l Lexicon
	var meta sql.NullString
	err := rows.Scan(
		&l.RowID, &l.ID, &l.Version, &l.Label, &l.Language,
		&l.Email, &l.License, &l.URL, &l.Citation, &l.Logo, &meta,
	)
	if err != nil {
		return nil, err
	}
	if l.Metadata, err = db.DecodeMetadata(meta); err != nil {
		return nil, err
	}
	return &l, nil
}

func selectLexicons(ex db.Executor, where string, args ...interface{}) ([]*Lexicon, error) {
	q := `SELECT ` + lexiconColumns + ` FROM lexicons`
	if where != "" {
		q += ` WHERE ` + where
	}
	q += ` ORDER BY rowid`
	rows, err := ex.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Lexicon
	for rows.Next() {
		l, err := scanLexicon(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// All returns every installed lexicon in load order.
func All(ex db.Executor) ([]*Lexicon, error) {
	return selectLexicons(ex, "")
}

// ByRowID fetches one lexicon row.
func ByRowID(ex db.Executor, rowid int64) (*Lexicon, error) {
	ls, err := selectLexicons(ex, "rowid = ?", rowid)
	if err != nil {
		return nil, err
	}
	if len(ls) == 0 {
		return nil, fmt.Errorf("%w: lexicon rowid %d", ErrNoMatch, rowid)
	}
	return ls[0], nil
}

// Get fetches the lexicon with exactly this id and version, or nil when it
// is not installed.
func Get(ex db.Executor, id, version string) (*Lexicon, error) {
	ls, err := selectLexicons(ex, "id = ? AND version = ?", id, version)
	if err != nil {
		return nil, err
	}
	if len(ls) == 0 {
		return nil, nil
	}
	return ls[0], nil
}

// Resolve expands a specifier pattern (one or more whitespace-separated
// id:version globs) and an optional language filter into the ordered set of
// concrete lexicons. A non-wildcard specifier matching nothing is an error,
// as is a language filter matching nothing; a pure glob matching nothing
// resolves to the empty set.
func Resolve(ex db.Executor, pattern, language string) ([]*Lexicon, error) {
	all, err := All(ex)
	if err != nil {
		return nil, err
	}

	var out []*Lexicon
	seen := make(map[int64]bool)
	for _, spec := range ParseAll(pattern) {
		matched := false
		for _, l := range all {
			if language != "" && l.Language != language {
				continue
			}
			ok, err := spec.Match(l.ID, l.Version)
			if err != nil {
				return nil, fmt.Errorf("specifier %s: %w", spec, err)
			}
			if !ok {
				continue
			}
			matched = true
			if !seen[l.RowID] {
				seen[l.RowID] = true
				out = append(out, l)
			}
		}
		if !matched && !spec.IsWild() {
			return nil, fmt.Errorf("%w: %s", ErrNoMatch, spec)
		}
	}
	if len(out) == 0 && language != "" {
		return nil, fmt.Errorf("%w: language %q", ErrNoMatch, language)
	}
	return out, nil
}

// walkExtensions walks the extends edges breadth-first from the given seed
// rowids. forward walks extension→base; otherwise base→extension. depth is
// the number of levels to walk, -1 meaning unbounded.
func walkExtensions(ex db.Executor, seeds []int64, forward bool, depth int) ([]*Lexicon, error) {
	from, to := "extension_rowid", "base_rowid"
	if !forward {
		from, to = to, from
	}

	visited := make(map[int64]bool)
	for _, r := range seeds {
		visited[r] = true
	}
	frontier := seeds
	var found []int64
	for len(frontier) > 0 && depth != 0 {
		q := fmt.Sprintf(
			`SELECT %s FROM lexicon_extensions WHERE %s IN (%s) ORDER BY rowid`,
			to, from, db.Placeholders(len(frontier)),
		)
		rows, err := ex.Query(q, db.Int64Args(frontier)...)
		if err != nil {
			return nil, err
		}
		var next []int64
		for rows.Next() {
			var r int64
			if err := rows.Scan(&r); err != nil {
				rows.Close()
				return nil, err
			}
			if !visited[r] {
				visited[r] = true
				next = append(next, r)
				found = append(found, r)
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
		frontier = next
		if depth > 0 {
			depth--
		}
	}

	out := make([]*Lexicon, 0, len(found))
	for _, r := range found {
		l, err := ByRowID(ex, r)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// ExtensionBases resolves spec and returns the lexicons it (transitively)
// extends, breadth-first, nearest bases first. depth = -1 walks the whole
// chain.
func ExtensionBases(ex db.Executor, spec string, depth int) ([]*Lexicon, error) {
	seeds, err := Resolve(ex, spec, "")
	if err != nil {
		return nil, err
	}
	return walkExtensions(ex, rowids(seeds), true, depth)
}

// Extensions resolves spec and returns the lexicons that (transitively)
// extend it, breadth-first, nearest extensions first. depth = -1 walks the
// whole chain.
func Extensions(ex db.Executor, spec string, depth int) ([]*Lexicon, error) {
	seeds, err := Resolve(ex, spec, "")
	if err != nil {
		return nil, err
	}
	return walkExtensions(ex, rowids(seeds), false, depth)
}

func rowids(ls []*Lexicon) []int64 {
	out := make([]int64, len(ls))
	for i, l := range ls {
		out[i] = l.RowID
	}
	return out
}

// DependencyClosure returns the lexicon itself plus the transitive closure
// of its declared dependencies and extension bases, restricted to installed
// lexicons. This is the per-entity traversal scope used in default mode.
func DependencyClosure(ex db.Executor, rowid int64) ([]int64, error) {
	visited := map[int64]bool{rowid: true}
	closure := []int64{rowid}
	frontier := []int64{rowid}
	for len(frontier) > 0 {
		in := db.Placeholders(len(frontier))
		args := db.Int64Args(frontier)
		q := `SELECT provider_rowid FROM lexicon_dependencies
		      WHERE dependent_rowid IN (` + in + `) AND provider_rowid IS NOT NULL
		      UNION
		      SELECT base_rowid FROM lexicon_extensions
		      WHERE extension_rowid IN (` + in + `)`
		rows, err := ex.Query(q, append(args, args...)...)
		if err != nil {
			return nil, err
		}
		var next []int64
		for rows.Next() {
			var r int64
			if err := rows.Scan(&r); err != nil {
				rows.Close()
				return nil, err
			}
			if !visited[r] {
				visited[r] = true
				closure = append(closure, r)
				next = append(next, r)
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
		frontier = next
	}
	return closure, nil
}
