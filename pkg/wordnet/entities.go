package wordnet

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/lexigraph/wordnet/pkg/db"
	"github.com/lexigraph/wordnet/pkg/lemma"
	"github.com/lexigraph/wordnet/pkg/lexicon"
)

// ILI is one interlingual index record.
type ILI struct {
	ID         string
	Status     string
	Definition string
	Metadata   map[string]string
}

func scanILI(rows *sql.Rows) (*ILI, error) {
	var i ILI
	var meta sql.NullString
	if err := rows.Scan(&i.ID, &i.Status, &i.Definition, &meta); err != nil {
		return nil, err
	}
	var err error
	if i.Metadata, err = db.DecodeMetadata(meta); err != nil {
		return nil, err
	}
	return &i, nil
}

// Pronunciation is a phonetic rendering of a written form.
type Pronunciation struct {
	Value    string
	Variety  string
	Notation string
	Phonemic bool
	Audio    string
}

// Tag is a free-text annotation on a written form.
type Tag struct {
	Text     string
	Category string
}

// Form is one written form of a word, with its annotations loaded.
type Form struct {
	Value          string
	Script         string
	Pronunciations []Pronunciation
	Tags           []Tag
}

// Definition is a synset gloss, optionally attributed to a member sense.
type Definition struct {
	Text          string
	Language      string
	SourceSenseID string
	Metadata      map[string]string
}

// Example is an example of use.
type Example struct {
	Text     string
	Language string
	Metadata map[string]string
}

// Count is a corpus frequency recorded for a sense.
type Count struct {
	Value    int
	Metadata map[string]string
}

// Word is one lexical entry.
type Word struct {
	w        *Wordnet
	rowid    int64
	lexRowID int64
	ID       string
	POS      string
	metadata map[string]string
}

// Sense links a word to a synset.
type Sense struct {
	w           *Wordnet
	rowid       int64
	lexRowID    int64
	entryRowID  int64
	synsetRowID int64
	ID          string
	EntryRank   int
	SynsetRank  int
	lexicalized bool
	adjposition string
	metadata    map[string]string
}

// Synset is one concept node.
type Synset struct {
	w           *Wordnet
	rowid       int64
	lexRowID    int64
	ID          string
	POS         string
	ili         string
	lexicalized bool
	lexfile     string
	metadata    map[string]string
}

// Key returns the stable identity of the synset: its id plus owning
// lexicon. Placeholder synsets additionally carry their ILI so distinct
// inferred concepts stay distinct.
func (ss *Synset) Key() string {
	k := ss.ID + "\x1f" + strconv.FormatInt(ss.lexRowID, 10)
	if ss.rowid == 0 && ss.ili != "" {
		k += "\x1f" + ss.ili
	}
	return k
}

// Equal reports identity by id and owning lexicon.
func (ss *Synset) Equal(other *Synset) bool {
	return other != nil && ss.Key() == other.Key()
}

// ILI returns the synset's interlingual index key, or "" when it has none.
// Placeholder and proposed-ILI synsets report "" and the proposed
// definition respectively through ILIEntry.
func (ss *Synset) ILI() string { return ss.ili }

// Lexicalized reports whether the synset is conventionally realized as
// words rather than being a structural placeholder.
func (ss *Synset) Lexicalized() bool { return ss.lexicalized }

// Lexfile returns the lexicographer-file classification, or "".
func (ss *Synset) Lexfile() string { return ss.lexfile }

// Metadata returns the synset's provenance metadata.
func (ss *Synset) Metadata() map[string]string { return ss.metadata }

// Lexicon returns the owning lexicon.
func (ss *Synset) Lexicon() (*lexicon.Lexicon, error) {
	return lexicon.ByRowID(ss.w.ex(), ss.lexRowID)
}

const rootID = "*ROOT*"
const inferredID = "*INFERRED*"

// SyntheticRoot builds the detached synthetic root used when algorithms
// simulate a single top node. It takes its lexicon identity and part of
// speech from the given synset and has no stored rows, so it compares equal
// across paths and never yields relations.
func SyntheticRoot(like *Synset) *Synset {
	return &Synset{w: like.w, lexRowID: like.lexRowID, ID: rootID, POS: like.POS}
}

// IsSynthetic reports whether the synset is a placeholder with no stored
// row (the simulated root or an inferred expansion target).
func (ss *Synset) IsSynthetic() bool { return ss.rowid == 0 }

const wordColumns = `e.rowid, e.id, e.lexicon_rowid, e.pos, e.metadata`

func (w *Wordnet) scanWord(rows *sql.Rows) (*Word, error) {
	wd := &Word{w: w}
	var meta sql.NullString
	if err := rows.Scan(&wd.rowid, &wd.ID, &wd.lexRowID, &wd.POS, &meta); err != nil {
		return nil, err
	}
	var err error
	if wd.metadata, err = db.DecodeMetadata(meta); err != nil {
		return nil, err
	}
	return wd, nil
}

const senseColumns = `s.rowid, s.id, s.lexicon_rowid, s.entry_rowid,
	s.synset_rowid, s.entry_rank, s.synset_rank, s.lexicalized,
	IFNULL(s.adjposition, ''), s.metadata`

func (w *Wordnet) scanSense(rows *sql.Rows) (*Sense, error) {
	s := &Sense{w: w}
	var meta sql.NullString
	var lexicalized int
	err := rows.Scan(
		&s.rowid, &s.ID, &s.lexRowID, &s.entryRowID, &s.synsetRowID,
		&s.EntryRank, &s.SynsetRank, &lexicalized, &s.adjposition, &meta,
	)
	if err != nil {
		return nil, err
	}
	s.lexicalized = lexicalized != 0
	if s.metadata, err = db.DecodeMetadata(meta); err != nil {
		return nil, err
	}
	return s, nil
}

const synsetColumns = `ss.rowid, ss.id, ss.lexicon_rowid, IFNULL(ss.pos, ''),
	ss.lexicalized, IFNULL(i.id, ''), IFNULL(lf.name, ''), ss.metadata`

const synsetJoins = ` LEFT JOIN ilis i ON i.rowid = ss.ili_rowid
	LEFT JOIN lexfiles lf ON lf.rowid = ss.lexfile_rowid`

func (w *Wordnet) scanSynset(rows *sql.Rows) (*Synset, error) {
	ss := &Synset{w: w}
	var meta sql.NullString
	var lexicalized int
	err := rows.Scan(
		&ss.rowid, &ss.ID, &ss.lexRowID, &ss.POS,
		&lexicalized, &ss.ili, &ss.lexfile, &meta,
	)
	if err != nil {
		return nil, err
	}
	ss.lexicalized = lexicalized != 0
	if ss.metadata, err = db.DecodeMetadata(meta); err != nil {
		return nil, err
	}
	return ss, nil
}

// scopeClause appends an IN membership test when scope is non-nil.
func scopeClause(conds []string, args []interface{}, column string, scope []int64) ([]string, []interface{}) {
	if scope == nil {
		return conds, args
	}
	conds = append(conds, column+` IN (`+db.Placeholders(len(scope))+`)`)
	return conds, append(args, db.Int64Args(scope)...)
}

// formSubquery builds the membership test selecting entry rowids whose
// forms match any of the candidates.
func formSubquery(candidates []string, lemmaOnly, normalized bool) (string, []interface{}) {
	ph := db.Placeholders(len(candidates))
	var cond string
	var args []interface{}
	if normalized {
		normed := make([]string, len(candidates))
		for i, c := range candidates {
			normed[i] = lemma.Normalize(c)
		}
		cond = `(f.normalized_form IN (` + ph + `) OR f.form IN (` + ph + `))`
		args = append(db.StringArgs(normed), db.StringArgs(normed)...)
	} else {
		cond = `f.form IN (` + ph + `)`
		args = db.StringArgs(candidates)
	}
	if lemmaOnly {
		cond += ` AND f.rank = 0`
	}
	return `SELECT f.entry_rowid FROM forms f WHERE ` + cond, args
}

// Word fetches one entry by id, scoped to the active lexicon set.
func (w *Wordnet) Word(id string) (*Word, error) {
	conds := []string{`e.id = ?`}
	args := []interface{}{id}
	conds, args = scopeClause(conds, args, `e.lexicon_rowid`, w.activeRowIDs())
	q := `SELECT ` + wordColumns + ` FROM entries e WHERE ` +
		strings.Join(conds, ` AND `) + ` ORDER BY e.lexicon_rowid LIMIT 1`
	words, err := w.queryWords(q, args)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: word %s", ErrNotFound, id)
	}
	return words[0], nil
}

// Words finds entries by form and part of speech; either filter may be
// empty. Form matching tries the exact written forms first and falls back
// to diacritic-normalized matching unless the view disables it.
func (w *Wordnet) Words(form, pos string) ([]*Word, error) {
	scope := w.activeRowIDs()
	if form != "" {
		var err error
		if scope, err = w.lexiconScope(); err != nil {
			return nil, err
		}
	}
	run := func(normalized bool) ([]*Word, error) {
		var conds []string
		var args []interface{}
		if form != "" {
			sub, subArgs := formSubquery(w.formCandidates(form, pos), !w.allForms, normalized)
			conds = append(conds, `e.rowid IN (`+sub+`)`)
			args = append(args, subArgs...)
		}
		if pos != "" {
			conds = append(conds, `e.pos = ?`)
			args = append(args, pos)
		}
		conds, args = scopeClause(conds, args, `e.lexicon_rowid`, scope)
		q := `SELECT ` + wordColumns + ` FROM entries e`
		if len(conds) > 0 {
			q += ` WHERE ` + strings.Join(conds, ` AND `)
		}
		q += ` ORDER BY e.lexicon_rowid, e.rowid`
		return w.queryWords(q, args)
	}
	words, err := run(false)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 && form != "" && w.normalize {
		return run(true)
	}
	return words, nil
}

func (w *Wordnet) queryWords(q string, args []interface{}) ([]*Word, error) {
	rows, err := w.ex().Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Word
	for rows.Next() {
		wd, err := w.scanWord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, wd)
	}
	return out, rows.Err()
}

// Sense fetches one sense by id, scoped to the active lexicon set.
func (w *Wordnet) Sense(id string) (*Sense, error) {
	conds := []string{`s.id = ?`}
	args := []interface{}{id}
	conds, args = scopeClause(conds, args, `s.lexicon_rowid`, w.activeRowIDs())
	q := `SELECT ` + senseColumns + ` FROM senses s WHERE ` +
		strings.Join(conds, ` AND `) + ` ORDER BY s.lexicon_rowid LIMIT 1`
	senses, err := w.querySenses(q, args)
	if err != nil {
		return nil, err
	}
	if len(senses) == 0 {
		return nil, fmt.Errorf("%w: sense %s", ErrNotFound, id)
	}
	return senses[0], nil
}

// Senses finds senses by form and part of speech; either filter may be
// empty.
func (w *Wordnet) Senses(form, pos string) ([]*Sense, error) {
	scope := w.activeRowIDs()
	if form != "" {
		var err error
		if scope, err = w.lexiconScope(); err != nil {
			return nil, err
		}
	}
	run := func(normalized bool) ([]*Sense, error) {
		var conds []string
		var args []interface{}
		if form != "" {
			sub, subArgs := formSubquery(w.formCandidates(form, pos), !w.allForms, normalized)
			conds = append(conds, `s.entry_rowid IN (`+sub+`)`)
			args = append(args, subArgs...)
		}
		if pos != "" {
			conds = append(conds, `e.pos = ?`)
			args = append(args, pos)
		}
		conds, args = scopeClause(conds, args, `s.lexicon_rowid`, scope)
		q := `SELECT ` + senseColumns + ` FROM senses s
			JOIN entries e ON e.rowid = s.entry_rowid`
		if len(conds) > 0 {
			q += ` WHERE ` + strings.Join(conds, ` AND `)
		}
		q += ` ORDER BY s.lexicon_rowid, s.entry_rowid, s.entry_rank`
		return w.querySenses(q, args)
	}
	senses, err := run(false)
	if err != nil {
		return nil, err
	}
	if len(senses) == 0 && form != "" && w.normalize {
		return run(true)
	}
	return senses, nil
}

func (w *Wordnet) querySenses(q string, args []interface{}) ([]*Sense, error) {
	rows, err := w.ex().Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Sense
	for rows.Next() {
		s, err := w.scanSense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Synset fetches one synset by id, scoped to the active lexicon set.
func (w *Wordnet) Synset(id string) (*Synset, error) {
	conds := []string{`ss.id = ?`}
	args := []interface{}{id}
	conds, args = scopeClause(conds, args, `ss.lexicon_rowid`, w.activeRowIDs())
	q := `SELECT ` + synsetColumns + ` FROM synsets ss` + synsetJoins +
		` WHERE ` + strings.Join(conds, ` AND `) +
		` ORDER BY ss.lexicon_rowid LIMIT 1`
	synsets, err := w.querySynsets(q, args)
	if err != nil {
		return nil, err
	}
	if len(synsets) == 0 {
		return nil, fmt.Errorf("%w: synset %s", ErrNotFound, id)
	}
	return synsets[0], nil
}

// Synsets finds synsets by member word form and part of speech; either
// filter may be empty.
func (w *Wordnet) Synsets(form, pos string) ([]*Synset, error) {
	scope := w.activeRowIDs()
	if form != "" {
		var err error
		if scope, err = w.lexiconScope(); err != nil {
			return nil, err
		}
	}
	run := func(normalized bool) ([]*Synset, error) {
		var conds []string
		var args []interface{}
		if form != "" {
			sub, subArgs := formSubquery(w.formCandidates(form, pos), !w.allForms, normalized)
			conds = append(conds,
				`ss.rowid IN (SELECT s.synset_rowid FROM senses s WHERE s.entry_rowid IN (`+sub+`))`)
			args = append(args, subArgs...)
		}
		if pos != "" {
			conds = append(conds, `ss.pos = ?`)
			args = append(args, pos)
		}
		conds, args = scopeClause(conds, args, `ss.lexicon_rowid`, scope)
		q := `SELECT ` + synsetColumns + ` FROM synsets ss` + synsetJoins
		if len(conds) > 0 {
			q += ` WHERE ` + strings.Join(conds, ` AND `)
		}
		q += ` ORDER BY ss.lexicon_rowid, ss.rowid`
		return w.querySynsets(q, args)
	}
	synsets, err := run(false)
	if err != nil {
		return nil, err
	}
	if len(synsets) == 0 && form != "" && w.normalize {
		return run(true)
	}
	return synsets, nil
}

// SynsetsByILI finds the synsets in the active set sharing an interlingual
// index key.
func (w *Wordnet) SynsetsByILI(ili string) ([]*Synset, error) {
	conds := []string{`i.id = ?`}
	args := []interface{}{ili}
	conds, args = scopeClause(conds, args, `ss.lexicon_rowid`, w.activeRowIDs())
	q := `SELECT ` + synsetColumns + ` FROM synsets ss` + synsetJoins +
		` WHERE ` + strings.Join(conds, ` AND `) +
		` ORDER BY ss.lexicon_rowid, ss.rowid`
	return w.querySynsets(q, args)
}

func (w *Wordnet) querySynsets(q string, args []interface{}) ([]*Synset, error) {
	rows, err := w.ex().Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Synset
	for rows.Next() {
		ss, err := w.scanSynset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ss)
	}
	return out, rows.Err()
}
