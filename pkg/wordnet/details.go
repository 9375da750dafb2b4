package wordnet

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lexigraph/wordnet/pkg/db"
	"github.com/lexigraph/wordnet/pkg/lexicon"
)

// Metadata returns the entry's provenance metadata.
func (wd *Word) Metadata() map[string]string { return wd.metadata }

// Lexicon returns the owning lexicon.
func (wd *Word) Lexicon() (*lexicon.Lexicon, error) {
	return lexicon.ByRowID(wd.w.ex(), wd.lexRowID)
}

// Lemma returns the canonical written form.
func (wd *Word) Lemma() (Form, error) {
	forms, err := wd.Forms()
	if err != nil {
		return Form{}, err
	}
	if len(forms) == 0 {
		return Form{}, fmt.Errorf("%w: lemma of word %s", ErrNotFound, wd.ID)
	}
	return forms[0], nil
}

// Forms returns all written forms, lemma first, with pronunciations and
// tags attached. Forms owned by lexicons outside the view's scope are
// omitted.
func (wd *Word) Forms() ([]Form, error) {
	conds := []string{`entry_rowid = ?`}
	args := []interface{}{wd.rowid}
	scope, err := wd.w.lexiconScope()
	if err != nil {
		return nil, err
	}
	conds, args = scopeClause(conds, args, `lexicon_rowid`, scope)
	rows, err := wd.w.ex().Query(
		`SELECT rowid, form, IFNULL(script, '') FROM forms
		 WHERE `+strings.Join(conds, ` AND `)+` ORDER BY rank, rowid`, args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var forms []Form
	var formRowIDs []int64
	for rows.Next() {
		var f Form
		var rowid int64
		if err := rows.Scan(&rowid, &f.Value, &f.Script); err != nil {
			return nil, err
		}
		forms = append(forms, f)
		formRowIDs = append(formRowIDs, rowid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(forms) == 0 {
		return nil, nil
	}

	index := make(map[int64]int, len(formRowIDs))
	for i, r := range formRowIDs {
		index[r] = i
	}
	ph := db.Placeholders(len(formRowIDs))
	args = db.Int64Args(formRowIDs)

	prows, err := wd.w.ex().Query(
		`SELECT form_rowid, value, IFNULL(variety, ''), IFNULL(notation, ''),
		        phonemic, IFNULL(audio, '')
		 FROM pronunciations WHERE form_rowid IN (`+ph+`) ORDER BY rowid`, args...,
	)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var r int64
		var p Pronunciation
		var phonemic int
		if err := prows.Scan(&r, &p.Value, &p.Variety, &p.Notation, &phonemic, &p.Audio); err != nil {
			return nil, err
		}
		p.Phonemic = phonemic != 0
		forms[index[r]].Pronunciations = append(forms[index[r]].Pronunciations, p)
	}
	if err := prows.Err(); err != nil {
		return nil, err
	}

	trows, err := wd.w.ex().Query(
		`SELECT form_rowid, tag, category FROM tags
		 WHERE form_rowid IN (`+ph+`) ORDER BY rowid`, args...,
	)
	if err != nil {
		return nil, err
	}
	defer trows.Close()
	for trows.Next() {
		var r int64
		var t Tag
		if err := trows.Scan(&r, &t.Text, &t.Category); err != nil {
			return nil, err
		}
		forms[index[r]].Tags = append(forms[index[r]].Tags, t)
	}
	return forms, trows.Err()
}

// Senses returns the word's senses in entry-rank order. Senses an
// out-of-scope extension attached to the entry are omitted.
func (wd *Word) Senses() ([]*Sense, error) {
	conds := []string{`s.entry_rowid = ?`}
	args := []interface{}{wd.rowid}
	scope, err := wd.w.lexiconScope()
	if err != nil {
		return nil, err
	}
	conds, args = scopeClause(conds, args, `s.lexicon_rowid`, scope)
	q := `SELECT ` + senseColumns + ` FROM senses s
		WHERE ` + strings.Join(conds, ` AND `) + ` ORDER BY s.entry_rank, s.rowid`
	return wd.w.querySenses(q, args)
}

// Synsets returns the synsets of the word's senses, in sense order.
func (wd *Word) Synsets() ([]*Synset, error) {
	senses, err := wd.Senses()
	if err != nil {
		return nil, err
	}
	out := make([]*Synset, 0, len(senses))
	for _, s := range senses {
		ss, err := s.Synset()
		if err != nil {
			return nil, err
		}
		out = append(out, ss)
	}
	return out, nil
}

// Lexicalized reports whether the sense is conventionally realized as a
// word rather than being a structural placeholder.
func (s *Sense) Lexicalized() bool { return s.lexicalized }

// Adjposition returns the adjective-position marker, or "".
func (s *Sense) Adjposition() string { return s.adjposition }

// Metadata returns the sense's provenance metadata.
func (s *Sense) Metadata() map[string]string { return s.metadata }

// Lexicon returns the owning lexicon.
func (s *Sense) Lexicon() (*lexicon.Lexicon, error) {
	return lexicon.ByRowID(s.w.ex(), s.lexRowID)
}

// Word returns the owning entry.
func (s *Sense) Word() (*Word, error) {
	q := `SELECT ` + wordColumns + ` FROM entries e WHERE e.rowid = ?`
	words, err := s.w.queryWords(q, []interface{}{s.entryRowID})
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: entry of sense %s", ErrNotFound, s.ID)
	}
	return words[0], nil
}

// Synset returns the target synset.
func (s *Sense) Synset() (*Synset, error) {
	q := `SELECT ` + synsetColumns + ` FROM synsets ss` + synsetJoins +
		` WHERE ss.rowid = ?`
	synsets, err := s.w.querySynsets(q, []interface{}{s.synsetRowID})
	if err != nil {
		return nil, err
	}
	if len(synsets) == 0 {
		return nil, fmt.Errorf("%w: synset of sense %s", ErrNotFound, s.ID)
	}
	return synsets[0], nil
}

// Examples returns the sense's examples of use.
func (s *Sense) Examples() ([]Example, error) {
	conds := []string{`sense_rowid = ?`}
	args := []interface{}{s.rowid}
	scope, err := s.w.lexiconScope()
	if err != nil {
		return nil, err
	}
	conds, args = scopeClause(conds, args, `lexicon_rowid`, scope)
	return queryExamples(s.w.ex(),
		`SELECT example, IFNULL(language, ''), metadata FROM sense_examples
		 WHERE `+strings.Join(conds, ` AND `)+` ORDER BY rowid`, args)
}

// Counts returns the corpus counts recorded for the sense.
func (s *Sense) Counts() ([]Count, error) {
	conds := []string{`sense_rowid = ?`}
	args := []interface{}{s.rowid}
	scope, err := s.w.lexiconScope()
	if err != nil {
		return nil, err
	}
	conds, args = scopeClause(conds, args, `lexicon_rowid`, scope)
	rows, err := s.w.ex().Query(
		`SELECT count, metadata FROM counts
		 WHERE `+strings.Join(conds, ` AND `)+` ORDER BY rowid`, args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Count
	for rows.Next() {
		var c Count
		var meta sql.NullString
		if err := rows.Scan(&c.Value, &meta); err != nil {
			return nil, err
		}
		if c.Metadata, err = db.DecodeMetadata(meta); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Frames returns the subcategorization frames linked to the sense.
func (s *Sense) Frames() ([]string, error) {
	conds := []string{`sbs.sense_rowid = ?`}
	args := []interface{}{s.rowid}
	scope, err := s.w.lexiconScope()
	if err != nil {
		return nil, err
	}
	conds, args = scopeClause(conds, args, `sb.lexicon_rowid`, scope)
	rows, err := s.w.ex().Query(
		`SELECT sb.frame FROM syntactic_behaviours sb
		 JOIN syntactic_behaviour_senses sbs ON sbs.behaviour_rowid = sb.rowid
		 WHERE `+strings.Join(conds, ` AND `)+` ORDER BY sb.rowid`, args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Definition returns the synset's first gloss, or "".
func (ss *Synset) Definition() (string, error) {
	defs, err := ss.Definitions()
	if err != nil || len(defs) == 0 {
		return "", err
	}
	return defs[0].Text, nil
}

// Definitions returns all glosses with attribution. Glosses an
// out-of-scope extension attached to the synset are omitted.
func (ss *Synset) Definitions() ([]Definition, error) {
	if ss.rowid == 0 {
		return nil, nil
	}
	conds := []string{`d.synset_rowid = ?`}
	args := []interface{}{ss.rowid}
	scope, err := ss.w.lexiconScope()
	if err != nil {
		return nil, err
	}
	conds, args = scopeClause(conds, args, `d.lexicon_rowid`, scope)
	rows, err := ss.w.ex().Query(
		`SELECT d.definition, IFNULL(d.language, ''), IFNULL(s.id, ''), d.metadata
		 FROM definitions d LEFT JOIN senses s ON s.rowid = d.sense_rowid
		 WHERE `+strings.Join(conds, ` AND `)+` ORDER BY d.rowid`, args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Definition
	for rows.Next() {
		var d Definition
		var meta sql.NullString
		if err := rows.Scan(&d.Text, &d.Language, &d.SourceSenseID, &meta); err != nil {
			return nil, err
		}
		if d.Metadata, err = db.DecodeMetadata(meta); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Examples returns the synset's examples of use.
func (ss *Synset) Examples() ([]Example, error) {
	if ss.rowid == 0 {
		return nil, nil
	}
	conds := []string{`synset_rowid = ?`}
	args := []interface{}{ss.rowid}
	scope, err := ss.w.lexiconScope()
	if err != nil {
		return nil, err
	}
	conds, args = scopeClause(conds, args, `lexicon_rowid`, scope)
	return queryExamples(ss.w.ex(),
		`SELECT example, IFNULL(language, ''), metadata FROM synset_examples
		 WHERE `+strings.Join(conds, ` AND `)+` ORDER BY rowid`, args)
}

// ILIEntry returns the full interlingual index record linked to the
// synset: a concrete (active or presupposed) record when the synset
// references one, a proposed record carrying the lexicon-local definition
// when the synset proposes one, and nil when the synset has no ILI at all.
func (ss *Synset) ILIEntry() (*ILI, error) {
	if ss.ili != "" {
		return ss.w.d.ILI(ss.ili)
	}
	if ss.rowid == 0 {
		return nil, nil
	}
	var def sql.NullString
	var meta sql.NullString
	err := ss.w.ex().QueryRow(
		`SELECT definition, metadata FROM proposed_ilis WHERE synset_rowid = ?`,
		ss.rowid,
	).Scan(&def, &meta)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	i := &ILI{Status: "proposed", Definition: def.String}
	if i.Metadata, err = db.DecodeMetadata(meta); err != nil {
		return nil, err
	}
	return i, nil
}

// Members returns the synset's member senses in synset-rank order. Members
// an out-of-scope extension attached are omitted.
func (ss *Synset) Members() ([]*Sense, error) {
	if ss.rowid == 0 {
		return nil, nil
	}
	conds := []string{`s.synset_rowid = ?`}
	args := []interface{}{ss.rowid}
	scope, err := ss.w.lexiconScope()
	if err != nil {
		return nil, err
	}
	conds, args = scopeClause(conds, args, `s.lexicon_rowid`, scope)
	q := `SELECT ` + senseColumns + ` FROM senses s
		WHERE ` + strings.Join(conds, ` AND `) + ` ORDER BY s.synset_rank, s.rowid`
	return ss.w.querySenses(q, args)
}

// Words returns the entries of the synset's member senses.
func (ss *Synset) Words() ([]*Word, error) {
	members, err := ss.Members()
	if err != nil {
		return nil, err
	}
	out := make([]*Word, 0, len(members))
	for _, s := range members {
		wd, err := s.Word()
		if err != nil {
			return nil, err
		}
		out = append(out, wd)
	}
	return out, nil
}

// Lemmas returns the canonical written forms of the synset's members.
func (ss *Synset) Lemmas() ([]string, error) {
	words, err := ss.Words()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(words))
	for _, wd := range words {
		f, err := wd.Lemma()
		if err != nil {
			return nil, err
		}
		out = append(out, f.Value)
	}
	return out, nil
}

func queryExamples(ex db.Executor, q string, args []interface{}) ([]Example, error) {
	rows, err := ex.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Example
	for rows.Next() {
		var e Example
		var meta sql.NullString
		if err := rows.Scan(&e.Text, &e.Language, &meta); err != nil {
			return nil, err
		}
		if e.Metadata, err = db.DecodeMetadata(meta); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
