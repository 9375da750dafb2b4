// Package wordnet is the query engine: a Database handle over one storage
// location, and Wordnet views that scope every lookup and relation
// traversal to a concrete lexicon set.
package wordnet

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/lexigraph/wordnet/pkg/db"
	"github.com/lexigraph/wordnet/pkg/lemma"
	"github.com/lexigraph/wordnet/pkg/lexicon"
)

// ErrNotFound is returned by exactly-one accessors when no entity matches.
var ErrNotFound = errors.New("not found")

// Database is one handle on a wordnet store.
type Database struct {
	store     *db.DB
	log       *slog.Logger
	batchSize int
}

// Connect opens the store described by cfg, initializing or
// fingerprint-checking it as needed.
func Connect(cfg Config, logger *slog.Logger) (*Database, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("config: path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = DefaultConfig().BatchSize
	}
	store, err := db.Open(cfg.Path, &db.Options{
		AllowConcurrent: cfg.AllowConcurrent,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	return &Database{store: store, log: logger, batchSize: batch}, nil
}

// Close releases the connection.
func (d *Database) Close() error { return d.store.Close() }

// Lexicons resolves a specifier pattern and language filter against the
// installed lexicons.
func (d *Database) Lexicons(pattern, language string) ([]*lexicon.Lexicon, error) {
	return lexicon.Resolve(d.store.Conn(), pattern, language)
}

// ListLexicons is the best-effort listing that works even when the schema
// check refuses the file.
func (d *Database) ListLexicons() []db.LexiconListing {
	return d.store.ListLexicons()
}

// ILI fetches one interlingual index record by key.
func (d *Database) ILI(id string) (*ILI, error) {
	rows, err := d.store.Conn().Query(
		`SELECT i.id, st.status, IFNULL(i.definition, ''), i.metadata
		 FROM ilis i JOIN ili_statuses st ON st.rowid = i.status_rowid
		 WHERE i.id = ?`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, fmt.Errorf("%w: ili %s", ErrNotFound, id)
	}
	return scanILI(rows)
}

// Wordnet is one scoped view over the database. In explicit mode (a
// specifier or language was given) every query, including relation
// traversal targets, is restricted to exactly the resolved set. In default
// mode (neither given) lookups see everything, but relation traversal is
// restricted per entity to that entity's declared dependency closure,
// computed lazily.
type Wordnet struct {
	d           *Database
	defaultMode bool
	lexicons    []*lexicon.Lexicon // nil in default mode
	expand      []*lexicon.Lexicon // explicit expand set; nil if unspecified
	expandSet   bool

	lemmatizer lemma.Lemmatizer
	allForms   bool
	normalize  bool

	depClosure map[int64][]int64 // lazy per-lexicon traversal scope

	scoped   []int64 // cached lexiconScope
	scopedOK bool
}

// Option adjusts a Wordnet view at construction.
type Option func(*Wordnet) error

// WithExpand sets the expand set: lexicons consulted only for relation
// target resolution via ILI, never returned directly as query results. The
// empty pattern means no expansion.
func WithExpand(pattern string) Option {
	return func(w *Wordnet) error {
		w.expandSet = true
		if pattern == "" {
			w.expand = nil
			return nil
		}
		ls, err := lexicon.Resolve(w.d.store.Conn(), pattern, "")
		if err != nil {
			return err
		}
		w.expand = ls
		return nil
	}
}

// WithLemmatizer installs a lemmatizer consulted during word-form lookup.
func WithLemmatizer(l lemma.Lemmatizer) Option {
	return func(w *Wordnet) error {
		w.lemmatizer = l
		return nil
	}
}

// WithAllForms makes form lookups match alternate forms as well as lemmas.
func WithAllForms() Option {
	return func(w *Wordnet) error {
		w.allForms = true
		return nil
	}
}

// WithoutNormalization disables the diacritic-insensitive fallback in form
// lookups.
func WithoutNormalization() Option {
	return func(w *Wordnet) error {
		w.normalize = false
		return nil
	}
}

// Wordnet constructs a scoped view. Empty pattern and language select
// default mode.
func (d *Database) Wordnet(pattern, language string, opts ...Option) (*Wordnet, error) {
	w := &Wordnet{
		d:          d,
		normalize:  true,
		depClosure: make(map[int64][]int64),
	}
	if pattern == "" && language == "" {
		w.defaultMode = true
	} else {
		ls, err := lexicon.Resolve(d.store.Conn(), pattern, language)
		if err != nil {
			return nil, err
		}
		w.lexicons = ls
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Lexicons returns the view's active lexicon set, resolving "everything" in
// default mode.
func (w *Wordnet) Lexicons() ([]*lexicon.Lexicon, error) {
	if w.defaultMode {
		return lexicon.All(w.ex())
	}
	return w.lexicons, nil
}

// Expand returns the explicit expand set, nil when none was specified.
func (w *Wordnet) Expand() []*lexicon.Lexicon { return w.expand }

func (w *Wordnet) ex() db.Executor { return w.d.store.Conn() }

// activeRowIDs is the lexicon scope applied to lookups; nil means
// unrestricted (default mode).
func (w *Wordnet) activeRowIDs() []int64 {
	if w.defaultMode {
		return nil
	}
	ids := make([]int64, len(w.lexicons))
	for i, l := range w.lexicons {
		ids[i] = l.RowID
	}
	return ids
}

func (w *Wordnet) expandRowIDs() []int64 {
	ids := make([]int64, len(w.expand))
	for i, l := range w.expand {
		ids[i] = l.RowID
	}
	return ids
}

// traversalScope returns the local and expand lexicon sets for relation
// traversal out of an entity owned by lexRowID.
//
// Explicit mode: local is exactly the active set and expansion uses only
// the explicitly supplied expand set. Default mode: both are the entity's
// dependency closure, so unrelated lexicons never appear as relation
// targets; the closure is computed once per lexicon and cached.
func (w *Wordnet) traversalScope(lexRowID int64) (local, expand []int64, err error) {
	if !w.defaultMode {
		return w.activeRowIDs(), w.expandRowIDs(), nil
	}
	closure, ok := w.depClosure[lexRowID]
	if !ok {
		closure, err = lexicon.DependencyClosure(w.ex(), lexRowID)
		if err != nil {
			return nil, nil, err
		}
		w.depClosure[lexRowID] = closure
	}
	if w.expandSet {
		return closure, w.expandRowIDs(), nil
	}
	// Declared dependencies double as expansion candidates.
	var exp []int64
	for _, r := range closure {
		if r != lexRowID {
			exp = append(exp, r)
		}
	}
	return closure, exp, nil
}

// lexiconScope is the lexicon set applied to form lookups and per-entity
// detail queries: the active set widened with transitive extension bases.
// An extension view reaches the rows its bases own, while a base view
// never sees rows an extension attached to base entities. nil means
// unrestricted.
func (w *Wordnet) lexiconScope() ([]int64, error) {
	active := w.activeRowIDs()
	if active == nil {
		return nil, nil
	}
	if w.scopedOK {
		return w.scoped, nil
	}
	seen := make(map[int64]bool, len(active))
	out := make([]int64, 0, len(active))
	for _, r := range active {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	for _, l := range w.lexicons {
		bases, err := lexicon.ExtensionBases(w.ex(), l.Specifier().String(), -1)
		if err != nil {
			return nil, err
		}
		for _, b := range bases {
			if !seen[b.RowID] {
				seen[b.RowID] = true
				out = append(out, b.RowID)
			}
		}
	}
	w.scoped, w.scopedOK = out, true
	return out, nil
}

// formCandidates expands a surface form into the list tried by form
// lookups: the form itself plus any lemmatizer candidates.
func (w *Wordnet) formCandidates(form, pos string) []string {
	candidates := []string{form}
	if w.lemmatizer != nil {
		candidates = append(candidates, w.lemmatizer.Lemmatize(form, pos)...)
	}
	return candidates
}
