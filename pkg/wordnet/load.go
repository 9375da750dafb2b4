package wordnet

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lexigraph/wordnet/pkg/db"
	"github.com/lexigraph/wordnet/pkg/lemma"
	"github.com/lexigraph/wordnet/pkg/lexicon"
	"github.com/lexigraph/wordnet/pkg/lmf"
)

// Progress reports bulk-operation advancement. It is observational only:
// there is no cancellation mid-operation.
type Progress func(stage string, done, total int)

// Outcome classifies what happened to one lexicon in a bulk call.
type Outcome string

const (
	OutcomeAdded   Outcome = "added"
	OutcomeSkipped Outcome = "skipped"
	OutcomeRemoved Outcome = "removed"
)

// Result is the per-lexicon outcome of a bulk call.
type Result struct {
	Specifier string
	Outcome   Outcome
	Reason    string
}

// Report collects per-lexicon outcomes. Outcomes already committed stay
// committed even when a later lexicon in the same call fails.
type Report struct {
	Results []Result
}

func (r *Report) add(spec string, outcome Outcome, reason string) {
	r.Results = append(r.Results, Result{Specifier: spec, Outcome: outcome, Reason: reason})
}

// Loader performs bulk lexicon loads and removals.
type Loader struct {
	DB        *Database
	BatchSize int
	// Logger is used for informational messages. nil means the database's
	// logger.
	Logger *slog.Logger
	// OnProgress is called as load stages complete.
	OnProgress Progress
}

// NewLoader creates a loader with the database's configured batch size.
func NewLoader(d *Database) *Loader {
	return &Loader{DB: d, BatchSize: d.batchSize, Logger: d.log}
}

func (ld *Loader) progress(stage string, done, total int) {
	if ld.OnProgress != nil {
		ld.OnProgress(stage, done, total)
	}
}

func (ld *Loader) logger() *slog.Logger {
	if ld.Logger != nil {
		return ld.Logger
	}
	return ld.DB.log
}

// Add loads the given lexicons. Each lexicon is one all-or-nothing
// transaction; pre-check failures (already installed, extension base
// missing) skip that lexicon and siblings continue. A relation target that
// resolves to neither a known sense nor synset aborts that lexicon's load
// and surfaces as an error; earlier siblings stay committed.
//
// Durability is relaxed for the duration of the call: a crash mid-load may
// corrupt the store.
func (ld *Loader) Add(lexicons []*lmf.Lexicon) (*Report, error) {
	conn := ld.DB.store.Conn()
	report := &Report{}

	if err := ld.DB.store.RelaxDurability(); err != nil {
		return report, err
	}
	defer func() {
		if err := ld.DB.store.RestoreDurability(); err != nil {
			ld.logger().Warn("restore durability", slog.String("error", err.Error()))
		}
	}()

	for _, lx := range lexicons {
		spec := lx.Specifier()
		existing, err := lexicon.Get(conn, lx.ID, lx.Version)
		if err != nil {
			return report, err
		}
		if existing != nil {
			ld.logger().Info("skipping lexicon", slog.String("lexicon", spec),
				slog.String("reason", "already installed"))
			report.add(spec, OutcomeSkipped, "already installed")
			continue
		}
		if lx.Extends != nil {
			base, err := lexicon.Get(conn, lx.Extends.ID, lx.Extends.Version)
			if err != nil {
				return report, err
			}
			if base == nil {
				reason := fmt.Sprintf("extension base %s:%s not installed",
					lx.Extends.ID, lx.Extends.Version)
				ld.logger().Info("skipping lexicon", slog.String("lexicon", spec),
					slog.String("reason", reason))
				report.add(spec, OutcomeSkipped, reason)
				continue
			}
		}
		if err := ld.addOne(lx); err != nil {
			return report, fmt.Errorf("add %s: %w", spec, err)
		}
		ld.logger().Info("added lexicon", slog.String("lexicon", spec))
		report.add(spec, OutcomeAdded, "")
	}
	return report, nil
}

// ILIRecord is one interlingual index definition record from a published
// index release.
type ILIRecord struct {
	ID         string
	Definition string
	Meta       lmf.Metadata
}

// AddILIs loads interlingual index definition records in one transaction.
// A record new to the store is inserted active; an existing record (for
// example one a lexicon presupposed by reference) is promoted to active and
// given the published definition. Proposed records live in proposed_ilis
// under their synset's lexicon and are not affected.
func (ld *Loader) AddILIs(records []ILIRecord) (int, error) {
	tx, err := ld.DB.store.Conn().Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	activeID, err := db.ILIStatusID(tx, "active")
	if err != nil {
		return 0, err
	}
	n := 0
	for _, rec := range records {
		meta, err := db.EncodeMetadata(rec.Meta)
		if err != nil {
			return n, fmt.Errorf("ili %s: %w", rec.ID, err)
		}
		var rowid int64
		err = tx.QueryRow(`SELECT rowid FROM ilis WHERE id = ?`, rec.ID).Scan(&rowid)
		switch {
		case err == sql.ErrNoRows:
			_, err = tx.Exec(
				`INSERT INTO ilis (id, status_rowid, definition, metadata)
				 VALUES (?, ?, ?, ?)`,
				rec.ID, activeID, nullable(rec.Definition), meta,
			)
		case err == nil:
			_, err = tx.Exec(
				`UPDATE ilis SET status_rowid = ?, definition = ?, metadata = ?
				 WHERE rowid = ?`,
				activeID, nullable(rec.Definition), meta, rowid,
			)
		}
		if err != nil {
			return n, fmt.Errorf("ili %s: %w", rec.ID, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return n, err
	}
	ld.progress("ilis", n, n)
	ld.logger().Info("added ili records", slog.Int("count", n))
	return n, nil
}

// loadContext carries the per-lexicon id-to-rowid resolution maps. Each map
// is preloaded with the extension base chain (farthest base first, so a
// nearer lexicon wins an id collision) and merged with the lexicon's own
// rows after insertion.
type loadContext struct {
	tx        *sql.Tx
	lx        *lmf.Lexicon
	lexRowID  int64
	batch     int
	synsetRow map[string]int64
	entryRow  map[string]int64
	senseRow  map[string]int64
}

func (ld *Loader) addOne(lx *lmf.Lexicon) error {
	if err := checkIDs(lx); err != nil {
		return err
	}
	tx, err := ld.DB.store.Conn().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	lexRowID, err := insertLexicon(tx, lx)
	if err != nil {
		return err
	}
	if err := backfillDependents(tx, lx.ID, lx.Version, lexRowID); err != nil {
		return err
	}
	lc := &loadContext{
		tx: tx, lx: lx, lexRowID: lexRowID, batch: ld.BatchSize,
		synsetRow: make(map[string]int64),
		entryRow:  make(map[string]int64),
		senseRow:  make(map[string]int64),
	}
	if err := lc.preloadResolutionScope(); err != nil {
		return err
	}

	steps := []struct {
		stage string
		run   func() (int, error)
	}{
		{"synsets", lc.insertSynsets},
		{"entries", lc.insertEntries},
		{"forms", lc.insertForms},
		{"senses", lc.insertSenses},
		{"counts", lc.insertCounts},
		{"frames", lc.insertBehaviours},
		{"relations", lc.insertRelations},
		{"definitions", lc.insertDefinitions},
		{"examples", lc.insertExamples},
	}
	for _, step := range steps {
		n, err := step.run()
		if err != nil {
			return fmt.Errorf("%s: %w", step.stage, err)
		}
		ld.progress(lx.Specifier()+": "+step.stage, n, n)
	}
	return tx.Commit()
}

// checkIDs rejects identifiers that collide with the reserved placeholder
// namespace.
func checkIDs(lx *lmf.Lexicon) error {
	bad := func(id string) bool { return strings.Contains(id, "*") }
	if bad(lx.ID) {
		return fmt.Errorf("reserved character in lexicon id %q", lx.ID)
	}
	for _, e := range lx.Entries {
		if bad(e.ID) {
			return fmt.Errorf("reserved character in entry id %q", e.ID)
		}
		for _, s := range e.Senses {
			if bad(s.ID) {
				return fmt.Errorf("reserved character in sense id %q", s.ID)
			}
		}
	}
	for _, ss := range lx.Synsets {
		if bad(ss.ID) {
			return fmt.Errorf("reserved character in synset id %q", ss.ID)
		}
	}
	return nil
}

func insertLexicon(tx *sql.Tx, lx *lmf.Lexicon) (int64, error) {
	meta, err := db.EncodeMetadata(lx.Meta)
	if err != nil {
		return 0, err
	}
	res, err := tx.Exec(
		`INSERT INTO lexicons
		 (id, version, label, language, email, license, url, citation, logo, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lx.ID, lx.Version, lx.Label, lx.Language,
		nullable(lx.Email), nullable(lx.License), nullable(lx.URL),
		nullable(lx.Citation), nullable(lx.Logo), meta,
	)
	if err != nil {
		return 0, fmt.Errorf("insert lexicon: %w", err)
	}
	rowid, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, req := range lx.Requires {
		provider, err := lexicon.Get(tx, req.ID, req.Version)
		if err != nil {
			return 0, err
		}
		var providerRowID interface{}
		if provider != nil {
			providerRowID = provider.RowID
		}
		_, err = tx.Exec(
			`INSERT INTO lexicon_dependencies
			 (dependent_rowid, provider_id, provider_version, provider_url, provider_rowid)
			 VALUES (?, ?, ?, ?, ?)`,
			rowid, req.ID, req.Version, nullable(req.URL), providerRowID,
		)
		if err != nil {
			return 0, fmt.Errorf("insert dependency: %w", err)
		}
	}
	if lx.Extends != nil {
		base, err := lexicon.Get(tx, lx.Extends.ID, lx.Extends.Version)
		if err != nil {
			return 0, err
		}
		if base == nil {
			return 0, fmt.Errorf("extension base %s:%s not installed",
				lx.Extends.ID, lx.Extends.Version)
		}
		_, err = tx.Exec(
			`INSERT INTO lexicon_extensions
			 (extension_rowid, base_id, base_version, base_rowid)
			 VALUES (?, ?, ?, ?)`,
			rowid, lx.Extends.ID, lx.Extends.Version, base.RowID,
		)
		if err != nil {
			return 0, fmt.Errorf("insert extension edge: %w", err)
		}
	}
	return rowid, nil
}

// backfillDependents points already-installed lexicons that declared a
// dependency on this id and version at the newly inserted rows, so the
// dependency closure does not depend on install order.
func backfillDependents(tx *sql.Tx, id, version string, rowid int64) error {
	_, err := tx.Exec(
		`UPDATE lexicon_dependencies SET provider_rowid = ?
		 WHERE provider_id = ? AND provider_version = ? AND provider_rowid IS NULL`,
		rowid, id, version,
	)
	if err != nil {
		return fmt.Errorf("backfill dependents: %w", err)
	}
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// baseChainRowIDs walks extension→base edges from rowid, nearest base
// first.
func baseChainRowIDs(ex db.Executor, rowid int64) ([]int64, error) {
	var chain []int64
	cur := rowid
	for {
		var base int64
		err := ex.QueryRow(
			`SELECT base_rowid FROM lexicon_extensions WHERE extension_rowid = ?`, cur,
		).Scan(&base)
		if err == sql.ErrNoRows {
			return chain, nil
		}
		if err != nil {
			return nil, err
		}
		chain = append(chain, base)
		cur = base
	}
}

// preloadResolutionScope fills the id maps with the rows a relation target
// or external stub may legally reference: installed dependency providers
// first, then the extension base chain farthest-first, so a colliding id
// resolves to the nearest lexicon (bases shadow dependencies, the lexicon's
// own rows shadow both once inserted).
func (lc *loadContext) preloadResolutionScope() error {
	rows, err := lc.tx.Query(
		`SELECT provider_rowid FROM lexicon_dependencies
		 WHERE dependent_rowid = ? AND provider_rowid IS NOT NULL
		 ORDER BY rowid`, lc.lexRowID,
	)
	if err != nil {
		return err
	}
	var scope []int64
	for rows.Next() {
		var r int64
		if err := rows.Scan(&r); err != nil {
			rows.Close()
			return err
		}
		scope = append(scope, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	chain, err := baseChainRowIDs(lc.tx, lc.lexRowID)
	if err != nil {
		return err
	}
	for i := len(chain) - 1; i >= 0; i-- {
		scope = append(scope, chain[i])
	}
	for _, lexRowID := range scope {
		for _, t := range []struct {
			table string
			into  map[string]int64
		}{
			{"synsets", lc.synsetRow},
			{"entries", lc.entryRow},
			{"senses", lc.senseRow},
		} {
			if err := loadIDMap(lc.tx, t.table, lexRowID, t.into); err != nil {
				return err
			}
		}
	}
	return nil
}

func loadIDMap(ex db.Executor, table string, lexRowID int64, into map[string]int64) error {
	rows, err := ex.Query(
		`SELECT id, rowid FROM `+table+` WHERE lexicon_rowid = ?`, lexRowID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var rowid int64
		if err := rows.Scan(&id, &rowid); err != nil {
			return err
		}
		into[id] = rowid
	}
	return rows.Err()
}

func (lc *loadContext) insertSynsets() (int, error) {
	b := db.NewBatcher(lc.tx, "synsets",
		[]string{"id", "lexicon_rowid", "ili_rowid", "pos", "lexicalized", "lexfile_rowid", "metadata"},
		lc.batch)
	n := 0
	for i := range lc.lx.Synsets {
		ss := &lc.lx.Synsets[i]
		if ss.External {
			if _, ok := lc.synsetRow[ss.ID]; !ok {
				return n, fmt.Errorf("external synset %s not found in extension base", ss.ID)
			}
			continue
		}
		var iliRowID interface{}
		if ss.ILI != "" && ss.ILI != "in" {
			r, err := db.GetOrCreateILI(lc.tx, ss.ILI, "presupposed")
			if err != nil {
				return n, err
			}
			iliRowID = r
		}
		var lexfileRowID interface{}
		if ss.Lexfile != "" {
			r, err := db.InternLexfile(lc.tx, ss.Lexfile)
			if err != nil {
				return n, err
			}
			lexfileRowID = r
		}
		meta, err := db.EncodeMetadata(ss.Meta)
		if err != nil {
			return n, err
		}
		err = b.Add(ss.ID, lc.lexRowID, iliRowID, nullable(ss.POS),
			boolInt(ss.Lexicalized == nil || *ss.Lexicalized), lexfileRowID, meta)
		if err != nil {
			return n, err
		}
		n++
	}
	if err := b.Close(); err != nil {
		return n, err
	}
	if err := loadIDMap(lc.tx, "synsets", lc.lexRowID, lc.synsetRow); err != nil {
		return n, err
	}

	// Lexicon-local ILI proposals carry their own definition.
	pb := db.NewBatcher(lc.tx, "proposed_ilis",
		[]string{"synset_rowid", "definition", "metadata"}, lc.batch)
	for i := range lc.lx.Synsets {
		ss := &lc.lx.Synsets[i]
		if ss.External || ss.ILI != "in" {
			continue
		}
		if err := pb.Add(lc.synsetRow[ss.ID], nullable(ss.ILIDefinition), nil); err != nil {
			return n, err
		}
	}
	return n, pb.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (lc *loadContext) insertEntries() (int, error) {
	b := db.NewBatcher(lc.tx, "entries",
		[]string{"id", "lexicon_rowid", "pos", "metadata"}, lc.batch)
	n := 0
	for i := range lc.lx.Entries {
		e := &lc.lx.Entries[i]
		if e.External {
			if _, ok := lc.entryRow[e.ID]; !ok {
				return n, fmt.Errorf("external entry %s not found in extension base", e.ID)
			}
			continue
		}
		meta, err := db.EncodeMetadata(e.Meta)
		if err != nil {
			return n, err
		}
		if err := b.Add(e.ID, lc.lexRowID, e.POS, meta); err != nil {
			return n, err
		}
		n++
	}
	if err := b.Close(); err != nil {
		return n, err
	}
	return n, loadIDMap(lc.tx, "entries", lc.lexRowID, lc.entryRow)
}

func (lc *loadContext) insertForms() (int, error) {
	b := db.NewBatcher(lc.tx, "forms",
		[]string{"lexicon_rowid", "entry_rowid", "form", "normalized_form", "script", "rank"},
		lc.batch)
	n := 0
	addForm := func(entryRowID int64, f *lmf.Form, rank int) error {
		var normalized interface{}
		if norm := lemma.Normalize(f.Value); norm != f.Value {
			normalized = norm
		}
		if err := b.Add(lc.lexRowID, entryRowID, f.Value, normalized,
			nullable(f.Script), rank); err != nil {
			return err
		}
		n++
		return nil
	}
	for i := range lc.lx.Entries {
		e := &lc.lx.Entries[i]
		entryRowID, ok := lc.entryRow[e.ID]
		if !ok {
			return n, fmt.Errorf("unknown entry %s", e.ID)
		}
		rank := 0
		if !e.External {
			if err := addForm(entryRowID, &e.Lemma, rank); err != nil {
				return n, err
			}
		}
		for j := range e.Forms {
			rank++
			if err := addForm(entryRowID, &e.Forms[j], rank); err != nil {
				return n, err
			}
		}
	}
	if err := b.Close(); err != nil {
		return n, err
	}
	return n, lc.insertFormDetails()
}

// insertFormDetails attaches pronunciations and tags, matching the stored
// form rows back by (entry, rank) within this lexicon.
func (lc *loadContext) insertFormDetails() error {
	rows, err := lc.tx.Query(
		`SELECT rowid, entry_rowid, rank FROM forms WHERE lexicon_rowid = ?`,
		lc.lexRowID,
	)
	if err != nil {
		return err
	}
	formRow := make(map[[2]int64]int64)
	for rows.Next() {
		var rowid, entryRowID, rank int64
		if err := rows.Scan(&rowid, &entryRowID, &rank); err != nil {
			rows.Close()
			return err
		}
		formRow[[2]int64{entryRowID, rank}] = rowid
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	pb := db.NewBatcher(lc.tx, "pronunciations",
		[]string{"form_rowid", "value", "variety", "notation", "phonemic", "audio"},
		lc.batch)
	tb := db.NewBatcher(lc.tx, "tags",
		[]string{"form_rowid", "tag", "category"}, lc.batch)
	addDetails := func(entryRowID int64, f *lmf.Form, rank int) error {
		rowid, ok := formRow[[2]int64{entryRowID, int64(rank)}]
		if !ok {
			return fmt.Errorf("unmatched form %q", f.Value)
		}
		for _, p := range f.Pronunciations {
			err := pb.Add(rowid, p.Value, nullable(p.Variety), nullable(p.Notation),
				boolInt(p.Phonemic), nullable(p.Audio))
			if err != nil {
				return err
			}
		}
		for _, t := range f.Tags {
			if err := tb.Add(rowid, t.Text, t.Category); err != nil {
				return err
			}
		}
		return nil
	}
	for i := range lc.lx.Entries {
		e := &lc.lx.Entries[i]
		entryRowID := lc.entryRow[e.ID]
		rank := 0
		if !e.External {
			if err := addDetails(entryRowID, &e.Lemma, rank); err != nil {
				return err
			}
		}
		for j := range e.Forms {
			rank++
			if err := addDetails(entryRowID, &e.Forms[j], rank); err != nil {
				return err
			}
		}
	}
	if err := pb.Close(); err != nil {
		return err
	}
	return tb.Close()
}

func (lc *loadContext) insertSenses() (int, error) {
	// Synset-rank order comes from the synset's declared member list when
	// present, otherwise from sense declaration order.
	declaredRank := make(map[string]int)
	for i := range lc.lx.Synsets {
		for rank, senseID := range lc.lx.Synsets[i].Members {
			declaredRank[senseID] = rank
		}
	}
	nextRank := make(map[string]int)

	b := db.NewBatcher(lc.tx, "senses",
		[]string{"id", "lexicon_rowid", "entry_rowid", "entry_rank",
			"synset_rowid", "synset_rank", "lexicalized", "adjposition", "metadata"},
		lc.batch)
	n := 0
	for i := range lc.lx.Entries {
		e := &lc.lx.Entries[i]
		entryRowID := lc.entryRow[e.ID]
		for entryRank := range e.Senses {
			s := &e.Senses[entryRank]
			if s.External {
				if _, ok := lc.senseRow[s.ID]; !ok {
					return n, fmt.Errorf("external sense %s not found in extension base", s.ID)
				}
				continue
			}
			synsetRowID, ok := lc.synsetRow[s.SynsetID]
			if !ok {
				return n, fmt.Errorf("sense %s: unknown synset %s", s.ID, s.SynsetID)
			}
			synsetRank, ok := declaredRank[s.ID]
			if !ok {
				synsetRank = nextRank[s.SynsetID]
				nextRank[s.SynsetID]++
			}
			meta, err := db.EncodeMetadata(s.Meta)
			if err != nil {
				return n, err
			}
			err = b.Add(s.ID, lc.lexRowID, entryRowID, entryRank,
				synsetRowID, synsetRank,
				boolInt(s.Lexicalized == nil || *s.Lexicalized),
				nullable(s.Adjposition), meta)
			if err != nil {
				return n, err
			}
			n++
		}
	}
	if err := b.Close(); err != nil {
		return n, err
	}
	return n, loadIDMap(lc.tx, "senses", lc.lexRowID, lc.senseRow)
}

func (lc *loadContext) insertCounts() (int, error) {
	cb := db.NewBatcher(lc.tx, "counts",
		[]string{"lexicon_rowid", "sense_rowid", "count", "metadata"}, lc.batch)
	n := 0
	err := lc.eachSense(func(s *lmf.Sense, senseRowID int64) error {
		for _, c := range s.Counts {
			meta, err := db.EncodeMetadata(c.Meta)
			if err != nil {
				return err
			}
			if err := cb.Add(lc.lexRowID, senseRowID, c.Value, meta); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return n, err
	}
	return n, cb.Close()
}

// eachSense visits every declared sense, external stubs included, with its
// resolved rowid.
func (lc *loadContext) eachSense(fn func(s *lmf.Sense, senseRowID int64) error) error {
	for i := range lc.lx.Entries {
		e := &lc.lx.Entries[i]
		for j := range e.Senses {
			s := &e.Senses[j]
			rowid, ok := lc.senseRow[s.ID]
			if !ok {
				return fmt.Errorf("unknown sense %s", s.ID)
			}
			if err := fn(s, rowid); err != nil {
				return err
			}
		}
	}
	return nil
}

func (lc *loadContext) insertBehaviours() (int, error) {
	pairs := make(map[[2]int64]bool)
	behaviourRow := make(map[string]int64)
	n := 0
	for _, sb := range lc.lx.Behaviours {
		res, err := lc.tx.Exec(
			`INSERT INTO syntactic_behaviours (id, lexicon_rowid, frame) VALUES (?, ?, ?)`,
			nullable(sb.ID), lc.lexRowID, sb.Frame,
		)
		if err != nil {
			return n, err
		}
		rowid, err := res.LastInsertId()
		if err != nil {
			return n, err
		}
		if sb.ID != "" {
			behaviourRow[sb.ID] = rowid
		}
		n++
		for _, senseID := range sb.SenseIDs {
			senseRowID, ok := lc.senseRow[senseID]
			if !ok {
				return n, fmt.Errorf("frame %q: unknown sense %s", sb.Frame, senseID)
			}
			pairs[[2]int64{rowid, senseRowID}] = true
		}
	}
	err := lc.eachSense(func(s *lmf.Sense, senseRowID int64) error {
		for _, id := range s.BehaviourIDs {
			rowid, ok := behaviourRow[id]
			if !ok {
				return fmt.Errorf("sense %s: unknown frame %s", s.ID, id)
			}
			pairs[[2]int64{rowid, senseRowID}] = true
		}
		return nil
	})
	if err != nil {
		return n, err
	}
	jb := db.NewBatcher(lc.tx, "syntactic_behaviour_senses",
		[]string{"behaviour_rowid", "sense_rowid"}, lc.batch)
	for pair := range pairs {
		if err := jb.Add(pair[0], pair[1]); err != nil {
			return n, err
		}
	}
	return n, jb.Close()
}

// relConfidence reads a per-edge confidence override from relation
// metadata.
func relConfidence(meta lmf.Metadata) float64 {
	if s, ok := meta["confidence"]; ok {
		if c, err := strconv.ParseFloat(s, 64); err == nil {
			return c
		}
	}
	return 1.0
}

func (lc *loadContext) insertRelations() (int, error) {
	relCols := []string{"lexicon_rowid", "source_rowid", "target_rowid",
		"type_rowid", "confidence", "metadata"}
	ssb := db.NewBatcher(lc.tx, "synset_relations", relCols, lc.batch)
	srb := db.NewBatcher(lc.tx, "sense_relations", relCols, lc.batch)
	sxb := db.NewBatcher(lc.tx, "sense_synset_relations", relCols, lc.batch)
	n := 0

	addEdge := func(b *db.Batcher, source, target int64, rel *lmf.Relation) error {
		typeRowID, err := db.InternRelationType(lc.tx, rel.Type)
		if err != nil {
			return err
		}
		meta, err := db.EncodeMetadata(rel.Meta)
		if err != nil {
			return err
		}
		if err := b.Add(lc.lexRowID, source, target, typeRowID,
			relConfidence(rel.Meta), meta); err != nil {
			return err
		}
		n++
		return nil
	}

	for i := range lc.lx.Synsets {
		ss := &lc.lx.Synsets[i]
		source, ok := lc.synsetRow[ss.ID]
		if !ok {
			return n, fmt.Errorf("unknown synset %s", ss.ID)
		}
		for j := range ss.Relations {
			rel := &ss.Relations[j]
			if !lmf.SynsetRelationNames[rel.Type] {
				return n, fmt.Errorf("synset %s: invalid relation type %q", ss.ID, rel.Type)
			}
			target, ok := lc.synsetRow[rel.Target]
			if !ok {
				return n, fmt.Errorf("synset %s: relation %s target %q does not resolve",
					ss.ID, rel.Type, rel.Target)
			}
			if err := addEdge(ssb, source, target, rel); err != nil {
				return n, err
			}
		}
	}

	err := lc.eachSense(func(s *lmf.Sense, source int64) error {
		for j := range s.Relations {
			rel := &s.Relations[j]
			if target, ok := lc.senseRow[rel.Target]; ok && lmf.SenseRelationNames[rel.Type] {
				if err := addEdge(srb, source, target, rel); err != nil {
					return err
				}
				continue
			}
			if target, ok := lc.synsetRow[rel.Target]; ok && lmf.SenseSynsetRelationNames[rel.Type] {
				if err := addEdge(sxb, source, target, rel); err != nil {
					return err
				}
				continue
			}
			return fmt.Errorf("sense %s: relation %s target %q does not resolve",
				s.ID, rel.Type, rel.Target)
		}
		return nil
	})
	if err != nil {
		return n, err
	}
	for _, b := range []*db.Batcher{ssb, srb, sxb} {
		if err := b.Close(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (lc *loadContext) insertDefinitions() (int, error) {
	b := db.NewBatcher(lc.tx, "definitions",
		[]string{"lexicon_rowid", "synset_rowid", "definition", "language",
			"sense_rowid", "metadata"},
		lc.batch)
	n := 0
	for i := range lc.lx.Synsets {
		ss := &lc.lx.Synsets[i]
		synsetRowID := lc.synsetRow[ss.ID]
		for _, d := range ss.Definitions {
			var senseRowID interface{}
			if d.SourceSenseID != "" {
				if r, ok := lc.senseRow[d.SourceSenseID]; ok {
					senseRowID = r
				}
			}
			meta, err := db.EncodeMetadata(d.Meta)
			if err != nil {
				return n, err
			}
			err = b.Add(lc.lexRowID, synsetRowID, d.Text, nullable(d.Language),
				senseRowID, meta)
			if err != nil {
				return n, err
			}
			n++
		}
	}
	return n, b.Close()
}

func (lc *loadContext) insertExamples() (int, error) {
	sb := db.NewBatcher(lc.tx, "synset_examples",
		[]string{"lexicon_rowid", "synset_rowid", "example", "language", "metadata"},
		lc.batch)
	eb := db.NewBatcher(lc.tx, "sense_examples",
		[]string{"lexicon_rowid", "sense_rowid", "example", "language", "metadata"},
		lc.batch)
	n := 0
	for i := range lc.lx.Synsets {
		ss := &lc.lx.Synsets[i]
		synsetRowID := lc.synsetRow[ss.ID]
		for _, e := range ss.Examples {
			meta, err := db.EncodeMetadata(e.Meta)
			if err != nil {
				return n, err
			}
			if err := sb.Add(lc.lexRowID, synsetRowID, e.Text,
				nullable(e.Language), meta); err != nil {
				return n, err
			}
			n++
		}
	}
	err := lc.eachSense(func(s *lmf.Sense, senseRowID int64) error {
		for _, e := range s.Examples {
			meta, err := db.EncodeMetadata(e.Meta)
			if err != nil {
				return err
			}
			if err := eb.Add(lc.lexRowID, senseRowID, e.Text,
				nullable(e.Language), meta); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return n, err
	}
	if err := sb.Close(); err != nil {
		return n, err
	}
	return n, eb.Close()
}

// Remove deletes every lexicon matching pattern. A lexicon's transitive
// extensions are removed first, deepest first, in the same transaction as
// their base, so a dangling extension can never remain.
func (ld *Loader) Remove(pattern string) (*Report, error) {
	conn := ld.DB.store.Conn()
	report := &Report{}
	targets, err := lexicon.Resolve(conn, pattern, "")
	if err != nil {
		return report, err
	}
	removed := make(map[int64]bool)
	for i, l := range targets {
		if removed[l.RowID] {
			continue
		}
		exts, err := lexicon.Extensions(conn, l.Specifier().String(), -1)
		if err != nil {
			return report, err
		}
		tx, err := conn.Begin()
		if err != nil {
			return report, err
		}
		group := make([]*lexicon.Lexicon, 0, len(exts)+1)
		for j := len(exts) - 1; j >= 0; j-- {
			if !removed[exts[j].RowID] {
				group = append(group, exts[j])
			}
		}
		group = append(group, l)
		for _, g := range group {
			if _, err := tx.Exec(`DELETE FROM lexicons WHERE rowid = ?`, g.RowID); err != nil {
				tx.Rollback()
				return report, fmt.Errorf("remove %s: %w", g.Specifier(), err)
			}
		}
		if err := tx.Commit(); err != nil {
			return report, err
		}
		for _, g := range group {
			removed[g.RowID] = true
			ld.logger().Info("removed lexicon",
				slog.String("lexicon", g.Specifier().String()))
			report.add(g.Specifier().String(), OutcomeRemoved, "")
		}
		ld.progress("remove", i+1, len(targets))
	}
	return report, nil
}
