package wordnet

import (
	"database/sql"
	"strconv"

	"github.com/lexigraph/wordnet/pkg/db"
)

// Relation is one typed synset edge with its provenance retained.
type Relation struct {
	Name       string
	Confidence float64
	Metadata   map[string]string
	Target     *Synset
}

// SenseRelation is one typed sense edge with its provenance retained.
type SenseRelation struct {
	Name       string
	Confidence float64
	Metadata   map[string]string
	Target     *Sense
}

// The relation tables are a fixed internal allow-list; caller-supplied
// strings select relation-type names only, never table names.
const (
	relTableSynset      = "synset_relations"
	relTableSense       = "sense_relations"
	relTableSenseSynset = "sense_synset_relations"
)

func union(a, b []int64) []int64 {
	seen := make(map[int64]bool, len(a)+len(b))
	out := make([]int64, 0, len(a)+len(b))
	for _, s := range [][]int64{a, b} {
		for _, v := range s {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// typeClause appends the relation-type membership test unless all types
// are requested.
func typeClause(conds []string, args []interface{}, types []string) ([]string, []interface{}) {
	if len(types) == 0 {
		return conds, args
	}
	conds = append(conds, `rt.type IN (`+db.Placeholders(len(types))+`)`)
	return conds, append(args, db.StringArgs(types)...)
}

// synsetEdges collects local relation rows: owned by a lexicon in local,
// with a target stored in targetScope.
func (ss *Synset) synsetEdges(types []string, local, targetScope []int64) ([]Relation, error) {
	conds := []string{`r.source_rowid = ?`}
	args := []interface{}{ss.rowid}
	conds, args = typeClause(conds, args, types)
	conds, args = scopeClause(conds, args, `r.lexicon_rowid`, local)
	conds, args = scopeClause(conds, args, `ss.lexicon_rowid`, targetScope)

	q := `SELECT rt.type, r.confidence, r.metadata, ` + synsetColumns + `
		FROM ` + relTableSynset + ` r
		JOIN relation_types rt ON rt.rowid = r.type_rowid
		JOIN synsets ss ON ss.rowid = r.target_rowid` + synsetJoins + `
		WHERE ` + joinAnd(conds) + ` ORDER BY r.rowid`

	rows, err := ss.w.ex().Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Relation
	for rows.Next() {
		rel, target, err := scanRelationPrefix(rows, ss.w)
		if err != nil {
			return nil, err
		}
		rel.Target = target
		out = append(out, rel)
	}
	return out, rows.Err()
}

// expandedEdges collects relations recorded by expand-set lexicons against
// synsets sharing the source's ILI, remapping each target into the active
// scope by ILI lookup. Targets with no concrete counterpart become
// placeholder synsets bearing only the ILI.
func (ss *Synset) expandedEdges(types []string, expand, active []int64) ([]Relation, error) {
	if ss.ili == "" || len(expand) == 0 {
		return nil, nil
	}

	conds := []string{`si.id = ?`}
	args := []interface{}{ss.ili}
	conds, args = typeClause(conds, args, types)
	conds, args = scopeClause(conds, args, `r.lexicon_rowid`, expand)

	q := `SELECT rt.type, r.confidence, r.metadata, IFNULL(ti.id, '')
		FROM synsets src
		JOIN ilis si ON si.rowid = src.ili_rowid
		JOIN ` + relTableSynset + ` r ON r.source_rowid = src.rowid
		JOIN relation_types rt ON rt.rowid = r.type_rowid
		JOIN synsets tgt ON tgt.rowid = r.target_rowid
		LEFT JOIN ilis ti ON ti.rowid = tgt.ili_rowid
		WHERE ` + joinAnd(conds) + ` ORDER BY r.rowid`

	rows, err := ss.w.ex().Query(q, args...)
	if err != nil {
		return nil, err
	}

	type edge struct {
		name       string
		confidence float64
		metadata   map[string]string
		ili        string
	}
	var edges []edge
	for rows.Next() {
		var e edge
		var meta sql.NullString
		if err := rows.Scan(&e.name, &e.confidence, &meta, &e.ili); err != nil {
			rows.Close()
			return nil, err
		}
		if e.metadata, err = db.DecodeMetadata(meta); err != nil {
			rows.Close()
			return nil, err
		}
		if e.ili != "" {
			edges = append(edges, e)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Remap each distinct target ILI once.
	remapped := make(map[string][]*Synset)
	var out []Relation
	for _, e := range edges {
		targets, ok := remapped[e.ili]
		if !ok {
			targets, err = ss.remapILI(e.ili, active)
			if err != nil {
				return nil, err
			}
			remapped[e.ili] = targets
		}
		for _, t := range targets {
			out = append(out, Relation{
				Name: e.name, Confidence: e.confidence, Metadata: e.metadata, Target: t,
			})
		}
	}
	return out, nil
}

// remapILI resolves an ILI to concrete synsets in scope, or synthesizes a
// placeholder carrying only the ILI and the source's lexicon identity, so
// traversal stays connected without asserting false precision.
func (ss *Synset) remapILI(ili string, scope []int64) ([]*Synset, error) {
	conds := []string{`i.id = ?`}
	args := []interface{}{ili}
	conds, args = scopeClause(conds, args, `ss.lexicon_rowid`, scope)
	q := `SELECT ` + synsetColumns + ` FROM synsets ss` + synsetJoins +
		` WHERE ` + joinAnd(conds) + ` ORDER BY ss.lexicon_rowid, ss.rowid`
	targets, err := ss.w.querySynsets(q, args)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		targets = []*Synset{{
			w: ss.w, lexRowID: ss.lexRowID, ID: inferredID, POS: ss.POS,
			ili: ili, lexicalized: false,
		}}
	}
	return targets, nil
}

// Relations returns the synset's outgoing edges with relation type and
// provenance retained: local edges first, then ILI-expanded edges,
// deduplicated by (type, target).
func (ss *Synset) Relations(types ...string) ([]Relation, error) {
	if ss.rowid == 0 {
		return nil, nil
	}
	local, expand, err := ss.w.traversalScope(ss.lexRowID)
	if err != nil {
		return nil, err
	}
	edges, err := ss.synsetEdges(types, local, union(local, expand))
	if err != nil {
		return nil, err
	}
	expanded, err := ss.expandedEdges(types, expand, local)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	out := make([]Relation, 0, len(edges)+len(expanded))
	for _, r := range append(edges, expanded...) {
		k := r.Name + "\x1f" + r.Target.Key()
		if !seen[k] {
			seen[k] = true
			out = append(out, r)
		}
	}
	return out, nil
}

// Related returns a flat, order-preserving, duplicate-free list of the
// synsets reached by the given relation types (all types when none given).
func (ss *Synset) Related(types ...string) ([]*Synset, error) {
	rels, err := ss.Relations(types...)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(rels))
	out := make([]*Synset, 0, len(rels))
	for _, r := range rels {
		if !seen[r.Target.Key()] {
			seen[r.Target.Key()] = true
			out = append(out, r.Target)
		}
	}
	return out, nil
}

// Hypernyms returns the immediate hypernyms, treating hypernym and
// instance-hypernym edges as one kind.
func (ss *Synset) Hypernyms() ([]*Synset, error) {
	return ss.Related("hypernym", "instance_hypernym")
}

// Closure walks the given relation types breadth-first from the synset,
// returning each reachable synset once in discovery order. Cycles
// terminate via the visited set, which is keyed by entity identity.
func (ss *Synset) Closure(types ...string) ([]*Synset, error) {
	visited := map[string]bool{ss.Key(): true}
	var out []*Synset
	frontier := []*Synset{ss}
	for len(frontier) > 0 {
		var next []*Synset
		for _, node := range frontier {
			related, err := node.Related(types...)
			if err != nil {
				return nil, err
			}
			for _, r := range related {
				if !visited[r.Key()] {
					visited[r.Key()] = true
					out = append(out, r)
					next = append(next, r)
				}
			}
		}
		frontier = next
	}
	return out, nil
}

// RelationPaths enumerates all simple paths outward over the given
// relation types. Paths exclude the starting synset. With a nil end every
// maximal path is returned; otherwise only paths terminating at end.
func (ss *Synset) RelationPaths(end *Synset, types ...string) ([][]*Synset, error) {
	var paths [][]*Synset
	onPath := map[string]bool{ss.Key(): true}

	var walk func(node *Synset, path []*Synset) error
	walk = func(node *Synset, path []*Synset) error {
		related, err := node.Related(types...)
		if err != nil {
			return err
		}
		extended := false
		for _, r := range related {
			if onPath[r.Key()] {
				continue
			}
			extended = true
			if end != nil && r.Equal(end) {
				paths = append(paths, append(append([]*Synset{}, path...), r))
				continue
			}
			onPath[r.Key()] = true
			if err := walk(r, append(path, r)); err != nil {
				return err
			}
			delete(onPath, r.Key())
		}
		if !extended && end == nil && len(path) > 0 {
			paths = append(paths, append([]*Synset{}, path...))
		}
		return nil
	}
	if err := walk(ss, nil); err != nil {
		return nil, err
	}
	return paths, nil
}

// senseEdges collects sense relation rows from the given table.
func (s *Sense) senseEdges(table string, types []string, local, targetScope []int64) (*sql.Rows, error) {
	targetCols, joins := senseColumns, ``
	targetLexCol := `s.lexicon_rowid`
	if table == relTableSenseSynset {
		targetCols, joins = synsetColumns, synsetJoins
		targetLexCol = `ss.lexicon_rowid`
	}
	conds := []string{`r.source_rowid = ?`}
	args := []interface{}{s.rowid}
	conds, args = typeClause(conds, args, types)
	conds, args = scopeClause(conds, args, `r.lexicon_rowid`, local)
	conds, args = scopeClause(conds, args, targetLexCol, targetScope)

	target := `senses s`
	if table == relTableSenseSynset {
		target = `synsets ss`
	}
	q := `SELECT rt.type, r.confidence, r.metadata, ` + targetCols + `
		FROM ` + table + ` r
		JOIN relation_types rt ON rt.rowid = r.type_rowid
		JOIN ` + target + ` ON ` + targetRowidCol(table) + ` = r.target_rowid` + joins + `
		WHERE ` + joinAnd(conds) + ` ORDER BY r.rowid`
	return s.w.ex().Query(q, args...)
}

func targetRowidCol(table string) string {
	if table == relTableSenseSynset {
		return `ss.rowid`
	}
	return `s.rowid`
}

// Relations returns the sense's outgoing sense-to-sense edges with
// relation type and provenance retained.
func (s *Sense) Relations(types ...string) ([]SenseRelation, error) {
	local, expand, err := s.w.traversalScope(s.lexRowID)
	if err != nil {
		return nil, err
	}
	rows, err := s.senseEdges(relTableSense, types, local, union(local, expand))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SenseRelation
	for rows.Next() {
		var rel SenseRelation
		var meta, tmeta sql.NullString
		target := &Sense{w: s.w}
		var lexicalized int
		err := rows.Scan(
			&rel.Name, &rel.Confidence, &meta,
			&target.rowid, &target.ID, &target.lexRowID, &target.entryRowID,
			&target.synsetRowID, &target.EntryRank, &target.SynsetRank,
			&lexicalized, &target.adjposition, &tmeta,
		)
		if err != nil {
			return nil, err
		}
		target.lexicalized = lexicalized != 0
		if rel.Metadata, err = db.DecodeMetadata(meta); err != nil {
			return nil, err
		}
		if target.metadata, err = db.DecodeMetadata(tmeta); err != nil {
			return nil, err
		}
		rel.Target = target
		out = append(out, rel)
	}
	return out, rows.Err()
}

// Related returns the senses reached by the given relation types,
// duplicate-free in discovery order.
func (s *Sense) Related(types ...string) ([]*Sense, error) {
	rels, err := s.Relations(types...)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(rels))
	out := make([]*Sense, 0, len(rels))
	for _, r := range rels {
		k := r.Target.ID + "\x1f" + strconv.FormatInt(r.Target.lexRowID, 10)
		if !seen[k] {
			seen[k] = true
			out = append(out, r.Target)
		}
	}
	return out, nil
}

// RelatedSynsets returns the synsets reached by the sense's
// sense-to-synset relations.
func (s *Sense) RelatedSynsets(types ...string) ([]*Synset, error) {
	local, expand, err := s.w.traversalScope(s.lexRowID)
	if err != nil {
		return nil, err
	}
	rows, err := s.senseEdges(relTableSenseSynset, types, local, union(local, expand))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seen := make(map[string]bool)
	var out []*Synset
	for rows.Next() {
		_, target, err := scanRelationPrefix(rows, s.w)
		if err != nil {
			return nil, err
		}
		if !seen[target.Key()] {
			seen[target.Key()] = true
			out = append(out, target)
		}
	}
	return out, rows.Err()
}

// scanRelationPrefix scans (type, confidence, metadata) followed by a full
// synset row.
func scanRelationPrefix(rows *sql.Rows, w *Wordnet) (Relation, *Synset, error) {
	var rel Relation
	var meta sql.NullString
	target := &Synset{w: w}
	var tmeta sql.NullString
	var lexicalized int
	err := rows.Scan(
		&rel.Name, &rel.Confidence, &meta,
		&target.rowid, &target.ID, &target.lexRowID, &target.POS,
		&lexicalized, &target.ili, &target.lexfile, &tmeta,
	)
	if err != nil {
		return rel, nil, err
	}
	target.lexicalized = lexicalized != 0
	if rel.Metadata, err = db.DecodeMetadata(meta); err != nil {
		return rel, nil, err
	}
	if target.metadata, err = db.DecodeMetadata(tmeta); err != nil {
		return rel, nil, err
	}
	return rel, target, nil
}

func joinAnd(conds []string) string {
	out := conds[0]
	for _, c := range conds[1:] {
		out += ` AND ` + c
	}
	return out
}
