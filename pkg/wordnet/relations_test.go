package wordnet

import (
	"testing"

	"github.com/lexigraph/wordnet/pkg/lmf"
)

func synsetIDs(sss []*Synset) []string {
	ids := make([]string, len(sss))
	for i, ss := range sss {
		ids[i] = ss.ID
	}
	return ids
}

func sameIDs(got []*Synset, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i, ss := range got {
		if ss.ID != want[i] {
			return false
		}
	}
	return true
}

func TestSynsetRelations(t *testing.T) {
	w := testView(t, "test:1", "")
	ss, err := w.Synset("ss-sample-n")
	if err != nil {
		t.Fatalf("synset: %v", err)
	}
	rels, err := ss.Relations()
	if err != nil {
		t.Fatalf("relations: %v", err)
	}
	if len(rels) != 2 {
		t.Fatalf("expected 2 relations, got %+v", rels)
	}
	if rels[0].Name != "hypernym" || rels[0].Target.ID != "ss-example-n" {
		t.Fatalf("unexpected first relation: %+v", rels[0])
	}
	if rels[0].Confidence != 1.0 {
		t.Fatalf("default confidence should be 1.0, got %v", rels[0].Confidence)
	}

	hyp, err := ss.Hypernyms()
	if err != nil {
		t.Fatalf("hypernyms: %v", err)
	}
	if !sameIDs(hyp, "ss-example-n") {
		t.Fatalf("unexpected hypernyms: %v", synsetIDs(hyp))
	}
}

func TestRelationTypeFilter(t *testing.T) {
	w := testView(t, "test:1", "")
	ss, err := w.Synset("ss-example-n")
	if err != nil {
		t.Fatalf("synset: %v", err)
	}
	hyponyms, err := ss.Related("hyponym")
	if err != nil {
		t.Fatalf("related: %v", err)
	}
	if !sameIDs(hyponyms, "ss-sample-n") {
		t.Fatalf("unexpected hyponyms: %v", synsetIDs(hyponyms))
	}
}

func TestRelationConfidenceOverride(t *testing.T) {
	d := newTestDB(t)
	conf := &lmf.Lexicon{
		ID: "conf", Version: "1", Label: "Conf", Language: "en",
		Synsets: []lmf.Synset{
			{ID: "c-1-n", POS: "n"},
			{
				ID: "c-2-n", POS: "n",
				Relations: []lmf.Relation{{
					Type: "hypernym", Target: "c-1-n",
					Meta: lmf.Metadata{"confidence": "0.5"},
				}},
			},
		},
	}
	load(t, d, conf)
	w, err := d.Wordnet("conf:1", "")
	if err != nil {
		t.Fatalf("wordnet: %v", err)
	}
	ss, err := w.Synset("c-2-n")
	if err != nil {
		t.Fatalf("synset: %v", err)
	}
	rels, err := ss.Relations()
	if err != nil {
		t.Fatalf("relations: %v", err)
	}
	if len(rels) != 1 || rels[0].Confidence != 0.5 {
		t.Fatalf("confidence override lost: %+v", rels)
	}
}

func TestSenseRelations(t *testing.T) {
	w := testView(t, "test:1", "")
	s, err := w.Sense("exemplify-v-1")
	if err != nil {
		t.Fatalf("sense: %v", err)
	}
	related, err := s.Related("derivation")
	if err != nil {
		t.Fatalf("related: %v", err)
	}
	if len(related) != 1 || related[0].ID != "example-n-1" {
		t.Fatalf("unexpected derivation targets: %v", related)
	}
	sss, err := s.RelatedSynsets("domain_topic")
	if err != nil {
		t.Fatalf("related synsets: %v", err)
	}
	if !sameIDs(sss, "ss-information-n") {
		t.Fatalf("unexpected domain targets: %v", synsetIDs(sss))
	}
}

func TestClosure(t *testing.T) {
	w := testView(t, "test:1", "")
	ss, err := w.Synset("ss-random-sample-n")
	if err != nil {
		t.Fatalf("synset: %v", err)
	}
	closure, err := ss.Closure("hypernym")
	if err != nil {
		t.Fatalf("closure: %v", err)
	}
	if !sameIDs(closure, "ss-sample-n", "ss-example-n", "ss-information-n") {
		t.Fatalf("unexpected closure: %v", synsetIDs(closure))
	}
}

func TestClosureTerminatesOnCycles(t *testing.T) {
	w := testView(t, "test:1", "")
	ss, err := w.Synset("ss-example-n")
	if err != nil {
		t.Fatalf("synset: %v", err)
	}
	// hypernym edges and their hyponym inverses form cycles.
	closure, err := ss.Closure("hypernym", "hyponym")
	if err != nil {
		t.Fatalf("closure: %v", err)
	}
	if len(closure) != 4 {
		t.Fatalf("expected the 4 other chain synsets, got %v", synsetIDs(closure))
	}
}

func TestRelationPaths(t *testing.T) {
	w := testView(t, "test:1", "")
	ss, err := w.Synset("ss-random-sample-n")
	if err != nil {
		t.Fatalf("synset: %v", err)
	}
	paths, err := ss.RelationPaths(nil, "hypernym")
	if err != nil {
		t.Fatalf("paths: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected 1 path, got %d", len(paths))
	}
	if !sameIDs(paths[0], "ss-sample-n", "ss-example-n", "ss-information-n") {
		t.Fatalf("unexpected path: %v", synsetIDs(paths[0]))
	}

	end, err := w.Synset("ss-example-n")
	if err != nil {
		t.Fatalf("synset: %v", err)
	}
	paths, err = ss.RelationPaths(end, "hypernym")
	if err != nil {
		t.Fatalf("paths to end: %v", err)
	}
	if len(paths) != 1 || !sameIDs(paths[0], "ss-sample-n", "ss-example-n") {
		t.Fatalf("unexpected bounded path: %+v", paths)
	}
}

func expandView(t *testing.T, opts ...Option) *Wordnet {
	t.Helper()
	d := newTestDB(t)
	load(t, d, miniLexicon(), otherLexicon())
	w, err := d.Wordnet("other:1", "", opts...)
	if err != nil {
		t.Fatalf("wordnet: %v", err)
	}
	return w
}

func TestExpansion(t *testing.T) {
	w := expandView(t, WithExpand("test:1"))
	// o-muestra-n records no relations of its own; via the shared
	// interlingual key its counterpart's hypernym edge is borrowed and the
	// target remapped into the active lexicon.
	ss, err := w.Synset("o-muestra-n")
	if err != nil {
		t.Fatalf("synset: %v", err)
	}
	hyp, err := ss.Hypernyms()
	if err != nil {
		t.Fatalf("hypernyms: %v", err)
	}
	if !sameIDs(hyp, "o-ejemplo-n") {
		t.Fatalf("expected remapped hypernym, got %v", synsetIDs(hyp))
	}
	if hyp[0].IsSynthetic() {
		t.Fatalf("remap to a concrete synset should not be synthetic")
	}
}

func TestExpansionInferredTarget(t *testing.T) {
	w := expandView(t, WithExpand("test:1"))
	ss, err := w.Synset("o-informacion-n")
	if err != nil {
		t.Fatalf("synset: %v", err)
	}
	hyponyms, err := ss.Related("hyponym")
	if err != nil {
		t.Fatalf("related: %v", err)
	}
	if len(hyponyms) != 2 {
		t.Fatalf("expected concrete plus inferred hyponym, got %v", synsetIDs(hyponyms))
	}
	var inferred *Synset
	for _, h := range hyponyms {
		if h.IsSynthetic() {
			inferred = h
		}
	}
	if inferred == nil {
		t.Fatalf("expected an inferred placeholder target")
	}
	if inferred.ILI() != "i7" {
		t.Fatalf("placeholder must carry the ili, got %q", inferred.ILI())
	}
	if inferred.Lexicalized() {
		t.Fatalf("placeholder must not claim lexicalization")
	}
}

func TestNoExpandSetNoBorrowedEdges(t *testing.T) {
	w := expandView(t, WithExpand(""))
	ss, err := w.Synset("o-muestra-n")
	if err != nil {
		t.Fatalf("synset: %v", err)
	}
	hyp, err := ss.Hypernyms()
	if err != nil {
		t.Fatalf("hypernyms: %v", err)
	}
	if len(hyp) != 0 {
		t.Fatalf("empty expand set must not borrow edges, got %v", synsetIDs(hyp))
	}
}

// TestCrossLexiconRelationTarget loads lexicon B with a declared dependency
// on lexicon A and a hypernym edge stored directly against A's synset. The
// edge is invisible while A is out of scope and surfaces once A joins the
// expand set.
func TestCrossLexiconRelationTarget(t *testing.T) {
	d := newTestDB(t)
	a := &lmf.Lexicon{
		ID: "a", Version: "1", Label: "A", Language: "en",
		Synsets: []lmf.Synset{{ID: "a-x-n", ILI: "i1", POS: "n"}},
	}
	b := &lmf.Lexicon{
		ID: "b", Version: "1", Label: "B", Language: "en",
		Requires: []lmf.Ref{{ID: "a", Version: "1"}},
		Synsets: []lmf.Synset{
			{
				ID: "b-y-n", ILI: "i2", POS: "n",
				Relations: []lmf.Relation{{Type: "hypernym", Target: "a-x-n"}},
			},
		},
	}
	load(t, d, a, b)

	w, err := d.Wordnet("b:1", "")
	if err != nil {
		t.Fatalf("wordnet: %v", err)
	}
	y, err := w.Synset("b-y-n")
	if err != nil {
		t.Fatalf("synset: %v", err)
	}
	hyp, err := y.Hypernyms()
	if err != nil {
		t.Fatalf("hypernyms: %v", err)
	}
	if len(hyp) != 0 {
		t.Fatalf("out-of-scope target must be filtered, got %v", synsetIDs(hyp))
	}

	expanded, err := d.Wordnet("b:1", "", WithExpand("a:1"))
	if err != nil {
		t.Fatalf("wordnet: %v", err)
	}
	y, err = expanded.Synset("b-y-n")
	if err != nil {
		t.Fatalf("synset: %v", err)
	}
	hyp, err = y.Hypernyms()
	if err != nil {
		t.Fatalf("hypernyms: %v", err)
	}
	if !sameIDs(hyp, "a-x-n") {
		t.Fatalf("expected the stored cross-lexicon target, got %v", synsetIDs(hyp))
	}
}

// TestDependencyProviderInstalledLast installs a dependent before the
// lexicon that provides its declared dependency. The closure used for
// default-mode traversal must pick the provider up once it arrives.
func TestDependencyProviderInstalledLast(t *testing.T) {
	d := newTestDB(t)
	a := &lmf.Lexicon{
		ID: "a", Version: "1", Label: "A", Language: "en",
		Synsets: []lmf.Synset{
			{ID: "a-x-n", ILI: "i1", POS: "n"},
			{
				ID: "a-y-n", ILI: "i2", POS: "n",
				Relations: []lmf.Relation{{Type: "hypernym", Target: "a-x-n"}},
			},
		},
	}
	b := &lmf.Lexicon{
		ID: "b", Version: "1", Label: "B", Language: "en",
		Requires: []lmf.Ref{{ID: "a", Version: "1"}},
		Synsets:  []lmf.Synset{{ID: "b-y-n", ILI: "i2", POS: "n"}},
	}
	load(t, d, b, a)

	w, err := d.Wordnet("", "")
	if err != nil {
		t.Fatalf("wordnet: %v", err)
	}
	y, err := w.Synset("b-y-n")
	if err != nil {
		t.Fatalf("synset: %v", err)
	}
	hyp, err := y.Hypernyms()
	if err != nil {
		t.Fatalf("hypernyms: %v", err)
	}
	if len(hyp) != 1 {
		t.Fatalf("declared dependency must resolve regardless of install order, got %v",
			synsetIDs(hyp))
	}
}

func TestDefaultModeTraversalStaysInClosure(t *testing.T) {
	d := newTestDB(t)
	load(t, d, miniLexicon(), otherLexicon())
	w, err := d.Wordnet("", "")
	if err != nil {
		t.Fatalf("wordnet: %v", err)
	}
	// otherLexicon declares no dependency on miniLexicon, so traversal out
	// of its synsets must not borrow edges through shared interlingual
	// keys.
	ss, err := w.Synset("o-muestra-n")
	if err != nil {
		t.Fatalf("synset: %v", err)
	}
	hyp, err := ss.Hypernyms()
	if err != nil {
		t.Fatalf("hypernyms: %v", err)
	}
	if len(hyp) != 0 {
		t.Fatalf("unrelated lexicon leaked into traversal: %v", synsetIDs(hyp))
	}
	// Traversal within a lexicon's own graph is unaffected.
	local, err := w.Synset("ss-sample-n")
	if err != nil {
		t.Fatalf("synset: %v", err)
	}
	hyp, err = local.Hypernyms()
	if err != nil {
		t.Fatalf("hypernyms: %v", err)
	}
	if !sameIDs(hyp, "ss-example-n") {
		t.Fatalf("unexpected hypernyms: %v", synsetIDs(hyp))
	}
}

func TestSyntheticSynsetHasNoRelations(t *testing.T) {
	w := testView(t, "test:1", "")
	ss, err := w.Synset("ss-exemplify-v")
	if err != nil {
		t.Fatalf("synset: %v", err)
	}
	root := SyntheticRoot(ss)
	rels, err := root.Relations()
	if err != nil {
		t.Fatalf("relations: %v", err)
	}
	if len(rels) != 0 {
		t.Fatalf("synthetic synset must not yield relations: %+v", rels)
	}
	members, err := root.Members()
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 0 {
		t.Fatalf("synthetic synset must not have members")
	}
}
