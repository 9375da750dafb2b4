package taxonomy

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/lexigraph/wordnet/pkg/lmf"
	"github.com/lexigraph/wordnet/pkg/wordnet"
)

// chainView loads a four-synset hypernym chain plus two detached synsets
// and returns a view over it.
func chainView(t *testing.T) *wordnet.Wordnet {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d, err := wordnet.Connect(wordnet.Config{Path: ":memory:"}, logger)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	lx := &lmf.Lexicon{
		ID: "test", Version: "1", Label: "Testing Wordnet", Language: "en",
		Synsets: []lmf.Synset{
			{ID: "ss-information-n", POS: "n"},
			{
				ID: "ss-example-n", POS: "n",
				Relations: []lmf.Relation{{Type: "hypernym", Target: "ss-information-n"}},
			},
			{
				ID: "ss-sample-n", POS: "n",
				Relations: []lmf.Relation{{Type: "hypernym", Target: "ss-example-n"}},
			},
			{
				ID: "ss-random-sample-n", POS: "n",
				Relations: []lmf.Relation{{Type: "hypernym", Target: "ss-sample-n"}},
			},
			{ID: "ss-lone-n", POS: "n"},
			{ID: "ss-stray-n", POS: "n"},
		},
	}
	if _, err := wordnet.NewLoader(d).Add([]*lmf.Lexicon{lx}); err != nil {
		t.Fatalf("load: %v", err)
	}
	w, err := d.Wordnet("test:1", "")
	if err != nil {
		t.Fatalf("wordnet: %v", err)
	}
	return w
}

func synset(t *testing.T, w *wordnet.Wordnet, id string) *wordnet.Synset {
	t.Helper()
	ss, err := w.Synset(id)
	if err != nil {
		t.Fatalf("synset %s: %v", id, err)
	}
	return ss
}

func sameIDs(got []*wordnet.Synset, want ...string) bool {
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

func ids(sss []*wordnet.Synset) []string {
	out := make([]string, len(sss))
	for i, ss := range sss {
		out[i] = ss.ID
	}
	return out
}

func TestHypernymPaths(t *testing.T) {
	w := chainView(t)
	paths, err := HypernymPaths(synset(t, w, "ss-sample-n"), false)
	if err != nil {
		t.Fatalf("paths: %v", err)
	}
	if len(paths) != 1 || !sameIDs(paths[0], "ss-example-n", "ss-information-n") {
		t.Fatalf("unexpected paths: %+v", paths)
	}
	paths, err = HypernymPaths(synset(t, w, "ss-information-n"), false)
	if err != nil {
		t.Fatalf("paths: %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("top synset should have no paths, got %+v", paths)
	}
}

func TestHypernymPathsSimulateRoot(t *testing.T) {
	w := chainView(t)
	paths, err := HypernymPaths(synset(t, w, "ss-sample-n"), true)
	if err != nil {
		t.Fatalf("paths: %v", err)
	}
	if len(paths) != 1 || len(paths[0]) != 3 {
		t.Fatalf("expected one path ending at the root, got %+v", paths)
	}
	if !paths[0][2].IsSynthetic() {
		t.Fatalf("path should end at the synthetic root")
	}

	paths, err = HypernymPaths(synset(t, w, "ss-lone-n"), true)
	if err != nil {
		t.Fatalf("paths: %v", err)
	}
	if len(paths) != 1 || len(paths[0]) != 1 || !paths[0][0].IsSynthetic() {
		t.Fatalf("rootless synset should get a single root path, got %+v", paths)
	}
}

func TestDepths(t *testing.T) {
	w := chainView(t)
	want := map[string]int{
		"ss-information-n":   0,
		"ss-example-n":       1,
		"ss-sample-n":        2,
		"ss-random-sample-n": 3,
	}
	for id, depth := range want {
		got, err := MinDepth(synset(t, w, id), false)
		if err != nil {
			t.Fatalf("min depth %s: %v", id, err)
		}
		if got != depth {
			t.Errorf("min depth of %s = %d, want %d", id, got, depth)
		}
		got, err = MaxDepth(synset(t, w, id), false)
		if err != nil {
			t.Fatalf("max depth %s: %v", id, err)
		}
		if got != depth {
			t.Errorf("max depth of %s = %d, want %d", id, got, depth)
		}
	}
	got, err := MinDepth(synset(t, w, "ss-lone-n"), true)
	if err != nil {
		t.Fatalf("min depth: %v", err)
	}
	if got != 1 {
		t.Errorf("simulated root should add one level, got %d", got)
	}
}

func TestShortestPath(t *testing.T) {
	w := chainView(t)
	path, err := ShortestPath(
		synset(t, w, "ss-random-sample-n"), synset(t, w, "ss-information-n"), false)
	if err != nil {
		t.Fatalf("shortest path: %v", err)
	}
	if !sameIDs(path, "ss-sample-n", "ss-example-n") {
		t.Fatalf("unexpected path: %v", ids(path))
	}

	// The reverse direction mirrors the path.
	path, err = ShortestPath(
		synset(t, w, "ss-information-n"), synset(t, w, "ss-random-sample-n"), false)
	if err != nil {
		t.Fatalf("shortest path: %v", err)
	}
	if !sameIDs(path, "ss-example-n", "ss-sample-n") {
		t.Fatalf("unexpected reverse path: %v", ids(path))
	}

	// A synset to itself is the empty path.
	path, err = ShortestPath(
		synset(t, w, "ss-sample-n"), synset(t, w, "ss-sample-n"), false)
	if err != nil {
		t.Fatalf("shortest path: %v", err)
	}
	if len(path) != 0 {
		t.Fatalf("path from a synset to itself should be empty, got %v", ids(path))
	}

	// Adjacent synsets have no interior nodes.
	path, err = ShortestPath(
		synset(t, w, "ss-sample-n"), synset(t, w, "ss-example-n"), false)
	if err != nil {
		t.Fatalf("shortest path: %v", err)
	}
	if len(path) != 0 {
		t.Fatalf("adjacent synsets should have an empty interior, got %v", ids(path))
	}
}

func TestShortestPathDisconnected(t *testing.T) {
	w := chainView(t)
	lone := synset(t, w, "ss-lone-n")
	stray := synset(t, w, "ss-stray-n")
	if _, err := ShortestPath(lone, stray, false); !errors.Is(err, ErrNoPath) {
		t.Fatalf("expected ErrNoPath, got %v", err)
	}

	// A simulated root connects everything through the top.
	path, err := ShortestPath(lone, stray, true)
	if err != nil {
		t.Fatalf("shortest path with root: %v", err)
	}
	if len(path) != 1 || !path[0].IsSynthetic() {
		t.Fatalf("expected the path to pivot at the root, got %v", ids(path))
	}
}

func TestCommonHypernyms(t *testing.T) {
	w := chainView(t)
	common, err := CommonHypernyms(
		synset(t, w, "ss-random-sample-n"), synset(t, w, "ss-example-n"), false)
	if err != nil {
		t.Fatalf("common: %v", err)
	}
	if !sameIDs(common, "ss-example-n", "ss-information-n") {
		t.Fatalf("unexpected common hypernyms: %v", ids(common))
	}
}

func TestLowestCommonHypernyms(t *testing.T) {
	w := chainView(t)
	lowest, err := LowestCommonHypernyms(
		synset(t, w, "ss-random-sample-n"), synset(t, w, "ss-example-n"), false)
	if err != nil {
		t.Fatalf("lowest: %v", err)
	}
	if !sameIDs(lowest, "ss-example-n") {
		t.Fatalf("unexpected lowest common hypernyms: %v", ids(lowest))
	}

	common, err := CommonHypernyms(
		synset(t, w, "ss-random-sample-n"), synset(t, w, "ss-example-n"), false)
	if err != nil {
		t.Fatalf("common: %v", err)
	}
	// Lowest is always a subset of common.
	keys := make(map[string]bool)
	for _, c := range common {
		keys[c.Key()] = true
	}
	for _, l := range lowest {
		if !keys[l.Key()] {
			t.Fatalf("lowest hypernym %s not among common hypernyms", l.ID)
		}
	}
}
