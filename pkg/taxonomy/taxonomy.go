// Package taxonomy implements graph algorithms over the hypernym hierarchy.
package taxonomy

import (
	"errors"

	"github.com/lexigraph/wordnet/pkg/wordnet"
)

// ErrNoPath is returned by ShortestPath when the two synsets share no
// hypernym ancestor.
var ErrNoPath = errors.New("taxonomy: no path between synsets")

var hypernymRelations = []string{"hypernym", "instance_hypernym"}

// key identifies a path vertex. Synthetic roots compare equal regardless of
// which synset they were simulated for, so paths from different lexicons
// can meet at the top.
func key(ss *wordnet.Synset) string {
	if ss.IsSynthetic() && ss.ID == "*ROOT*" {
		return ss.ID
	}
	return ss.Key()
}

// HypernymPaths returns every path from ss to a top node, following
// hypernym and instance_hypernym edges. Paths exclude ss itself. With
// simulateRoot a shared synthetic root is appended to every path, and a
// synset with no hypernyms yields a single path holding just the root.
func HypernymPaths(ss *wordnet.Synset, simulateRoot bool) ([][]*wordnet.Synset, error) {
	paths, err := ss.RelationPaths(nil, hypernymRelations...)
	if err != nil {
		return nil, err
	}
	if !simulateRoot {
		return paths, nil
	}
	root := wordnet.SyntheticRoot(ss)
	if len(paths) == 0 {
		return [][]*wordnet.Synset{{root}}, nil
	}
	for i := range paths {
		paths[i] = append(paths[i], root)
	}
	return paths, nil
}

// MinDepth returns the length of the shortest hypernym path from ss to a
// top node. A synset with no hypernyms has depth 0.
func MinDepth(ss *wordnet.Synset, simulateRoot bool) (int, error) {
	paths, err := HypernymPaths(ss, simulateRoot)
	if err != nil {
		return 0, err
	}
	min := 0
	for i, p := range paths {
		if i == 0 || len(p) < min {
			min = len(p)
		}
	}
	return min, nil
}

// MaxDepth returns the length of the longest hypernym path from ss to a
// top node.
func MaxDepth(ss *wordnet.Synset, simulateRoot bool) (int, error) {
	paths, err := HypernymPaths(ss, simulateRoot)
	if err != nil {
		return 0, err
	}
	max := 0
	for _, p := range paths {
		if len(p) > max {
			max = len(p)
		}
	}
	return max, nil
}

// rootedPaths returns ss's hypernym paths with ss itself prepended, so
// every path starts at the synset. A synset with no hypernyms (and no
// simulated root) yields the single path [ss].
func rootedPaths(ss *wordnet.Synset, simulateRoot bool) ([][]*wordnet.Synset, error) {
	paths, err := HypernymPaths(ss, simulateRoot)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return [][]*wordnet.Synset{{ss}}, nil
	}
	out := make([][]*wordnet.Synset, len(paths))
	for i, p := range paths {
		out[i] = append([]*wordnet.Synset{ss}, p...)
	}
	return out, nil
}

// ShortestPath returns the interior synsets on the shortest path between a
// and b through a common hypernym ancestor. The endpoints themselves are
// excluded; the pivot ancestor is included unless it is one of the
// endpoints. ErrNoPath is reported when no common ancestor exists, which
// with simulateRoot can only happen on a query error.
func ShortestPath(a, b *wordnet.Synset, simulateRoot bool) ([]*wordnet.Synset, error) {
	pas, err := rootedPaths(a, simulateRoot)
	if err != nil {
		return nil, err
	}
	pbs, err := rootedPaths(b, simulateRoot)
	if err != nil {
		return nil, err
	}
	var best []*wordnet.Synset
	bestLen := -1
	for _, pa := range pas {
		index := make(map[string]int, len(pa))
		for i, v := range pa {
			if _, ok := index[key(v)]; !ok {
				index[key(v)] = i
			}
		}
		for _, pb := range pbs {
			for j, v := range pb {
				i, ok := index[key(v)]
				if !ok {
					continue
				}
				if total := i + j; bestLen < 0 || total < bestLen {
					bestLen = total
					best = spliceInterior(pa, i, pb, j)
				}
			}
		}
	}
	if bestLen < 0 {
		return nil, ErrNoPath
	}
	return best, nil
}

// spliceInterior joins the upward leg pa[..i] with the downward leg
// pb[..j] reversed, dropping both endpoints and keeping the pivot only
// when it is not itself an endpoint.
func spliceInterior(pa []*wordnet.Synset, i int, pb []*wordnet.Synset, j int) []*wordnet.Synset {
	out := []*wordnet.Synset{}
	if i > 0 {
		hi := i + 1
		if j == 0 {
			hi = i
		}
		out = append(out, pa[1:hi]...)
	}
	for k := j - 1; k >= 1; k-- {
		out = append(out, pb[k])
	}
	return out
}

// CommonHypernyms returns every synset appearing on a hypernym path of
// both a and b, the endpoints included when one lies on a path of the
// other. Order follows a's paths; duplicates are dropped.
func CommonHypernyms(a, b *wordnet.Synset, simulateRoot bool) ([]*wordnet.Synset, error) {
	pas, err := rootedPaths(a, simulateRoot)
	if err != nil {
		return nil, err
	}
	pbs, err := rootedPaths(b, simulateRoot)
	if err != nil {
		return nil, err
	}
	inB := make(map[string]bool)
	for _, p := range pbs {
		for _, v := range p {
			inB[key(v)] = true
		}
	}
	var out []*wordnet.Synset
	seen := make(map[string]bool)
	for _, p := range pas {
		for _, v := range p {
			k := key(v)
			if inB[k] && !seen[k] {
				seen[k] = true
				out = append(out, v)
			}
		}
	}
	return out, nil
}

// LowestCommonHypernyms returns the deepest common hypernyms of a and b:
// those common ancestors with the greatest distance to a top node. The
// result is a subset of CommonHypernyms.
func LowestCommonHypernyms(a, b *wordnet.Synset, simulateRoot bool) ([]*wordnet.Synset, error) {
	common, err := CommonHypernyms(a, b, simulateRoot)
	if err != nil || len(common) == 0 {
		return nil, err
	}
	pas, err := rootedPaths(a, simulateRoot)
	if err != nil {
		return nil, err
	}
	pbs, err := rootedPaths(b, simulateRoot)
	if err != nil {
		return nil, err
	}
	// Depth of a vertex is its greatest remaining climb to the top of any
	// path it sits on.
	depth := make(map[string]int)
	for _, paths := range [][][]*wordnet.Synset{pas, pbs} {
		for _, p := range paths {
			for idx, v := range p {
				if d := len(p) - 1 - idx; d > depth[key(v)] {
					depth[key(v)] = d
				}
			}
		}
	}
	maxDepth := -1
	for _, c := range common {
		if d := depth[key(c)]; d > maxDepth {
			maxDepth = d
		}
	}
	var out []*wordnet.Synset
	for _, c := range common {
		if depth[key(c)] == maxDepth {
			out = append(out, c)
		}
	}
	return out, nil
}
