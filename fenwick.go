package terashuf

// weightTree is the Fenwick/segment tree described in spec.md §4.F: a
// complete binary tree over next-power-of-two leaves, each leaf holding the
// remaining line count of one spill. drawAndDecrement performs a single
// O(log S) walk that both selects a leaf, weighted by its current value,
// and decrements every node on the path to it — so the tree's invariant
// (every internal node equals the sum of its two children) holds again
// immediately after the call returns.
//
// Ported from FenwickTree/findIndexAndDraw/getCountAtIndex in terashuf.cc,
// translated to a 1-indexed Go slice with the same node numbering.
type weightTree struct {
	tree []int64
	d    int64 // number of leaves (next power of two >= len(weights))
}

// newWeightTree builds a tree from the initial per-spill line counts.
func newWeightTree(weights []int64) *weightTree {
	d := int64(1)
	for d < int64(len(weights)) {
		d <<= 1
	}
	if d == 0 {
		d = 1
	}
	t := &weightTree{tree: make([]int64, 2*d), d: d}
	for i, w := range weights {
		t.tree[d+int64(i)] = w
	}
	for i := d - 1; i > 0; i-- {
		t.tree[i] = t.tree[2*i] + t.tree[2*i+1]
	}
	return t
}

// total returns the current sum of all remaining weights (the tree's root).
func (t *weightTree) total() int64 {
	if len(t.tree) == 0 {
		return 0
	}
	return t.tree[1]
}

// countAt returns the current remaining count for spill k.
func (t *weightTree) countAt(k int64) int64 {
	return t.tree[t.d+k]
}

// drawAndDecrement walks from the root to a leaf chosen with probability
// proportional to its current weight, decrementing every node it visits
// along the way, and returns the leaf's spill index. p must be in
// [1, total()] — terashuf.cc's own 1-indexed convention: a left subtree of
// weight l owns draws p in [1, l], a right subtree owns the rest.
func (t *weightTree) drawAndDecrement(p int64) int64 {
	node := int64(1)
	for {
		t.tree[node]--
		if node >= t.d {
			return node - t.d
		}
		left := 2 * node
		l := t.tree[left]
		if p <= l {
			node = left
		} else {
			p -= l
			node = left + 1
		}
	}
}
