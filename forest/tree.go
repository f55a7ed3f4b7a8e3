package forest

import (
	"cmp"
	"math/rand/v2"
	"slices"
)

const leaf = -1

// node is a flattened tree node. Leaves have feature == leaf.
type node struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
}

// Tree is a CART regression tree grown on the squared-error criterion.
type Tree struct {
	nodes       []node
	importances []float64
}

// Predict walks the tree for one row; samples with x <= threshold go left.
func (t *Tree) Predict(row []float64) float64 {
	i := 0
	for {
		n := t.nodes[i]
		if n.feature == leaf {
			return n.value
		}
		if row[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

// Nodes reports the number of nodes, leaves included.
func (t *Tree) Nodes() int { return len(t.nodes) }

// Depth returns the length of the longest root-to-leaf path.
func (t *Tree) Depth() int {
	var walk func(i int) int
	walk = func(i int) int {
		n := t.nodes[i]
		if n.feature == leaf {
			return 0
		}
		return 1 + max(walk(n.left), walk(n.right))
	}
	return walk(0)
}

type grower struct {
	cols    [][]float64
	y       []float64
	cfg     Config
	rng     *rand.Rand
	tree    *Tree
	scratch []int
	part    []int
}

// growTree fits one tree on samples, an index list into cols/y that may
// contain repeats (a bootstrap draw).
func growTree(cols [][]float64, y []float64, samples []int, cfg Config, rng *rand.Rand) *Tree {
	g := &grower{
		cols:    cols,
		y:       y,
		cfg:     cfg,
		rng:     rng,
		tree:    &Tree{importances: make([]float64, len(cols))},
		scratch: make([]int, len(samples)),
		part:    make([]int, len(samples)),
	}
	g.build(samples, 0)
	return g.tree
}

type split struct {
	feature   int
	threshold float64
	gain      float64
}

func (g *grower) build(samples []int, depth int) int {
	id := len(g.tree.nodes)
	g.tree.nodes = append(g.tree.nodes, node{feature: leaf, value: g.mean(samples)})

	if len(samples) < g.cfg.MinSamplesSplit || (g.cfg.MaxDepth > 0 && depth >= g.cfg.MaxDepth) || g.constant(samples) {
		return id
	}

	best, ok := g.bestSplit(samples)
	if !ok {
		return id
	}
	g.tree.importances[best.feature] += best.gain

	nLeft := g.partition(samples, best)
	left := g.build(samples[:nLeft], depth+1)
	right := g.build(samples[nLeft:], depth+1)

	g.tree.nodes[id] = node{
		feature:   best.feature,
		threshold: best.threshold,
		left:      left,
		right:     right,
		value:     g.tree.nodes[id].value,
	}
	return id
}

func (g *grower) mean(samples []int) float64 {
	sum := 0.0
	for _, i := range samples {
		sum += g.y[i]
	}
	return sum / float64(len(samples))
}

func (g *grower) constant(samples []int) bool {
	first := g.y[samples[0]]
	for _, i := range samples[1:] {
		if g.y[i] != first {
			return false
		}
	}
	return true
}

// features returns the candidate features for one node, all of them unless
// MaxFeatures restricts the draw.
func (g *grower) features() []int {
	n := len(g.cols)
	if g.cfg.MaxFeatures <= 0 || g.cfg.MaxFeatures >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return g.rng.Perm(n)[:g.cfg.MaxFeatures]
}

// bestSplit maximises the reduction in summed squared error. Using
// sumL²/nL + sumR²/nR avoids subtracting large sums of squares.
func (g *grower) bestSplit(samples []int) (split, bool) {
	n := len(samples)
	total := 0.0
	for _, i := range samples {
		total += g.y[i]
	}
	parent := total * total / float64(n)

	best := split{feature: leaf}
	bestProxy := 0.0
	order := g.scratch[:n]

	for _, f := range g.features() {
		x := g.cols[f]
		copy(order, samples)
		slices.SortFunc(order, func(a, b int) int { return cmp.Compare(x[a], x[b]) })

		if x[order[0]] == x[order[n-1]] {
			continue
		}

		left := 0.0
		for k := 1; k < n; k++ {
			left += g.y[order[k-1]]
			lo, hi := x[order[k-1]], x[order[k]]
			if lo == hi {
				continue
			}
			right := total - left
			nl, nr := float64(k), float64(n-k)
			proxy := left*left/nl + right*right/nr
			if best.feature == leaf || proxy > bestProxy {
				threshold := lo + (hi-lo)/2
				if threshold >= hi {
					threshold = lo
				}
				best = split{feature: f, threshold: threshold}
				bestProxy = proxy
			}
		}
	}

	if best.feature == leaf {
		return best, false
	}
	best.gain = max(bestProxy-parent, 0)
	return best, true
}

// partition reorders samples so the left child's rows come first, keeping the
// relative order inside each side, and returns the size of the left side.
func (g *grower) partition(samples []int, s split) int {
	x := g.cols[s.feature]
	buf := g.part[:0]
	for _, i := range samples {
		if x[i] <= s.threshold {
			buf = append(buf, i)
		}
	}
	nLeft := len(buf)
	for _, i := range samples {
		if x[i] > s.threshold {
			buf = append(buf, i)
		}
	}
	copy(samples, buf)
	return nLeft
}
