package ml

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// treeNode is one split (or leaf) of a CART classification tree.
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode

	leaf  bool
	class int
}

type decisionTree struct {
	root     *treeNode
	nClasses int

	// importance accumulates per-feature impurity decrease weighted by
	// the fraction of samples reaching each split.
	importance []float64
}

// growTree fits a gini-impurity CART tree on the given row subset,
// considering maxFeatures randomly chosen features at each split.
func growTree(x *mat.Dense, y []int, nClasses, maxFeatures int, rng *rand.Rand) *decisionTree {
	n, d := x.Dims()
	t := &decisionTree{nClasses: nClasses, importance: make([]float64, d)}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	t.root = t.split(x, y, idx, maxFeatures, float64(n), rng)
	return t
}

func (t *decisionTree) split(x *mat.Dense, y []int, idx []int, maxFeatures int, total float64, rng *rand.Rand) *treeNode {
	counts := classCounts(y, idx, t.nClasses)
	impurity := gini(counts, len(idx))
	if impurity == 0 || len(idx) < 2 {
		return &treeNode{leaf: true, class: majority(counts)}
	}

	_, d := x.Dims()
	feats := rng.Perm(d)
	if maxFeatures < len(feats) {
		feats = feats[:maxFeatures]
	}

	bestGain := 0.0
	bestFeat, bestThresh := -1, 0.0
	var bestLeft, bestRight []int

	for _, f := range feats {
		sorted := make([]int, len(idx))
		copy(sorted, idx)
		sort.Slice(sorted, func(a, b int) bool { return x.At(sorted[a], f) < x.At(sorted[b], f) })

		for s := 1; s < len(sorted); s++ {
			lo, hi := x.At(sorted[s-1], f), x.At(sorted[s], f)
			if lo == hi {
				continue
			}
			thresh := (lo + hi) / 2

			left, right := sorted[:s], sorted[s:]
			lc := classCounts(y, left, t.nClasses)
			rc := classCounts(y, right, t.nClasses)
			weighted := (float64(len(left))*gini(lc, len(left)) + float64(len(right))*gini(rc, len(right))) / float64(len(idx))
			if gain := impurity - weighted; gain > bestGain {
				bestGain = gain
				bestFeat, bestThresh = f, thresh
				bestLeft = append([]int(nil), left...)
				bestRight = append([]int(nil), right...)
			}
		}
	}

	if bestFeat < 0 {
		return &treeNode{leaf: true, class: majority(counts)}
	}

	t.importance[bestFeat] += float64(len(idx)) / total * bestGain

	return &treeNode{
		feature:   bestFeat,
		threshold: bestThresh,
		left:      t.split(x, y, bestLeft, maxFeatures, total, rng),
		right:     t.split(x, y, bestRight, maxFeatures, total, rng),
	}
}

func (t *decisionTree) predictRow(row []float64) int {
	node := t.root
	for !node.leaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.class
}

func classCounts(y []int, idx []int, nClasses int) []int {
	counts := make([]int, nClasses)
	for _, i := range idx {
		counts[y[i]]++
	}
	return counts
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		g -= p * p
	}
	return g
}

func majority(counts []int) int {
	best, bestCount := 0, math.MinInt
	for c, count := range counts {
		if count > bestCount {
			best, bestCount = c, count
		}
	}
	return best
}
