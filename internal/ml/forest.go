package ml

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"bioreport/pkg/contracts/domain"
)

const (
	forestSize       = 100
	forestTopGeneCnt = 20
)

// randomForest is a bagged ensemble of gini CART trees with sqrt(d)
// feature subsampling per split.
type randomForest struct {
	trees    []*decisionTree
	nClasses int
}

func trainForest(x *mat.Dense, y []int, nClasses int, rng *rand.Rand) *randomForest {
	n, d := x.Dims()
	maxFeatures := int(math.Sqrt(float64(d)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	forest := &randomForest{nClasses: nClasses}
	for t := 0; t < forestSize; t++ {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		bx := subsetRows(x, idx)
		by := subsetInts(y, idx)
		forest.trees = append(forest.trees, growTree(bx, by, nClasses, maxFeatures, rng))
	}
	return forest
}

func (f *randomForest) votes(row []float64) []int {
	counts := make([]int, f.nClasses)
	for _, t := range f.trees {
		counts[t.predictRow(row)]++
	}
	return counts
}

func (f *randomForest) predict(x *mat.Dense) []int {
	n, _ := x.Dims()
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = majority(f.votes(x.RawRowView(i)))
	}
	return out
}

func (f *randomForest) probabilities(x *mat.Dense) [][]float64 {
	n, _ := x.Dims()
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		counts := f.votes(x.RawRowView(i))
		row := make([]float64, f.nClasses)
		for c, v := range counts {
			row[c] = float64(v) / float64(len(f.trees))
		}
		out[i] = row
	}
	return out
}

// featureImportance is the mean decrease in impurity across trees,
// normalized to sum to one.
func (f *randomForest) featureImportance(d int) []float64 {
	imp := make([]float64, d)
	for _, t := range f.trees {
		for j, v := range t.importance {
			imp[j] += v
		}
	}
	sum := 0.0
	for _, v := range imp {
		sum += v
	}
	if sum > 0 {
		for j := range imp {
			imp[j] /= sum
		}
	}
	return imp
}

// runRandomForest fits the forest against positional labels and reports
// accuracy, cross-validation scores and the top genes by importance.
func runRandomForest(scaled *mat.Dense, nClasses int, rng *rand.Rand) (*domain.ClassificationResult, error) {
	n, d := scaled.Dims()
	labels := syntheticLabels(n, nClasses)

	forest := trainForest(scaled, labels, nClasses, rng)
	predictions := forest.predict(scaled)
	importance := forest.featureImportance(d)

	cvMean, cvStd := crossValidate(scaled, labels, cvFolds(n), func(tx *mat.Dense, ty []int) func(*mat.Dense) []int {
		sub := trainForest(tx, ty, nClasses, rng)
		return sub.predict
	})

	return &domain.ClassificationResult{
		Model:             domain.ModelRandomForest,
		Predictions:       predictions,
		TrueLabels:        labels,
		Probabilities:     forest.probabilities(scaled),
		Accuracy:          accuracy(labels, predictions),
		CrossValMean:      cvMean,
		CrossValStd:       cvStd,
		ConfusionMatrix:   confusionMatrix(labels, predictions, nClasses),
		NClasses:          nClasses,
		FeatureImportance: importance,
		TopFeatures:       topByAbs(importance, forestTopGeneCnt),
		Scaled:            denseRows(scaled),
	}, nil
}

// topByAbs returns the indices of the k largest values by absolute
// magnitude, most important first.
func topByAbs(values []float64, k int) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return math.Abs(values[idx[a]]) > math.Abs(values[idx[b]])
	})
	if k > len(idx) {
		k = len(idx)
	}
	return idx[:k]
}
