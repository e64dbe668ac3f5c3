package ml

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// syntheticLabels assigns class i%nClasses to sample i. Uploaded tables
// carry no phenotype column, so classification runs against positional
// labels purely to exercise the models.
func syntheticLabels(n, nClasses int) []int {
	labels := make([]int, n)
	for i := range labels {
		labels[i] = i % nClasses
	}
	return labels
}

func accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue))
}

// confusionMatrix is indexed [true][predicted].
func confusionMatrix(yTrue, yPred []int, nClasses int) [][]int {
	cm := make([][]int, nClasses)
	for i := range cm {
		cm[i] = make([]int, nClasses)
	}
	for i := range yTrue {
		if yTrue[i] < nClasses && yPred[i] < nClasses {
			cm[yTrue[i]][yPred[i]]++
		}
	}
	return cm
}

// silhouetteScore computes the mean silhouette coefficient over all
// samples. Samples in singleton clusters score zero.
func silhouetteScore(x *mat.Dense, labels []int) float64 {
	n, _ := x.Dims()
	if n == 0 {
		return 0
	}

	dist := pairwiseDistances(x)

	clusterSize := map[int]int{}
	for _, l := range labels {
		clusterSize[l]++
	}
	if len(clusterSize) < 2 {
		return 0
	}

	total := 0.0
	for i := 0; i < n; i++ {
		if clusterSize[labels[i]] == 1 {
			continue
		}

		// Mean distance to every cluster, keyed by label.
		sums := map[int]float64{}
		for j := 0; j < n; j++ {
			if j != i {
				sums[labels[j]] += dist[i][j]
			}
		}

		a := sums[labels[i]] / float64(clusterSize[labels[i]]-1)
		b := math.Inf(1)
		for l, s := range sums {
			if l == labels[i] {
				continue
			}
			if m := s / float64(clusterSize[l]); m < b {
				b = m
			}
		}

		if d := math.Max(a, b); d > 0 {
			total += (b - a) / d
		}
	}
	return total / float64(n)
}

func pairwiseDistances(x *mat.Dense) [][]float64 {
	n, d := x.Dims()
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := 0.0
			for k := 0; k < d; k++ {
				diff := x.At(i, k) - x.At(j, k)
				s += diff * diff
			}
			out[i][j] = math.Sqrt(s)
			out[j][i] = out[i][j]
		}
	}
	return out
}

// trainer fits on a training subset and returns a predictor for held-out
// rows. Cross-validation refits through this rather than reusing the
// full-data model.
type trainer func(x *mat.Dense, y []int) func(x *mat.Dense) []int

// crossValidate runs stratified k-fold accuracy scoring. Folds are filled
// round-robin per class so each fold sees every class when possible.
func crossValidate(x *mat.Dense, y []int, folds int, fit trainer) (mean, std float64) {
	n, _ := x.Dims()
	if folds < 2 {
		folds = 2
	}
	if folds > n {
		folds = n
	}

	foldOf := make([]int, n)
	next := map[int]int{}
	for i, label := range y {
		foldOf[i] = next[label] % folds
		next[label]++
	}

	scores := make([]float64, 0, folds)
	for f := 0; f < folds; f++ {
		var trainIdx, testIdx []int
		for i := 0; i < n; i++ {
			if foldOf[i] == f {
				testIdx = append(testIdx, i)
			} else {
				trainIdx = append(trainIdx, i)
			}
		}
		if len(testIdx) == 0 || len(trainIdx) == 0 {
			continue
		}

		predict := fit(subsetRows(x, trainIdx), subsetInts(y, trainIdx))
		pred := predict(subsetRows(x, testIdx))
		scores = append(scores, accuracy(subsetInts(y, testIdx), pred))
	}

	if len(scores) == 0 {
		return 0, 0
	}
	mean = stat.Mean(scores, nil)
	std = math.Sqrt(stat.PopVariance(scores, nil))
	return mean, std
}

func subsetRows(x *mat.Dense, idx []int) *mat.Dense {
	_, d := x.Dims()
	out := mat.NewDense(len(idx), d, nil)
	for i, r := range idx {
		out.SetRow(i, x.RawRowView(r))
	}
	return out
}

func subsetInts(v []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, r := range idx {
		out[i] = v[r]
	}
	return out
}

// denseRows copies a matrix into row-major slices for transport structs.
func denseRows(x *mat.Dense) [][]float64 {
	n, d := x.Dims()
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = make([]float64, d)
		copy(out[i], x.RawRowView(i))
	}
	return out
}
