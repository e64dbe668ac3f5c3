package ml

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"bioreport/pkg/contracts/domain"
)

const (
	svmC         = 1.0
	svmTolerance = 1e-3
	svmMaxPasses = 10
)

// rbfKernel is exp(-gamma * ||a-b||^2).
func rbfKernel(a, b []float64, gamma float64) float64 {
	s := 0.0
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return math.Exp(-gamma * s)
}

// scaleGamma mirrors the common 1/(n_features * var(X)) heuristic, with a
// fallback to 1/n_features when the matrix is constant.
func scaleGamma(x *mat.Dense) float64 {
	n, d := x.Dims()
	flat := make([]float64, 0, n*d)
	for i := 0; i < n; i++ {
		flat = append(flat, x.RawRowView(i)...)
	}
	v := stat.PopVariance(flat, nil)
	if v == 0 {
		v = 1
	}
	return 1.0 / (float64(d) * v)
}

// binarySVM is an RBF-kernel support vector classifier trained with the
// simplified SMO procedure. Labels are internally -1/+1.
type binarySVM struct {
	x     *mat.Dense
	y     []float64
	alpha []float64
	b     float64
	gamma float64
}

func trainBinarySVM(x *mat.Dense, y []float64, gamma float64, rng *rand.Rand) *binarySVM {
	n, _ := x.Dims()
	m := &binarySVM{x: x, y: y, alpha: make([]float64, n), gamma: gamma}
	if n < 2 {
		return m
	}

	// Precomputed kernel matrix; sample counts here are tiny.
	k := make([][]float64, n)
	for i := range k {
		k[i] = make([]float64, n)
		for j := range k[i] {
			k[i][j] = rbfKernel(x.RawRowView(i), x.RawRowView(j), gamma)
		}
	}

	errOf := func(i int) float64 {
		f := m.b
		for j := 0; j < n; j++ {
			if m.alpha[j] != 0 {
				f += m.alpha[j] * y[j] * k[j][i]
			}
		}
		return f - y[i]
	}

	passes := 0
	for passes < svmMaxPasses {
		changed := 0
		for i := 0; i < n; i++ {
			ei := errOf(i)
			if !((y[i]*ei < -svmTolerance && m.alpha[i] < svmC) || (y[i]*ei > svmTolerance && m.alpha[i] > 0)) {
				continue
			}

			j := rng.Intn(n - 1)
			if j >= i {
				j++
			}
			ej := errOf(j)

			var lo, hi float64
			if y[i] != y[j] {
				lo = math.Max(0, m.alpha[j]-m.alpha[i])
				hi = math.Min(svmC, svmC+m.alpha[j]-m.alpha[i])
			} else {
				lo = math.Max(0, m.alpha[i]+m.alpha[j]-svmC)
				hi = math.Min(svmC, m.alpha[i]+m.alpha[j])
			}
			if lo == hi {
				continue
			}

			eta := 2*k[i][j] - k[i][i] - k[j][j]
			if eta >= 0 {
				continue
			}

			oldAi, oldAj := m.alpha[i], m.alpha[j]
			aj := oldAj - y[j]*(ei-ej)/eta
			aj = math.Min(hi, math.Max(lo, aj))
			if math.Abs(aj-oldAj) < 1e-5 {
				continue
			}
			ai := oldAi + y[i]*y[j]*(oldAj-aj)

			b1 := m.b - ei - y[i]*(ai-oldAi)*k[i][i] - y[j]*(aj-oldAj)*k[i][j]
			b2 := m.b - ej - y[i]*(ai-oldAi)*k[i][j] - y[j]*(aj-oldAj)*k[j][j]
			switch {
			case ai > 0 && ai < svmC:
				m.b = b1
			case aj > 0 && aj < svmC:
				m.b = b2
			default:
				m.b = (b1 + b2) / 2
			}

			m.alpha[i], m.alpha[j] = ai, aj
			changed++
		}
		if changed == 0 {
			passes++
		} else {
			passes = 0
		}
	}
	return m
}

// decision returns the signed distance-like score for one sample.
func (m *binarySVM) decision(row []float64) float64 {
	n, _ := m.x.Dims()
	f := m.b
	for j := 0; j < n; j++ {
		if m.alpha[j] != 0 {
			f += m.alpha[j] * m.y[j] * rbfKernel(m.x.RawRowView(j), row, m.gamma)
		}
	}
	return f
}

// svmModel is a one-vs-rest ensemble over nClasses binary machines.
type svmModel struct {
	machines []*binarySVM
	nClasses int
}

func trainSVM(x *mat.Dense, labels []int, nClasses int, rng *rand.Rand) *svmModel {
	n, _ := x.Dims()
	gamma := scaleGamma(x)

	model := &svmModel{nClasses: nClasses}
	for c := 0; c < nClasses; c++ {
		y := make([]float64, n)
		for i, l := range labels {
			if l == c {
				y[i] = 1
			} else {
				y[i] = -1
			}
		}
		model.machines = append(model.machines, trainBinarySVM(x, y, gamma, rng))
	}
	return model
}

func (m *svmModel) predict(x *mat.Dense) []int {
	n, _ := x.Dims()
	out := make([]int, n)
	for i := 0; i < n; i++ {
		best, bestScore := 0, math.Inf(-1)
		for c, machine := range m.machines {
			if s := machine.decision(x.RawRowView(i)); s > bestScore {
				best, bestScore = c, s
			}
		}
		out[i] = best
	}
	return out
}

// probabilities maps decision scores through a logistic squash and
// normalizes across classes. A Platt calibration pass is not worth it for
// positional labels.
func (m *svmModel) probabilities(x *mat.Dense) [][]float64 {
	n, _ := x.Dims()
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, m.nClasses)
		sum := 0.0
		for c, machine := range m.machines {
			p := 1.0 / (1.0 + math.Exp(-machine.decision(x.RawRowView(i))))
			row[c] = p
			sum += p
		}
		if sum > 0 {
			for c := range row {
				row[c] /= sum
			}
		}
		out[i] = row
	}
	return out
}

// runSVM fits the one-vs-rest RBF classifier against positional labels
// and scores it with stratified cross-validation.
func runSVM(scaled *mat.Dense, nClasses int, rng *rand.Rand) (*domain.ClassificationResult, error) {
	n, _ := scaled.Dims()
	labels := syntheticLabels(n, nClasses)

	model := trainSVM(scaled, labels, nClasses, rng)
	predictions := model.predict(scaled)

	cvMean, cvStd := crossValidate(scaled, labels, cvFolds(n), func(tx *mat.Dense, ty []int) func(*mat.Dense) []int {
		sub := trainSVM(tx, ty, nClasses, rng)
		return sub.predict
	})

	return &domain.ClassificationResult{
		Model:           domain.ModelSVM,
		Predictions:     predictions,
		TrueLabels:      labels,
		Probabilities:   model.probabilities(scaled),
		Accuracy:        accuracy(labels, predictions),
		CrossValMean:    cvMean,
		CrossValStd:     cvStd,
		ConfusionMatrix: confusionMatrix(labels, predictions, nClasses),
		NClasses:        nClasses,
		Scaled:          denseRows(scaled),
	}, nil
}

// cvFolds clamps the fold count the way the accuracy scoring expects:
// min(5, n/2) but never below 2.
func cvFolds(n int) int {
	folds := n / 2
	if folds > 5 {
		folds = 5
	}
	if folds < 2 {
		folds = 2
	}
	return folds
}
