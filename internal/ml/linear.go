package ml

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"bioreport/pkg/contracts/domain"
)

const (
	lassoAlpha     = 0.1
	lassoMaxIter   = 1000
	lassoTolerance = 1e-4
	lassoCutoff    = 1e-6

	ridgeAlpha      = 1.0
	ridgeTopGeneCnt = 20
)

// syntheticTarget draws a standard-normal phenotype stand-in, one value
// per sample. Real studies would pass a measured trait here.
func syntheticTarget(n int, rng *rand.Rand) []float64 {
	y := make([]float64, n)
	for i := range y {
		y[i] = rng.NormFloat64()
	}
	return y
}

// lassoFit runs cyclic coordinate descent on the objective
// (1/2n)||y - Xw||^2 + alpha*||w||_1 with an intercept.
func lassoFit(x *mat.Dense, y []float64, alpha float64) (coef []float64, intercept float64) {
	n, d := x.Dims()
	intercept = stat.Mean(y, nil)

	resid := make([]float64, n)
	for i := range resid {
		resid[i] = y[i] - intercept
	}

	// Per-feature squared norms, reused every sweep.
	norms := make([]float64, d)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, x)
		for _, v := range col {
			norms[j] += v * v
		}
	}

	coef = make([]float64, d)
	for iter := 0; iter < lassoMaxIter; iter++ {
		maxDelta := 0.0
		for j := 0; j < d; j++ {
			if norms[j] == 0 {
				continue
			}
			mat.Col(col, j, x)

			// rho is the correlation of feature j with the residual
			// after removing its own contribution.
			rho := 0.0
			for i := 0; i < n; i++ {
				rho += col[i] * (resid[i] + col[i]*coef[j])
			}
			rho /= float64(n)

			newCoef := softThreshold(rho, alpha) / (norms[j] / float64(n))
			if delta := newCoef - coef[j]; delta != 0 {
				for i := 0; i < n; i++ {
					resid[i] -= delta * col[i]
				}
				if ad := math.Abs(delta); ad > maxDelta {
					maxDelta = ad
				}
				coef[j] = newCoef
			}
		}
		if maxDelta < lassoTolerance {
			break
		}
	}
	return coef, intercept
}

func softThreshold(v, threshold float64) float64 {
	switch {
	case v > threshold:
		return v - threshold
	case v < -threshold:
		return v + threshold
	default:
		return 0
	}
}

// ridgeFit solves (X^T X + alpha*I) w = X^T y directly. The penalty term
// keeps the system well conditioned even with far more genes than samples.
func ridgeFit(x *mat.Dense, y []float64, alpha float64) ([]float64, error) {
	_, d := x.Dims()
	mean := stat.Mean(y, nil)
	centered := make([]float64, len(y))
	for i := range y {
		centered[i] = y[i] - mean
	}

	var gram mat.Dense
	gram.Mul(x.T(), x)
	for j := 0; j < d; j++ {
		gram.Set(j, j, gram.At(j, j)+alpha)
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), mat.NewVecDense(len(centered), centered))

	var w mat.VecDense
	if err := w.SolveVec(&gram, &xty); err != nil {
		return nil, err
	}

	coef := make([]float64, d)
	for j := range coef {
		coef[j] = w.AtVec(j)
	}
	return coef, nil
}

// runLasso selects genes whose coefficients survive L1 shrinkage against
// a synthetic continuous target.
func runLasso(scaled *mat.Dense, rng *rand.Rand) (*domain.FeatureSelectionResult, error) {
	n, _ := scaled.Dims()
	y := syntheticTarget(n, rng)

	coef, _ := lassoFit(scaled, y, lassoAlpha)

	var selectedIdx []int
	var selectedCoef []float64
	for j, c := range coef {
		if math.Abs(c) > lassoCutoff {
			selectedIdx = append(selectedIdx, j)
			selectedCoef = append(selectedCoef, c)
		}
	}

	return &domain.FeatureSelectionResult{
		Model:        domain.ModelLasso,
		Coefficients: coef,
		SelectedIdx:  selectedIdx,
		SelectedCoef: selectedCoef,
		Alpha:        lassoAlpha,
		Scaled:       denseRows(scaled),
	}, nil
}

// runRidge ranks genes by absolute L2-penalized coefficient against a
// synthetic continuous target.
func runRidge(scaled *mat.Dense, rng *rand.Rand) (*domain.FeatureSelectionResult, error) {
	n, _ := scaled.Dims()
	y := syntheticTarget(n, rng)

	coef, err := ridgeFit(scaled, y, ridgeAlpha)
	if err != nil {
		return nil, err
	}

	return &domain.FeatureSelectionResult{
		Model:        domain.ModelRidge,
		Coefficients: coef,
		TopFeatures:  topByAbs(coef, ridgeTopGeneCnt),
		Alpha:        ridgeAlpha,
		Scaled:       denseRows(scaled),
	}, nil
}
