package ml

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"bioreport/internal/config"
	"bioreport/internal/expression"
	"bioreport/pkg/contracts/domain"
)

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		PValueThreshold: 0.05,
		Log2FCThreshold: 1.0,
		HeatmapTopN:     50,
		PathwayTopN:     20,
		NClusters:       3,
		NClasses:        2,
	}
}

// twoGroupMatrix returns 6 samples in two well separated groups across
// 4 genes.
func twoGroupMatrix() *expression.Matrix {
	data := mat.NewDense(6, 4, []float64{
		10.1, 10.0, 0.2, 0.1,
		10.3, 9.8, 0.1, 0.3,
		9.9, 10.2, 0.3, 0.2,
		0.2, 0.1, 10.0, 10.1,
		0.1, 0.3, 9.7, 10.3,
		0.3, 0.2, 10.2, 9.9,
	})
	return &expression.Matrix{
		Data:    data,
		Samples: []string{"a1", "a2", "a3", "b1", "b2", "b3"},
		Genes:   []string{"G1", "G2", "G3", "G4"},
	}
}

func TestRunAllProducesEveryProcedure(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		name := "sequential"
		if parallel {
			name = "parallel"
		}
		t.Run(name, func(t *testing.T) {
			cfg := testAnalysisConfig()
			cfg.ParallelModels = parallel
			engine := NewEngine(cfg, nil, nil)

			results := engine.RunAll(context.Background(), twoGroupMatrix())

			require.Len(t, results, len(ProcedureOrder))
			for _, kind := range ProcedureOrder {
				res, ok := results[kind]
				require.True(t, ok, "missing procedure %s", kind)
				assert.Equal(t, kind, res.Kind())
			}

			svm, ok := results[domain.ModelSVM].(*domain.ClassificationResult)
			require.True(t, ok)
			assert.Len(t, svm.Predictions, 6)
			assert.Len(t, svm.Probabilities, 6)
			assert.Equal(t, 2, svm.NClasses)

			rf, ok := results[domain.ModelRandomForest].(*domain.ClassificationResult)
			require.True(t, ok)
			assert.Len(t, rf.FeatureImportance, 4)
			assert.NotEmpty(t, rf.TopFeatures)

			km, ok := results[domain.ModelKMeans].(*domain.ClusteringResult)
			require.True(t, ok)
			assert.Len(t, km.Labels, 6)
			assert.Len(t, km.Centers, 3)
			assert.Greater(t, km.Inertia, 0.0)

			hc, ok := results[domain.ModelHierarchical].(*domain.ClusteringResult)
			require.True(t, ok)
			assert.Equal(t, "ward", hc.Linkage)

			lasso, ok := results[domain.ModelLasso].(*domain.FeatureSelectionResult)
			require.True(t, ok)
			assert.Len(t, lasso.Coefficients, 4)

			ridge, ok := results[domain.ModelRidge].(*domain.FeatureSelectionResult)
			require.True(t, ok)
			assert.Len(t, ridge.TopFeatures, 4)
		})
	}
}

func TestRunAllIsDeterministic(t *testing.T) {
	engine := NewEngine(testAnalysisConfig(), nil, nil)

	a := engine.RunAll(context.Background(), twoGroupMatrix())
	b := engine.RunAll(context.Background(), twoGroupMatrix())

	svmA := a[domain.ModelSVM].(*domain.ClassificationResult)
	svmB := b[domain.ModelSVM].(*domain.ClassificationResult)
	assert.Equal(t, svmA.Predictions, svmB.Predictions)
	assert.InDelta(t, svmA.Accuracy, svmB.Accuracy, 1e-12)

	kmA := a[domain.ModelKMeans].(*domain.ClusteringResult)
	kmB := b[domain.ModelKMeans].(*domain.ClusteringResult)
	assert.InDelta(t, kmA.Inertia, kmB.Inertia, 1e-12)
}

func TestRunProcedureIsolatesFailures(t *testing.T) {
	engine := NewEngine(testAnalysisConfig(), nil, nil)
	scaled := mat.NewDense(2, 2, []float64{1, 2, 3, 4})

	t.Run("error", func(t *testing.T) {
		res := engine.runProcedure(context.Background(), domain.ModelSVM,
			func(*mat.Dense, *rand.Rand) (domain.ModelResult, error) {
				return nil, errors.New("boom")
			}, scaled)
		assert.Nil(t, res)
	})

	t.Run("panic", func(t *testing.T) {
		res := engine.runProcedure(context.Background(), domain.ModelSVM,
			func(*mat.Dense, *rand.Rand) (domain.ModelResult, error) {
				panic("boom")
			}, scaled)
		assert.Nil(t, res)
	})
}

func TestClusteringSeparatesGroups(t *testing.T) {
	m := twoGroupMatrix()
	scaled := expression.Standardize(m.Data)

	t.Run("kmeans", func(t *testing.T) {
		res, err := runKMeans(scaled, 2, rand.New(rand.NewSource(modelSeed)))
		require.NoError(t, err)

		// Samples 0-2 and 3-5 must land in different clusters.
		assert.Equal(t, res.Labels[0], res.Labels[1])
		assert.Equal(t, res.Labels[0], res.Labels[2])
		assert.Equal(t, res.Labels[3], res.Labels[4])
		assert.Equal(t, res.Labels[3], res.Labels[5])
		assert.NotEqual(t, res.Labels[0], res.Labels[3])
		assert.Greater(t, res.Silhouette, 0.5)
	})

	t.Run("hierarchical", func(t *testing.T) {
		res, err := runHierarchical(scaled, 2)
		require.NoError(t, err)

		assert.Equal(t, 2, res.NClusters)
		assert.Equal(t, res.Labels[0], res.Labels[1])
		assert.Equal(t, res.Labels[3], res.Labels[4])
		assert.NotEqual(t, res.Labels[0], res.Labels[3])
		assert.Greater(t, res.Silhouette, 0.5)
	})
}

func TestClusterCountClampedToSamples(t *testing.T) {
	scaled := mat.NewDense(2, 2, []float64{1, 0, 0, 1})

	km, err := runKMeans(scaled, 5, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 2, km.NClusters)

	hc, err := runHierarchical(scaled, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, hc.NClusters)
}

func TestAccuracyAndConfusion(t *testing.T) {
	yTrue := []int{0, 0, 1, 1}
	yPred := []int{0, 1, 1, 1}

	assert.InDelta(t, 0.75, accuracy(yTrue, yPred), 1e-12)

	cm := confusionMatrix(yTrue, yPred, 2)
	assert.Equal(t, [][]int{{1, 1}, {0, 2}}, cm)
}

func TestSyntheticLabels(t *testing.T) {
	assert.Equal(t, []int{0, 1, 0, 1, 0, 1}, syntheticLabels(6, 2))
	assert.Equal(t, []int{0, 1, 2, 0, 1}, syntheticLabels(5, 3))
}

func TestSilhouette(t *testing.T) {
	x := mat.NewDense(4, 1, []float64{0, 0.1, 10, 10.1})

	assert.Greater(t, silhouetteScore(x, []int{0, 0, 1, 1}), 0.9)
	assert.Zero(t, silhouetteScore(x, []int{0, 0, 0, 0}), "single cluster scores zero")
}

func TestLassoSelectsInformativeFeature(t *testing.T) {
	// Feature 0 equals the target, the rest is noise: the L1 path keeps
	// feature 0 with by far the largest coefficient.
	rng := rand.New(rand.NewSource(3))
	n, d := 40, 5
	x := mat.NewDense(n, d, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		y[i] = rng.NormFloat64()
		x.Set(i, 0, y[i])
		for j := 1; j < d; j++ {
			x.Set(i, j, rng.NormFloat64())
		}
	}

	coef, _ := lassoFit(x, y, 0.1)

	require.Len(t, coef, d)
	assert.Greater(t, coef[0], 0.5)
	for j := 1; j < d; j++ {
		assert.Less(t, absFloat(coef[j]), coef[0])
	}
}

func TestLassoLargeAlphaShrinksAllToZero(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	x := mat.NewDense(10, 3, nil)
	y := make([]float64, 10)
	for i := 0; i < 10; i++ {
		y[i] = rng.NormFloat64()
		for j := 0; j < 3; j++ {
			x.Set(i, j, rng.NormFloat64())
		}
	}

	coef, _ := lassoFit(x, y, 1e6)
	for _, c := range coef {
		assert.Zero(t, c)
	}
}

func TestRidgeFit(t *testing.T) {
	// Identity design with centered target [-1, 1] and alpha 1 gives
	// coefficients [-0.5, 0.5].
	x := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	coef, err := ridgeFit(x, []float64{2, 4}, 1.0)
	require.NoError(t, err)
	assert.InDelta(t, -0.5, coef[0], 1e-9)
	assert.InDelta(t, 0.5, coef[1], 1e-9)
}

func TestForestFitsSeparableData(t *testing.T) {
	m := twoGroupMatrix()
	scaled := expression.Standardize(m.Data)
	labels := []int{0, 0, 0, 1, 1, 1}

	forest := trainForest(scaled, labels, 2, rand.New(rand.NewSource(modelSeed)))
	assert.Equal(t, labels, forest.predict(scaled))

	imp := forest.featureImportance(4)
	sum := 0.0
	for _, v := range imp {
		assert.GreaterOrEqual(t, v, 0.0)
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestSVMFitsSeparableData(t *testing.T) {
	m := twoGroupMatrix()
	scaled := expression.Standardize(m.Data)
	labels := []int{0, 0, 0, 1, 1, 1}

	model := trainSVM(scaled, labels, 2, rand.New(rand.NewSource(modelSeed)))
	assert.Equal(t, labels, model.predict(scaled))

	probs := model.probabilities(scaled)
	for _, row := range probs {
		require.Len(t, row, 2)
		assert.InDelta(t, 1.0, row[0]+row[1], 1e-9)
	}
}

func TestCrossValidateStratifiesClasses(t *testing.T) {
	x := mat.NewDense(8, 1, []float64{0, 10, 0.1, 10.1, 0.2, 10.2, 0.3, 10.3})
	y := []int{0, 1, 0, 1, 0, 1, 0, 1}

	// Nearest-mean trainer: trivially perfect on this layout.
	mean, std := crossValidate(x, y, 4, func(tx *mat.Dense, ty []int) func(*mat.Dense) []int {
		return func(px *mat.Dense) []int {
			n, _ := px.Dims()
			out := make([]int, n)
			for i := 0; i < n; i++ {
				if px.At(i, 0) > 5 {
					out[i] = 1
				}
			}
			return out
		}
	})

	assert.InDelta(t, 1.0, mean, 1e-12)
	assert.Zero(t, std)
}

func TestCVFolds(t *testing.T) {
	assert.Equal(t, 2, cvFolds(2))
	assert.Equal(t, 2, cvFolds(3))
	assert.Equal(t, 3, cvFolds(6))
	assert.Equal(t, 5, cvFolds(100))
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
