package plots

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bioreport/internal/config"
	apperrors "bioreport/internal/errors"
	"bioreport/internal/expression"
	"bioreport/internal/ml"
	"bioreport/pkg/contracts/domain"
)

func testRenderer() *Renderer {
	return NewRenderer(config.AnalysisConfig{
		PValueThreshold: 0.05,
		Log2FCThreshold: 1.0,
		HeatmapTopN:     50,
		PathwayTopN:     20,
		NClusters:       3,
		NClasses:        2,
	}, nil, nil)
}

// requirePNG asserts the plot payload decodes as a PNG image.
func requirePNG(t *testing.T, p *domain.Plot) {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(p.ImageBase64)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
}

func degTable() *domain.Table {
	table := &domain.Table{
		Columns: []string{"gene_id", "log2fc", "padj", "s1", "s2", "s3"},
	}
	for i := 0; i < 30; i++ {
		fc := float64(i%7) - 3
		p := 0.001 + float64(i)*0.01
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("G%d", i),
			fmt.Sprintf("%g", fc),
			fmt.Sprintf("%g", p),
			fmt.Sprintf("%g", float64(i)*0.5),
			fmt.Sprintf("%g", float64(i)*0.4+1),
			fmt.Sprintf("%g", float64(30-i)*0.3),
		})
	}
	return table
}

func TestVolcano(t *testing.T) {
	r := testRenderer()

	p, err := r.Volcano(degTable())
	require.NoError(t, err)

	assert.Equal(t, "Volcano Plot", p.Name)
	assert.Equal(t, "volcano", p.Type)
	requirePNG(t, p)
}

func TestVolcanoHandlesZeroAndMissingPValues(t *testing.T) {
	// Zero p-values must not produce infinite coordinates.
	table := &domain.Table{
		Columns: []string{"log2fc", "pvalue"},
		Rows: [][]string{
			{"2.0", "0"},
			{"-2.0", "0.001"},
			{"0.5", "NA"},
			{"1.5", "0.2"},
		},
	}

	p, err := testRenderer().Volcano(table)
	require.NoError(t, err)
	requirePNG(t, p)
}

func TestVolcanoMissingColumnsFails(t *testing.T) {
	table := &domain.Table{Columns: []string{"gene_id", "log2fc"}}

	p, err := testRenderer().Volcano(table)
	require.Error(t, err)
	assert.Nil(t, p)
	assert.True(t, apperrors.IsClientFault(err))
}

func TestPCA(t *testing.T) {
	t.Run("with expression data", func(t *testing.T) {
		p, err := testRenderer().PCA(degTable())
		require.NoError(t, err)
		assert.Equal(t, "pca", p.Type)
		requirePNG(t, p)
	})

	t.Run("placeholder without samples", func(t *testing.T) {
		table := &domain.Table{
			Columns: []string{"gene_id", "log2fc", "padj"},
			Rows:    [][]string{{"G1", "1.0", "0.01"}, {"G2", "2.0", "0.02"}, {"G3", "0.5", "0.5"}},
		}
		p, err := testRenderer().PCA(table)
		require.NoError(t, err)
		requirePNG(t, p)
	})
}

func TestHeatmap(t *testing.T) {
	t.Run("real samples", func(t *testing.T) {
		p, err := testRenderer().Heatmap(degTable())
		require.NoError(t, err)
		assert.Equal(t, "heatmap", p.Type)
		requirePNG(t, p)
	})

	t.Run("synthetic samples", func(t *testing.T) {
		table := &domain.Table{
			Columns: []string{"gene_id", "log2fc", "padj"},
			Rows:    [][]string{{"G1", "3.0", "0.01"}, {"G2", "-2.0", "0.02"}},
		}
		p, err := testRenderer().Heatmap(table)
		require.NoError(t, err)
		requirePNG(t, p)
	})

	t.Run("placeholder without log2fc", func(t *testing.T) {
		table := &domain.Table{Columns: []string{"gene_id"}, Rows: [][]string{{"G1"}}}
		p, err := testRenderer().Heatmap(table)
		require.NoError(t, err)
		requirePNG(t, p)
	})
}

func TestTopAbsFoldChangeRows(t *testing.T) {
	table := &domain.Table{
		Columns: []string{"log2fc"},
		Rows:    [][]string{{"1.0"}, {"-5.0"}, {"NA"}, {"3.0"}, {"-3.0"}},
	}

	rows := topAbsFoldChangeRows(table, 3)
	// Descending |log2fc|; the 3.0/-3.0 tie keeps table order.
	assert.Equal(t, []int{1, 3, 4}, rows)
}

func TestPathway(t *testing.T) {
	t.Run("with enrichment data", func(t *testing.T) {
		table := &domain.Table{
			Columns: []string{"term", "pvalue", "count"},
			Rows: [][]string{
				{"Apoptosis", "0.001", "12"},
				{"Cell cycle", "0.01", "9"},
				{"DNA repair", "0.04", "4"},
			},
		}
		p, err := testRenderer().Pathway(table)
		require.NoError(t, err)
		assert.Equal(t, "pathway", p.Type)
		requirePNG(t, p)
	})

	t.Run("placeholder without recognizable columns", func(t *testing.T) {
		table := &domain.Table{
			Columns: []string{"foo", "bar"},
			Rows:    [][]string{{"a", "b"}},
		}
		p, err := testRenderer().Pathway(table)
		require.NoError(t, err)
		requirePNG(t, p)
	})
}

func TestModelFigures(t *testing.T) {
	scaled := [][]float64{
		{1.2, -0.5, 0.3},
		{-0.8, 1.1, -0.2},
		{0.4, -0.9, 1.0},
		{-0.6, 0.2, -1.1},
	}

	tests := []struct {
		name     string
		result   domain.ModelResult
		wantName string
		wantType string
	}{
		{
			"svm", &domain.ClassificationResult{
				Model: domain.ModelSVM, Predictions: []int{0, 1, 0, 1},
				TrueLabels: []int{0, 1, 0, 1}, Accuracy: 1.0,
				ConfusionMatrix: [][]int{{2, 0}, {0, 2}}, NClasses: 2, Scaled: scaled,
			},
			"SVM Classification", "svm_classification",
		},
		{
			"random forest", &domain.ClassificationResult{
				Model: domain.ModelRandomForest, Predictions: []int{0, 1, 0, 1},
				TrueLabels: []int{0, 1, 0, 1}, Accuracy: 0.75,
				ConfusionMatrix:   [][]int{{1, 1}, {0, 2}},
				NClasses:          2,
				FeatureImportance: []float64{0.5, 0.3, 0.2},
				TopFeatures:       []int{0, 1, 2},
				Scaled:            scaled,
			},
			"Random Forest Classification", "random_forest",
		},
		{
			"hierarchical", &domain.ClusteringResult{
				Model: domain.ModelHierarchical, Labels: []int{0, 1, 0, 2},
				NClusters: 3, Silhouette: 0.42, Linkage: "ward", Scaled: scaled,
			},
			"Hierarchical Clustering", "hierarchical_clustering",
		},
		{
			"kmeans", &domain.ClusteringResult{
				Model: domain.ModelKMeans, Labels: []int{0, 1, 0, 2},
				NClusters: 3, Silhouette: 0.42, Inertia: 3.7,
				Centers: [][]float64{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}}, Scaled: scaled,
			},
			"K-Means Clustering", "kmeans_clustering",
		},
		{
			"lasso", &domain.FeatureSelectionResult{
				Model: domain.ModelLasso, Coefficients: []float64{0.4, 0, -0.2},
				SelectedIdx: []int{0, 2}, SelectedCoef: []float64{0.4, -0.2},
				Alpha: 0.1, Scaled: scaled,
			},
			"Lasso Feature Selection", "lasso",
		},
		{
			"ridge", &domain.FeatureSelectionResult{
				Model: domain.ModelRidge, Coefficients: []float64{0.4, 0.1, -0.2},
				TopFeatures: []int{0, 2, 1}, Alpha: 1.0, Scaled: scaled,
			},
			"Ridge Regression", "ridge",
		},
	}

	r := testRenderer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := r.Model(tt.result)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name)
			assert.Equal(t, tt.wantType, p.Type)
			assert.NotEmpty(t, p.Description)
			requirePNG(t, p)
		})
	}
}

func TestModelFiguresFromEngineOutput(t *testing.T) {
	// End to end through the real engine so the figures consume genuine
	// procedure output, not hand-built fixtures.
	table := degTable()
	m, err := expression.Extract(table, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	engine := ml.NewEngine(config.AnalysisConfig{NClusters: 3, NClasses: 2}, nil, nil)
	results := engine.RunAll(context.Background(), m)

	r := testRenderer()
	for _, kind := range ml.ProcedureOrder {
		res, ok := results[kind]
		require.True(t, ok, "procedure %s missing", kind)

		p, err := r.Model(res)
		require.NoError(t, err, "figure for %s", kind)
		requirePNG(t, p)
	}
}
