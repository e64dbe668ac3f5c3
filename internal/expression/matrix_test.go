package expression

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	apperrors "bioreport/internal/errors"
	"bioreport/pkg/contracts/domain"
)

func TestExtractSampleColumns(t *testing.T) {
	table := &domain.Table{
		Columns: []string{"gene_id", "log2fc", "pvalue", "ctrl_1", "ctrl_2", "treat_1"},
		Rows: [][]string{
			{"BRCA1", "2.1", "0.001", "5.2", "4.8", "9.1"},
			{"TP53", "-1.5", "0.02", "3.0", "3.3", "1.1"},
		},
	}

	m, err := Extract(table, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	assert.False(t, m.Synthetic)
	assert.Equal(t, []string{"ctrl_1", "ctrl_2", "treat_1"}, m.Samples)
	assert.Equal(t, []string{"BRCA1", "TP53"}, m.Genes)
	assert.Equal(t, 3, m.NumSamples())
	assert.Equal(t, 2, m.NumGenes())

	// Samples are rows, genes are columns.
	assert.InDelta(t, 5.2, m.Data.At(0, 0), 1e-9)
	assert.InDelta(t, 1.1, m.Data.At(2, 1), 1e-9)
}

func TestExtractExcludesStatColumns(t *testing.T) {
	// Numeric but reserved columns must never be treated as samples.
	table := &domain.Table{
		Columns: []string{"gene_id", "log2fc", "pvalue", "padj", "fdr", "s1", "s2"},
		Rows: [][]string{
			{"G1", "1.0", "0.01", "0.02", "0.03", "4.0", "5.0"},
		},
	}

	m, err := Extract(table, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, m.Samples)
}

func TestExtractSyntheticFallback(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		row     []string
	}{
		{"no numeric columns", []string{"gene_id", "log2fc", "pvalue"}, []string{"G1", "1.0", "0.01"}},
		{"single sample column", []string{"gene_id", "log2fc", "pvalue", "s1"}, []string{"G1", "1.0", "0.01", "4.2"}},
		{"non-numeric extra column", []string{"gene_id", "log2fc", "pvalue", "desc"}, []string{"G1", "1.0", "0.01", "kinase"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := &domain.Table{Columns: tt.columns, Rows: [][]string{tt.row, tt.row, tt.row}}

			m, err := Extract(table, rand.New(rand.NewSource(42)))
			require.NoError(t, err)

			assert.True(t, m.Synthetic)
			assert.Equal(t, 6, m.NumSamples())
			assert.Equal(t, 3, m.NumGenes())
			assert.Equal(t, "Sample_1", m.Samples[0])
			assert.Equal(t, "Sample_6", m.Samples[5])
		})
	}
}

func TestExtractSyntheticIsSeedDeterministic(t *testing.T) {
	table := &domain.Table{
		Columns: []string{"gene_id", "log2fc", "pvalue"},
		Rows:    [][]string{{"G1", "1.0", "0.01"}, {"G2", "-1.0", "0.02"}},
	}

	a, err := Extract(table, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	b, err := Extract(table, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	assert.True(t, mat.EqualApprox(a.Data, b.Data, 1e-12))
}

func TestExtractEmptyTable(t *testing.T) {
	table := &domain.Table{Columns: []string{"gene_id", "log2fc", "pvalue"}}

	m, err := Extract(table, nil)
	require.Error(t, err)
	assert.Nil(t, m)
	assert.True(t, apperrors.IsClientFault(err))
}

func TestExtractGeneNameFallback(t *testing.T) {
	table := &domain.Table{
		Columns: []string{"log2fc", "pvalue", "s1", "s2"},
		Rows: [][]string{
			{"1.0", "0.01", "4.0", "5.0"},
			{"2.0", "0.02", "6.0", "7.0"},
		},
	}

	m, err := Extract(table, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gene_0", "Gene_1"}, m.Genes)
}

func TestStandardize(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{
		1, 5,
		2, 5,
		3, 5,
	})

	z := Standardize(x)

	// First column is z-scored with population standard deviation:
	// mean 2, std sqrt(2/3).
	assert.InDelta(t, -math.Sqrt(1.5), z.At(0, 0), 1e-9)
	assert.InDelta(t, 0, z.At(1, 0), 1e-9)
	assert.InDelta(t, math.Sqrt(1.5), z.At(2, 0), 1e-9)

	// Zero-variance column collapses to zeros.
	for i := 0; i < 3; i++ {
		assert.Zero(t, z.At(i, 1))
	}

	// Input is untouched.
	assert.Equal(t, 1.0, x.At(0, 0))
}
