// Package expression extracts sample expression matrices from uploaded
// differential expression tables for downstream model fitting.
package expression

import (
	"fmt"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"bioreport/internal/dataprocessing"
	apperrors "bioreport/internal/errors"
	"bioreport/pkg/contracts/domain"
)

// syntheticSampleCount is the number of demonstration samples generated
// when the uploaded table carries no usable expression columns.
const syntheticSampleCount = 6

// Matrix holds per-sample expression values in the orientation the model
// procedures expect: one row per sample, one column per gene.
type Matrix struct {
	Data    *mat.Dense
	Samples []string
	Genes   []string

	// Synthetic is true when the matrix was generated rather than read
	// from the uploaded table.
	Synthetic bool
}

// NumSamples returns the number of sample rows.
func (m *Matrix) NumSamples() int {
	r, _ := m.Data.Dims()
	return r
}

// NumGenes returns the number of gene columns.
func (m *Matrix) NumGenes() int {
	_, c := m.Data.Dims()
	return c
}

// Extract builds an expression matrix from a normalized table. Numeric
// columns are treated as sample columns unless they belong to the
// differential statistics family (log2fc, pvalue and friends). When fewer
// than two sample columns exist the table cannot support per-sample
// analysis, so a standard-normal synthetic matrix is generated instead,
// keeping one gene per table row.
//
// rng drives synthetic generation; pass nil for a time-seeded source.
func Extract(table *domain.Table, rng *rand.Rand) (*Matrix, error) {
	if table.NumRows() == 0 {
		return nil, apperrors.NewSchemaError("table has no data rows to build an expression matrix from")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	var sampleCols []string
	for _, col := range table.Columns {
		if col == dataprocessing.ColumnGeneID || dataprocessing.IsReservedStatColumn(col) {
			continue
		}
		if table.IsNumericColumn(col) {
			sampleCols = append(sampleCols, col)
		}
	}

	genes := geneNames(table)

	if len(sampleCols) < 2 {
		return synthetic(genes, rng), nil
	}

	nSamples := len(sampleCols)
	nGenes := table.NumRows()
	data := mat.NewDense(nSamples, nGenes, nil)
	for i, col := range sampleCols {
		values := table.FloatColumn(col)
		for j, v := range values {
			if v != v { // NaN from an empty cell
				v = 0
			}
			data.Set(i, j, v)
		}
	}

	return &Matrix{Data: data, Samples: sampleCols, Genes: genes}, nil
}

// Standardize returns a column-wise z-scored copy of x. Columns with zero
// variance become all zeros rather than NaN.
func Standardize(x *mat.Dense) *mat.Dense {
	r, c := x.Dims()
	out := mat.NewDense(r, c, nil)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, x)
		mean, std := stat.PopMeanStdDev(col, nil)
		for i := 0; i < r; i++ {
			if std == 0 {
				out.Set(i, j, 0)
				continue
			}
			out.Set(i, j, (col[i]-mean)/std)
		}
	}
	return out
}

func synthetic(genes []string, rng *rand.Rand) *Matrix {
	samples := make([]string, syntheticSampleCount)
	for i := range samples {
		samples[i] = fmt.Sprintf("Sample_%d", i+1)
	}

	data := mat.NewDense(syntheticSampleCount, len(genes), nil)
	for i := 0; i < syntheticSampleCount; i++ {
		for j := range genes {
			data.Set(i, j, rng.NormFloat64())
		}
	}

	return &Matrix{Data: data, Samples: samples, Genes: genes, Synthetic: true}
}

func geneNames(table *domain.Table) []string {
	names := make([]string, table.NumRows())
	hasID := table.HasColumn(dataprocessing.ColumnGeneID)
	for i := range names {
		if hasID {
			if cell := table.Cell(i, dataprocessing.ColumnGeneID); cell != "" {
				names[i] = cell
				continue
			}
		}
		names[i] = fmt.Sprintf("Gene_%d", i)
	}
	return names
}
