package plots

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"bioreport/internal/dataprocessing"
	"bioreport/internal/expression"
	"bioreport/pkg/contracts/domain"
)

const (
	pcaPlotName = "PCA Analysis"
	pcaPlotType = "pca"
	pcaPlotDesc = "Principal Component Analysis for dimensionality reduction"
)

// PCA projects the per-gene expression values onto their first two
// principal components, one point per gene. Tables without an expression
// matrix get a placeholder panel instead of an error.
func (r *Renderer) PCA(table *domain.Table) (*domain.Plot, error) {
	var sampleCols []string
	for _, col := range table.Columns {
		if col == dataprocessing.ColumnGeneID || dataprocessing.IsReservedStatColumn(col) {
			continue
		}
		if table.IsNumericColumn(col) {
			sampleCols = append(sampleCols, col)
		}
	}

	if len(sampleCols) < 2 || table.NumRows() < 3 {
		img := placeholderImage(pcaPlotName,
			"Expression matrix data required",
			"for PCA analysis")
		return r.finish(pcaPlotName, pcaPlotType, pcaPlotDesc, img)
	}

	// Genes as observations, samples as variables.
	nGenes := table.NumRows()
	x := mat.NewDense(nGenes, len(sampleCols), nil)
	for j, col := range sampleCols {
		values := table.FloatColumn(col)
		for i, v := range values {
			if math.IsNaN(v) {
				v = 0
			}
			x.Set(i, j, v)
		}
	}
	scaled := expression.Standardize(x)

	var pc stat.PC
	if !pc.PrincipalComponents(scaled, nil) {
		img := placeholderImage(pcaPlotName, "Insufficient data for PCA")
		return r.finish(pcaPlotName, pcaPlotType, pcaPlotDesc, img)
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)

	var proj mat.Dense
	proj.Mul(scaled, vecs.Slice(0, len(sampleCols), 0, 2))

	pts := make(plotter.XYs, nGenes)
	for i := 0; i < nGenes; i++ {
		pts[i] = plotter.XY{X: proj.At(i, 0), Y: proj.At(i, 1)}
	}

	total := 0.0
	for _, v := range vars {
		total += v
	}

	p := plot.New()
	p.Title.Text = "Principal Component Analysis"
	p.X.Label.Text = axisLabelPC(1, vars, total)
	p.Y.Label.Text = axisLabelPC(2, vars, total)
	p.Add(plotter.NewGrid())

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	sc.GlyphStyle.Color = colorBar
	sc.GlyphStyle.Radius = vg.Points(3)
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(sc)

	return r.finish(pcaPlotName, pcaPlotType, pcaPlotDesc, renderImage(p, 8, 6))
}

func axisLabelPC(component int, vars []float64, total float64) string {
	ratio := 0.0
	if total > 0 && component <= len(vars) {
		ratio = vars[component-1] / total
	}
	return fmt.Sprintf("PC%d (%.1f%% variance)", component, ratio*100)
}
