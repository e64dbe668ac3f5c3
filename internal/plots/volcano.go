package plots

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"bioreport/internal/dataprocessing"
	apperrors "bioreport/internal/errors"
	"bioreport/pkg/contracts/domain"
)

// Volcano renders log2 fold change against -log10 p-value with the
// significance thresholds drawn as dashed guides. Unlike the other
// figures this one has no placeholder form: a table that cannot produce
// a volcano plot fails the whole report.
func (r *Renderer) Volcano(table *domain.Table) (*domain.Plot, error) {
	pCol := dataprocessing.ColumnPAdj
	if !table.HasColumn(pCol) {
		pCol = dataprocessing.ColumnPValue
	}
	if !table.HasColumn(dataprocessing.ColumnLog2FC) || !table.HasColumn(pCol) {
		return nil, apperrors.NewSchemaError("volcano plot requires log2fc and a p-value column")
	}

	fc := table.FloatColumn(dataprocessing.ColumnLog2FC)
	ps := table.FloatColumn(pCol)

	// Zero or unparseable p-values would send -log10 to infinity, so they
	// borrow a tenth of the smallest positive p in the table.
	minPositive := math.Inf(1)
	for _, p := range ps {
		if p > 0 && p < minPositive {
			minPositive = p
		}
	}
	if math.IsInf(minPositive, 1) {
		minPositive = 1e-10
	}
	floorP := minPositive / 10

	var notSig, up, down plotter.XYs
	for i := range fc {
		if math.IsNaN(fc[i]) {
			continue
		}
		p := ps[i]
		if math.IsNaN(p) || p <= 0 {
			p = floorP
		}
		pt := plotter.XY{X: fc[i], Y: -math.Log10(p)}

		significant := ps[i] < r.cfg.PValueThreshold && math.Abs(fc[i]) > r.cfg.Log2FCThreshold
		switch {
		case significant && fc[i] > 0:
			up = append(up, pt)
		case significant && fc[i] < 0:
			down = append(down, pt)
		default:
			notSig = append(notSig, pt)
		}
	}

	p := plot.New()
	p.Title.Text = "Volcano Plot"
	p.X.Label.Text = "Log2 Fold Change"
	p.Y.Label.Text = "-Log10 P-value"
	p.Add(plotter.NewGrid())

	for _, group := range []struct {
		pts   plotter.XYs
		color color.Color
		label string
	}{
		{notSig, colorNotSig, "Not significant"},
		{up, colorUp, "Up-regulated"},
		{down, colorDown, "Down-regulated"},
	} {
		if len(group.pts) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(group.pts)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = group.color
		sc.GlyphStyle.Radius = vg.Points(2)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
		p.Legend.Add(group.label, sc)
	}

	addThresholdGuides(p, fc, r.cfg.PValueThreshold, r.cfg.Log2FCThreshold)

	return r.finish(
		"Volcano Plot",
		"volcano",
		"Volcano plot showing differential expression with significance thresholds",
		renderImage(p, 10, 8),
	)
}

func addThresholdGuides(p *plot.Plot, fc []float64, pThreshold, fcThreshold float64) {
	xMin, xMax := -fcThreshold, fcThreshold
	for _, v := range fc {
		if math.IsNaN(v) {
			continue
		}
		if v < xMin {
			xMin = v
		}
		if v > xMax {
			xMax = v
		}
	}

	yGuide := -math.Log10(pThreshold)
	guides := []plotter.XYs{
		{{X: xMin, Y: yGuide}, {X: xMax, Y: yGuide}},
		{{X: fcThreshold, Y: 0}, {X: fcThreshold, Y: yGuide * 4}},
		{{X: -fcThreshold, Y: 0}, {X: -fcThreshold, Y: yGuide * 4}},
	}
	for _, pts := range guides {
		line, err := plotter.NewLine(pts)
		if err != nil {
			continue
		}
		line.LineStyle.Color = color.NRGBA{A: 0x80}
		line.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(line)
	}
}
