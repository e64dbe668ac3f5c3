package plots

import (
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"bioreport/pkg/contracts/domain"
)

const (
	pathwayPlotName = "Pathway Enrichment"
	pathwayPlotType = "pathway"
	pathwayPlotDesc = "Enrichment analysis of significant pathways"
)

// Enrichment file layouts vary per tool, so the pathway and p-value
// columns are located by synonym search over the normalized headers.
var (
	pathwayNameColumns   = []string{"pathway", "term", "description", "name"}
	pathwayPValueColumns = []string{"pvalue", "p_value", "pval", "padj", "p_adj", "fdr"}
)

// Pathway renders the most significant enriched pathways as a horizontal
// bar chart of -log10 p-values. Unrecognizable enrichment tables fall
// back to a placeholder panel rather than failing the report.
func (r *Renderer) Pathway(enrichment *domain.Table) (*domain.Plot, error) {
	nameCol := firstPresentColumn(enrichment, pathwayNameColumns)
	pCol := firstPresentColumn(enrichment, pathwayPValueColumns)

	if nameCol == "" || pCol == "" || enrichment.NumRows() == 0 {
		img := placeholderImage(pathwayPlotName, "Enrichment data required")
		return r.finish(pathwayPlotName, pathwayPlotType, pathwayPlotDesc, img)
	}

	ps := enrichment.FloatColumn(pCol)
	rows := make([]int, 0, len(ps))
	for i, p := range ps {
		if !math.IsNaN(p) && p > 0 {
			rows = append(rows, i)
		}
	}
	if len(rows) == 0 {
		img := placeholderImage(pathwayPlotName, "Enrichment data required")
		return r.finish(pathwayPlotName, pathwayPlotType, pathwayPlotDesc, img)
	}

	sort.SliceStable(rows, func(a, b int) bool { return ps[rows[a]] < ps[rows[b]] })
	topN := r.cfg.PathwayTopN
	if topN <= 0 || topN > len(rows) {
		topN = len(rows)
	}
	rows = rows[:topN]

	// Reversed so the most significant pathway ends up at the top.
	values := make(plotter.Values, topN)
	names := make([]string, topN)
	for i, row := range rows {
		values[topN-1-i] = -math.Log10(ps[row])
		names[topN-1-i] = enrichment.Cell(row, nameCol)
	}

	p := plot.New()
	p.Title.Text = "Top Enriched Pathways"
	p.X.Label.Text = "-Log10 P-value"

	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return nil, err
	}
	bars.Horizontal = true
	bars.Color = colorBar
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(names...)

	height := math.Max(8, float64(topN)*0.4)
	return r.finish(pathwayPlotName, pathwayPlotType, pathwayPlotDesc, renderImage(p, 10, height))
}

func firstPresentColumn(t *domain.Table, candidates []string) string {
	for _, c := range candidates {
		if t.HasColumn(c) {
			return c
		}
	}
	return ""
}
