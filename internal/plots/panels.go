package plots

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"bioreport/pkg/contracts/domain"
)

// Model renders the composite figure for one procedure outcome.
func (r *Renderer) Model(res domain.ModelResult) (*domain.Plot, error) {
	switch v := res.(type) {
	case *domain.ClassificationResult:
		return r.classificationFigure(v)
	case *domain.ClusteringResult:
		return r.clusteringFigure(v)
	case *domain.FeatureSelectionResult:
		return r.featureSelectionFigure(v)
	default:
		return nil, fmt.Errorf("plots: unsupported model result %T", res)
	}
}

func (r *Renderer) classificationFigure(res *domain.ClassificationResult) (*domain.Plot, error) {
	scatter, err := sampleScatterPanel(res.Scaled, res.Predictions,
		fmt.Sprintf("Accuracy: %.3f", res.Accuracy))
	if err != nil {
		return nil, err
	}
	confusion := confusionPanel(res.ConfusionMatrix)

	panels := []image.Image{scatter, confusion}
	if res.Model == domain.ModelRandomForest && len(res.FeatureImportance) > 0 {
		importance, err := importancePanel(res.FeatureImportance, res.TopFeatures)
		if err != nil {
			return nil, err
		}
		panels = append(panels, importance)
	}

	switch res.Model {
	case domain.ModelRandomForest:
		return r.finish(
			"Random Forest Classification",
			string(domain.ModelRandomForest),
			fmt.Sprintf("Random Forest classification results (Accuracy: %.3f)", res.Accuracy),
			composeRow("Random Forest Classification", panels...),
		)
	default:
		return r.finish(
			"SVM Classification",
			string(domain.ModelSVM),
			fmt.Sprintf("SVM classification results (Accuracy: %.3f)", res.Accuracy),
			composeRow("SVM Classification Results", panels...),
		)
	}
}

func (r *Renderer) clusteringFigure(res *domain.ClusteringResult) (*domain.Plot, error) {
	scatter, err := sampleScatterPanel(res.Scaled, res.Labels,
		fmt.Sprintf("%d Clusters (Silhouette: %.3f)", res.NClusters, res.Silhouette))
	if err != nil {
		return nil, err
	}
	sizes, err := clusterSizePanel(res.Labels, res.NClusters)
	if err != nil {
		return nil, err
	}

	if res.Model == domain.ModelHierarchical {
		return r.finish(
			"Hierarchical Clustering",
			string(domain.ModelHierarchical),
			fmt.Sprintf("Hierarchical clustering results (%d clusters, Silhouette: %.3f)", res.NClusters, res.Silhouette),
			composeRow("Hierarchical Clustering", scatter, sizes),
		)
	}
	return r.finish(
		"K-Means Clustering",
		string(domain.ModelKMeans),
		fmt.Sprintf("K-Means clustering results (%d clusters, Silhouette: %.3f)", res.NClusters, res.Silhouette),
		composeRow("K-Means Clustering", scatter, sizes),
	)
}

func (r *Renderer) featureSelectionFigure(res *domain.FeatureSelectionResult) (*domain.Plot, error) {
	coefs, err := coefficientPanel(res.Coefficients)
	if err != nil {
		return nil, err
	}
	hist, err := coefficientHistogramPanel(res.Coefficients)
	if err != nil {
		return nil, err
	}

	if res.Model == domain.ModelLasso {
		return r.finish(
			"Lasso Feature Selection",
			string(domain.ModelLasso),
			fmt.Sprintf("Lasso regression for feature selection (Selected: %d features)", len(res.SelectedIdx)),
			composeRow(fmt.Sprintf("Lasso Coefficients (alpha=%g)", res.Alpha), coefs, hist),
		)
	}
	return r.finish(
		"Ridge Regression",
		string(domain.ModelRidge),
		"Ridge regression for feature selection and regularization",
		composeRow(fmt.Sprintf("Ridge Coefficients (alpha=%g)", res.Alpha), coefs, hist),
	)
}

// sampleScatterPanel projects the standardized samples to two dimensions
// and colors each point by its assigned class or cluster.
func sampleScatterPanel(scaled [][]float64, assignment []int, subtitle string) (image.Image, error) {
	coords, labeledAxes := projectTo2D(scaled)

	p := plot.New()
	p.Title.Text = subtitle
	if labeledAxes {
		p.X.Label.Text = "PC1"
		p.Y.Label.Text = "PC2"
	} else {
		p.X.Label.Text = "Feature 1"
		p.Y.Label.Text = "Feature 2"
	}
	p.Add(plotter.NewGrid())

	// One scatter per class so the legend names assignments.
	byClass := map[int]plotter.XYs{}
	for i, a := range assignment {
		if i < len(coords) {
			byClass[a] = append(byClass[a], coords[i])
		}
	}
	for class := 0; class < len(classPalette); class++ {
		pts, ok := byClass[class]
		if !ok {
			continue
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = classColor(class)
		sc.GlyphStyle.Radius = vg.Points(4)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
		p.Legend.Add(fmt.Sprintf("Class %d", class), sc)
	}

	return renderImage(p, 7, 6), nil
}

// projectTo2D reduces the samples-by-genes matrix to two columns, via PCA
// when there are more than two genes. The boolean reports whether the
// axes are principal components.
func projectTo2D(scaled [][]float64) (plotter.XYs, bool) {
	n := len(scaled)
	if n == 0 {
		return nil, false
	}
	d := len(scaled[0])

	coords := make(plotter.XYs, n)
	if d <= 2 {
		for i, row := range scaled {
			coords[i].X = row[0]
			if d == 2 {
				coords[i].Y = row[1]
			}
		}
		return coords, false
	}

	x := mat.NewDense(n, d, nil)
	for i, row := range scaled {
		x.SetRow(i, row)
	}

	var pc stat.PC
	if !pc.PrincipalComponents(x, nil) {
		for i, row := range scaled {
			coords[i] = plotter.XY{X: row[0], Y: row[1]}
		}
		return coords, false
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	var proj mat.Dense
	proj.Mul(x, vecs.Slice(0, d, 0, 2))
	for i := 0; i < n; i++ {
		coords[i] = plotter.XY{X: proj.At(i, 0), Y: proj.At(i, 1)}
	}
	return coords, true
}

// confusionPanel draws the confusion matrix as a shaded grid with counts.
func confusionPanel(cm [][]int) image.Image {
	n := len(cm)
	if n == 0 {
		return placeholderImage("Confusion Matrix", "No classification data")
	}

	maxCount := 0
	for _, row := range cm {
		for _, v := range row {
			if v > maxCount {
				maxCount = v
			}
		}
	}

	const cell, margin = 120, 60
	size := n*cell + 2*margin
	dc := newPanelContext(size, size)

	for i, row := range cm {
		for j, v := range row {
			shade := 0.0
			if maxCount > 0 {
				shade = float64(v) / float64(maxCount)
			}
			x := float64(margin + j*cell)
			y := float64(margin + i*cell)
			dc.SetRGB(1-shade*0.7, 1-shade*0.4, 1)
			dc.DrawRectangle(x, y, cell, cell)
			dc.FillPreserve()
			dc.SetRGB(0.3, 0.3, 0.3)
			dc.Stroke()

			if shade > 0.6 {
				dc.SetRGB(1, 1, 1)
			} else {
				dc.SetRGB(0, 0, 0)
			}
			dc.DrawStringAnchored(fmt.Sprintf("%d", v), x+cell/2, y+cell/2, 0.5, 0.5)
		}
	}

	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored("Confusion Matrix", float64(size)/2, 24, 0.5, 0.5)
	for i := 0; i < n; i++ {
		label := fmt.Sprintf("Class %d", i)
		dc.DrawStringAnchored(label, float64(margin+i*cell+cell/2), float64(size-margin/2), 0.5, 0.5)
		dc.DrawStringAnchored(label, float64(margin)/2, float64(margin+i*cell+cell/2), 0.5, 0.5)
	}
	return dc.Image()
}

// importancePanel draws the top feature importances as horizontal bars,
// most important at the top.
func importancePanel(importance []float64, topIdx []int) (image.Image, error) {
	values := make(plotter.Values, len(topIdx))
	names := make([]string, len(topIdx))
	for i, idx := range topIdx {
		pos := len(topIdx) - 1 - i
		values[pos] = importance[idx]
		names[pos] = fmt.Sprintf("Gene %d", idx)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Top %d Feature Importance", len(topIdx))
	p.X.Label.Text = "Importance"

	bars, err := plotter.NewBarChart(values, vg.Points(8))
	if err != nil {
		return nil, err
	}
	bars.Horizontal = true
	bars.Color = colorBar
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(names...)

	return renderImage(p, 7, 6), nil
}

func clusterSizePanel(labels []int, nClusters int) (image.Image, error) {
	counts := make(plotter.Values, nClusters)
	names := make([]string, nClusters)
	for _, l := range labels {
		if l >= 0 && l < nClusters {
			counts[l]++
		}
	}
	for i := range names {
		names[i] = fmt.Sprintf("Cluster %d", i)
	}

	p := plot.New()
	p.Title.Text = "Cluster Size Distribution"
	p.Y.Label.Text = "Samples"

	bars, err := plotter.NewBarChart(counts, vg.Points(30))
	if err != nil {
		return nil, err
	}
	bars.Color = colorBar
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(names...)

	return renderImage(p, 7, 6), nil
}

func coefficientPanel(coefs []float64) (image.Image, error) {
	pts := make(plotter.XYs, len(coefs))
	for i, c := range coefs {
		pts[i] = plotter.XY{X: float64(i), Y: c}
	}

	p := plot.New()
	p.Title.Text = "Coefficients by Gene Index"
	p.X.Label.Text = "Gene Index"
	p.Y.Label.Text = "Coefficient"
	p.Add(plotter.NewGrid())

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	sc.GlyphStyle.Color = colorBar
	sc.GlyphStyle.Radius = vg.Points(2)
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(sc)

	zero, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: float64(len(coefs) - 1), Y: 0}})
	if err == nil {
		zero.LineStyle.Color = colorUp
		zero.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(zero)
	}

	return renderImage(p, 7, 6), nil
}

func coefficientHistogramPanel(coefs []float64) (image.Image, error) {
	values := make(plotter.Values, len(coefs))
	copy(values, coefs)

	p := plot.New()
	p.Title.Text = "Coefficient Distribution"
	p.X.Label.Text = "Coefficient"
	p.Y.Label.Text = "Count"

	bins := int(math.Min(50, math.Max(5, float64(len(coefs))/2)))
	hist, err := plotter.NewHist(values, bins)
	if err != nil {
		return nil, err
	}
	hist.FillColor = colorBar
	p.Add(hist)

	return renderImage(p, 7, 6), nil
}
