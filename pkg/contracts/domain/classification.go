package domain

// Regulation is the three-way significance label assigned to a gene row.
type Regulation string

const (
	RegulationUp             Regulation = "up"
	RegulationDown           Regulation = "down"
	RegulationNotSignificant Regulation = "not_significant"
)

// Classification holds the per-row significance labels for a normalized
// table together with the p-value column that was used to derive them.
type Classification struct {
	// PColumn is the significance column the classifier selected,
	// either "padj" or "pvalue" (padj preferred when both exist).
	PColumn string `json:"p_column"`

	// Labels has one entry per table row, aligned by index.
	Labels []Regulation `json:"labels"`
}

// SignificantRows returns the indices of rows labelled up or down.
func (c *Classification) SignificantRows() []int {
	var idx []int
	for i, l := range c.Labels {
		if l == RegulationUp || l == RegulationDown {
			idx = append(idx, i)
		}
	}
	return idx
}

// GeneStat is one gene's headline statistics, used for top-DEG display.
type GeneStat struct {
	GeneID string  `json:"gene_id"`
	Log2FC float64 `json:"log2fc"`
	PValue float64 `json:"pvalue"`
	Row    int     `json:"-"`
}

// AnalysisSummary is the immutable aggregate produced by significance
// classification. It is the single source for both rendered statistics and
// the narrative sections, so the numbers can never drift apart.
type AnalysisSummary struct {
	TotalGenes int `json:"total_genes"`
	NumDEG     int `json:"num_deg"`
	Up         int `json:"up"`
	Down       int `json:"down"`

	// Percentages keep full precision here; rounding happens only at the
	// response boundary.
	DEGPercentage  float64 `json:"deg_percentage"`
	UpPercentage   float64 `json:"up_percentage"`
	DownPercentage float64 `json:"down_percentage"`

	AvgLog2FC    float64 `json:"avg_log2fc"`
	MedianLog2FC float64 `json:"median_log2fc"`

	// TopUp holds up to 10 up-regulated genes with the largest log2fc,
	// TopDown up to 10 down-regulated genes with the smallest. Ties keep
	// original row order.
	TopUp   []GeneStat `json:"top_up_genes"`
	TopDown []GeneStat `json:"top_down_genes"`
}
