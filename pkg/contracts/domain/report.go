package domain

// Plot is a rendered visual artifact: a base64-encoded PNG plus the metadata
// the frontend needs to title and group it. Immutable once created.
type Plot struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	ImageBase64 string `json:"image_base64"`
	Description string `json:"description,omitempty"`
}

// NarrativeSection is one titled block of generated report text.
type NarrativeSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Narrative section keys produced by the narrative compiler.
const (
	NarrativeResults    = "results"
	NarrativeDiscussion = "discussion"
)

// SummaryStats is the boundary form of AnalysisSummary: percentages rounded
// to 2 decimal places and log2fc statistics to 3, plus the originating file
// names. Internal computation keeps full precision; rounding happens exactly
// once, here.
type SummaryStats struct {
	NumDEG         int     `json:"num_deg"`
	Up             int     `json:"up"`
	Down           int     `json:"down"`
	TotalGenes     int     `json:"total_genes"`
	DEGPercentage  float64 `json:"deg_percentage"`
	UpPercentage   float64 `json:"up_percentage"`
	DownPercentage float64 `json:"down_percentage"`
	AvgLog2FC      float64 `json:"avg_log2fc"`
	MedianLog2FC   float64 `json:"median_log2fc"`
	DEGFile        string  `json:"deg_file"`
	EnrichmentFile string  `json:"enrichment_file,omitempty"`
}

// ResearchAnalyzeMeta is the passthrough metadata accompanying a research
// upload. The core pipeline does not interpret it.
type ResearchAnalyzeMeta struct {
	ProjectName   string `json:"project_name,omitempty" validate:"omitempty,max=200"`
	Species       string `json:"species,omitempty" validate:"omitempty,max=100"`
	ContrastLabel string `json:"contrast_label,omitempty" validate:"omitempty,max=200"`
}

// ResearchAnalyzeResponse is the full payload returned for a research
// analysis request.
type ResearchAnalyzeResponse struct {
	ProjectName  string                      `json:"project_name,omitempty"`
	Plots        []Plot                      `json:"plots"`
	Narrative    map[string]NarrativeSection `json:"narrative"`
	SummaryStats SummaryStats                `json:"summary_stats"`
}

// Report export modes and formats accepted by the report exporter.
const (
	ReportModeResearch = "research"
	ReportModePersonal = "personal"

	ReportFormatPDF  = "pdf"
	ReportFormatDOCX = "docx"
)

// ReportExportRequest asks for an analysis payload to be rendered as a
// downloadable report file.
type ReportExportRequest struct {
	Mode    string         `json:"mode" validate:"required,oneof=research personal"`
	Format  string         `json:"format" validate:"required,oneof=pdf docx"`
	Payload map[string]any `json:"payload" validate:"required"`
}

// ReportExportResponse carries the location of the generated report.
type ReportExportResponse struct {
	DownloadURL string `json:"download_url"`
}
