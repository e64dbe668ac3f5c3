package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"bioreport/internal/config"
	"bioreport/internal/dataprocessing"
	"bioreport/internal/expression"
	"bioreport/internal/infrastructure"
	"bioreport/internal/ml"
	"bioreport/internal/narrative"
	"bioreport/internal/plots"
	"bioreport/pkg/contracts/domain"
)

// ResearchUpload is the raw material of one analysis request: the file
// contents as received plus the passthrough metadata.
type ResearchUpload struct {
	DEGContent  []byte
	DEGFilename string

	// Enrichment input is optional; nil content means none was uploaded.
	EnrichmentContent  []byte
	EnrichmentFilename string

	Meta domain.ResearchAnalyzeMeta
}

// ResearchService runs the full analysis pipeline: parse, classify,
// model, render, narrate. Optional pieces degrade to warnings; only the
// core table analysis and the volcano plot are load-bearing.
type ResearchService struct {
	cfg        config.AnalysisConfig
	logger     *slog.Logger
	metrics    *infrastructure.Metrics
	engine     *ml.Engine
	renderer   *plots.Renderer
	summarizer narrative.Summarizer
}

// NewResearchService wires the pipeline. metrics may be nil in tests.
func NewResearchService(cfg config.AnalysisConfig, logger *slog.Logger, metrics *infrastructure.Metrics) *ResearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResearchService{
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics,
		engine:     ml.NewEngine(cfg, logger, metrics),
		renderer:   plots.NewRenderer(cfg, logger, metrics),
		summarizer: narrative.NewTemplateSummarizer(),
	}
}

// Analyze executes the pipeline over one upload.
func (s *ResearchService) Analyze(ctx context.Context, upload *ResearchUpload) (*domain.ResearchAnalyzeResponse, error) {
	started := time.Now()
	resp, err := s.analyze(ctx, upload)

	if s.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		s.metrics.AnalysesTotal.WithLabelValues(outcome).Inc()
		s.metrics.AnalysisDuration.Observe(time.Since(started).Seconds())
	}
	return resp, err
}

func (s *ResearchService) analyze(ctx context.Context, upload *ResearchUpload) (*domain.ResearchAnalyzeResponse, error) {
	logger := s.requestLogger(ctx)

	table, summary, err := s.parseAndClassify(ctx, upload)
	if err != nil {
		return nil, err
	}

	enrichment := s.parseEnrichment(ctx, upload, logger)

	allPlots, err := s.renderPlots(ctx, table, enrichment, logger)
	if err != nil {
		return nil, err
	}

	stats := boundaryStats(summary, upload)

	sections, err := s.summarizer.Narrative(ctx, stats)
	if err != nil {
		return nil, fmt.Errorf("generating narrative: %w", err)
	}

	logger.Info("analysis complete",
		slog.Int("total_genes", summary.TotalGenes),
		slog.Int("num_deg", summary.NumDEG),
		slog.Int("plots", len(allPlots)))

	return &domain.ResearchAnalyzeResponse{
		ProjectName:  upload.Meta.ProjectName,
		Plots:        allPlots,
		Narrative:    sections,
		SummaryStats: stats,
	}, nil
}

// parseAndClassify runs the mandatory table stages. Any failure here is
// the caller's problem, surfaced as a client-fault error.
func (s *ResearchService) parseAndClassify(ctx context.Context, upload *ResearchUpload) (*domain.Table, *domain.AnalysisSummary, error) {
	ctx, span := infrastructure.StartStageSpan(ctx, "parse_classify")
	defer span.End()
	defer s.observeStage("parse_classify", time.Now())

	table, err := dataprocessing.ParseTable(upload.DEGContent, upload.DEGFilename)
	if err != nil {
		infrastructure.RecordSpanError(ctx, err)
		return nil, nil, err
	}
	table = dataprocessing.NormalizeColumns(table)

	_, summary, err := dataprocessing.Classify(table, dataprocessing.ClassifyOptions{
		PValueThreshold: s.cfg.PValueThreshold,
		Log2FCThreshold: s.cfg.Log2FCThreshold,
		PAdjThreshold:   s.cfg.PValueThreshold,
	})
	if err != nil {
		infrastructure.RecordSpanError(ctx, err)
		return nil, nil, err
	}
	return table, summary, nil
}

// parseEnrichment parses the optional enrichment table. Failures are
// logged and the analysis continues without a pathway figure.
func (s *ResearchService) parseEnrichment(ctx context.Context, upload *ResearchUpload, logger *slog.Logger) *domain.Table {
	if len(upload.EnrichmentContent) == 0 {
		return nil
	}
	_, span := infrastructure.StartStageSpan(ctx, "parse_enrichment")
	defer span.End()

	table, err := dataprocessing.ParseTable(upload.EnrichmentContent, upload.EnrichmentFilename)
	if err != nil {
		logger.Warn("enrichment file unusable, continuing without it",
			slog.String("filename", upload.EnrichmentFilename),
			slog.String("error", err.Error()))
		return nil
	}
	return dataprocessing.NormalizeColumns(table)
}

// renderPlots produces the figure list in its fixed order: volcano, PCA,
// heatmap, pathway when enrichment exists, then one figure per model
// procedure. Everything after the volcano is optional.
func (s *ResearchService) renderPlots(ctx context.Context, table, enrichment *domain.Table, logger *slog.Logger) ([]domain.Plot, error) {
	ctx, span := infrastructure.StartStageSpan(ctx, "render_plots")
	defer span.End()
	defer s.observeStage("render_plots", time.Now())

	volcano, err := s.renderer.Volcano(table)
	if err != nil {
		infrastructure.RecordSpanError(ctx, err)
		return nil, fmt.Errorf("generating volcano plot: %w", err)
	}
	out := []domain.Plot{*volcano}

	if p, err := s.renderer.PCA(table); err != nil {
		logger.Warn("pca plot skipped", slog.String("error", err.Error()))
	} else {
		out = append(out, *p)
	}

	if p, err := s.renderer.Heatmap(table); err != nil {
		logger.Warn("heatmap skipped", slog.String("error", err.Error()))
	} else {
		out = append(out, *p)
	}

	if enrichment != nil {
		if p, err := s.renderer.Pathway(enrichment); err != nil {
			logger.Warn("pathway plot skipped", slog.String("error", err.Error()))
		} else {
			out = append(out, *p)
		}
	}

	return append(out, s.renderModelFigures(ctx, table, logger)...), nil
}

// renderModelFigures runs the model engine and renders a figure per
// surviving procedure. A table that cannot produce an expression matrix
// skips the whole block.
func (s *ResearchService) renderModelFigures(ctx context.Context, table *domain.Table, logger *slog.Logger) []domain.Plot {
	ctx, span := infrastructure.StartStageSpan(ctx, "model_procedures")
	defer span.End()
	defer s.observeStage("model_procedures", time.Now())

	matrix, err := expression.Extract(table, rand.New(rand.NewSource(42)))
	if err != nil {
		logger.Warn("model procedures skipped, no expression matrix",
			slog.String("error", err.Error()))
		return nil
	}

	results := s.engine.RunAll(ctx, matrix)

	var out []domain.Plot
	for _, kind := range ml.ProcedureOrder {
		res, ok := results[kind]
		if !ok {
			continue
		}
		p, err := s.renderer.Model(res)
		if err != nil {
			logger.Warn("model figure skipped",
				slog.String("procedure", string(kind)),
				slog.String("error", err.Error()))
			continue
		}
		out = append(out, *p)
	}
	return out
}

// boundaryStats converts the full-precision summary into its wire form:
// percentages to 2 decimal places, fold-change statistics to 3.
func boundaryStats(summary *domain.AnalysisSummary, upload *ResearchUpload) domain.SummaryStats {
	stats := domain.SummaryStats{
		NumDEG:         summary.NumDEG,
		Up:             summary.Up,
		Down:           summary.Down,
		TotalGenes:     summary.TotalGenes,
		DEGPercentage:  roundTo(summary.DEGPercentage, 2),
		UpPercentage:   roundTo(summary.UpPercentage, 2),
		DownPercentage: roundTo(summary.DownPercentage, 2),
		AvgLog2FC:      roundTo(summary.AvgLog2FC, 3),
		MedianLog2FC:   roundTo(summary.MedianLog2FC, 3),
		DEGFile:        upload.DEGFilename,
	}
	if len(upload.EnrichmentContent) > 0 {
		stats.EnrichmentFile = upload.EnrichmentFilename
	}
	return stats
}

func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}

func (s *ResearchService) observeStage(stage string, started time.Time) {
	if s.metrics != nil {
		s.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(started).Seconds())
	}
}

func (s *ResearchService) requestLogger(ctx context.Context) *slog.Logger {
	if traceID := infrastructure.GetTraceID(ctx); traceID != "" {
		return s.logger.With(slog.String("trace_id", traceID))
	}
	return s.logger
}
