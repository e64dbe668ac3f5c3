package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	apperrors "bioreport/internal/errors"
	"bioreport/pkg/contracts/domain"
)

// topGeneCount is how many up- and down-regulated genes are surfaced for
// display alongside the aggregate summary.
const topGeneCount = 10

// ClassifyOptions carries the significance thresholds. The zero value is
// not usable; call DefaultClassifyOptions.
type ClassifyOptions struct {
	// PValueThreshold applies to whichever p-column is selected, unless
	// PAdjThreshold is set and the padj column is the one in use.
	PValueThreshold float64
	Log2FCThreshold float64
	// PAdjThreshold optionally overrides PValueThreshold for padj-based
	// testing. Zero means "use PValueThreshold".
	PAdjThreshold float64
}

// DefaultClassifyOptions returns the standard thresholds: p < 0.05 and
// |log2fc| > 1.
func DefaultClassifyOptions() ClassifyOptions {
	return ClassifyOptions{PValueThreshold: 0.05, Log2FCThreshold: 1.0}
}

// Classify labels every row of a normalized table as up-regulated,
// down-regulated, or not significant, and aggregates the result into an
// AnalysisSummary. A row is significant iff its selected p-value is below
// the threshold and |log2fc| exceeds the fold-change threshold; the sign of
// log2fc then decides the direction. The padj column takes precedence over
// pvalue when both are present.
//
// Returns a schema error when log2fc is absent or when neither p-column is
// present; no partial summary is produced in that case.
func Classify(t *domain.Table, opts ClassifyOptions) (*domain.Classification, *domain.AnalysisSummary, error) {
	if !t.HasColumn(ColumnLog2FC) {
		return nil, nil, apperrors.NewSchemaError("required column 'log2fc' not found in data")
	}

	pColumn := ColumnPAdj
	pThreshold := opts.PAdjThreshold
	if pThreshold == 0 {
		pThreshold = opts.PValueThreshold
	}
	if !t.HasColumn(ColumnPAdj) {
		pColumn = ColumnPValue
		pThreshold = opts.PValueThreshold
		if !t.HasColumn(ColumnPValue) {
			return nil, nil, apperrors.NewSchemaError("required column 'pvalue' not found in data")
		}
	}

	log2fc := t.FloatColumn(ColumnLog2FC)
	pvals := t.FloatColumn(pColumn)

	labels := make([]domain.Regulation, t.NumRows())
	var upRows, downRows []int
	var degFC []float64

	for i := range labels {
		labels[i] = domain.RegulationNotSignificant

		// NaN comparisons are false, so unparseable cells are simply
		// never significant.
		significant := pvals[i] < pThreshold && math.Abs(log2fc[i]) > opts.Log2FCThreshold
		if !significant {
			continue
		}
		switch {
		case log2fc[i] > 0:
			labels[i] = domain.RegulationUp
			upRows = append(upRows, i)
		case log2fc[i] < 0:
			labels[i] = domain.RegulationDown
			downRows = append(downRows, i)
		}
		if labels[i] != domain.RegulationNotSignificant {
			degFC = append(degFC, log2fc[i])
		}
	}

	total := t.NumRows()
	numDEG := len(upRows) + len(downRows)

	summary := &domain.AnalysisSummary{
		TotalGenes: total,
		NumDEG:     numDEG,
		Up:         len(upRows),
		Down:       len(downRows),
	}

	if total > 0 {
		summary.DEGPercentage = float64(numDEG) / float64(total) * 100
	}
	if numDEG > 0 {
		summary.UpPercentage = float64(len(upRows)) / float64(numDEG) * 100
		summary.DownPercentage = float64(len(downRows)) / float64(numDEG) * 100
		summary.AvgLog2FC = mean(degFC)
		summary.MedianLog2FC = median(degFC)
	}

	summary.TopUp = topGenes(t, upRows, log2fc, pvals, true)
	summary.TopDown = topGenes(t, downRows, log2fc, pvals, false)

	slog.Debug("classified differential expression",
		slog.String("p_column", pColumn),
		slog.Int("total_genes", total),
		slog.Int("num_deg", numDEG),
		slog.Int("up", len(upRows)),
		slog.Int("down", len(downRows)),
	)

	return &domain.Classification{PColumn: pColumn, Labels: labels}, summary, nil
}

// topGenes picks up to topGeneCount rows with the largest (descending=true)
// or smallest log2fc. Ties keep original row order, so the sort must be
// stable.
func topGenes(t *domain.Table, rows []int, log2fc, pvals []float64, descending bool) []domain.GeneStat {
	sorted := make([]int, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(a, b int) bool {
		if descending {
			return log2fc[sorted[a]] > log2fc[sorted[b]]
		}
		return log2fc[sorted[a]] < log2fc[sorted[b]]
	})

	if len(sorted) > topGeneCount {
		sorted = sorted[:topGeneCount]
	}

	stats := make([]domain.GeneStat, 0, len(sorted))
	for _, row := range sorted {
		id := t.Cell(row, ColumnGeneID)
		if id == "" {
			id = fmt.Sprintf("Gene_%d", row)
		}
		stats = append(stats, domain.GeneStat{
			GeneID: id,
			Log2FC: log2fc[row],
			PValue: pvals[row],
			Row:    row,
		})
	}
	return stats
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
