// Package narrative compiles the written sections of an analysis report
// from its summary statistics.
package narrative

import (
	"context"
	"fmt"
	"strings"

	"bioreport/pkg/contracts/domain"
)

// Summarizer produces the titled narrative sections for a report. The
// deterministic template implementation below is the default; a language
// model backed one can slot in behind the same interface.
type Summarizer interface {
	Narrative(ctx context.Context, stats domain.SummaryStats) (map[string]domain.NarrativeSection, error)
}

// TemplateSummarizer renders fixed scientific prose with the summary
// numbers interpolated. Deterministic: the same stats always produce the
// same text.
type TemplateSummarizer struct{}

// NewTemplateSummarizer returns the deterministic summarizer.
func NewTemplateSummarizer() *TemplateSummarizer {
	return &TemplateSummarizer{}
}

// Narrative implements Summarizer. Percentages are recomputed from the
// raw counts so the prose never disagrees with itself, whatever rounding
// the stats carry.
func (s *TemplateSummarizer) Narrative(_ context.Context, stats domain.SummaryStats) (map[string]domain.NarrativeSection, error) {
	degPct, upPct, downPct := 0.0, 0.0, 0.0
	if stats.TotalGenes > 0 {
		degPct = float64(stats.NumDEG) / float64(stats.TotalGenes) * 100
	}
	if stats.NumDEG > 0 {
		upPct = float64(stats.Up) / float64(stats.NumDEG) * 100
		downPct = float64(stats.Down) / float64(stats.NumDEG) * 100
	}

	results := fmt.Sprintf(`Differential expression analysis identified %d significantly differentially expressed genes (DEGs) out of %s total genes analyzed (%.2f%% of the transcriptome).

Among the DEGs, %d genes (%.1f%%) were up-regulated, while %d genes (%.1f%%) were down-regulated. This indicates a substantial transcriptional response to the experimental conditions.

The analysis employed standard statistical thresholds for significance, and the distribution of up- and down-regulated genes suggests a balanced regulatory response.`,
		stats.NumDEG, groupThousands(stats.TotalGenes), degPct,
		stats.Up, upPct, stats.Down, downPct)

	discussion := fmt.Sprintf(`The identification of %d differentially expressed genes represents a significant transcriptional response. The relatively balanced distribution between up-regulated (%d) and down-regulated (%d) genes suggests coordinated regulatory mechanisms.

The magnitude of the response (%.2f%% of genes) indicates substantial biological changes under the experimental conditions. Further investigation into the functional categories and pathways enriched among these DEGs would provide additional insights into the underlying biological processes.

Future studies should focus on validating key DEGs through independent methods and exploring the functional consequences of these transcriptional changes. Integration with pathway analysis and network-based approaches could reveal regulatory relationships and potential therapeutic targets.`,
		stats.NumDEG, stats.Up, stats.Down, degPct)

	return map[string]domain.NarrativeSection{
		domain.NarrativeResults:    {Title: "Results", Content: results},
		domain.NarrativeDiscussion: {Title: "Discussion", Content: discussion},
	}, nil
}

// groupThousands formats an integer with comma separators.
func groupThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}
