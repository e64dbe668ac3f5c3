// Package genetics interprets genotyped variants against a curated rule
// database and summarizes them into peer comparisons and a bio card.
package genetics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"bioreport/pkg/contracts/domain"
)

// InterpretSNP produces an insight card for one variant. Unknown rsids
// get a generic card with a neutral score and no percentile; known rsids
// with an unlisted genotype fall back to the rule's reference genotype
// with a note.
func InterpretSNP(snp domain.SNPInput) domain.PersonalInsightCard {
	rsid := strings.ToLower(strings.TrimSpace(snp.RSID))
	genotype := strings.ToUpper(strings.TrimSpace(snp.Genotype))

	rule, ok := snpRules[rsid]
	if !ok {
		return domain.PersonalInsightCard{
			Domain: "Genetic Variant",
			Summary: fmt.Sprintf("SNP %s with genotype %s detected. This variant may have functional significance, "+
				"but specific interpretation requires additional research.", strings.ToUpper(rsid), genotype),
			Score: 0.5,
			Recommendations: []string{
				"Consult with a genetic counselor or healthcare provider",
				"Review scientific literature for this variant",
				"Consider additional genetic testing if clinically relevant",
			},
		}
	}

	effect, known := rule.Genotypes[genotype]
	var note string
	if !known {
		effect = rule.Genotypes[referenceGenotype(rule)]
		note = fmt.Sprintf("Note: Genotype %s interpretation may vary. Showing reference interpretation", genotype)
	}

	parts := []string{
		fmt.Sprintf("%s: %s", rule.Domain, effect.Interpretation),
		fmt.Sprintf("Gene: %s", rule.Gene),
		rule.Description,
	}
	if note != "" {
		parts = append(parts, note)
	}

	trait := strings.ReplaceAll(strings.ToLower(rule.Domain), " ", "_")
	percentile := TraitPercentile(effect.Score, trait)

	return domain.PersonalInsightCard{
		Domain:          rule.Domain,
		Summary:         strings.Join(parts, ". ") + ".",
		Score:           effect.Score,
		Percentile:      &percentile,
		Recommendations: effect.Recommendations,
	}
}

// referenceGenotype picks a deterministic fallback genotype for a rule.
func referenceGenotype(rule snpRule) string {
	keys := make([]string, 0, len(rule.Genotypes))
	for g := range rule.Genotypes {
		keys = append(keys, g)
	}
	sort.Strings(keys)
	return keys[0]
}

// PeerComparisons aggregates the cards into cohort comparisons: one
// overall score plus one entry per trait domain.
func PeerComparisons(cards []domain.PersonalInsightCard) []domain.PeerComparison {
	if len(cards) == 0 {
		return nil
	}

	total := 0.0
	for _, c := range cards {
		total += c.Score
	}
	avg := total / float64(len(cards))

	comparisons := []domain.PeerComparison{{
		Metric:     "Overall Genetic Score",
		Value:      round2(avg),
		Percentile: round2(PeerPercentile(avg)),
		Label:      "Average across all analyzed traits",
	}}

	domainScores := map[string][]float64{}
	var domainOrder []string
	for _, c := range cards {
		if _, seen := domainScores[c.Domain]; !seen {
			domainOrder = append(domainOrder, c.Domain)
		}
		domainScores[c.Domain] = append(domainScores[c.Domain], c.Score)
	}

	for _, d := range domainOrder {
		scores := domainScores[d]
		sum := 0.0
		for _, s := range scores {
			sum += s
		}
		domainAvg := sum / float64(len(scores))
		comparisons = append(comparisons, domain.PeerComparison{
			Metric:     d,
			Value:      round2(domainAvg),
			Percentile: round2(PeerPercentile(domainAvg)),
			Label:      fmt.Sprintf("Average score in %s", d),
		})
	}
	return comparisons
}

// BioCard builds the shareable profile summary from the cards and any
// self-reported lifestyle factors.
func BioCard(cards []domain.PersonalInsightCard, lifestyle *domain.LifestyleInput) domain.GeneticBioCard {
	if len(cards) == 0 {
		return domain.GeneticBioCard{
			Title:      "Genetic Profile",
			Subtitle:   "No genetic variants analyzed",
			Badges:     []string{},
			Highlights: []string{"Upload SNP data to generate your genetic profile"},
		}
	}

	total := 0.0
	domainCounts := map[string]int{}
	var domainOrder []string
	for _, c := range cards {
		total += c.Score
		if domainCounts[c.Domain] == 0 {
			domainOrder = append(domainOrder, c.Domain)
		}
		domainCounts[c.Domain]++
	}
	avg := total / float64(len(cards))

	subtitle := fmt.Sprintf("Analysis of %d genetic %s across %d %s",
		len(cards), plural(len(cards), "variant"),
		len(domainOrder), plural(len(domainOrder), "domain"))

	// Badges are the most represented domains, ties in first-seen order.
	sort.SliceStable(domainOrder, func(a, b int) bool {
		return domainCounts[domainOrder[a]] > domainCounts[domainOrder[b]]
	})
	badges := domainOrder
	if len(badges) > 5 {
		badges = badges[:5]
	}

	var highlights []string

	// Strongest deviations from the neutral score first.
	top := make([]domain.PersonalInsightCard, len(cards))
	copy(top, cards)
	sort.SliceStable(top, func(a, b int) bool {
		return math.Abs(top[a].Score-0.5) > math.Abs(top[b].Score-0.5)
	})
	if len(top) > 3 {
		top = top[:3]
	}
	for _, c := range top {
		switch {
		case c.Score > 0.7:
			highlights = append(highlights, fmt.Sprintf("Strong positive signal in %s", c.Domain))
		case c.Score < 0.3:
			highlights = append(highlights, fmt.Sprintf("Notable variant in %s", c.Domain))
		}
	}

	if lifestyle != nil {
		if lifestyle.ExerciseFrequency != "" {
			highlights = append(highlights, fmt.Sprintf("Exercise frequency: %s", lifestyle.ExerciseFrequency))
		}
		if lifestyle.CaffeineIntake != "" {
			highlights = append(highlights, fmt.Sprintf("Caffeine intake: %s", lifestyle.CaffeineIntake))
		}
	}

	var overall string
	switch {
	case avg > 0.6:
		overall = "Overall favorable genetic profile"
	case avg < 0.4:
		overall = "Some genetic variants may require attention"
	default:
		overall = "Balanced genetic profile"
	}
	highlights = append([]string{overall}, highlights...)

	return domain.GeneticBioCard{
		Title:      "Personal Genetic Profile",
		Subtitle:   subtitle,
		Badges:     badges,
		Highlights: highlights,
	}
}

// Analyze runs the full personal pipeline over a validated request.
func Analyze(req domain.PersonalAnalyzeRequest) domain.PersonalAnalyzeResponse {
	cards := make([]domain.PersonalInsightCard, 0, len(req.SNPs))
	for _, snp := range req.SNPs {
		cards = append(cards, InterpretSNP(snp))
	}

	return domain.PersonalAnalyzeResponse{
		Cards:          cards,
		PeerComparison: PeerComparisons(cards),
		GeneticCard:    BioCard(cards, req.Lifestyle),
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
