package genetics

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// Reference cohort trait scores are modeled as a normal distribution
// centered on the neutral score. A measured population distribution per
// trait would replace this.
var cohortDist = distuv.Normal{Mu: 0.5, Sigma: 0.15}

// PeerPercentile maps an aggregate 0-1 score onto a cohort percentile.
// Aggregates are compared directly, so the mapping is the identity on
// the clamped score.
func PeerPercentile(score float64) float64 {
	return clamp01(score)
}

// TraitPercentile maps a single-trait score onto the modeled cohort
// distribution for that trait.
func TraitPercentile(score float64, trait string) float64 {
	_ = trait // one shared cohort model until per-trait distributions exist
	return clamp01(cohortDist.CDF(clamp01(score)))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
