package domain

// SNPInput is a single genotyped variant submitted for interpretation.
type SNPInput struct {
	RSID     string `json:"rsid" validate:"required"`
	Genotype string `json:"genotype" validate:"required,min=1,max=4"`
}

// LifestyleInput carries self-reported lifestyle factors that are echoed
// into the genetic bio card when present.
type LifestyleInput struct {
	CaffeineIntake     string  `json:"caffeine_intake,omitempty"`
	ExerciseFrequency  string  `json:"exercise_frequency,omitempty"`
	SleepDurationHours float64 `json:"sleep_duration_hours,omitempty"`
	DietPattern        string  `json:"diet_pattern,omitempty"`
}

// PersonalInsightCard is one domain-specific interpretation of a variant.
type PersonalInsightCard struct {
	Domain  string `json:"domain"`
	Summary string `json:"summary"`
	// Score is the internal 0-1 trait score; Percentile maps it onto the
	// reference cohort distribution (nil when no rule matched).
	Score           float64  `json:"score"`
	Percentile      *float64 `json:"percentile,omitempty"`
	Recommendations []string `json:"recommendations"`
}

// PeerComparison compares one metric against the reference cohort.
type PeerComparison struct {
	Metric     string  `json:"metric"`
	Value      float64 `json:"value"`
	Percentile float64 `json:"percentile"`
	Label      string  `json:"label"`
}

// GeneticBioCard is the shareable headline summary of a personal analysis.
type GeneticBioCard struct {
	Title      string   `json:"title"`
	Subtitle   string   `json:"subtitle"`
	Badges     []string `json:"badges"`
	Highlights []string `json:"highlights"`
}

// PersonalAnalyzeRequest is the personal-genomics analysis input.
type PersonalAnalyzeRequest struct {
	SNPs      []SNPInput      `json:"snps" validate:"required,min=1,dive"`
	Lifestyle *LifestyleInput `json:"lifestyle,omitempty"`
}

// PersonalAnalyzeResponse is the personal-genomics analysis output.
type PersonalAnalyzeResponse struct {
	Cards          []PersonalInsightCard `json:"cards"`
	PeerComparison []PeerComparison      `json:"peer_comparison"`
	GeneticCard    GeneticBioCard        `json:"genetic_card"`
}
