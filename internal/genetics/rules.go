package genetics

// genotypeEffect is the interpretation of one genotype under a rule.
type genotypeEffect struct {
	Interpretation  string
	Score           float64
	Recommendations []string
}

// snpRule describes one curated variant: the trait domain it affects and
// per-genotype effects.
type snpRule struct {
	Domain      string
	Gene        string
	Description string
	Genotypes   map[string]genotypeEffect
}

// snpRules is the curated variant database, keyed by lower-case rsid.
// A production deployment would load this from an annotation service.
var snpRules = map[string]snpRule{
	"rs762551": {
		Domain:      "Caffeine Metabolism",
		Gene:        "CYP1A2",
		Description: "CYP1A2 enzyme activity affects caffeine metabolism speed",
		Genotypes: map[string]genotypeEffect{
			"AA": {
				Interpretation: "Fast caffeine metabolizer",
				Score:          0.8,
				Recommendations: []string{
					"You metabolize caffeine quickly",
					"May tolerate higher caffeine intake",
					"Caffeine effects may be shorter-lived",
				},
			},
			"AC": {
				Interpretation: "Intermediate caffeine metabolizer",
				Score:          0.5,
				Recommendations: []string{
					"Moderate caffeine metabolism",
					"Standard caffeine recommendations apply",
					"Monitor your response to caffeine",
				},
			},
			"CC": {
				Interpretation: "Slow caffeine metabolizer",
				Score:          0.2,
				Recommendations: []string{
					"You metabolize caffeine slowly",
					"Consider limiting caffeine intake, especially in afternoon",
					"May experience longer-lasting effects from caffeine",
					"Higher risk of sleep disruption from caffeine",
				},
			},
		},
	},
	"rs4988235": {
		Domain:      "Lactose Tolerance",
		Gene:        "LCT",
		Description: "Lactase persistence affects ability to digest lactose",
		Genotypes: map[string]genotypeEffect{
			"CC": {
				Interpretation: "Lactose tolerant",
				Score:          0.9,
				Recommendations: []string{
					"You can digest lactose well",
					"No need to avoid dairy products",
					"Lactose intolerance is unlikely",
				},
			},
			"CT": {
				Interpretation: "Partial lactose tolerance",
				Score:          0.6,
				Recommendations: []string{
					"Moderate lactose tolerance",
					"May tolerate small amounts of dairy",
					"Monitor symptoms after dairy consumption",
				},
			},
			"TT": {
				Interpretation: "Lactose intolerant",
				Score:          0.1,
				Recommendations: []string{
					"Likely lactose intolerant",
					"Consider limiting dairy intake",
					"Try lactose-free alternatives",
					"Monitor for digestive symptoms",
				},
			},
		},
	},
	"rs7412": {
		Domain:      "Cardiovascular Health",
		Gene:        "APOE",
		Description: "APOE e2 variant associated with cardiovascular health",
		Genotypes: map[string]genotypeEffect{
			"CC": {
				Interpretation: "APOE e2/e2 - Lower cardiovascular risk",
				Score:          0.85,
				Recommendations: []string{
					"Favorable APOE profile for cardiovascular health",
					"Continue heart-healthy lifestyle",
					"Regular cardiovascular monitoring recommended",
				},
			},
			"CT": {
				Interpretation: "APOE e2/e3 - Moderate cardiovascular risk",
				Score:          0.6,
				Recommendations: []string{
					"Standard cardiovascular risk profile",
					"Maintain heart-healthy diet and exercise",
					"Regular health checkups recommended",
				},
			},
			"TT": {
				Interpretation: "APOE e3/e3 - Standard cardiovascular risk",
				Score:          0.5,
				Recommendations: []string{
					"Standard cardiovascular risk profile",
					"Follow general heart health guidelines",
					"Regular monitoring recommended",
				},
			},
		},
	},
	"rs1800566": {
		Domain:      "Drug Metabolism",
		Gene:        "CYP2D6",
		Description: "CYP2D6 enzyme affects metabolism of many medications",
		Genotypes: map[string]genotypeEffect{
			"GG": {
				Interpretation: "Normal CYP2D6 metabolizer",
				Score:          0.7,
				Recommendations: []string{
					"Normal drug metabolism",
					"Standard medication dosages typically appropriate",
					"Discuss with healthcare provider for medication adjustments",
				},
			},
			"GA": {
				Interpretation: "Intermediate CYP2D6 metabolizer",
				Score:          0.5,
				Recommendations: []string{
					"Moderate drug metabolism",
					"May require adjusted dosages for some medications",
					"Consult healthcare provider about pharmacogenetics",
				},
			},
			"AA": {
				Interpretation: "Poor CYP2D6 metabolizer",
				Score:          0.3,
				Recommendations: []string{
					"Reduced drug metabolism",
					"May require lower dosages for some medications",
					"Important to discuss with healthcare provider",
					"Consider pharmacogenetic testing for medications",
				},
			},
		},
	},
	"rs1042713": {
		Domain:      "Exercise Response",
		Gene:        "ADRB2",
		Description: "Beta-2 adrenergic receptor affects exercise performance",
		Genotypes: map[string]genotypeEffect{
			"GG": {
				Interpretation: "Enhanced exercise response",
				Score:          0.75,
				Recommendations: []string{
					"Favorable genetics for endurance exercise",
					"May respond well to aerobic training",
					"Consider endurance-focused training programs",
				},
			},
			"AG": {
				Interpretation: "Moderate exercise response",
				Score:          0.5,
				Recommendations: []string{
					"Standard exercise response",
					"Balanced training approach recommended",
					"Both strength and cardio training beneficial",
				},
			},
			"AA": {
				Interpretation: "Standard exercise response",
				Score:          0.45,
				Recommendations: []string{
					"Standard exercise genetics",
					"Consistent training is key",
					"Focus on progressive overload",
				},
			},
		},
	},
}
