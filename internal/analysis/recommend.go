package analysis

import (
	"slices"

	"github.com/joseph-ayodele/wildsync/constants"
	"github.com/joseph-ayodele/wildsync/internal/entity"
)

var (
	expectedOutcomes = []string{"Improved canopy cover", "Stabilized soil", "Balanced wildlife activity"}
	outcomeMetrics   = []string{"tree_survival_rate", "soil_health_index", "wildlife_activity_index"}
)

type bundle struct {
	timeline  string
	steps     []string
	resources entity.Resources
}

var bundles = map[constants.Severity]bundle{
	constants.SeverityCritical: {
		timeline: "Critical: Action within 3 months",
		steps: []string{
			"Immediate erosion control with geo-textiles",
			"Deploy patrols to protect habitats",
			"Replant 500+ native trees",
		},
		resources: entity.Resources{Budget: 50000, Manpower: 20, Materials: []string{"saplings", "tools", "geotextile"}},
	},
	constants.SeverityHigh: {
		timeline: "High: Action within 3-6 months",
		steps: []string{
			"Targeted reforestation (200-300 trees)",
			"Soil enrichment program",
			"Habitat monitoring",
		},
		resources: entity.Resources{Budget: 20000, Manpower: 10, Materials: []string{"saplings", "fertilizer"}},
	},
	constants.SeverityModerate: {
		timeline: "Moderate: Action within 6 months",
		steps: []string{
			"Selective planting (100-200 trees)",
			"Soil assessment and maintenance",
		},
		resources: entity.Resources{Budget: 10000, Manpower: 6, Materials: []string{"saplings"}},
	},
	constants.SeverityLow: {
		timeline:  "Low: Routine monitoring",
		steps:     []string{"Maintain current conservation efforts"},
		resources: entity.Resources{Budget: 2000, Manpower: 2, Materials: []string{}},
	},
}

// RecommendationsFor returns the action bundle of the score's tier.
// The returned slices are copies and may be modified.
func RecommendationsFor(score float64) entity.Recommendations {
	sev := SeverityFor(score)
	b := bundles[sev]
	res := b.resources
	res.Materials = slices.Clone(res.Materials)
	return entity.Recommendations{
		Severity:         sev,
		Timeline:         b.timeline,
		Steps:            slices.Clone(b.steps),
		Resources:        res,
		ExpectedOutcomes: slices.Clone(expectedOutcomes),
		Metrics:          slices.Clone(outcomeMetrics),
	}
}
