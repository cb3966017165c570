package analysis

import (
	"math"

	"github.com/joseph-ayodele/wildsync/constants"
)

const (
	treeSaturation  = 1000
	treeWeight      = 0.4
	soilWeight      = 0.4
	activityWeight  = 0.2
	neutralActivity = 0.5
)

// Severity thresholds, inclusive lower bounds.
const (
	CriticalThreshold = 0.75
	HighThreshold     = 0.60
	ModerateThreshold = 0.40
)

// RiskScore combines tree scarcity, soil poverty and activity imbalance into
// a score in [0,1]. Nil inputs count as zero.
func RiskScore(treeCount *int64, soilHealth, activity *float64) float64 {
	var tc int64
	if treeCount != nil {
		tc = *treeCount
	}
	var soil, act float64
	if soilHealth != nil {
		soil = *soilHealth
	}
	if activity != nil {
		act = *activity
	}

	trees := float64(min(tc, treeSaturation))
	score := (treeSaturation-trees)/treeSaturation*treeWeight +
		(1-clamp01(soil))*soilWeight +
		math.Abs(act-neutralActivity)*activityWeight
	return clamp01(score)
}

// SeverityFor maps a score onto its tier.
func SeverityFor(score float64) constants.Severity {
	switch {
	case score >= CriticalThreshold:
		return constants.SeverityCritical
	case score >= HighThreshold:
		return constants.SeverityHigh
	case score >= ModerateThreshold:
		return constants.SeverityModerate
	default:
		return constants.SeverityLow
	}
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
