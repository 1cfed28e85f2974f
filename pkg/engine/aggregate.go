package engine

import (
	"math"

	"github.com/vitalscope/vitalscope/pkg/rules"
)

// AggregateScores computes the weighted total over all declared features,
// clamps it into [0, cap_total], normalizes to a 0-100 risk score,
// classifies it, and derives the user-facing 0-10 health score.
//
// Classification order is authoritative: low is checked first (<= low.max),
// then high (>= high.min), else medium. Thresholds may overlap or leave a
// gap; the order resolves both cases.
func AggregateScores(features rules.FeatureSet, scores FeatureScoreMap, scoring rules.ScoringConfig) Aggregates {
	var total float64
	for _, f := range features.Features {
		total += scores[f.Name] * scoring.Weight(f.Name)
	}

	capTotal := scoring.CapTotal()
	clamped := math.Max(0, math.Min(capTotal, total))
	normalized := clamped / capTotal * 100

	riskClass := RiskMedium
	if normalized <= scoring.LowMax() {
		riskClass = RiskLow
	} else if normalized >= scoring.HighMin() {
		riskClass = RiskHigh
	}

	return Aggregates{
		TotalScore:     total,
		ClampedScore:   clamped,
		NormalizedRisk: normalized,
		HealthScore:    round1(10 - normalized/10),
		RiskClass:      riskClass,
	}
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
