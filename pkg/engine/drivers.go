package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/vitalscope/vitalscope/pkg/rules"
)

// IdentifyDrivers ranks the features contributing to the score. Every
// feature with a nonzero score is a candidate; candidates are sorted by
// descending absolute contribution, filtered against the significance
// threshold, and truncated to the configured top-k.
//
// The significance filter compares each candidate against the total absolute
// contribution of ALL candidates, computed before filtering. When that total
// is zero there are no candidates, so nothing passes.
func IdentifyDrivers(features rules.FeatureSet, scores FeatureScoreMap, scoring rules.ScoringConfig) []Driver {
	var candidates []Driver
	for _, f := range features.Features {
		score := scores[f.Name]
		if score == 0 {
			continue
		}
		weight := scoring.Weight(f.Name)
		candidates = append(candidates, Driver{
			Feature:      f.Name,
			Score:        score,
			Weight:       weight,
			Contribution: score * weight,
			Explanation:  driverExplanation(scoring, f.Name),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return math.Abs(candidates[i].Contribution) > math.Abs(candidates[j].Contribution)
	})

	var totalContribution float64
	for _, d := range candidates {
		totalContribution += math.Abs(d.Contribution)
	}

	drivers := make([]Driver, 0, len(candidates))
	for _, d := range candidates {
		if totalContribution == 0 {
			break
		}
		if math.Abs(d.Contribution)/totalContribution*100 >= scoring.MinContributionPct() {
			drivers = append(drivers, d)
		}
	}

	if k := scoring.TopKDrivers(); len(drivers) > k {
		drivers = drivers[:k]
	}
	return drivers
}

func driverExplanation(scoring rules.ScoringConfig, feature string) string {
	if t := scoring.DriverTemplate(feature); t != "" {
		return t
	}
	return fmt.Sprintf("Contributo da %s", feature)
}
