package engine

import (
	"math"

	"github.com/vitalscope/vitalscope/pkg/rules"
)

// negationValues are the "none of the above" answers for multi-valued
// features. Their presence cancels the whole selection, even when other
// selected items would score. The list is a fixed constant of the rule
// language, not bundle configuration.
var negationValues = map[string]bool{
	"nessuna":        true,
	"nessuno":        true,
	"nessuna_misura": true,
	"no":             true,
}

// CalculateFeatureScore computes the numeric score of one feature from its
// definition and its mapped value. A missing or empty value scores 0, as
// does an unknown feature type; scoring is lenient everywhere the bundle is
// silent.
func CalculateFeatureScore(f rules.FeatureDefinition, value Value) float64 {
	if value.IsZero() {
		return 0
	}

	switch f.Type {
	case rules.TypeCategoricalMulti:
		// A scalar answer is treated as a one-element selection.
		items := value.Items()
		for _, item := range items {
			if negationValues[item] {
				return 0
			}
		}
		var total float64
		for _, item := range items {
			total += f.PerItemScore[item] // unknown items contribute 0
		}
		if f.CapScore != nil {
			if *f.CapScore < 0 {
				return math.Max(*f.CapScore, total) // negative cap is a floor
			}
			return math.Min(*f.CapScore, total)
		}
		return total

	case rules.TypeCategorical:
		if value.IsMulti() {
			return 0
		}
		return f.MapToScore[value.Items()[0]] // unmapped values score 0

	case rules.TypeText:
		return 0 // stored for context, never scored
	}

	return 0
}

// CalculateFeatureScores applies CalculateFeatureScore to every declared
// feature, in declared order, producing the complete score map.
func CalculateFeatureScores(features rules.FeatureSet, answers MappedAnswers) FeatureScoreMap {
	scores := make(FeatureScoreMap, len(features.Features))
	for _, f := range features.Features {
		scores[f.Name] = CalculateFeatureScore(f, answers[f.Name])
	}
	return scores
}
