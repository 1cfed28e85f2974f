package engine

import (
	"fmt"

	"github.com/vitalscope/vitalscope/pkg/rules"
)

// ComputeScore runs the full scoring pipeline for one set of raw answers
// against a validated bundle: map answers, score features, aggregate,
// classify, rank drivers, detect red flags, and collect the recommended
// actions for every scoring feature.
//
// The bundle is read-only and the result is freshly allocated, so concurrent
// invocations are safe. Identical inputs produce bit-identical results.
func ComputeScore(raw RawAnswers, bundle *rules.Bundle) (*ScoreResult, error) {
	if bundle == nil {
		return nil, fmt.Errorf("bundle is nil")
	}

	answers := MapAnswersToFeatures(raw, bundle.Mapping)
	scores := CalculateFeatureScores(bundle.Features, answers)
	agg := AggregateScores(bundle.Features, scores, bundle.Scoring)

	actions := make(map[string]rules.ActionSet)
	for _, f := range bundle.Features.Features {
		if scores[f.Name] == 0 {
			continue
		}
		if set, ok := bundle.Actions.Actions[f.Name]; ok {
			actions[f.Name] = set
		}
	}

	return &ScoreResult{
		HealthScore:   agg.HealthScore,
		RiskClass:     agg.RiskClass,
		Drivers:       IdentifyDrivers(bundle.Features, scores, bundle.Scoring),
		RedFlags:      IdentifyRedFlags(answers, bundle.Features, bundle.Scoring),
		FeatureScores: scores,
		Actions:       actions,
		Narrative:     bundle.Scoring.Narrative(agg.RiskClass),
	}, nil
}
