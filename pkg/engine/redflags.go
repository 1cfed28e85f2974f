package engine

import (
	"log"

	"github.com/vitalscope/vitalscope/pkg/rules"
)

// IdentifyRedFlags merges red flags from two independent sources into one
// ordered list: feature-declared flags first (features in declared order),
// then rule-declared flags (rules in declared order). No deduplication is
// performed; the same underlying issue can legitimately surface from both.
func IdentifyRedFlags(answers MappedAnswers, features rules.FeatureSet, scoring rules.ScoringConfig) []RedFlag {
	var flags []RedFlag

	for _, f := range features.Features {
		if len(f.RedFlagIfIn) == 0 {
			continue
		}
		value, ok := answers[f.Name]
		if !ok || value.IsZero() {
			continue
		}
		if intersects(value.Items(), f.RedFlagIfIn) {
			v := value
			flags = append(flags, RedFlag{
				Feature: f.Name,
				Value:   &v,
				Source:  SourceFeatureDefinition,
			})
		}
	}

	for _, rule := range scoring.RedFlags {
		ident, literals, err := parseCondition(rule.Condition)
		if err != nil {
			// A malformed rule is skipped, never fatal to the scan.
			log.Printf("red flag condition %q not evaluable: %v", rule.Condition, err)
			continue
		}
		if answerIn(answers, ident, literals) {
			flags = append(flags, RedFlag{
				Condition: rule.Condition,
				Action:    rule.Action,
				Source:    SourceScoringRules,
			})
		}
	}

	return flags
}

func intersects(items, set []string) bool {
	for _, item := range items {
		for _, s := range set {
			if item == s {
				return true
			}
		}
	}
	return false
}
