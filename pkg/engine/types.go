// Package engine implements the questionnaire scoring engine. It maps raw
// form answers onto declared features, scores each feature, detects red
// flags, aggregates a weighted risk score, and ranks the contributing
// drivers. Every function is a pure function of its inputs: the engine does
// no I/O, holds no state, and allocates fresh output per invocation, so
// concurrent calls are safe without locking.
package engine

import (
	"encoding/json"

	"github.com/vitalscope/vitalscope/pkg/rules"
)

// RawAnswers is the untyped form payload: field name -> string or string
// list, exactly as submitted.
type RawAnswers map[string]any

// MappedAnswers holds canonical per-feature values after form mapping.
type MappedAnswers map[string]Value

// FeatureScoreMap holds the numeric score of every declared feature.
// Features never answered score 0.
type FeatureScoreMap map[string]float64

// Risk classes in increasing order of concern.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Red flag sources, in the order they appear in a result.
const (
	SourceFeatureDefinition = "feature_definition"
	SourceScoringRules      = "scoring_rules"
)

// Value is a canonical mapped answer: either a single string or a list of
// strings. The zero Value means "not answered".
type Value struct {
	items []string
	multi bool
}

// String wraps a scalar answer.
func String(s string) Value {
	return Value{items: []string{s}}
}

// Strings wraps a multi-valued answer.
func Strings(items []string) Value {
	return Value{items: items, multi: true}
}

// Items returns the answer coerced to a list. A scalar becomes a
// one-element list.
func (v Value) Items() []string {
	return v.items
}

// IsMulti reports whether the answer was multi-valued.
func (v Value) IsMulti() bool {
	return v.multi
}

// IsZero reports whether the answer is absent or an empty string.
func (v Value) IsZero() bool {
	if len(v.items) == 0 {
		return true
	}
	return !v.multi && v.items[0] == ""
}

// MarshalJSON renders a scalar as a string and a multi value as an array.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.multi {
		return json.Marshal(v.items)
	}
	if len(v.items) == 0 {
		return json.Marshal("")
	}
	return json.Marshal(v.items[0])
}

// Driver is a feature whose weighted contribution is significant enough to
// surface as a key factor.
type Driver struct {
	Feature      string  `json:"feature"`
	Score        float64 `json:"score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
	Explanation  string  `json:"explanation"`
}

// RedFlag is an answer pattern flagged for clinical escalation. Feature and
// Value are set for feature-declared flags; Condition and Action for
// rule-declared ones.
type RedFlag struct {
	Feature   string `json:"feature,omitempty"`
	Value     *Value `json:"value,omitempty"`
	Condition string `json:"condition,omitempty"`
	Action    string `json:"action,omitempty"`
	Source    string `json:"source"`
}

// ScoreResult is the complete output of scoring one set of answers.
// Immutable once computed.
type ScoreResult struct {
	HealthScore   float64                    `json:"health_score"`
	RiskClass     string                     `json:"risk_class"`
	Drivers       []Driver                   `json:"drivers"`
	RedFlags      []RedFlag                  `json:"red_flags"`
	FeatureScores FeatureScoreMap            `json:"feature_scores"`
	Actions       map[string]rules.ActionSet `json:"actions"`
	Narrative     string                     `json:"narrative"`
}

// Aggregates holds the intermediate quantities of the weighted aggregation,
// exposed for rendering and testing.
type Aggregates struct {
	TotalScore     float64 `json:"total_score"`
	ClampedScore   float64 `json:"clamped_score"`
	NormalizedRisk float64 `json:"normalized_risk"`
	HealthScore    float64 `json:"health_score"`
	RiskClass      string  `json:"risk_class"`
}
