// Package rules defines the typed model for macroarea rule bundles: the
// feature, scoring, action, and form-mapping definitions authored as YAML.
// A bundle is parsed and validated once at load time and is immutable after.
package rules

// Feature types understood by the scoring engine. An unknown type is not a
// load error: such features simply score zero.
const (
	TypeCategorical      = "categorical"
	TypeCategoricalMulti = "categorical_multi"
	TypeText             = "text"
)

// Value-level defaults applied when a bundle leaves a knob unset.
// An explicit zero in the YAML also takes the default; existing rule
// bundles rely on that.
const (
	DefaultWeight             = 1.0
	DefaultCapTotal           = 100.0
	DefaultLowMax             = 40.0
	DefaultHighMin            = 70.0
	DefaultMinContributionPct = 5.0
	DefaultTopKDrivers        = 5
)

// File names that make up a bundle, relative to the macroarea directory.
const (
	FileFeatures = "features.yaml"
	FileScoring  = "scoring.yaml"
	FileActions  = "actions.yaml"
	FileMapping  = "mapping_form.yaml"
)

// Bundle is a fully loaded macroarea configuration.
type Bundle struct {
	Features FeatureSet
	Scoring  ScoringConfig
	Actions  ActionCatalog
	Mapping  Mapping
}

// FeatureSet is the parsed features.yaml.
type FeatureSet struct {
	Features []FeatureDefinition `yaml:"features" json:"features"`
}

// FeatureDefinition declares one independently scored answer dimension.
type FeatureDefinition struct {
	Name         string             `yaml:"name" json:"name"`
	Type         string             `yaml:"type" json:"type"`
	MapToScore   map[string]float64 `yaml:"map_to_score" json:"map_to_score,omitempty"`
	PerItemScore map[string]float64 `yaml:"per_item_score" json:"per_item_score,omitempty"`
	// CapScore bounds a categorical_multi sum. A negative cap is a floor,
	// a non-negative cap is a ceiling. Nil means no cap.
	CapScore    *float64 `yaml:"cap_score" json:"cap_score,omitempty"`
	RedFlagIfIn []string `yaml:"red_flag_if_in" json:"red_flag_if_in,omitempty"`
}

// Mapping is the parsed mapping_form.yaml: form field key -> translation rule.
type Mapping struct {
	Map map[string]MappingRule `yaml:"map" json:"map"`
}

// MappingRule translates one raw form field into a canonical feature value.
// A Feature name ending in "[]" marks the feature as multi-valued.
type MappingRule struct {
	Feature     string            `yaml:"feature" json:"feature"`
	Values      map[string]string `yaml:"values" json:"values,omitempty"`
	Passthrough bool              `yaml:"passthrough" json:"passthrough,omitempty"`
}

// ScoringConfig is the parsed scoring.yaml.
// Aggregation and Classification are pointers so validation can tell a
// missing section from an empty one; RedFlags likewise distinguishes an
// absent key (nil) from a declared empty list.
type ScoringConfig struct {
	Aggregation    *Aggregation    `yaml:"aggregation" json:"aggregation"`
	Classification *Classification `yaml:"classification" json:"classification"`
	RedFlags       []RedFlagRule   `yaml:"red_flags" json:"red_flags"`
	Explanations   Explanations    `yaml:"explanations" json:"explanations"`
}

// Aggregation controls the weighted sum and its cap.
type Aggregation struct {
	Weights  map[string]float64 `yaml:"weights" json:"weights,omitempty"`
	CapTotal float64            `yaml:"cap_total" json:"cap_total,omitempty"`
}

// Classification holds the low/high risk thresholds. Normalized risk at or
// below Low.Max classifies low; at or above High.Min classifies high;
// anything else is medium, in that evaluation order.
type Classification struct {
	Low  Threshold `yaml:"low" json:"low"`
	High Threshold `yaml:"high" json:"high"`
}

// Threshold carries one boundary value; Low uses Max, High uses Min.
type Threshold struct {
	Max float64 `yaml:"max" json:"max,omitempty"`
	Min float64 `yaml:"min" json:"min,omitempty"`
}

// RedFlagRule is a rule-declared red flag: a condition in the membership
// grammar plus the escalation action to surface when it holds.
type RedFlagRule struct {
	Condition string `yaml:"condition" json:"condition"`
	Action    string `yaml:"action" json:"action"`
}

// Explanations configures driver ranking and narrative text.
type Explanations struct {
	DriverTemplates    map[string]string `yaml:"driver_templates" json:"driver_templates,omitempty"`
	MinContributionPct float64           `yaml:"min_contribution_pct" json:"min_contribution_pct,omitempty"`
	TopKDrivers        int               `yaml:"top_k_drivers" json:"top_k_drivers,omitempty"`
	OverallNarratives  map[string]string `yaml:"overall_narratives" json:"overall_narratives,omitempty"`
}

// ActionCatalog is the parsed actions.yaml: feature -> recommended actions.
type ActionCatalog struct {
	Actions map[string]ActionSet `yaml:"actions" json:"actions"`
}

// ActionSet groups recommended actions by category (lifestyle, followup, ...).
type ActionSet map[string][]string

// Weight returns the aggregation weight for a feature, defaulting to 1.
func (s *ScoringConfig) Weight(feature string) float64 {
	if s.Aggregation == nil {
		return DefaultWeight
	}
	if w := s.Aggregation.Weights[feature]; w != 0 {
		return w
	}
	return DefaultWeight
}

// CapTotal returns the total-score cap, defaulting to 100.
func (s *ScoringConfig) CapTotal() float64 {
	if s.Aggregation == nil || s.Aggregation.CapTotal == 0 {
		return DefaultCapTotal
	}
	return s.Aggregation.CapTotal
}

// LowMax returns the upper bound of the low risk class, defaulting to 40.
func (s *ScoringConfig) LowMax() float64 {
	if s.Classification == nil || s.Classification.Low.Max == 0 {
		return DefaultLowMax
	}
	return s.Classification.Low.Max
}

// HighMin returns the lower bound of the high risk class, defaulting to 70.
func (s *ScoringConfig) HighMin() float64 {
	if s.Classification == nil || s.Classification.High.Min == 0 {
		return DefaultHighMin
	}
	return s.Classification.High.Min
}

// MinContributionPct returns the driver significance threshold, default 5.
func (s *ScoringConfig) MinContributionPct() float64 {
	if s.Explanations.MinContributionPct == 0 {
		return DefaultMinContributionPct
	}
	return s.Explanations.MinContributionPct
}

// TopKDrivers returns the maximum number of surfaced drivers, default 5.
// Zero and negative values are treated as unset.
func (s *ScoringConfig) TopKDrivers() int {
	if s.Explanations.TopKDrivers <= 0 {
		return DefaultTopKDrivers
	}
	return s.Explanations.TopKDrivers
}

// DriverTemplate returns the explanation template for a feature, or "".
func (s *ScoringConfig) DriverTemplate(feature string) string {
	return s.Explanations.DriverTemplates[feature]
}

// Narrative returns the overall narrative for a risk class, or "".
func (s *ScoringConfig) Narrative(riskClass string) string {
	return s.Explanations.OverallNarratives[riskClass]
}
