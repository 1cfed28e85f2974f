package rules_test

import (
	"strings"
	"testing"

	"github.com/vitalscope/vitalscope/pkg/rules"
)

func validBundle() *rules.Bundle {
	return &rules.Bundle{
		Features: rules.FeatureSet{Features: []rules.FeatureDefinition{
			{Name: "fh_diabete", Type: rules.TypeCategorical},
		}},
		Scoring: rules.ScoringConfig{
			Aggregation:    &rules.Aggregation{},
			Classification: &rules.Classification{},
			RedFlags:       []rules.RedFlagRule{},
		},
		Mapping: rules.Mapping{Map: map[string]rules.MappingRule{
			"fh_diabete": {Feature: "fh_diabete"},
		}},
	}
}

func TestValidateAcceptsMinimalBundle(t *testing.T) {
	if err := validBundle().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*rules.Bundle)
		wantSection string
		wantReason  string
	}{
		{
			name:        "no features",
			mutate:      func(b *rules.Bundle) { b.Features.Features = nil },
			wantSection: "features",
			wantReason:  "no features declared",
		},
		{
			name: "unnamed feature",
			mutate: func(b *rules.Bundle) {
				b.Features.Features = append(b.Features.Features, rules.FeatureDefinition{Type: rules.TypeText})
			},
			wantSection: "features",
			wantReason:  "has no name",
		},
		{
			name: "duplicate feature",
			mutate: func(b *rules.Bundle) {
				b.Features.Features = append(b.Features.Features, b.Features.Features[0])
			},
			wantSection: "features",
			wantReason:  "duplicate",
		},
		{
			name:        "missing aggregation",
			mutate:      func(b *rules.Bundle) { b.Scoring.Aggregation = nil },
			wantSection: "aggregation",
			wantReason:  "missing",
		},
		{
			name:        "missing classification",
			mutate:      func(b *rules.Bundle) { b.Scoring.Classification = nil },
			wantSection: "classification",
			wantReason:  "missing",
		},
		{
			name:        "absent red_flags key",
			mutate:      func(b *rules.Bundle) { b.Scoring.RedFlags = nil },
			wantSection: "red_flags",
			wantReason:  "missing",
		},
		{
			name: "red flag without condition",
			mutate: func(b *rules.Bundle) {
				b.Scoring.RedFlags = []rules.RedFlagRule{{Action: "escalate"}}
			},
			wantSection: "red_flags",
			wantReason:  "no condition",
		},
		{
			name: "red flag without action",
			mutate: func(b *rules.Bundle) {
				b.Scoring.RedFlags = []rules.RedFlagRule{{Condition: "f in ['x']"}}
			},
			wantSection: "red_flags",
			wantReason:  "no action",
		},
		{
			name:        "missing mapping",
			mutate:      func(b *rules.Bundle) { b.Mapping.Map = nil },
			wantSection: "mapping.map",
			wantReason:  "missing",
		},
		{
			name: "mapping entry without feature",
			mutate: func(b *rules.Bundle) {
				b.Mapping.Map["orphan"] = rules.MappingRule{}
			},
			wantSection: "mapping.map",
			wantReason:  "names no feature",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBundle()
			tt.mutate(b)

			err := b.Validate()
			cfgErr, ok := err.(*rules.ConfigError)
			if !ok {
				t.Fatalf("got %v, want ConfigError", err)
			}
			if cfgErr.Section != tt.wantSection {
				t.Errorf("section = %q, want %q", cfgErr.Section, tt.wantSection)
			}
			if !strings.Contains(cfgErr.Reason, tt.wantReason) {
				t.Errorf("reason = %q, want substring %q", cfgErr.Reason, tt.wantReason)
			}
		})
	}
}

func TestScoringDefaults(t *testing.T) {
	var s rules.ScoringConfig

	if got := s.Weight("anything"); got != rules.DefaultWeight {
		t.Errorf("Weight = %v, want %v", got, rules.DefaultWeight)
	}
	if got := s.CapTotal(); got != rules.DefaultCapTotal {
		t.Errorf("CapTotal = %v, want %v", got, rules.DefaultCapTotal)
	}
	if got := s.LowMax(); got != rules.DefaultLowMax {
		t.Errorf("LowMax = %v, want %v", got, rules.DefaultLowMax)
	}
	if got := s.HighMin(); got != rules.DefaultHighMin {
		t.Errorf("HighMin = %v, want %v", got, rules.DefaultHighMin)
	}
	if got := s.MinContributionPct(); got != rules.DefaultMinContributionPct {
		t.Errorf("MinContributionPct = %v, want %v", got, rules.DefaultMinContributionPct)
	}
	if got := s.TopKDrivers(); got != rules.DefaultTopKDrivers {
		t.Errorf("TopKDrivers = %v, want %v", got, rules.DefaultTopKDrivers)
	}

	// An explicit zero behaves like unset.
	s.Aggregation = &rules.Aggregation{Weights: map[string]float64{"f": 0}, CapTotal: 0}
	if got := s.Weight("f"); got != rules.DefaultWeight {
		t.Errorf("explicit zero weight = %v, want default %v", got, rules.DefaultWeight)
	}
	if got := s.CapTotal(); got != rules.DefaultCapTotal {
		t.Errorf("explicit zero cap_total = %v, want default %v", got, rules.DefaultCapTotal)
	}

	// A negative top_k_drivers is a rule-author typo, not a crash.
	s.Explanations.TopKDrivers = -1
	if got := s.TopKDrivers(); got != rules.DefaultTopKDrivers {
		t.Errorf("negative top_k_drivers = %v, want default %v", got, rules.DefaultTopKDrivers)
	}
}
