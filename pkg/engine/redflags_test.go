package engine_test

import (
	"testing"

	"github.com/vitalscope/vitalscope/pkg/engine"
	"github.com/vitalscope/vitalscope/pkg/rules"
)

func TestIdentifyRedFlagsFeatureDeclared(t *testing.T) {
	features := rules.FeatureSet{Features: []rules.FeatureDefinition{
		{Name: "fh_tumori", Type: rules.TypeCategoricalMulti, RedFlagIfIn: []string{"mammella_precoce"}},
	}}
	scoring := rules.ScoringConfig{RedFlags: []rules.RedFlagRule{}}

	t.Run("intersecting value emits a flag", func(t *testing.T) {
		answers := engine.MappedAnswers{
			"fh_tumori": engine.Strings([]string{"colon", "mammella_precoce"}),
		}
		flags := engine.IdentifyRedFlags(answers, features, scoring)
		if len(flags) != 1 {
			t.Fatalf("got %d flags, want 1", len(flags))
		}
		if flags[0].Feature != "fh_tumori" || flags[0].Source != engine.SourceFeatureDefinition {
			t.Errorf("flag = %+v, want feature_definition flag for fh_tumori", flags[0])
		}
	})

	t.Run("non-intersecting value is silent", func(t *testing.T) {
		answers := engine.MappedAnswers{"fh_tumori": engine.Strings([]string{"colon"})}
		if flags := engine.IdentifyRedFlags(answers, features, scoring); len(flags) != 0 {
			t.Errorf("got %d flags, want 0", len(flags))
		}
	})

	t.Run("unanswered feature is silent", func(t *testing.T) {
		if flags := engine.IdentifyRedFlags(engine.MappedAnswers{}, features, scoring); len(flags) != 0 {
			t.Errorf("got %d flags, want 0", len(flags))
		}
	})
}

func TestIdentifyRedFlagsOrdering(t *testing.T) {
	features := rules.FeatureSet{Features: []rules.FeatureDefinition{
		{Name: "fh_tumori", Type: rules.TypeCategoricalMulti, RedFlagIfIn: []string{"mammella_precoce"}},
	}}
	scoring := rules.ScoringConfig{RedFlags: []rules.RedFlagRule{
		{Condition: `fh_tumori in ['mammella_precoce']`, Action: "Consulenza genetica"},
	}}
	answers := engine.MappedAnswers{"fh_tumori": engine.Strings([]string{"mammella_precoce"})}

	flags := engine.IdentifyRedFlags(answers, features, scoring)
	if len(flags) != 2 {
		t.Fatalf("got %d flags, want 2 (no dedup across sources)", len(flags))
	}
	if flags[0].Source != engine.SourceFeatureDefinition {
		t.Errorf("flags[0].Source = %q, want feature_definition first", flags[0].Source)
	}
	if flags[1].Source != engine.SourceScoringRules {
		t.Errorf("flags[1].Source = %q, want scoring_rules second", flags[1].Source)
	}
	if flags[1].Action != "Consulenza genetica" {
		t.Errorf("flags[1].Action = %q", flags[1].Action)
	}
}

func TestIdentifyRedFlagsMalformedRuleSkipped(t *testing.T) {
	features := rules.FeatureSet{}
	scoring := rules.ScoringConfig{RedFlags: []rules.RedFlagRule{
		{Condition: "completely broken ][", Action: "ignored"},
		{Condition: `fh_diabete in ['tipo1']`, Action: "Controllo glicemia"},
	}}
	answers := engine.MappedAnswers{"fh_diabete": engine.String("tipo1")}

	// The malformed rule is skipped; the scan continues with the next rule.
	flags := engine.IdentifyRedFlags(answers, features, scoring)
	if len(flags) != 1 {
		t.Fatalf("got %d flags, want 1", len(flags))
	}
	if flags[0].Action != "Controllo glicemia" {
		t.Errorf("flag = %+v, want the well-formed rule's flag", flags[0])
	}
}
