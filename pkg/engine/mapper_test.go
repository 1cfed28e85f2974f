package engine_test

import (
	"reflect"
	"testing"

	"github.com/vitalscope/vitalscope/pkg/engine"
	"github.com/vitalscope/vitalscope/pkg/rules"
)

func TestMapAnswersSingleValued(t *testing.T) {
	mapping := rules.Mapping{Map: map[string]rules.MappingRule{
		"fh_ipertensione": {
			Feature: "fh_ipertensione",
			Values:  map[string]string{"si_dopo_40": "dopo_40", "si_prima_40": "prima_40"},
		},
	}}

	tests := []struct {
		name string
		raw  engine.RawAnswers
		want []string // nil means feature unset
	}{
		{"translated", engine.RawAnswers{"fh_ipertensione": "si_dopo_40"}, []string{"dopo_40"}},
		{"untranslated falls back to raw", engine.RawAnswers{"fh_ipertensione": "boh"}, []string{"boh"}},
		{"absent stays unset", engine.RawAnswers{}, nil},
		{"empty string stays unset", engine.RawAnswers{"fh_ipertensione": ""}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mapped := engine.MapAnswersToFeatures(tc.raw, mapping)
			v, ok := mapped["fh_ipertensione"]
			if tc.want == nil {
				if ok {
					t.Fatalf("feature should be unset, got %v", v)
				}
				return
			}
			if !ok {
				t.Fatal("feature should be set")
			}
			if !reflect.DeepEqual(v.Items(), tc.want) {
				t.Errorf("items = %v, want %v", v.Items(), tc.want)
			}
			if v.IsMulti() {
				t.Error("single-valued rule produced a multi value")
			}
		})
	}
}

func TestMapAnswersSingleValuedNoValuesTable(t *testing.T) {
	mapping := rules.Mapping{Map: map[string]rules.MappingRule{
		"eta_menarca": {Feature: "eta_menarca"},
	}}

	mapped := engine.MapAnswersToFeatures(engine.RawAnswers{"eta_menarca": "12"}, mapping)
	v, ok := mapped["eta_menarca"]
	if !ok {
		t.Fatal("feature should be set")
	}
	if got := v.Items()[0]; got != "12" {
		t.Errorf("value = %q, want raw value unchanged", got)
	}
}

func TestMapAnswersArrayValued(t *testing.T) {
	mapping := rules.Mapping{Map: map[string]rules.MappingRule{
		"fh_tumori[]": {
			Feature: "fh_tumori[]",
			Values:  map[string]string{"seno": "mammella"},
		},
	}}

	t.Run("translates each item with fallback", func(t *testing.T) {
		raw := engine.RawAnswers{"fh_tumori": []any{"seno", "colon"}}
		mapped := engine.MapAnswersToFeatures(raw, mapping)
		v, ok := mapped["fh_tumori"]
		if !ok {
			t.Fatal("feature should be set (without [] suffix)")
		}
		if !v.IsMulti() {
			t.Error("array rule should produce a multi value")
		}
		want := []string{"mammella", "colon"}
		if !reflect.DeepEqual(v.Items(), want) {
			t.Errorf("items = %v, want %v", v.Items(), want)
		}
	})

	t.Run("scalar coerced to one-element array", func(t *testing.T) {
		raw := engine.RawAnswers{"fh_tumori": "seno"}
		mapped := engine.MapAnswersToFeatures(raw, mapping)
		if got := mapped["fh_tumori"].Items(); !reflect.DeepEqual(got, []string{"mammella"}) {
			t.Errorf("items = %v, want [mammella]", got)
		}
	})

	t.Run("absent skips the feature entirely", func(t *testing.T) {
		mapped := engine.MapAnswersToFeatures(engine.RawAnswers{}, mapping)
		if _, ok := mapped["fh_tumori"]; ok {
			t.Error("unanswered multi feature must stay unset, not empty")
		}
	})
}

func TestMapAnswersPassthrough(t *testing.T) {
	mapping := rules.Mapping{Map: map[string]rules.MappingRule{
		"note_libere[]": {Feature: "note_libere", Passthrough: true},
	}}

	raw := engine.RawAnswers{"note_libere": "ho avuto un intervento nel 2019"}
	mapped := engine.MapAnswersToFeatures(raw, mapping)
	v, ok := mapped["note_libere"]
	if !ok {
		t.Fatal("passthrough feature should be set")
	}
	if got := v.Items()[0]; got != "ho avuto un intervento nel 2019" {
		t.Errorf("passthrough value = %q, want verbatim copy", got)
	}
}

func TestMapAnswersIgnoresUnmappedFields(t *testing.T) {
	mapping := rules.Mapping{Map: map[string]rules.MappingRule{
		"known": {Feature: "known"},
	}}
	raw := engine.RawAnswers{"known": "a", "unknown_field": "b"}

	mapped := engine.MapAnswersToFeatures(raw, mapping)
	if len(mapped) != 1 {
		t.Errorf("mapped %d features, want 1 (unmapped answers are ignored)", len(mapped))
	}
}
