package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vitalscope/vitalscope/pkg/rules"
)

// MapAnswersToFeatures translates raw form answers into canonical per-feature
// values using the bundle's mapping rules. Raw answers without a mapping rule
// are silently ignored; the engine only scores what the bundle declares.
// A rule whose form field was not answered leaves the feature unset, never
// zero-valued.
func MapAnswersToFeatures(raw RawAnswers, mapping rules.Mapping) MappedAnswers {
	mapped := make(MappedAnswers, len(mapping.Map))

	// Sorted form keys keep the walk deterministic even if two rules ever
	// target the same feature.
	formKeys := make([]string, 0, len(mapping.Map))
	for k := range mapping.Map {
		formKeys = append(formKeys, k)
	}
	sort.Strings(formKeys)

	for _, formKey := range formKeys {
		rule := mapping.Map[formKey]
		featureName := strings.TrimSuffix(rule.Feature, "[]")
		isMulti := strings.HasSuffix(rule.Feature, "[]")
		strippedKey := strings.TrimSuffix(formKey, "[]")

		// Free-text fields: copy the raw value verbatim, never scored.
		if rule.Passthrough {
			if v, ok := coerceValue(raw[strippedKey]); ok {
				mapped[featureName] = v
			}
			continue
		}

		if isMulti {
			items, ok := coerceStrings(raw[strippedKey])
			if !ok {
				continue
			}
			translated := make([]string, len(items))
			for i, item := range items {
				translated[i] = translate(rule.Values, item)
			}
			mapped[featureName] = Strings(translated)
			continue
		}

		items, ok := coerceStrings(raw[formKey])
		if !ok {
			continue
		}
		s := items[0]
		if rule.Values != nil {
			s = translate(rule.Values, s)
		}
		mapped[featureName] = String(s)
	}

	return mapped
}

// translate looks an item up in a values table, falling back to the raw item
// when no (non-empty) translation exists.
func translate(values map[string]string, item string) string {
	if t := values[item]; t != "" {
		return t
	}
	return item
}

// coerceStrings turns an untyped form value into a non-empty string list.
// Absent values and empty strings report ok=false: the answer is unset.
func coerceStrings(v any) ([]string, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case string:
		if t == "" {
			return nil, false
		}
		return []string{t}, true
	case []string:
		if len(t) == 0 {
			return nil, false
		}
		return t, true
	case []any:
		if len(t) == 0 {
			return nil, false
		}
		items := make([]string, len(t))
		for i, item := range t {
			if s, ok := item.(string); ok {
				items[i] = s
			} else {
				items[i] = fmt.Sprint(item)
			}
		}
		return items, true
	default:
		return []string{fmt.Sprint(t)}, true
	}
}

// coerceValue preserves the scalar/list shape of a raw value.
func coerceValue(v any) (Value, bool) {
	switch v.(type) {
	case []string, []any:
		items, ok := coerceStrings(v)
		if !ok {
			return Value{}, false
		}
		return Strings(items), true
	default:
		items, ok := coerceStrings(v)
		if !ok {
			return Value{}, false
		}
		return String(items[0]), true
	}
}
