package rules

import "fmt"

// ConfigError reports a missing or structurally malformed bundle section.
// It is fatal: the engine never guesses defaults for structural omissions.
type ConfigError struct {
	Section string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("rule bundle section %q: %s", e.Section, e.Reason)
}

// Validate checks that a bundle contains the four required sections and that
// their entries are well formed. Value-level gaps (missing weights, caps,
// thresholds) are not errors; they take the documented defaults at scoring
// time.
func (b *Bundle) Validate() error {
	if len(b.Features.Features) == 0 {
		return &ConfigError{Section: "features", Reason: "no features declared"}
	}
	seen := make(map[string]bool, len(b.Features.Features))
	for i, f := range b.Features.Features {
		if f.Name == "" {
			return &ConfigError{Section: "features", Reason: fmt.Sprintf("feature %d has no name", i)}
		}
		if seen[f.Name] {
			return &ConfigError{Section: "features", Reason: fmt.Sprintf("duplicate feature %q", f.Name)}
		}
		seen[f.Name] = true
	}

	if b.Scoring.Aggregation == nil {
		return &ConfigError{Section: "aggregation", Reason: "missing"}
	}
	if b.Scoring.Classification == nil {
		return &ConfigError{Section: "classification", Reason: "missing"}
	}
	if b.Scoring.RedFlags == nil {
		return &ConfigError{Section: "red_flags", Reason: "missing (declare an empty list if there are none)"}
	}
	for i, r := range b.Scoring.RedFlags {
		if r.Condition == "" {
			return &ConfigError{Section: "red_flags", Reason: fmt.Sprintf("rule %d has no condition", i)}
		}
		if r.Action == "" {
			return &ConfigError{Section: "red_flags", Reason: fmt.Sprintf("rule %d has no action", i)}
		}
	}

	if b.Mapping.Map == nil {
		return &ConfigError{Section: "mapping.map", Reason: "missing"}
	}
	for key, rule := range b.Mapping.Map {
		if rule.Feature == "" {
			return &ConfigError{Section: "mapping.map", Reason: fmt.Sprintf("entry %q names no feature", key)}
		}
	}

	return nil
}
