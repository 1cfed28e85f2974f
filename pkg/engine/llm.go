package engine

import "github.com/vitalscope/vitalscope/pkg/rules"

// defaultRedFlagAction is surfaced when a feature-declared flag carries no
// action of its own.
const defaultRedFlagAction = "Valutazione specialistica consigliata"

// LLMInput is the score result reshaped for the external text-generation
// collaborator. The field names are a wire contract with the report
// generator and must not change.
type LLMInput struct {
	Score          float64                    `json:"score"`
	RiskClass      string                     `json:"riskClass"`
	Narrative      string                     `json:"narrative"`
	TopDrivers     []LLMDriver                `json:"topDrivers"`
	RedFlags       []LLMRedFlag               `json:"redFlags"`
	Actions        map[string]rules.ActionSet `json:"actions"`
	AnswersContext RawAnswers                 `json:"answersContext"`
}

// LLMDriver is a driver flattened for prompt assembly.
type LLMDriver struct {
	Feature      string  `json:"feature"`
	Contribution float64 `json:"contribution"`
	Explanation  string  `json:"explanation"`
}

// LLMRedFlag is a red flag flattened for prompt assembly.
type LLMRedFlag struct {
	Condition string `json:"condition"`
	Action    string `json:"action"`
}

// PrepareForLLM reshapes a score result for the report generator. The raw
// answers ride along untouched to give the generator context.
func PrepareForLLM(result *ScoreResult, raw RawAnswers) *LLMInput {
	drivers := make([]LLMDriver, 0, len(result.Drivers))
	for _, d := range result.Drivers {
		drivers = append(drivers, LLMDriver{
			Feature:      d.Feature,
			Contribution: round1(d.Contribution),
			Explanation:  d.Explanation,
		})
	}

	redFlags := make([]LLMRedFlag, 0, len(result.RedFlags))
	for _, rf := range result.RedFlags {
		condition := rf.Condition
		if condition == "" {
			condition = rf.Feature
		}
		action := rf.Action
		if action == "" {
			action = defaultRedFlagAction
		}
		redFlags = append(redFlags, LLMRedFlag{Condition: condition, Action: action})
	}

	return &LLMInput{
		Score:          result.HealthScore,
		RiskClass:      result.RiskClass,
		Narrative:      result.Narrative,
		TopDrivers:     drivers,
		RedFlags:       redFlags,
		Actions:        result.Actions,
		AnswersContext: raw,
	}
}
