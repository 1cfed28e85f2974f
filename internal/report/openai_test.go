package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vitalscope/vitalscope/pkg/engine"
	"github.com/vitalscope/vitalscope/pkg/rules"
)

func sampleInput() *engine.LLMInput {
	return &engine.LLMInput{
		Score:     4.5,
		RiskClass: engine.RiskMedium,
		Narrative: "Profilo di rischio moderato.",
		TopDrivers: []engine.LLMDriver{
			{Feature: "fh_diabete", Contribution: 40, Explanation: "Familiarità per diabete"},
		},
		RedFlags: []engine.LLMRedFlag{
			{Condition: "fh_diabete in ['tipo1']", Action: "Controllo glicemia urgente"},
		},
		Actions: map[string]rules.ActionSet{
			"fh_diabete": {
				"followup":  {"Glicemia a digiuno annuale"},
				"lifestyle": {"Attività fisica regolare"},
			},
		},
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("salute_cardiovascolare", sampleInput())

	checks := []string{
		"macroarea: **salute cardiovascolare**",
		"**Classe di rischio**: medium (moderato)",
		"**Narrativa generale**: Profilo di rischio moderato.",
		"1. **fh_diabete** (contributo: 40)",
		"RED FLAGS",
		"1. Controllo glicemia urgente",
		"### 🏃 Stile di vita",
		"- Attività fisica regolare",
		"### 🩺 Follow-up medico",
		"- Glicemia a digiuno annuale",
		"Segnali da monitorare",
		"Genera il report in **formato Markdown**.",
	}
	for _, want := range checks {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPromptNoRedFlags(t *testing.T) {
	input := sampleInput()
	input.RedFlags = nil

	prompt := BuildPrompt("familiarita", input)
	if strings.Contains(prompt, "RED FLAGS") {
		t.Error("prompt should omit the red flags section")
	}
	if strings.Contains(prompt, "Segnali da monitorare") {
		t.Error("prompt should omit the red flags instruction")
	}
}

func TestBuildPromptRedFlagFallsBackToCondition(t *testing.T) {
	input := sampleInput()
	input.RedFlags = []engine.LLMRedFlag{{Condition: "fh_tumori in ['mammella_precoce']"}}

	prompt := BuildPrompt("familiarita", input)
	if !strings.Contains(prompt, "1. fh_tumori in ['mammella_precoce']") {
		t.Error("expected condition fallback when action is empty")
	}
}

func TestFormatActionsEmpty(t *testing.T) {
	got := formatActions(nil)
	if !strings.Contains(got, "Mantieni uno stile di vita sano") {
		t.Errorf("empty actions should take the default text, got %q", got)
	}
}

func TestGenerate(t *testing.T) {
	var captured struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "# Il tuo report\n\nTutto bene."}},
			},
		})
	}))
	defer srv.Close()

	g := NewGenerator("test-key").WithModel("gpt-4o").WithBaseURL(srv.URL)
	got, err := g.Generate(context.Background(), "familiarita", sampleInput())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "# Il tuo report\n\nTutto bene." {
		t.Errorf("Generate = %q", got)
	}

	if captured.Model != "gpt-4o" {
		t.Errorf("model = %q", captured.Model)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
		t.Fatalf("unexpected messages: %+v", captured.Messages)
	}
	if !strings.Contains(captured.Messages[1].Content, "macroarea: **familiarita**") {
		t.Error("user message should carry the built prompt")
	}
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGenerator("test-key").WithBaseURL(srv.URL)
	_, err := g.Generate(context.Background(), "familiarita", sampleInput())
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("expected API error with status, got %v", err)
	}
}
