// Package report turns a score result into a patient-facing narrative report
// through the OpenAI chat completions API.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/vitalscope/vitalscope/pkg/engine"
	"github.com/vitalscope/vitalscope/pkg/rules"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-5-nano"
)

// Generator calls the OpenAI chat completions API to produce a Markdown
// report in Italian from prepared score data.
type Generator struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGenerator creates a Generator with the default model and endpoint.
func NewGenerator(apiKey string) *Generator {
	return &Generator{
		apiKey:     apiKey,
		model:      defaultModel,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// WithModel overrides the model name.
func (g *Generator) WithModel(model string) *Generator {
	g.model = model
	return g
}

// WithBaseURL overrides the API endpoint. Used for tests and proxies.
func (g *Generator) WithBaseURL(baseURL string) *Generator {
	g.baseURL = strings.TrimRight(baseURL, "/")
	return g
}

// Generate produces the report for a macroarea from the prepared input.
func (g *Generator) Generate(ctx context.Context, macroarea string, input *engine.LLMInput) (string, error) {
	prompt := BuildPrompt(macroarea, input)

	body := map[string]interface{}{
		"model": g.model,
		"messages": []map[string]string{
			{
				"role":    "system",
				"content": "Sei un assistente medico specializzato in medicina preventiva. Scrivi report chiari, accurati e comprensibili per i pazienti.",
			},
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"temperature": 0.7,
		"max_tokens":  1500,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post chat completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openai API error %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("openai response carried no choices")
	}
	return result.Choices[0].Message.Content, nil
}

// riskClassItalian translates a risk class for the patient-facing prompt.
func riskClassItalian(riskClass string) string {
	switch riskClass {
	case engine.RiskLow:
		return "basso"
	case engine.RiskMedium:
		return "moderato"
	default:
		return "alto"
	}
}

// BuildPrompt assembles the user prompt from a macroarea and prepared input.
func BuildPrompt(macroarea string, input *engine.LLMInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Sei un assistente medico specializzato in medicina preventiva. Il tuo compito è generare un report chiaro e comprensibile in italiano per un paziente, basato sui risultati di un questionario sulla macroarea: **%s**.\n\n",
		strings.ReplaceAll(macroarea, "_", " "))

	b.WriteString("## DATI DEL QUESTIONARIO\n\n")
	fmt.Fprintf(&b, "**Score totale**: %v/100\n", input.Score)
	fmt.Fprintf(&b, "**Classe di rischio**: %s (%s)\n\n", input.RiskClass, riskClassItalian(input.RiskClass))
	fmt.Fprintf(&b, "**Narrativa generale**: %s\n\n", input.Narrative)

	b.WriteString("## TOP DRIVER (Fattori principali che influenzano lo score)\n\n")
	for i, d := range input.TopDrivers {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d. **%s** (contributo: %v)\n   - %s", i+1, d.Feature, d.Contribution, d.Explanation)
	}
	b.WriteString("\n\n")

	if len(input.RedFlags) > 0 {
		b.WriteString("## ⚠️ RED FLAGS (Segnali che richiedono attenzione)\n\n")
		for i, rf := range input.RedFlags {
			label := rf.Action
			if label == "" {
				label = rf.Condition
			}
			fmt.Fprintf(&b, "%d. %s\n", i+1, label)
		}
		b.WriteString("\n")
	}

	b.WriteString("## AZIONI CONSIGLIATE\n\n")
	b.WriteString(formatActions(input.Actions))
	b.WriteString("\n\n---\n\n")

	b.WriteString("**ISTRUZIONI PER IL REPORT**:\n\n")
	b.WriteString("1. **Tono**: Professionale ma empatico, chiaro e rassicurante\n")
	b.WriteString("2. **Struttura**:\n")
	b.WriteString("   - Introduzione breve (2-3 frasi) che contestualizza lo score\n")
	b.WriteString("   - Sezione \"Cosa significa il tuo score\" con spiegazione semplice\n")
	b.WriteString("   - Sezione \"Fattori chiave\" che spiega i top driver in linguaggio naturale\n")
	if len(input.RedFlags) > 0 {
		b.WriteString("   - Sezione \"⚠️ Segnali da monitorare\" per i red flags\n")
	}
	b.WriteString("   - Sezione \"Cosa puoi fare\" con consigli pratici divisi per:\n")
	b.WriteString("     * 🏃 Stile di vita\n")
	b.WriteString("     * 🩺 Follow-up medico\n")
	b.WriteString("     * 💊 Nutraceutica (se applicabile)\n")
	b.WriteString("   - Conclusione positiva e motivante\n")
	b.WriteString("3. **Lunghezza**: 300-500 parole\n")
	b.WriteString("4. **Linguaggio**: Evita termini tecnici non necessari, usa analogie quando utile\n")
	b.WriteString("5. **Privacy**: Non menzionare dati personali specifici (età, nomi)\n\n")
	b.WriteString("Genera il report in **formato Markdown**.")

	return b.String()
}

var actionCategoryHeaders = map[string]string{
	"lifestyle":    "### 🏃 Stile di vita",
	"followup":     "### 🩺 Follow-up medico",
	"nutraceutica": "### 💊 Nutraceutica",
	"medical":      "### 👨‍⚕️ Consulenze specialistiche",
}

// formatActions flattens the per-feature action sets into a Markdown list
// grouped by category. Iteration is sorted so the prompt is stable.
func formatActions(actions map[string]rules.ActionSet) string {
	grouped := make(map[string][]string)
	features := make([]string, 0, len(actions))
	for feature := range actions {
		features = append(features, feature)
	}
	sort.Strings(features)

	for _, feature := range features {
		for category, items := range actions[feature] {
			if _, known := actionCategoryHeaders[category]; !known {
				continue
			}
			grouped[category] = append(grouped[category], items...)
		}
	}

	var b strings.Builder
	for _, category := range []string{"lifestyle", "followup", "nutraceutica", "medical"} {
		items := grouped[category]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s\n\n", actionCategoryHeaders[category])
		for _, item := range items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}

	if b.Len() == 0 {
		return "- Mantieni uno stile di vita sano e regolare\n- Consulta il medico per controlli periodici"
	}
	return b.String()
}
