package surface

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/vitalscope/vitalscope/pkg/engine"
)

// TerminalRenderer renders ScoreResult as colored terminal output.
type TerminalRenderer struct{}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func riskColor(riskClass string) string {
	if noColor() {
		return ""
	}
	switch riskClass {
	case engine.RiskLow:
		return colorGreen
	case engine.RiskMedium:
		return colorYellow
	case engine.RiskHigh:
		return colorRed
	default:
		return ""
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func bold(s string) string {
	if noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func dim(s string) string {
	if noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func colored(s, color string) string {
	if noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

func (r *TerminalRenderer) Render(w io.Writer, result *engine.ScoreResult) error {
	rc := riskColor(result.RiskClass)

	// Header
	fmt.Fprintf(w, "%s\n\n",
		bold(fmt.Sprintf("Vitalscope: Health Score %.1f/10 — Risk %s",
			result.HealthScore, colored(result.RiskClass, rc))))

	if result.Narrative != "" {
		fmt.Fprintf(w, "%s\n\n", result.Narrative)
	}

	// Red flags come first: they are the part a clinician must not miss.
	if len(result.RedFlags) > 0 {
		fmt.Fprintln(w, "Red flags:")
		for _, rf := range result.RedFlags {
			label := rf.Condition
			if label == "" {
				label = rf.Feature
			}
			fmt.Fprintf(w, "  %s %s", colored("●", colorRed), bold(label))
			if rf.Action != "" {
				fmt.Fprintf(w, " — %s", rf.Action)
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}

	// Drivers
	if len(result.Drivers) > 0 {
		fmt.Fprintln(w, "Main drivers:")
		for _, d := range result.Drivers {
			sign := "+"
			if d.Contribution < 0 {
				sign = ""
			}
			fmt.Fprintf(w, "  (%s%.1f) %s", sign, d.Contribution, bold(d.Feature))
			if d.Explanation != "" {
				fmt.Fprintf(w, " — %s", d.Explanation)
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	} else {
		fmt.Fprintln(w, "No significant drivers.")
		fmt.Fprintln(w)
	}

	// Suggested actions, grouped per feature in a stable order.
	if len(result.Actions) > 0 {
		fmt.Fprintln(w, "Suggested actions:")
		features := make([]string, 0, len(result.Actions))
		for feature := range result.Actions {
			features = append(features, feature)
		}
		sort.Strings(features)
		for _, feature := range features {
			fmt.Fprintf(w, "  %s\n", bold(feature))
			set := result.Actions[feature]
			categories := make([]string, 0, len(set))
			for category := range set {
				categories = append(categories, category)
			}
			sort.Strings(categories)
			for _, category := range categories {
				for _, action := range set[category] {
					for _, line := range wrapText(fmt.Sprintf("[%s] %s", category, action), 70) {
						fmt.Fprintf(w, "    %s\n", dim(line))
					}
				}
			}
		}
		fmt.Fprintln(w)
	}

	return nil
}

// wrapText wraps a string at the given width, returning lines.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)
	return lines
}
