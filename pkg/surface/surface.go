// Package surface defines output rendering for assessment results.
// Implementations handle different output targets: terminal and JSON.
package surface

import (
	"io"

	"github.com/vitalscope/vitalscope/pkg/engine"
)

// Renderer produces formatted output from a ScoreResult.
type Renderer interface {
	// Render writes the formatted score result to the writer.
	Render(w io.Writer, result *engine.ScoreResult) error
}
