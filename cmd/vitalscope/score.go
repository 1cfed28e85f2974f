package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vitalscope/vitalscope/internal/report"
	"github.com/vitalscope/vitalscope/pkg/engine"
	"github.com/vitalscope/vitalscope/pkg/rules"
	"github.com/vitalscope/vitalscope/pkg/surface"
)

func newScoreCmd() *cobra.Command {
	var (
		bundleDir   string
		answersPath string
		outputFmt   string
		withReport  bool
		model       string
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score questionnaire answers against a macroarea bundle",
		Long: `Reads raw form answers as JSON, maps them through the bundle's form
mapping, and prints the health score, risk class, drivers and red flags.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd.Context(), scoreOpts{
				bundleDir:   bundleDir,
				answersPath: answersPath,
				outputFmt:   outputFmt,
				withReport:  withReport,
				model:       model,
			})
		},
	}

	cmd.Flags().StringVar(&bundleDir, "bundle-dir", "", "Path to the macroarea bundle directory (required)")
	cmd.Flags().StringVar(&answersPath, "answers", "-", "Path to the answers JSON file, or - for stdin")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text, json or llm")
	cmd.Flags().BoolVar(&withReport, "report", false, "Also generate a narrative report (needs OPENAI_API_KEY)")
	cmd.Flags().StringVar(&model, "model", "", "Override the report model")
	_ = cmd.MarkFlagRequired("bundle-dir")

	return cmd
}

type scoreOpts struct {
	bundleDir   string
	answersPath string
	outputFmt   string
	withReport  bool
	model       string
}

func runScore(ctx context.Context, opts scoreOpts) error {
	bundle, err := rules.LoadDir(opts.bundleDir)
	if err != nil {
		return fmt.Errorf("loading bundle: %w", err)
	}

	raw, err := readAnswers(opts.answersPath)
	if err != nil {
		return err
	}

	result, err := engine.ComputeScore(raw, bundle)
	if err != nil {
		return fmt.Errorf("scoring: %w", err)
	}

	switch opts.outputFmt {
	case "llm":
		// The payload handed to the report generator, for prompt debugging.
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(engine.PrepareForLLM(result, raw)); err != nil {
			return fmt.Errorf("encoding payload: %w", err)
		}
	case "json":
		if err := (&surface.JSONRenderer{}).Render(os.Stdout, result); err != nil {
			return fmt.Errorf("rendering: %w", err)
		}
	default:
		if err := (&surface.TerminalRenderer{}).Render(os.Stdout, result); err != nil {
			return fmt.Errorf("rendering: %w", err)
		}
	}

	if opts.withReport {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return fmt.Errorf("--report needs OPENAI_API_KEY to be set")
		}
		gen := report.NewGenerator(apiKey)
		if opts.model != "" {
			gen = gen.WithModel(opts.model)
		}

		macroarea := filepath.Base(opts.bundleDir)
		text, err := gen.Generate(ctx, macroarea, engine.PrepareForLLM(result, raw))
		if err != nil {
			return fmt.Errorf("generating report: %w", err)
		}
		fmt.Fprintln(os.Stdout)
		fmt.Fprintln(os.Stdout, text)
	}

	return nil
}

// readAnswers reads a raw answers JSON object from a file or stdin.
func readAnswers(path string) (engine.RawAnswers, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading answers: %w", err)
	}

	var raw engine.RawAnswers
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing answers JSON: %w", err)
	}
	return raw, nil
}
