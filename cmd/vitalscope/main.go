// Package main provides the vitalscope CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "vitalscope",
		Short: "Preventive health questionnaire scoring",
		Long: `Vitalscope scores health questionnaire answers against macroarea rule
bundles, classifies risk, and surfaces drivers and red flags.`,
		Version: version,
	}

	rootCmd.AddCommand(
		newScoreCmd(),
		newValidateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
