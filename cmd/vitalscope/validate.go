package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vitalscope/vitalscope/pkg/rules"
)

func newValidateCmd() *cobra.Command {
	var bundleDir string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a macroarea bundle",
		Long:  `Parses the four bundle files and reports the first structural problem.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := rules.LoadDir(bundleDir)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d features, %d red flag rules, %d mapped fields\n",
				len(b.Features.Features), len(b.Scoring.RedFlags), len(b.Mapping.Map))
			return nil
		},
	}

	cmd.Flags().StringVar(&bundleDir, "bundle-dir", "", "Path to the macroarea bundle directory (required)")
	_ = cmd.MarkFlagRequired("bundle-dir")

	return cmd
}
