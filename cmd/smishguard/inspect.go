// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/smishguard/internal/detector"
	"github.com/pdiddy/smishguard/internal/report"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <url>...",
	Short: "Gather evidence for URLs without a verdict",
	Long: `Inspect runs the enabled evidence fetchers for each URL and prints the
evidence map keyed by argument position. No extraction or classification
verdict is made; the classifier is still used for page summaries and
screenshot descriptions.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd, string(report.FormatJSON))
	if err != nil {
		return err
	}
	if format == formatText {
		format = string(report.FormatJSON)
	}
	cfg, err := detectorConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	d, err := detector.FromConfig(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	ev, err := d.Inspect(ctx, args)
	if err != nil {
		return err
	}
	return report.Encode(cmd.OutOrStdout(), ev, report.Format(format))
}

func init() {
	addDetectorFlags(inspectCmd.Flags())
	inspectCmd.Flags().String("format", string(report.FormatJSON), "output format: json or yaml")

	rootCmd.AddCommand(inspectCmd)
}
