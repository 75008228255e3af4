// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/smishguard/internal/detector"
	"github.com/pdiddy/smishguard/internal/extract"
	"github.com/pdiddy/smishguard/internal/report"
)

var extractCmd = &cobra.Command{
	Use:   "extract [message]",
	Short: "Print the URLs and brands a message mentions",
	Long: `Extract runs only the extraction stage and prints the seed record:
is_URL, URLs, is_brand, and brands. Absent lists print as "none".`,
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd, string(report.FormatJSON))
	if err != nil {
		return err
	}
	if format == formatText {
		format = string(report.FormatJSON)
	}
	sms, err := messageFromFlags(cmd, args)
	if err != nil {
		return err
	}
	cfg, err := detectorConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	classifier, err := detector.NewClassifier(ctx, cfg)
	if err != nil {
		return err
	}
	seed, err := extract.New(classifier, logger.Named("extract")).Extract(ctx, sms)
	if err != nil {
		return err
	}
	return report.Encode(cmd.OutOrStdout(), seed, report.Format(format))
}

func init() {
	addDetectorFlags(extractCmd.Flags())
	extractCmd.Flags().String("file", "", "read the message from a file")
	extractCmd.Flags().String("eml", "", "read the message from an e-mail (subject and text body)")
	extractCmd.Flags().String("format", string(report.FormatJSON), "output format: json or yaml")

	rootCmd.AddCommand(extractCmd)
}
