// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/smishguard/internal/detector"
	"github.com/pdiddy/smishguard/internal/report"
	"github.com/pdiddy/smishguard/pkg/types"
)

const formatText = "text"

var analyzeCmd = &cobra.Command{
	Use:   "analyze [message]",
	Short: "Decide whether a message is phishing or spam",
	Long: `Analyze runs the full pipeline on one message: URL and brand extraction,
evidence gathering, the verdict, and a short explanation. The result is
written to <output-dir>/analysis_output.json and, with --history-db, to
the run history.

The message is taken from the arguments, from --file, from the subject
and body of an e-mail with --eml, or from standard input with "-".

Examples:
  smishguard analyze "[US POSTAL] Your package is held: https://dik.si/postal"
  smishguard analyze --file message.txt --format json
  smishguard analyze --eml notice.eml --screenshot=false`,
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd, formatText)
	if err != nil {
		return err
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
	d, err := detector.FromConfig(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	result, runErr := d.Run(ctx, sms)
	if result == nil {
		return runErr
	}
	if err := printResult(cmd.OutOrStdout(), result, format); err != nil {
		return err
	}
	if runErr == nil && format == formatText {
		fmt.Fprintf(os.Stderr, "Result saved to %s\n", filepath.Join(cfg.OutputDir, report.JSONFile))
	}
	return runErr
}

// outputFormat validates --format. def is the command's default.
func outputFormat(cmd *cobra.Command, def string) (string, error) {
	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = def
	}
	format = strings.ToLower(format)
	switch format {
	case formatText, string(report.FormatJSON), string(report.FormatYAML):
		return format, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use text, json, or yaml", format)
	}
}

func printResult(w io.Writer, result *types.AnalysisResult, format string) error {
	if format != formatText {
		return report.Encode(w, result, report.Format(format))
	}

	fmt.Fprintf(w, "Phishing detected: %t\n", result.Category())
	if result.DetectResult.Fallback {
		fmt.Fprintln(w, "The classifier did not answer; the message is treated as phishing.")
	}
	if result.UserFriendlyOutput != "" {
		fmt.Fprintln(w, result.UserFriendlyOutput)
	}
	return nil
}

func init() {
	addDetectorFlags(analyzeCmd.Flags())
	analyzeCmd.Flags().String("file", "", "read the message from a file")
	analyzeCmd.Flags().String("eml", "", "read the message from an e-mail (subject and text body)")
	analyzeCmd.Flags().String("format", formatText, "output format: text, json, or yaml")

	rootCmd.AddCommand(analyzeCmd)
}
