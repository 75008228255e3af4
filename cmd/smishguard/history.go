// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/smishguard/internal/history"
	"github.com/pdiddy/smishguard/internal/report"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past analysis runs",
	Long: `History reads the run database written by analyze --history-db. The
database path comes from --history-db, the history-db key in
smishguard.yaml, or SMISHGUARD_HISTORY_DB.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := history.ListOptions{}
	opts.Limit, _ = cmd.Flags().GetInt("limit")
	opts.Contains, _ = cmd.Flags().GetString("contains")
	if category, _ := cmd.Flags().GetString("category"); category != "" {
		c, err := parseCategory(category)
		if err != nil {
			return err
		}
		opts.Category = &c
	}

	runs, err := store.List(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		if runs == nil {
			runs = []history.Run{}
		}
		return report.Encode(cmd.OutOrStdout(), runs, report.FormatJSON)
	}
	formatRuns(cmd.OutOrStdout(), runs)
	return nil
}

func parseCategory(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "phishing", "spam", "true":
		return true, nil
	case "legitimate", "ham", "false":
		return false, nil
	default:
		return false, fmt.Errorf("unknown category %q: use phishing or legitimate", s)
	}
}

func formatRuns(w io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return
	}

	fmt.Fprintf(w, "%-36s  %-20s  %-10s  %s\n", "Run ID", "Created", "Phishing", "Message")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, r := range runs {
		phishing := fmt.Sprintf("%t", r.Category)
		if r.Fallback {
			phishing += "*"
		}
		msg := strings.Join(strings.Fields(r.SMS), " ")
		if len(msg) > 36 {
			msg = msg[:33] + "..."
		}
		fmt.Fprintf(w, "%-36s  %-20s  %-10s  %s\n",
			r.ID, r.CreatedAt.Local().Format(time.DateTime), phishing, msg)
	}
	fmt.Fprintf(w, "\n%d runs (* = classifier unavailable, failed closed)\n", len(runs))
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the stored result of one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.OutOrStdout(), run.Document)
	return err
}

// --- shared helpers ---

func openHistory(cmd *cobra.Command) (*history.Store, error) {
	v := viper.GetViper()
	if err := v.BindPFlag(keyHistoryDB, cmd.Flags().Lookup(keyHistoryDB)); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}
	path := v.GetString(keyHistoryDB)
	if path == "" {
		return nil, fmt.Errorf("no history database: set --history-db")
	}
	return history.Open(path)
}

func init() {
	historyCmd.PersistentFlags().String(keyHistoryDB, "", "SQLite run history database")

	historyListCmd.Flags().Int("limit", 20, "maximum runs to list")
	historyListCmd.Flags().String("contains", "", "only runs whose message contains this text")
	historyListCmd.Flags().String("category", "", "only phishing or legitimate runs")
	historyListCmd.Flags().Bool("json", false, "output runs as JSON")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)

	rootCmd.AddCommand(historyCmd)
}
