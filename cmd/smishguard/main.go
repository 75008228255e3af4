// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the smishguard CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/smishguard/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// dotEnv holds keys read from .env at startup.
var dotEnv map[string]string

// logger is built in PersistentPreRunE; --verbose selects development mode.
var logger = zap.NewNop()

// rootCmd is the base command for the smishguard CLI.
var rootCmd = &cobra.Command{
	Use:   "smishguard",
	Short: "Detect phishing and spam in SMS messages",
	Long: `smishguard decides whether an SMS message is phishing or spam.

It extracts the URLs and brand names a message mentions, gathers evidence
about every URL (redirect chain, page content, domain registration, a
screenshot description) and about every brand (top web search results),
and asks a classifier for a verdict over the compiled evidence. Each run
is written to <output-dir>/analysis_output.json.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}

		env, err := secrets.LoadDotEnv(".env")
		if err != nil {
			return err
		}
		dotEnv = env

		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./smishguard.yaml or ~/.config/smishguard/smishguard.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "human-readable debug logging")
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("smishguard")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "smishguard"))
		}
	}

	viper.SetEnvPrefix("SMISHGUARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
