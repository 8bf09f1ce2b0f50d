package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/budgetd/pkg/cli"
	"mercator-hq/budgetd/pkg/config"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "budgetd",
	Short: "budgetd - per-project spending budgets",
	Long: `budgetd tracks how much of an expensive resource each project spends
under a set of named policies, and answers whether a project is currently
over its budget.

Each policy keeps a sliding window of spend per project, normalized to a
rate or compared as a total. Decisions are debounced so that a project that
crosses its budget stays throttled (or unthrottled) for a while instead of
flapping.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the configuration file with environment overrides. When
// --config was not given and the default file does not exist, the built-in
// configuration is used instead.
func loadConfig(cmd *cobra.Command) (*config.Config, bool, error) {
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(cfgFile); errors.Is(err, fs.ErrNotExist) {
			cfg, err := config.LoadDefaultsWithEnvOverrides()
			if err != nil {
				return nil, false, cli.NewConfigError("<defaults>", err)
			}
			return cfg, false, nil
		}
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, false, cli.NewConfigError(cfgFile, err)
	}
	return cfg, true, nil
}

// debugLevel lowers the log level when --verbose is set.
func debugLevel(level string) string {
	if verbose {
		return "debug"
	}
	return level
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
