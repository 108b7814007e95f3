package main

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"moviechart/internal/cli"
	"moviechart/internal/config"
	applog "moviechart/internal/log"
)

var (
	verbose bool
	noColor bool
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "moviechart",
	Short: "Budget and revenue of 2000s films, by year",
	Long: `moviechart reads the movie dataset, keeps films released 2000-2009 with
positive budget and revenue figures, and sums both per year.

Configuration comes from the environment (and a .env file if present);
flags override it.

Example usage:
  moviechart prepare --file data/movies.csv        # print the chart as a table
  moviechart prepare --format json --skip-invalid  # JSON, dropping bad rows
  moviechart refresh --reason nightly              # prepare and store a snapshot
  moviechart snapshots --limit 5                   # list stored snapshots
  moviechart publish --reason "new export"         # ask the worker to refresh`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cli.LoadEnvFile()
		if noColor {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall time limit for the command")
}

// loadConfig reads the environment, applies overrides and validates the
// result. Logs go to the command's error stream so stdout stays clean.
func loadConfig(cmd *cobra.Command, override func(*config.Config)) (*config.Config, *applog.Logger, error) {
	cfg := config.Load()
	if verbose {
		cfg.LogLevel = "debug"
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger := cli.SetupLogger(cfg, applog.ComponentCLI, cmd.ErrOrStderr())
	return cfg, logger, nil
}

func commandContext(cmd *cobra.Command, logger *applog.Logger) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancelSignals := cli.SignalContext(parent, logger)
	ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
	ctx = applog.NewContext(ctx, logger)
	return ctx, func() {
		cancelTimeout()
		cancelSignals()
	}
}
