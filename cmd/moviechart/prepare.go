package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"moviechart/internal/cli"
	"moviechart/internal/config"
	"moviechart/internal/report"
	"moviechart/internal/services"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Run the pipeline and print the chart data",
	Long: `Load the dataset, parse and filter it, and print the yearly totals.

Examples:
  moviechart prepare                          # dataset from the environment
  moviechart prepare --file data/movies.csv   # a specific CSV file
  moviechart prepare --source sheets          # the configured Google Sheet
  moviechart prepare --format json            # ChartData as JSON`,
	RunE: runPrepare,
}

func init() {
	rootCmd.AddCommand(prepareCmd)

	prepareCmd.Flags().String("file", "", "CSV dataset path (implies --source csv)")
	prepareCmd.Flags().String("source", "", "data source: csv or sheets")
	prepareCmd.Flags().String("format", "table", "output format: table or json")
	prepareCmd.Flags().Bool("skip-invalid", false, "drop rows that fail to parse instead of aborting")
}

// datasetOverrides applies the flags shared by prepare and refresh.
func datasetOverrides(cmd *cobra.Command) func(*config.Config) {
	file, _ := cmd.Flags().GetString("file")
	source, _ := cmd.Flags().GetString("source")
	skip, _ := cmd.Flags().GetBool("skip-invalid")
	return func(cfg *config.Config) {
		if source != "" {
			cfg.DataSource = source
		}
		if file != "" {
			cfg.DataSource = "csv"
			cfg.DatasetPath = file
		}
		if skip {
			cfg.ParseErrorPolicy = "skip"
		}
	}
}

func runPrepare(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "table" && format != "json" {
		return fmt.Errorf("invalid format %q: must be table or json", format)
	}

	cfg, logger, err := loadConfig(cmd, datasetOverrides(cmd))
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd, logger)
	defer cancel()

	svc, err := cli.NewChartService(ctx, cfg, cli.Deps{})
	if err != nil {
		return err
	}
	result, err := svc.LineChart(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		if err := report.WriteJSON(out, result.Data); err != nil {
			return err
		}
	} else if err := report.WriteTable(out, result.Data); err != nil {
		return err
	}

	printSummary(newPrinter(cmd.ErrOrStderr()), svc.SourceName(), result)
	return nil
}

func printSummary(p *printer, source string, r services.Result) {
	s := r.Stats
	if s.Skipped > 0 {
		p.warning("%s skipped while parsing", plural(s.Skipped, "row"))
	}
	if r.Data.Empty() {
		p.warning("no film from %s passed the filter (%s read)", source, plural(s.Rows, "row"))
		return
	}
	p.success("%s kept from %s across %s (%s)", plural(s.Kept, "film"), plural(s.Rows, "row"), plural(s.Years, "year"), source)
}
