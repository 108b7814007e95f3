package main

import (
	"errors"

	"github.com/spf13/cobra"

	"moviechart/internal/cli"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Prepare the chart and store a snapshot",
	Long: `Run the pipeline and save the result in the SQLite snapshot store
(SQLITE_DB_PATH).

Examples:
  moviechart refresh
  moviechart refresh --reason nightly --skip-invalid`,
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)

	refreshCmd.Flags().String("reason", "cli", "note stored with the snapshot")
	refreshCmd.Flags().String("file", "", "CSV dataset path (implies --source csv)")
	refreshCmd.Flags().String("source", "", "data source: csv or sheets")
	refreshCmd.Flags().Bool("skip-invalid", false, "drop rows that fail to parse instead of aborting")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	reason, _ := cmd.Flags().GetString("reason")

	cfg, logger, err := loadConfig(cmd, datasetOverrides(cmd))
	if err != nil {
		return err
	}
	if cfg.SQLiteDBPath == "" {
		return errors.New("refresh needs a snapshot store: set SQLITE_DB_PATH")
	}
	ctx, cancel := commandContext(cmd, logger)
	defer cancel()

	store, err := cli.OpenSnapshotStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	svc, err := cli.NewChartService(ctx, cfg, cli.Deps{Store: store})
	if err != nil {
		return err
	}
	result, err := svc.Refresh(ctx, reason)
	if err != nil {
		return err
	}

	printSummary(newPrinter(cmd.ErrOrStderr()), svc.SourceName(), result)
	newPrinter(cmd.ErrOrStderr()).info("snapshot stored in %s", cfg.SQLiteDBPath)
	return nil
}
