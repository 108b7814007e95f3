package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"moviechart/internal/cli"
)

var snapshotsCmd = &cobra.Command{
	Use:     "snapshots",
	Aliases: []string{"ls"},
	Short:   "List stored snapshots, newest first",
	RunE:    runSnapshots,
}

func init() {
	rootCmd.AddCommand(snapshotsCmd)

	snapshotsCmd.Flags().Int("limit", 20, "maximum number of snapshots to list")
}

func runSnapshots(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 1 {
		return fmt.Errorf("invalid limit %d: must be at least 1", limit)
	}

	cfg, logger, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	if cfg.SQLiteDBPath == "" {
		return errors.New("no snapshot store configured: set SQLITE_DB_PATH")
	}
	ctx, cancel := commandContext(cmd, logger)
	defer cancel()

	store, err := cli.OpenSnapshotStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	list, err := store.ListSnapshots(ctx, limit)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		newPrinter(cmd.ErrOrStderr()).warning("no snapshots in %s", cfg.SQLiteDBPath)
		return nil
	}

	rows := make([][]string, 0, len(list))
	for _, s := range list {
		rows = append(rows, []string{
			s.ID.String(),
			s.CreatedAt.Local().Format(time.DateTime),
			s.Source,
			s.Reason,
			fmt.Sprint(s.Stats.Rows),
			fmt.Sprint(s.Stats.Skipped),
			fmt.Sprint(s.Stats.Kept),
		})
	}

	table := tablewriter.NewTable(cmd.OutOrStdout(),
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
	table.Header([]string{"ID", "Created", "Source", "Reason", "Rows", "Skipped", "Kept"})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}
