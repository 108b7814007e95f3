package main

import (
	"errors"

	"github.com/spf13/cobra"

	"moviechart/internal/cli"
	"moviechart/internal/services"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Ask moviechart-worker to refresh the chart",
	Long: `Publish a refresh request on the AMQP queue (AMQP_URL). The worker
serving the same data source prepares the chart and stores a snapshot.`,
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().String("reason", "", "note stored with the resulting snapshot")
}

func runPublish(cmd *cobra.Command, args []string) error {
	reason, _ := cmd.Flags().GetString("reason")

	cfg, logger, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	if cfg.AMQPURL == "" {
		return errors.New("no broker configured: set AMQP_URL")
	}
	source, err := cli.DatasetConfig(cfg).SourceName()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd, logger)
	defer cancel()

	client, err := cli.ConnectAMQP(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	msg, err := services.RequestRefresh(ctx, client, source, reason)
	if err != nil {
		return err
	}

	newPrinter(cmd.ErrOrStderr()).success("refresh %s requested for %s", msg.ID, msg.Source)
	return nil
}
