/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/placement-tracker/apiserver/config"
	"github.com/placement-tracker/apiserver/internal/mq"
	"github.com/placement-tracker/apiserver/internal/notify"
	"github.com/spf13/cobra"
)

// workerCmd represents the worker command. It drains the outbound SMS
// queue produced by the "queue" notify backend and delivers each job
// through Twilio.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Runs the SMS delivery worker",
	Long: `Runs the SMS delivery worker. Consumes queued notification jobs
from the configured broker and delivers them through Twilio. Usage:

	placement-tracker worker
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		backend, err := mq.NewBackend(cmd.Context(), cfg.Broker)
		if err != nil {
			return fmt.Errorf("broker init failed: %w", err)
		}
		if backend == nil {
			return errors.New("BROKER_BACKEND is required for the worker")
		}
		defer func() {
			_ = backend.Close()
		}()

		sender, err := notify.NewTwilioClient(cfg.Notify.Twilio)
		if err != nil {
			return fmt.Errorf("twilio init failed: %w", err)
		}

		if err := notify.Consume(cmd.Context(), backend, cfg.Notify.Channel, sender); err != nil {
			fmt.Fprintf(os.Stderr, "worker stopped: %v\n", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
