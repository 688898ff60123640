/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wastenot/apiserver/config"
	"github.com/wastenot/apiserver/internal/db"
	"github.com/wastenot/apiserver/internal/mq"
	"github.com/wastenot/apiserver/internal/notifier"
	"github.com/wastenot/apiserver/internal/store"
)

// notifierCmd represents the notifier command
var notifierCmd = &cobra.Command{
	Use:   "notifier",
	Short: "Starts the notification worker",
	Long: `Starts the worker that consumes domain events from the broker
and writes notification rows. Usage:

	wastenot notifier
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadConfig()
		ctx := cmd.Context()

		backend, err := mq.NewFromConfig(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect broker: %v\n", err)
			os.Exit(1)
		}
		defer backend.Close()

		dbConn, err := db.Open(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect database: %v\n", err)
			os.Exit(1)
		}
		defer dbConn.Close()

		worker := notifier.New(backend, store.NewNotificationRepository(dbConn))
		if err := worker.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "notifier error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(notifierCmd)
}
