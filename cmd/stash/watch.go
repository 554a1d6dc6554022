package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Tail the workspace backup area live",
	Long: `Watch the backup area and print one line per entry change as a running
editor writes and deletes snapshots. Useful for diagnosing backup behavior.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore()
		defer store.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		events, err := store.Watch(ctx)
		if err != nil {
			fatal("Error starting watcher", err)
		}

		fmt.Println("Watching backup area (Ctrl-C to stop)...")
		for event := range events {
			ts := time.Unix(event.Timestamp, 0).Format("15:04:05")
			fmt.Printf("%s  %-8s %s\n", ts, event.Type, event.Key)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
