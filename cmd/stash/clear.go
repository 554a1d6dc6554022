package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard all backup entries for the workspace",
	Long: `Delete every backup entry of the workspace. Unsaved work captured in those
entries is unrecoverable afterwards, so this prompts unless --yes is given.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore()
		defer store.Close()
		ctx := context.Background()

		infos, err := store.List(ctx)
		if err != nil {
			fatal("Error listing backups", err)
		}
		if len(infos) == 0 {
			fmt.Println("No backup entries.")
			return
		}

		if !clearYes {
			fmt.Printf("Discard %d backup entries? [y/N] ", len(infos))
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.TrimSpace(strings.ToLower(answer)) != "y" {
				fmt.Println("Aborted.")
				return
			}
		}

		if err := store.Clear(ctx); err != nil {
			fatal("Error clearing backups", err)
		}
		fmt.Printf("Discarded %d entries.\n", len(infos))
	},
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}
