package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stanza-editor/stash"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the stash version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stash version %s\n", strings.TrimSpace(stash.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
