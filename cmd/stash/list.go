package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/stanza-editor/stash/pkg/core"
)

var (
	listJSON   bool
	filterGlob string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List backup entries for the workspace",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore()
		defer store.Close()

		infos, err := store.List(context.Background())
		if err != nil {
			fatal("Error listing backups", err)
		}

		// Filter
		var filtered []core.EntryInfo
		for _, info := range infos {
			if filterGlob != "" {
				ok, err := doublestar.Match(filterGlob, filepath.ToSlash(info.Identity.Path))
				if err != nil {
					fatal("Invalid filter pattern", err)
				}
				if !ok {
					continue
				}
			}
			filtered = append(filtered, info)
		}

		if listJSON {
			type row struct {
				Key      string `json:"key"`
				Identity string `json:"identity"`
				Hint     string `json:"hint,omitempty"`
				Ordinal  uint64 `json:"ordinal"`
			}
			rows := make([]row, 0, len(filtered))
			for _, info := range filtered {
				rows = append(rows, row{
					Key:      string(info.Key),
					Identity: info.Identity.String(),
					Hint:     info.Hint,
					Ordinal:  info.Ordinal,
				})
			}
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(rows); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		if len(filtered) == 0 {
			fmt.Println("No backup entries.")
			return
		}
		for _, info := range filtered {
			fmt.Printf("%s  %s\n", info.Key[:12], info.Identity)
		}
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	listCmd.Flags().StringVar(&filterGlob, "filter", "", "Only show identities matching this glob")
	rootCmd.AddCommand(listCmd)
}
