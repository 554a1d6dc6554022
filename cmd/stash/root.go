package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/stanza-editor/stash"
	"github.com/stanza-editor/stash/pkg/adapters/fs"
)

var (
	verbose    bool
	workspace  string
	backupRoot string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stash",
	Short: "Inspect and manage the editor's crash-recovery backup areas",
	Long: `Stash keeps durable snapshots of unsaved editor documents so they survive
crashes. This tool inspects and manages the on-disk backup area of a workspace.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (defaults to the working directory)")
	rootCmd.PersistentFlags().StringVar(&backupRoot, "backup-root", "", "Backup home directory (defaults to the platform cache dir)")
}

// openStore resolves the workspace and opens its backup area.
func openStore() *fs.Store {
	ws := workspace
	if ws == "" {
		wd, err := os.Getwd()
		if err != nil {
			fatal("Error getting working directory", err)
		}
		ws = wd
	}

	store, err := fs.NewStore(fs.Config{
		Root:          stash.ResolveBackupRoot(backupRoot, false),
		WorkspaceRoot: ws,
		Logger:        slog.Default(),
	})
	if err != nil {
		fatal("Error opening backup store", err)
	}
	return store
}
