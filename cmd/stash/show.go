package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stanza-editor/stash/pkg/adapters/fs"
	"github.com/stanza-editor/stash/pkg/core"
)

var showCmd = &cobra.Command{
	Use:   "show [key|identity]",
	Short: "Print the backed-up content of one entry",
	Long: `Print the snapshot stored for an entry. Accepts a full entry key, an
unambiguous key prefix, or an identity like untitled://Untitled-1.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore()
		defer store.Close()
		ctx := context.Background()

		key, err := resolveKey(ctx, store, args[0])
		if err != nil {
			fatal("Error resolving entry", err)
		}

		content, err := store.Get(ctx, key)
		if err != nil {
			fatal("Error reading entry", err)
		}
		fmt.Print(string(content))
	},
}

// resolveKey turns an argument into an entry key: an identity string, a
// whole key, or a unique key prefix.
func resolveKey(ctx context.Context, store *fs.Store, arg string) (core.Key, error) {
	if strings.Contains(arg, "://") {
		id, err := core.ParseIdentity(arg)
		if err != nil {
			return "", err
		}
		return core.HashKey(id), nil
	}

	infos, err := store.List(ctx)
	if err != nil {
		return "", err
	}

	var matches []core.Key
	for _, info := range infos {
		if strings.HasPrefix(string(info.Key), arg) {
			matches = append(matches, info.Key)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no entry matches %q", arg)
	case 1:
		return matches[0], nil
	default:
		fmt.Fprintf(os.Stderr, "Key prefix %q is ambiguous (%d matches)\n", arg, len(matches))
		os.Exit(1)
		return "", nil
	}
}

func init() {
	rootCmd.AddCommand(showCmd)
}
