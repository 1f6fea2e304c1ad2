package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/keyage/internal/render"
	"github.com/PolarWolf314/keyage/internal/ui"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list [pattern]",
	Aliases: []string{"ls"},
	Short:   "Lists the entries in the store",
	Long: `Shows the entries in the store as a tree.

With a pattern, prints the matching entry names one per line instead. A
pattern containing glob characters is matched against the full entry name
(** crosses directories); any other pattern matches entries containing it.

Examples:
  keyage list                 # Tree of all entries
  keyage list mail            # Entries with "mail" in their name
  keyage list 'work/**'       # Everything under work/`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting list command")

	store, err := loadStore(nil)
	if err != nil {
		printStoreError(err, "")
		return reported(err)
	}

	pattern := ""
	if len(args) == 1 {
		pattern = args[0]
	}

	names, err := store.Entries(pattern)
	if err != nil {
		printStoreError(err, pattern)
		return reported(err)
	}
	Logger.Debugf("Found %d entries matching %q", len(names), pattern)

	if pattern == "" {
		return render.Tree(os.Stdout, filepath.Base(store.Root()), names)
	}

	if len(names) == 0 {
		fmt.Println(ui.Cross() + " No entries match " + ui.Highlight.Sprint(pattern))
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
