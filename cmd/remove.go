package cmd

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/PolarWolf314/keyage/internal/audit"
	kerrors "github.com/PolarWolf314/keyage/internal/errors"
	"github.com/PolarWolf314/keyage/internal/ui"
	"github.com/PolarWolf314/keyage/internal/utils"

	"github.com/spf13/cobra"
)

var removeForce bool

func init() {
	removeCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "remove without asking for confirmation")
}

var removeCmd = &cobra.Command{
	Use:     "remove <path>",
	Aliases: []string{"rm"},
	Short:   "Removes an entry or a directory of entries",
	Long: `Removes the entry at the given path. If the path is a directory, it is
removed together with every entry inside it.

You are asked to confirm unless --force is given.

Examples:
  keyage remove site/login
  keyage remove --force old-job`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting remove command")
	name := args[0]

	store, err := loadStore(nil)
	if err != nil {
		printStoreError(err, name)
		return reported(err)
	}

	if err := store.CheckRemovable(name); err != nil {
		printStoreError(err, name)
		return reported(err)
	}

	info, err := os.Lstat(store.Resolve(name))
	if err != nil {
		if os.IsNotExist(err) {
			err = fmt.Errorf("%w: %s", kerrors.ErrPasswordNotFound, name)
		} else {
			err = fmt.Errorf("%w: %v", kerrors.ErrStoreRead, err)
		}
		printStoreError(err, name)
		return reported(err)
	}

	if !removeForce {
		question := "Remove " + ui.Path.Sprint(name) + "?"
		if info.IsDir() {
			question = "Remove " + ui.Path.Sprint(name) + " and every entry inside it?"
			if entries, err := store.Entries(path.Join(filepath.ToSlash(name), "**")); err == nil && len(entries) > 0 {
				fmt.Print(ui.Warning.Sprint("The following entries will be removed:") + utils.FormatPaths(entries))
			}
		}

		ok, err := confirm(question)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read confirmation: %v", err)
		}
		if !ok {
			Logger.Infof("Removal of %s cancelled", name)
			fmt.Println(ui.Arrow() + " Nothing was removed")
			return nil
		}
	}

	spinner, cleanup := startSpinner("Removing entry...")
	defer cleanup()

	if err := store.Delete(name); err != nil {
		Logger.Errorf("Failed to remove %s: %v", name, err)
		spinner.FinalMSG = formatStoreError(err, name)
		return reported(err)
	}

	audit.Log(store.Root(), audit.Entry{Operation: "remove", Name: name, Force: removeForce})

	Logger.Infof("Remove command completed successfully")
	spinner.FinalMSG = ui.Tick() + " Removed " + ui.Path.Sprint(name)
	return nil
}
