package cmd

import (
	"fmt"
	"strconv"

	"github.com/PolarWolf314/keyage/internal/audit"
	kerrors "github.com/PolarWolf314/keyage/internal/errors"
	"github.com/PolarWolf314/keyage/internal/passgen"
	"github.com/PolarWolf314/keyage/internal/ui"

	"github.com/spf13/cobra"
)

var (
	generateNoSymbols bool
	generateForce     bool
)

func init() {
	generateCmd.Flags().BoolVarP(&generateNoSymbols, "no-symbols", "n", false, "use only letters and digits")
	generateCmd.Flags().BoolVarP(&generateForce, "force", "f", false, "overwrite an existing entry")
}

var generateCmd = &cobra.Command{
	Use:   "generate <path> <length>",
	Short: "Generates a new password and stores it",
	Long: `Generates a random password of the given length, stores it at the given
path and prints it.

Passwords contain letters, digits and symbols, with at least one of each.
Characters that are easy to mistake for one another (such as l, 1, O and 0)
are never used. The minimum length is 8.

Examples:
  keyage generate site/login 24
  keyage generate --no-symbols wifi/home 16`,
	Args: cobra.ExactArgs(2),
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting generate command")
	name := args[0]

	length, err := strconv.Atoi(args[1])
	if err != nil {
		err = fmt.Errorf("%w: %q is not a number", kerrors.ErrInvalidLength, args[1])
		printStoreError(err, name)
		return reported(err)
	}

	password, err := passgen.Generate(passgen.Options{Length: length, Symbols: !generateNoSymbols})
	if err != nil {
		printStoreError(err, name)
		return reported(err)
	}

	store, err := checkWritable(name, generateForce)
	if err != nil {
		return err
	}

	spinner, cleanup := startSpinner("Encrypting generated password...")
	defer cleanup()

	if err := store.Write(name, []byte(password)); err != nil {
		Logger.Errorf("Failed to write %s: %v", name, err)
		spinner.FinalMSG = formatStoreError(err, name)
		return reported(err)
	}

	audit.Log(store.Root(), audit.Entry{Operation: "generate", Name: name, Force: generateForce})

	Logger.Infof("Generate command completed successfully")
	spinner.FinalMSG = ui.Tick() + " Generated a password for " + ui.Path.Sprint(name) + "\n" + password
	return nil
}
