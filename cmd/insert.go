package cmd

import (
	"fmt"

	"github.com/PolarWolf314/keyage/internal/audit"
	kerrors "github.com/PolarWolf314/keyage/internal/errors"
	"github.com/PolarWolf314/keyage/internal/secrets"
	"github.com/PolarWolf314/keyage/internal/ui"

	"github.com/spf13/cobra"
)

var (
	insertForce bool
	insertStdin bool
)

func init() {
	insertCmd.Flags().BoolVarP(&insertForce, "force", "f", false, "overwrite an existing entry")
	insertCmd.Flags().BoolVar(&insertStdin, "stdin", false, "read the secret from stdin instead of prompting")
}

var insertCmd = &cobra.Command{
	Use:     "insert <path>",
	Aliases: []string{"add"},
	Short:   "Adds a secret to the store",
	Long: `Encrypts a secret and stores it at the given path.

The secret is read twice from the terminal without echo, or once from
stdin with --stdin. Existing entries are only replaced with --force.

Examples:
  keyage insert site/login
  echo -n 'hunter2' | keyage insert --stdin mail/personal`,
	Args: cobra.ExactArgs(1),
	RunE: runInsert,
}

func runInsert(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting insert command")
	name := args[0]

	store, err := checkWritable(name, insertForce)
	if err != nil {
		return err
	}

	var secret []byte
	if insertStdin {
		Logger.Debugf("Reading secret from stdin")
		secret, err = readStdin()
	} else {
		secret, err = readSecret()
	}
	if err != nil {
		Logger.Errorf("Failed to read secret: %v", err)
		return err
	}

	spinner, cleanup := startSpinner("Encrypting entry...")
	defer cleanup()

	if err := store.Write(name, secret); err != nil {
		Logger.Errorf("Failed to write %s: %v", name, err)
		spinner.FinalMSG = formatStoreError(err, name)
		return reported(err)
	}

	audit.Log(store.Root(), audit.Entry{Operation: "insert", Name: name, Force: insertForce})

	Logger.Infof("Insert command completed successfully")
	spinner.FinalMSG = ui.Tick() + " Saved " + ui.Path.Sprint(name)
	return nil
}

// checkWritable loads the store and checks that name may be written,
// printing the reason when it may not.
func checkWritable(name string, force bool) (*secrets.Store, error) {
	store, err := loadStore(nil)
	if err != nil {
		printStoreError(err, name)
		return nil, reported(err)
	}

	if err := checkConfined(store, name); err != nil {
		printStoreError(err, name)
		return nil, reported(err)
	}

	exists, err := store.Exists(name)
	if err != nil {
		printStoreError(err, name)
		return nil, reported(err)
	}
	if exists && !force {
		Logger.Debugf("Entry %s exists and --force was not given", name)
		err := fmt.Errorf("%w: %s", kerrors.ErrPasswordExists, name)
		printStoreError(err, name)
		return nil, reported(err)
	}

	return store, nil
}
