package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/keyage/internal/audit"
	"github.com/PolarWolf314/keyage/internal/configs"
	kerrors "github.com/PolarWolf314/keyage/internal/errors"
	"github.com/PolarWolf314/keyage/internal/secrets"
	"github.com/PolarWolf314/keyage/internal/ui"

	"github.com/spf13/cobra"
)

var initForce bool

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing store configuration")
}

var initCmd = &cobra.Command{
	Use:   "init [secret-key-path]",
	Short: "Initializes a new store",
	Long: `Creates the store directory and its config.toml.

With a secret key path, entries are encrypted for that key: either an age
identity file or an SSH private key (ed25519 or RSA). Without one, a new age
identity is generated in your local data directory.

Examples:
  keyage init                       # Generate a new age identity
  keyage init ~/.ssh/id_ed25519     # Use an existing SSH key
  keyage init ~/keys/identity.txt   # Use an existing age identity`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting init command")
	spinner, cleanup := startSpinner("Initializing store...")
	defer cleanup()

	rootPath, err := configs.ResolveStoreRoot()
	if err != nil {
		spinner.FinalMSG = formatStoreError(err, "")
		return reported(err)
	}
	Logger.Debugf("Store root: %s", rootPath)

	if _, err := os.Stat(configs.ConfigPath(rootPath)); err == nil && !initForce {
		Logger.Infof("Store already initialized at %s", rootPath)
		spinner.FinalMSG = ui.Cross() + " A store already exists at " + ui.Path.Sprint(rootPath) + "\n" +
			ui.Arrow() + " Use " + ui.Code.Sprint("keyage init --force") + " to replace its configuration"
		return reported(kerrors.ErrAlreadyInitialized)
	}

	identityPath, recipient, generated, err := resolveInitIdentity(args)
	if err != nil {
		Logger.Errorf("Failed to set up identity: %v", err)
		spinner.FinalMSG = ui.Cross() + " Failed to set up the store identity\n" +
			ui.Error.Sprint("Error: ") + err.Error()
		return reported(err)
	}

	parsed, err := secrets.ParseRecipient(recipient)
	if err != nil {
		spinner.FinalMSG = ui.Cross() + " " + ui.Highlight.Sprint(recipient) + " is not a supported recipient\n" +
			ui.Arrow() + " Use an age identity or an ed25519 or RSA SSH key"
		return reported(err)
	}
	Logger.Debugf("Recipient type: %s", parsed.Kind())

	if err := os.MkdirAll(rootPath, 0700); err != nil {
		return Logger.ErrorfAndReturn("failed to create store directory %s: %v", rootPath, err)
	}

	config := &configs.Configuration{
		Identifier: identityPath,
		Recipient:  recipient,
	}
	if err := configs.SaveConfiguration(rootPath, config); err != nil {
		return Logger.ErrorfAndReturn("failed to save store configuration: %v", err)
	}

	audit.Log(rootPath, audit.Entry{Operation: "init", Recipient: recipient, Force: initForce})

	Logger.Infof("Init command completed successfully")
	finalMessage := ui.Tick() + " Store initialized at " + ui.Path.Sprint(rootPath) + "\n" +
		ui.Arrow() + " Entries will be encrypted for " + ui.Highlight.Sprint(recipient)
	if generated {
		finalMessage += "\n" + ui.Arrow() + " A new identity was written to " + ui.Path.Sprint(identityPath) +
			". Back it up: without it your entries cannot be decrypted"
	}
	spinner.FinalMSG = finalMessage
	return nil
}

// resolveInitIdentity returns the identity file and its recipient. Without
// an argument it reuses or generates the default identity.
func resolveInitIdentity(args []string) (string, string, bool, error) {
	if len(args) == 1 {
		identityPath, err := filepath.Abs(args[0])
		if err != nil {
			return "", "", false, fmt.Errorf("%w: %v", kerrors.ErrConfigLoad, err)
		}
		Logger.Debugf("Deriving recipient from %s", identityPath)
		recipient, err := secrets.RecipientForIdentityFile(identityPath)
		return identityPath, recipient, false, err
	}

	settings, err := userSettings()
	if err != nil {
		return "", "", false, err
	}
	identityPath := settings.DefaultIdentityPath()

	if _, err := os.Stat(identityPath); err == nil {
		Logger.Infof("Reusing existing identity at %s", identityPath)
		recipient, err := secrets.RecipientForIdentityFile(identityPath)
		return identityPath, recipient, false, err
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", "", false, err
	}

	Logger.Infof("Generating new identity at %s", identityPath)
	recipient, err := secrets.GenerateIdentity(identityPath)
	if err != nil {
		return "", "", false, err
	}
	return identityPath, recipient, true, nil
}
