package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/PolarWolf314/keyage/internal/configs"
	kerrors "github.com/PolarWolf314/keyage/internal/errors"
	"github.com/PolarWolf314/keyage/internal/secrets"
	"github.com/PolarWolf314/keyage/internal/ui"
	"github.com/PolarWolf314/keyage/internal/utils"

	"github.com/briandowns/spinner"
)

// Prompts and clocks, replaced in tests.
var (
	readSecret = func() ([]byte, error) {
		return utils.ReadSecretTwice("Enter secret: ", "Retype secret: ")
	}
	readStdin      = utils.ReadStdin
	readPassphrase = func() ([]byte, error) {
		return utils.PromptPassphrase("Enter passphrase for SSH key: ")
	}
	confirm = func(question string) (bool, error) {
		return utils.Confirm(os.Stdin, os.Stderr, question)
	}
	userSettings = configs.LoadUserSettings
	now          = time.Now
)

// Process exit codes.
const (
	exitGeneral  = 1
	exitCrypto   = 2
	exitNotFound = 4
)

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// spinner.FinalMSG values do not need trailing newlines. The cleanup function
// calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stderr)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		// Print final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// loadStore opens the store selected by KEYAGE_STORE or the default
// location. The spinner, if any, is paused while a passphrase is read.
func loadStore(s *spinner.Spinner) (*secrets.Store, error) {
	rootPath, err := configs.ResolveStoreRoot()
	if err != nil {
		return nil, err
	}
	Logger.Debugf("Store root: %s", rootPath)

	if _, err := os.Stat(rootPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrStoreNotFound, rootPath)
		}
		return nil, fmt.Errorf("%w: %v", kerrors.ErrStoreRead, err)
	}

	config, err := configs.LoadConfiguration(rootPath)
	if err != nil {
		return nil, err
	}

	identityPath, err := config.IdentityPath()
	if err != nil {
		return nil, err
	}
	Logger.Debugf("Identity file: %s", identityPath)

	return secrets.NewStore(secrets.StoreOptions{
		RootPath:     rootPath,
		IdentityPath: identityPath,
		Recipient:    config.Recipient,
		Passphrase:   passphrasePrompt(s),
		Logger:       Logger,
	})
}

func passphrasePrompt(s *spinner.Spinner) secrets.PassphraseFunc {
	return func() ([]byte, error) {
		if s != nil && s.Active() {
			s.Stop()
			defer s.Start()
		}
		return readPassphrase()
	}
}

// checkConfined returns ErrInvalidPath when name resolves outside the store.
func checkConfined(store *secrets.Store, name string) error {
	inside, err := store.Confined(name)
	if err != nil {
		return err
	}
	if !inside {
		return fmt.Errorf("%w: %s is outside the store", kerrors.ErrInvalidPath, name)
	}
	return nil
}

func printStoreError(err error, name string) {
	fmt.Println(formatStoreError(err, name))
}

// reportedError marks an error whose message was already shown to the user.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	return &reportedError{err: err}
}

// IsReported reports whether err was already printed by the command.
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, kerrors.ErrEncryptFailed),
		errors.Is(err, kerrors.ErrDecryptFailed),
		errors.Is(err, kerrors.ErrInvalidRecipientFormat):
		return exitCrypto
	case errors.Is(err, kerrors.ErrPasswordNotFound),
		errors.Is(err, kerrors.ErrStoreNotFound):
		return exitNotFound
	default:
		return exitGeneral
	}
}

// formatStoreError formats a store error for display to the user.
func formatStoreError(err error, name string) string {
	entry := ui.Path.Sprint(name)

	switch {
	case errors.Is(err, kerrors.ErrStoreNotFound):
		return ui.Cross() + " keyage has not been initialized\n" +
			ui.Arrow() + " Run " + ui.Code.Sprint("keyage init") + " first"

	case errors.Is(err, kerrors.ErrConfigLoad):
		return ui.Cross() + " Failed to load the store configuration\n" +
			ui.Error.Sprint("Error: ") + err.Error() + "\n" +
			ui.Arrow() + " Run " + ui.Code.Sprint("keyage init --force") + " to recreate it"

	case errors.Is(err, kerrors.ErrInvalidRecipientFormat):
		return ui.Cross() + " The recipient in " + ui.Path.Sprint(configs.ConfigFileName) + " is not a valid age or SSH public key"

	case errors.Is(err, kerrors.ErrPasswordNotFound):
		return ui.Cross() + " " + entry + " is not in the store"

	case errors.Is(err, kerrors.ErrPasswordExists):
		return ui.Cross() + " " + entry + " already exists\n" +
			ui.Arrow() + " Use " + ui.Code.Sprint("--force") + " to overwrite it"

	case errors.Is(err, kerrors.ErrInvalidPath):
		return ui.Cross() + " " + entry + " is not a valid path in the store\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrDecryptFailed):
		return ui.Cross() + " Failed to decrypt " + entry + "\n" +
			ui.Arrow() + " Check that the identity in " + ui.Path.Sprint(configs.ConfigFileName) + " matches the store's recipient"

	case errors.Is(err, kerrors.ErrEncryptFailed):
		return ui.Cross() + " Failed to encrypt " + entry + "\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrInvalidLength):
		return ui.Cross() + " " + err.Error()

	case errors.Is(err, kerrors.ErrInvalidOTP):
		return ui.Cross() + " " + entry + " does not hold a valid " + ui.Code.Sprint("otpauth://totp") + " URI\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrStoreRead), errors.Is(err, kerrors.ErrStoreWrite):
		return ui.Cross() + " " + err.Error()

	default:
		return ui.Cross() + " Unexpected error: " + err.Error()
	}
}
