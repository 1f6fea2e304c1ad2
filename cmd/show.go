package cmd

import (
	"bytes"

	"github.com/PolarWolf314/keyage/internal/audit"
	"github.com/PolarWolf314/keyage/internal/otp"
	"github.com/PolarWolf314/keyage/internal/render"

	"github.com/spf13/cobra"
)

var (
	showQR  bool
	showOTP bool
)

func init() {
	showCmd.Flags().BoolVar(&showQR, "qr", false, "print the output as a QR code")
	showCmd.Flags().BoolVar(&showOTP, "otp", false, "treat the entry as an otpauth:// URI and print the current code")
}

var showCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Decrypts and prints an entry",
	Long: `Decrypts the entry at the given path and prints it.

With --otp the entry must be an otpauth://totp URI, and the current
one-time code is printed instead. With --qr the output is rendered as a QR
code for scanning with a phone.

Examples:
  keyage show site/login
  keyage show --otp 2fa/github
  keyage show --qr wifi/home`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting show command")
	name := args[0]

	spinner, cleanup := startSpinner("Decrypting entry...")
	defer cleanup()

	store, err := loadStore(spinner)
	if err != nil {
		spinner.FinalMSG = formatStoreError(err, name)
		return reported(err)
	}

	secret, err := store.Read(name)
	if err != nil {
		Logger.Errorf("Failed to read %s: %v", name, err)
		spinner.FinalMSG = formatStoreError(err, name)
		return reported(err)
	}
	Logger.Infof("Decrypted %s", name)

	audit.Log(store.Root(), audit.Entry{Operation: "show", Name: name})

	output := string(secret)
	if showOTP {
		code, err := otp.Code(output, now())
		if err != nil {
			spinner.FinalMSG = formatStoreError(err, name)
			return reported(err)
		}
		output = code

		label := name
		if l, err := otp.Label(string(secret)); err == nil && l != "" {
			label = l
		}
		if remaining, err := otp.Remaining(string(secret), now()); err != nil {
			Logger.Warnf("Could not tell how long the code for %s stays valid: %v", label, err)
		} else {
			Logger.Infof("Code for %s is valid for another %s", label, remaining)
		}
	}

	if showQR {
		var buf bytes.Buffer
		if err := render.QR(&buf, output); err != nil {
			return Logger.ErrorfAndReturn("failed to render QR code: %v", err)
		}
		output = buf.String()
	}

	spinner.FinalMSG = output
	return nil
}
