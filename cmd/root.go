package cmd

import (
	logger "github.com/PolarWolf314/keyage/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	RootCmd = &cobra.Command{
		Use:   "keyage",
		Short: "A password store encrypted with age",
		Long: `keyage keeps passwords and other small secrets in a directory tree of
age-encrypted files, one file per entry.

Entries are sealed for a single recipient (an age public key or an SSH
public key) and opened with the matching identity. The store location is
taken from $KEYAGE_STORE, or a keyage-store directory in your local data
directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing %s command with verbose=%t, debug=%t", cmd.Name(), verbose, debug)
		},
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	RootCmd.AddCommand(initCmd)
	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(insertCmd)
	RootCmd.AddCommand(generateCmd)
	RootCmd.AddCommand(removeCmd)
	RootCmd.AddCommand(showCmd)
	RootCmd.AddCommand(logCmd)
}

// Helper functions for testing

// ResetGlobalState resets all flags to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	Logger = logger.Logger{}
	resetFlags(RootCmd)
}

// resetFlags restores every flag of c and its subcommands to its default,
// since cobra keeps parsed values between Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)

	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}
