package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/PolarWolf314/keyage/internal/audit"
	"github.com/PolarWolf314/keyage/internal/configs"
	kerrors "github.com/PolarWolf314/keyage/internal/errors"

	"github.com/spf13/cobra"
)

var (
	logLimit int
	logJSON  bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the audit log",
	Long: `Displays which operations were performed on the store and when.

The log records operation names and entry names, never secret values.

Examples:
  keyage log           # View full log
  keyage log -n 10     # Last 10 entries
  keyage log --json    # JSON output`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")

	rootPath, err := configs.ResolveStoreRoot()
	if err != nil {
		printStoreError(err, "")
		return reported(err)
	}

	if _, err := os.Stat(rootPath); os.IsNotExist(err) {
		err = fmt.Errorf("%w: %s", kerrors.ErrStoreNotFound, rootPath)
		printStoreError(err, "")
		return reported(err)
	}

	entries, err := audit.ReadEntries(rootPath)
	if err != nil {
		return Logger.ErrorfAndReturn("failed to read audit log: %v", err)
	}
	Logger.Debugf("Parsed %d entries from audit log", len(entries))

	if len(entries) == 0 {
		fmt.Println("No audit log entries found.")
		return nil
	}

	entries = audit.Last(entries, logLimit)

	if logJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal entries to JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%-19s  %-9s  %s\n", formatLogTime(e), e.Operation, formatLogDetails(e))
	}
	return nil
}

func formatLogTime(e audit.Entry) string {
	t, err := e.Time()
	if err != nil {
		return e.Timestamp
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func formatLogDetails(e audit.Entry) string {
	details := e.Name
	if e.Recipient != "" {
		details = e.Recipient
	}
	if e.Force {
		details += " (forced)"
	}
	return details
}
