package main

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/keyage/cmd"
	"github.com/PolarWolf314/keyage/internal/ui"
)

func main() {
	if err := cmd.RootCmd.Execute(); err != nil {
		if !cmd.IsReported(err) {
			fmt.Fprintln(os.Stderr, ui.Cross()+" "+err.Error())
		}
		os.Exit(cmd.ExitCode(err))
	}
}
