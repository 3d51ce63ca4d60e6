package main

import (
	"os"

	"github.com/akhuoa/console-formatter/internal/cli"
)

func main() {
	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		cli.ReportError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}
