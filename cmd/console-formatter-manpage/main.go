// Command console-formatter-manpage writes the console-formatter man pages:
// one page per command into a directory, or the root page to stdout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/akhuoa/console-formatter/internal/cli"
	"github.com/akhuoa/console-formatter/internal/version"
)

func main() {
	if len(os.Args) > 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s [output-dir]\n", os.Args[0])
		os.Exit(1)
	}

	rootCmd := cli.NewRootCmd()
	header := &doc.GenManHeader{
		Title:   "CONSOLE-FORMATTER",
		Section: "1",
		Source:  "console-formatter " + version.Version,
		Manual:  "console-formatter manual",
	}

	var err error
	if len(os.Args) == 2 {
		dir := os.Args[1]
		if err = os.MkdirAll(dir, 0o755); err == nil {
			err = doc.GenManTree(rootCmd, header, dir)
		}
	} else {
		err = doc.GenMan(rootCmd, header, os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
