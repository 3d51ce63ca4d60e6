package cli

import (
	"time"

	"github.com/akhuoa/console-formatter/pkg/logging"
	"github.com/spf13/cobra"
)

func newFetchCmd(a *app) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: MsgFetchShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer logging.LogDuration(time.Now(), "fetch")
			text, err := a.fetchClient().Fetch(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd, text, raw)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, MsgFlagRaw)
	return cmd
}

// print writes text to the command output, formatted unless raw
func (a *app) print(cmd *cobra.Command, text string, raw bool) error {
	out := cmd.OutOrStdout()
	if raw {
		return writeText(out, text)
	}

	f, err := a.newFormatter(out, "")
	if err != nil {
		return err
	}
	formatted, err := f.Output(text)
	if err != nil {
		return err
	}
	return writeText(out, formatted)
}
