package cli

import (
	"io"
	"os"

	"github.com/akhuoa/console-formatter/pkg/errors"
	"github.com/akhuoa/console-formatter/pkg/permalink"
	"github.com/spf13/cobra"
)

func newPermalinkCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permalink",
		Short: MsgPermalinkShort,
		Long:  MsgPermalinkLong,
	}
	cmd.AddCommand(newEncodeCmd(), newDecodeCmd(a))
	return cmd
}

func newEncodeCmd() *cobra.Command {
	var base string

	cmd := &cobra.Command{
		Use:   "encode [file]",
		Short: MsgEncodeShort,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var link string
			if base != "" {
				link, err = permalink.Link(base, text)
			} else {
				link, err = permalink.Fragment(text)
			}
			if err != nil {
				return err
			}
			return writeText(cmd.OutOrStdout(), link)
		},
	}

	cmd.Flags().StringVar(&base, "base", "", MsgFlagBase)
	return cmd
}

func newDecodeCmd(a *app) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "decode <url|fragment>",
		Short: MsgDecodeShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, ok := permalink.ParseFragment(args[0])
			if !ok {
				return errors.New(errors.ErrInvalidInput, MsgErrDecodeNoLog)
			}
			text, err := permalink.Decode(data)
			if err != nil {
				return err
			}
			return a.print(cmd, text, raw)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, MsgFlagRaw)
	return cmd
}

// readInput reads the file named by args, or stdin when there is none
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", errors.Wrap(err, errors.ErrFileAccess, "failed to read input")
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrapf(err, errors.ErrFileNotFound, "input file not found: %s", args[0]).
				WithDetail("path", args[0])
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", args[0]).
			WithDetail("path", args[0])
	}
	return string(data), nil
}
