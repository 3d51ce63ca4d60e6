// Package cli implements the console-formatter command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/akhuoa/console-formatter/internal/version"
	"github.com/akhuoa/console-formatter/pkg/errors"
	"github.com/akhuoa/console-formatter/pkg/formatter"
	"github.com/akhuoa/console-formatter/pkg/logging"
	"github.com/akhuoa/console-formatter/pkg/render"
	"github.com/akhuoa/console-formatter/pkg/topics"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	cobra.AddTemplateFuncs(usageFuncs)

	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "console-formatter [input-file] [output-file]",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Example: MsgRootExample,
		Version: version.Version,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 2 {
				return &UsageError{Cmd: cmd, Err: errors.New(errors.ErrInvalidInput, MsgErrTooManyArgs)}
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.follow {
				return a.runFollow(cmd, args)
			}
			return a.run(cmd, args)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVarP(&a.format, "format", "f", "auto", MsgFlagFormat)
	rootCmd.PersistentFlags().StringVar(&a.stylesFile, "styles", "", MsgFlagStyles)

	// Formatting flags
	rootCmd.Flags().BoolVar(&a.standalone, "standalone", false, MsgFlagStandalone)
	rootCmd.Flags().StringVar(&a.title, "title", "", MsgFlagTitle)
	rootCmd.Flags().BoolVarP(&a.follow, "follow", "F", false, MsgFlagFollow)

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UsageError{Cmd: cmd, Err: err}
	})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newFetchCmd(a))
	rootCmd.AddCommand(newPermalinkCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	// Initialize topic-based help system
	var renderer topics.Renderer = &topics.PlainRenderer{}
	if stdoutIsTerminal() {
		renderer = topics.NewGlamourRenderer()
	}
	_, err := topics.Initialize(rootCmd, helpTopics(), topics.Options{Renderer: renderer})
	logging.Must(err, "Embedded help topics are invalid")

	return rootCmd
}

// run formats stdin, one file to stdout, or one file into another
func (a *app) run(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	switch len(args) {
	case 0:
		in := cmd.InOrStdin()
		if isInteractive(in) {
			return cmd.Help()
		}
		f, err := a.newFormatter(out, "")
		if err != nil {
			return err
		}
		text, err := f.FormatReader(in)
		if err != nil {
			return err
		}
		return writeText(out, text)

	case 1:
		f, err := a.newFormatter(out, "")
		if err != nil {
			return err
		}
		return f.ProcessFile(args[0], "", out)

	default:
		f, err := a.newFormatter(out, args[1])
		if err != nil {
			return err
		}
		if err := f.ProcessFile(args[0], args[1], nil); err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, successStyle(out).Render(fmt.Sprintf(MsgSaved, args[1])))
		return err
	}
}

// runFollow formats the input file and keeps formatting what is appended
// to it until interrupted
func (a *app) runFollow(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return &UsageError{Cmd: cmd, Err: errors.New(errors.ErrInvalidInput, MsgErrFollowArgs)}
	}
	out := cmd.OutOrStdout()

	f, err := a.newFormatter(out, "")
	if err != nil {
		return err
	}
	if f.Renderer().Format() == render.FormatHTML {
		return errors.New(errors.ErrInvalidInput, MsgErrFollowFormat)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return formatter.NewFollower(args[0], f, out).Run(ctx)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// isInteractive reports whether in is a terminal rather than a pipe or file
func isInteractive(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// writeText writes text ending with exactly one added newline when it has
// none
func writeText(w io.Writer, text string) error {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if _, err := io.WriteString(w, text); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to write output")
	}
	return nil
}
