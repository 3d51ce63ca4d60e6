package cli

import (
	"io"
	"os"

	"github.com/akhuoa/console-formatter/pkg/annotate"
	"github.com/akhuoa/console-formatter/pkg/config"
	"github.com/akhuoa/console-formatter/pkg/errors"
	"github.com/akhuoa/console-formatter/pkg/fetch"
	"github.com/akhuoa/console-formatter/pkg/formatter"
	"github.com/akhuoa/console-formatter/pkg/logging"
	"github.com/akhuoa/console-formatter/pkg/paths"
	"github.com/akhuoa/console-formatter/pkg/render"
	"github.com/akhuoa/console-formatter/pkg/styles"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app holds the global flags and the configuration they resolve to
type app struct {
	verbosity  int
	configFile string
	format     string
	standalone bool
	title      string
	follow     bool
	stylesFile string

	cfg *config.Config
}

// setup loads the configuration, flags over environment over files, and
// configures logging
func (a *app) setup(cmd *cobra.Command, args []string) error {
	overrides := map[string]interface{}{}
	flags := cmd.Flags()
	if flags.Changed("format") {
		overrides["output.format"] = a.format
	}
	if flags.Changed("standalone") {
		overrides["output.standalone"] = a.standalone
	}
	if flags.Changed("styles") {
		overrides["annotate.styles"] = a.stylesFile
	}

	cfg, err := config.Load(config.LoadOptions{File: a.configFile, Overrides: overrides})
	if err != nil {
		return err
	}
	a.cfg = cfg

	logging.SetupLoggerWithOptions(logging.Options{
		Verbosity: a.verbosity,
		Console:   cmd.ErrOrStderr(),
		File:      cfg.Log.File,
	})
	logging.LogCommand(cmd.CommandPath(), args)
	return nil
}

// catalog builds the annotation catalog from the configuration. Styles come
// from annotate.styles, else from the XDG styles file when present.
func (a *app) catalog() (*annotate.Catalog, error) {
	reg := styles.Default()

	path := a.cfg.Annotate.Styles
	if path == "" {
		if candidate := paths.New().StylesFile(); fileExists(candidate) {
			path = candidate
		}
	}
	if path != "" {
		var err error
		reg, err = styles.LoadStyles(paths.ExpandHome(path))
		if err != nil {
			return nil, err
		}
		log.Debug().Str("path", path).Msg("Loaded style sheet")
	}

	return annotate.NewCatalog(annotate.Options{
		Prefix:   a.cfg.Annotate.Prefix,
		Commands: a.cfg.Annotate.Commands,
		Styles:   reg,
	}), nil
}

// outputFormat resolves the configured format. Auto picks from the output
// file extension, or from out when writing to a stream.
func (a *app) outputFormat(out io.Writer, outputPath string) (render.Format, error) {
	f, err := render.ParseFormat(a.cfg.Output.Format)
	if err != nil {
		return f, errors.Newf(errors.ErrInvalidInput, MsgErrUnknownFormat, a.cfg.Output.Format)
	}
	if f != render.FormatAuto {
		return f, nil
	}
	if outputPath != "" {
		return render.FormatForPath(outputPath), nil
	}
	return render.ForFormat(render.FormatAuto, out).Format(), nil
}

// newFormatter returns a formatter writing to out, or to outputPath when set
func (a *app) newFormatter(out io.Writer, outputPath string) (*formatter.Formatter, error) {
	catalog, err := a.catalog()
	if err != nil {
		return nil, err
	}
	format, err := a.outputFormat(out, outputPath)
	if err != nil {
		return nil, err
	}

	target := out
	if outputPath != "" {
		target = io.Discard
	}

	var opts []formatter.Option
	if a.cfg.Output.Standalone {
		if format == render.FormatHTML {
			opts = append(opts, formatter.WithStandalone(a.title))
		} else {
			log.Warn().Str("format", format.String()).Msg(MsgWarnStandalone)
		}
	}
	return formatter.New(catalog, render.ForFormat(format, target), opts...), nil
}

func (a *app) fetchClient() *fetch.Client {
	return fetch.New(fetch.Options{
		Timeout:   a.cfg.Fetch.Timeout,
		Limit:     a.cfg.Fetch.Limit,
		UserAgent: a.cfg.Fetch.Agent,
	})
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
