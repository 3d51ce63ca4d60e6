// Package formatter drives a whole input through the annotator or the
// escape-sequence converter.
//
// The choice is made once per input: when the text contains an escape
// sequence introducer anywhere it is treated as already colored and the
// annotator is not run at all. Otherwise every line is annotated on its own
// and the lines are joined back with "\n".
package formatter

import (
	"io"
	"os"
	"strings"

	"github.com/akhuoa/console-formatter/pkg/annotate"
	"github.com/akhuoa/console-formatter/pkg/ansihtml"
	"github.com/akhuoa/console-formatter/pkg/errors"
	"github.com/akhuoa/console-formatter/pkg/logging"
	"github.com/akhuoa/console-formatter/pkg/render"
	"github.com/charmbracelet/x/ansi"
)

// Formatter formats text for one renderer. It holds no per-call state and
// is safe for concurrent use.
type Formatter struct {
	catalog    *annotate.Catalog
	renderer   render.Renderer
	standalone bool
	title      string
}

// Option configures a Formatter
type Option func(*Formatter)

// WithStandalone wraps HTML output in a complete document with the given
// title
func WithStandalone(title string) Option {
	return func(f *Formatter) {
		f.standalone = true
		f.title = title
	}
}

// New creates a formatter. A nil catalog means annotate.Default.
func New(catalog *annotate.Catalog, renderer render.Renderer, opts ...Option) *Formatter {
	if catalog == nil {
		catalog = annotate.Default
	}
	if renderer == nil {
		renderer = render.Plain{}
	}
	f := &Formatter{catalog: catalog, renderer: renderer}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Renderer returns the renderer of the formatter
func (f *Formatter) Renderer() render.Renderer {
	return f.renderer
}

// FormatLine annotates and renders a single line
func (f *Formatter) FormatLine(line string) string {
	return f.renderer.RenderLine(f.catalog.Annotate(line))
}

// Format formats a whole input. It never fails.
//
// Already colored input is converted to HTML for the HTML target, passed
// through for the terminal target and stripped of its escapes for plain
// text.
func (f *Formatter) Format(text string) string {
	if ansihtml.Detect(text) {
		switch f.renderer.Format() {
		case render.FormatHTML:
			return ansihtml.Convert(text)
		case render.FormatTerminal:
			return text
		default:
			return ansi.Strip(text)
		}
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = f.FormatLine(line)
	}
	return strings.Join(lines, "\n")
}

// Output formats text and, for standalone HTML, wraps it in a document
func (f *Formatter) Output(text string) (string, error) {
	out := f.Format(text)
	if f.standalone && f.renderer.Format() == render.FormatHTML {
		return Document(f.title, out)
	}
	return out, nil
}

// FormatReader reads r to the end and formats it
func (f *Formatter) FormatReader(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrFileAccess, "failed to read input")
	}
	return f.Output(string(data))
}

// ProcessFile formats the file at inputPath. The result is written to
// outputPath, or to w when outputPath is empty.
func (f *Formatter) ProcessFile(inputPath, outputPath string, w io.Writer) error {
	logger := logging.GetLogger("formatter")
	done := logging.LogOperationStart(logger, "process-file")
	defer done()

	data, err := os.ReadFile(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrFileNotFound, "input file not found: %s", inputPath).
				WithDetail("path", inputPath)
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", inputPath).
			WithDetail("path", inputPath)
	}

	out, err := f.Output(string(data))
	if err != nil {
		return err
	}

	if outputPath == "" {
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		if _, err := io.WriteString(w, out); err != nil {
			return errors.Wrap(err, errors.ErrFileWrite, "failed to write output")
		}
		return nil
	}

	if err := os.WriteFile(outputPath, []byte(out), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", outputPath).
			WithDetail("path", outputPath)
	}
	logger.Info().
		Str("input", inputPath).
		Str("output", outputPath).
		Int("bytes", len(out)).
		Msg("Formatted output saved")
	return nil
}
