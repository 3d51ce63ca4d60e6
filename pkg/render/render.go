// Package render turns annotated lines into output for a target: ANSI
// terminal codes, HTML markup or plain text.
//
// All renderers consume the same annotate.Line, so the targets share one
// catalog and one overlap policy and differ only in how a styles.Spec is
// written out.
package render

import (
	"io"
	"os"

	"github.com/akhuoa/console-formatter/pkg/annotate"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Renderer writes an annotated line for one output target
type Renderer interface {
	// RenderLine renders a single annotated line. It never fails.
	RenderLine(l annotate.Line) string
	// Format reports the target of the renderer
	Format() Format
}

// Plain renders the visible text only
type Plain struct{}

// RenderLine returns the line text unchanged
func (Plain) RenderLine(l annotate.Line) string {
	return l.Text
}

// Format returns FormatText
func (Plain) Format() Format {
	return FormatText
}

// ForFormat returns the renderer of a format. FormatAuto is resolved against
// out with DetectFormat; the terminal renderer detects the color profile of
// out when it is a terminal and falls back to plain ANSI codes otherwise.
func ForFormat(f Format, out io.Writer) Renderer {
	if f == FormatAuto {
		f = FormatText
		if file, ok := out.(*os.File); ok {
			f = DetectFormat(file)
		}
	}

	switch f {
	case FormatHTML:
		return HTML{}
	case FormatTerminal:
		r := lipgloss.NewRenderer(out)
		if file, ok := out.(*os.File); !ok || termenv.NewOutput(file).Profile == termenv.Ascii {
			r.SetColorProfile(termenv.ANSI)
		}
		return NewTerminal(r)
	default:
		return Plain{}
	}
}
