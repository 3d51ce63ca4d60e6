package render

import (
	"strings"

	"github.com/akhuoa/console-formatter/pkg/annotate"
	"github.com/akhuoa/console-formatter/pkg/styles"
	"github.com/charmbracelet/lipgloss"
)

// ansiColors maps color categories to the basic 16 color palette
var ansiColors = map[styles.Color]lipgloss.Color{
	styles.ColorGray:    lipgloss.Color("8"),
	styles.ColorRed:     lipgloss.Color("1"),
	styles.ColorGreen:   lipgloss.Color("2"),
	styles.ColorYellow:  lipgloss.Color("3"),
	styles.ColorBlue:    lipgloss.Color("4"),
	styles.ColorMagenta: lipgloss.Color("5"),
	styles.ColorCyan:    lipgloss.Color("6"),
	styles.ColorWhite:   lipgloss.Color("7"),
}

// Terminal renders spans as ANSI escape codes through a lipgloss renderer.
//
// Each run of text is rendered with the merged style of every span around
// it, so an inner span never cancels the attributes of an outer one.
type Terminal struct {
	renderer *lipgloss.Renderer
}

// NewTerminal creates a terminal renderer. The color profile of r decides
// which codes, if any, are written.
func NewTerminal(r *lipgloss.Renderer) *Terminal {
	return &Terminal{renderer: r}
}

// Style builds the lipgloss style of a spec. Tabs are left untouched.
func (t *Terminal) Style(spec styles.Spec) lipgloss.Style {
	style := t.renderer.NewStyle().TabWidth(lipgloss.NoTabConversion)

	if spec.Bold {
		style = style.Bold(true)
	}
	if spec.Underline {
		style = style.Underline(true)
	}
	if spec.Dim {
		style = style.Faint(true)
	}
	if color, ok := ansiColors[spec.Color]; ok {
		style = style.Foreground(color)
	}
	return style
}

// RenderLine implements Renderer
func (t *Terminal) RenderLine(l annotate.Line) string {
	var b strings.Builder
	for _, seg := range l.Segments() {
		spec := seg.Style()
		if spec.IsZero() {
			b.WriteString(seg.Text)
			continue
		}
		b.WriteString(t.Style(spec).Render(seg.Text))
	}
	return b.String()
}

// Format returns FormatTerminal
func (t *Terminal) Format() Format {
	return FormatTerminal
}
