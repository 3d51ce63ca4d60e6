package render

import (
	"strings"

	"github.com/akhuoa/console-formatter/pkg/annotate"
	"github.com/akhuoa/console-formatter/pkg/styles"
)

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeHTML escapes &, < and > in raw text
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// Classes returns the CSS classes of a spec: ansi-<color>, bold, underline, dim
func Classes(spec styles.Spec) []string {
	var classes []string
	if spec.Color != styles.ColorNone {
		classes = append(classes, "ansi-"+spec.Color.String())
	}
	if spec.Bold {
		classes = append(classes, "bold")
	}
	if spec.Underline {
		classes = append(classes, "underline")
	}
	if spec.Dim {
		classes = append(classes, "dim")
	}
	return classes
}

// OpenTag returns the opening span of a spec. A spec without attributes
// still opens a span so that tags stay balanced.
func OpenTag(spec styles.Spec) string {
	classes := Classes(spec)
	if len(classes) == 0 {
		return "<span>"
	}
	return `<span class="` + strings.Join(classes, " ") + `">`
}

// CloseTag closes a span opened with OpenTag
const CloseTag = "</span>"

// HTML renders spans as nested <span class="..."> elements. Text is escaped
// before it is wrapped; markup is never escaped.
type HTML struct{}

// RenderLine implements Renderer. Partially overlapping spans are closed and
// reopened around the overlap so the markup is always well-formed.
func (HTML) RenderLine(l annotate.Line) string {
	var b strings.Builder
	var open []annotate.Span

	for _, seg := range l.Segments() {
		common := 0
		for common < len(open) && common < len(seg.Spans) && open[common] == seg.Spans[common] {
			common++
		}
		for i := len(open); i > common; i-- {
			b.WriteString(CloseTag)
		}
		for _, sp := range seg.Spans[common:] {
			b.WriteString(OpenTag(sp.Style))
		}
		open = seg.Spans

		b.WriteString(EscapeHTML(seg.Text))
	}
	for range open {
		b.WriteString(CloseTag)
	}
	return b.String()
}

// Format returns FormatHTML
func (HTML) Format() Format {
	return FormatHTML
}
