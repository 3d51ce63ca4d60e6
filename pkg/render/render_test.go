package render_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/akhuoa/console-formatter/pkg/annotate"
	"github.com/akhuoa/console-formatter/pkg/render"
	"github.com/akhuoa/console-formatter/pkg/styles"
	"github.com/beevik/etree"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Set a dummy renderer for all tests to ensure consistent behavior
	lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(io.Discard))
	m.Run()
}

func newTerminal(profile termenv.Profile) *render.Terminal {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(profile)
	return render.NewTerminal(r)
}

func renderTerm(t *render.Terminal, line string) string {
	return t.RenderLine(annotate.Default.Annotate(line))
}

func renderHTML(line string) string {
	return render.HTML{}.RenderLine(annotate.Default.Annotate(line))
}

func TestTerminal(t *testing.T) {
	term := newTerminal(termenv.ANSI)
	green := term.Style(styles.Spec{Color: styles.ColorGreen})

	t.Run("no category is a no-op", func(t *testing.T) {
		assert.Equal(t, "hello world", renderTerm(term, "hello world"))
		assert.Equal(t, "", renderTerm(term, ""))
	})

	t.Run("marker, assertion, bare verb", func(t *testing.T) {
		line := "✓ should visit https://example.com (42ms)"
		out := renderTerm(term, line)

		assert.Contains(t, out, green.Render("✓"))
		assert.Contains(t, out, term.Style(styles.Spec{Color: styles.ColorMagenta}).Render("should"))
		assert.Contains(t, out, " visit ", "bare verb is left unstyled")
		assert.Contains(t, out, term.Style(styles.Spec{Color: styles.ColorGray}).Render("(42ms)"))
		assert.Equal(t, line, ansi.Strip(out))
	})

	t.Run("namespaced command", func(t *testing.T) {
		out := renderTerm(term, "cy.visit('/login')")
		assert.Contains(t, out, term.Style(styles.Spec{Color: styles.ColorCyan}).Render("cy.visit"))
	})

	t.Run("timestamp, log level, dim failure word", func(t *testing.T) {
		out := renderTerm(term, "2024-01-01 cypress run 10:32:05 [ERROR] Something failed")

		assert.Contains(t, out, term.Style(styles.Spec{Color: styles.ColorBlue}).Render("2024-01-01 cypress run 10:32:05"))
		assert.Contains(t, out, term.Style(styles.Spec{Color: styles.ColorRed}).Render("[ERROR]"))
		assert.Contains(t, out, term.Style(styles.Spec{Color: styles.ColorRed, Bold: true, Dim: true}).Render("failed"))
	})

	t.Run("summary and counts", func(t *testing.T) {
		boldGreen := term.Style(styles.Spec{Color: styles.ColorGreen, Bold: true})

		assert.Equal(t, term.Style(styles.Spec{Bold: true}).Render("15 passing"), renderTerm(term, "15 passing"))
		assert.Equal(t,
			boldGreen.Render("All specs ")+boldGreen.Render("passed")+boldGreen.Render("!"),
			renderTerm(term, "All specs passed!"))
	})

	t.Run("outer attributes survive inner spans", func(t *testing.T) {
		out := renderTerm(term, "describe('✓')")
		assert.Contains(t, out, term.Style(styles.Spec{Color: styles.ColorGreen, Bold: true}).Render("✓"))
	})

	t.Run("tabs are preserved", func(t *testing.T) {
		line := "\t✓\tok"
		assert.Equal(t, line, ansi.Strip(renderTerm(term, line)))
	})

	t.Run("ascii profile writes no codes", func(t *testing.T) {
		line := "✓ 2 passing [WARN] -> https://example.com"
		assert.Equal(t, line, renderTerm(newTerminal(termenv.Ascii), line))
	})

	t.Run("writes escape codes", func(t *testing.T) {
		out := renderTerm(term, "✓")
		assert.Contains(t, out, "\x1b[")
		assert.Equal(t, render.FormatTerminal, term.Format())
	})
}

func TestHTML(t *testing.T) {
	t.Run("no category is escaped text", func(t *testing.T) {
		assert.Equal(t, "a &lt; b &amp;&amp; c &gt; d", renderHTML("a < b && c > d"))
		assert.Equal(t, `say "hi"`, renderHTML(`say "hi"`))
	})

	t.Run("text is escaped inside spans", func(t *testing.T) {
		assert.Equal(t, `&lt;div&gt; &amp; <span class="ansi-green">✓</span>`, renderHTML("<div> & ✓"))
	})

	t.Run("nested failure word", func(t *testing.T) {
		assert.Equal(t,
			`<span class="ansi-red bold">✗</span> test `+
				`<span class="ansi-red bold"><span class="ansi-red dim">failed</span></span> `+
				`<span class="ansi-gray">(120ms)</span>`,
			renderHTML("✗ test failed (120ms)"))
	})

	t.Run("first scenario", func(t *testing.T) {
		out := renderHTML("✓ should visit https://example.com (42ms)")
		assert.Contains(t, out, `<span class="ansi-green">✓</span>`)
		assert.Contains(t, out, `<span class="ansi-magenta">should</span> visit `)
		assert.Contains(t, out, `<span class="ansi-blue underline">https:`)
		assert.Contains(t, out, `<span class="ansi-gray">(42ms)</span>`)
	})

	t.Run("second scenario", func(t *testing.T) {
		out := renderHTML("2024-01-01 cypress run 10:32:05 [ERROR] Something failed")
		assert.Contains(t, out, `<span class="ansi-blue">2024-01-01 cypress run 10:32:05</span>`)
		assert.Contains(t, out, `<span class="ansi-red">[ERROR]</span>`)
		assert.Contains(t, out, `<span class="ansi-red dim">failed</span>`)
	})

	t.Run("summary nests around the marker", func(t *testing.T) {
		assert.Equal(t, `<span class="bold">15 passing</span>`, renderHTML("15 passing"))
		assert.Equal(t,
			`<span class="ansi-green bold">All specs <span class="ansi-green">passed</span>!</span>`,
			renderHTML("All specs passed!"))
	})

	t.Run("arrows match before escaping", func(t *testing.T) {
		assert.Equal(t,
			`<span class="ansi-white bold">describe('a', () <span class="ansi-cyan">=&gt;</span> {</span>`,
			renderHTML("describe('a', () => {"))
	})

	t.Run("partial overlap is split", func(t *testing.T) {
		l := annotate.Line{Text: "abcdef", Spans: []annotate.Span{
			{Start: 0, End: 4, Category: "x", Style: styles.Spec{Color: styles.ColorRed}},
			{Start: 2, End: 6, Category: "y", Style: styles.Spec{Bold: true}},
		}}
		assert.Equal(t,
			`<span class="ansi-red">ab<span class="bold">cd</span></span><span class="bold">ef</span>`,
			render.HTML{}.RenderLine(l))
	})

	t.Run("output is well-formed", func(t *testing.T) {
		lines := []string{
			"describe('Login <form>', () => {",
			"  it('logs in & out', () => { cy.visit('/a.html') })",
			"2024-01-01 x 10:00:00 ✓ PASS passed ✗ FAILED failed ⚠ skipped (1ms) 2ms",
			"[info] [warn] [error] [debug] INFO WARN ERROR DEBUG → -> => • ·",
			"https://example.com/a/b.js?x=<1> /tmp/file.txt",
			"All specs passed! Some tests failed Tests completed 1 passing 2 failing 3 pending",
		}
		for _, line := range lines {
			doc := etree.NewDocument()
			err := doc.ReadFromString("<pre>" + renderHTML(line) + "</pre>")
			require.NoError(t, err, line)
		}
	})
}

func TestClasses(t *testing.T) {
	assert.Equal(t, []string{"ansi-blue", "underline"}, render.Classes(styles.Spec{Color: styles.ColorBlue, Underline: true}))
	assert.Equal(t, []string{"ansi-red", "bold", "dim"}, render.Classes(styles.Spec{Color: styles.ColorRed, Bold: true, Dim: true}))
	assert.Empty(t, render.Classes(styles.Spec{}))
	assert.Equal(t, "<span>", render.OpenTag(styles.Spec{}))
	assert.Equal(t, `<span class="bold">`, render.OpenTag(styles.Spec{Bold: true}))
}

func TestPlain(t *testing.T) {
	line := "✓ <b> 15 passing"
	assert.Equal(t, line, render.Plain{}.RenderLine(annotate.Default.Annotate(line)))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want render.Format
	}{
		{"", render.FormatAuto},
		{"auto", render.FormatAuto},
		{"term", render.FormatTerminal},
		{"ANSI", render.FormatTerminal},
		{"html", render.FormatHTML},
		{"plain", render.FormatText},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := render.ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotEqual(t, "unknown", got.String())
		})
	}

	_, err := render.ParseFormat("json")
	assert.Error(t, err)
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, render.FormatHTML, render.FormatForPath("out/report.HTML"))
	assert.Equal(t, render.FormatHTML, render.FormatForPath("report.htm"))
	assert.Equal(t, render.FormatTerminal, render.FormatForPath("formatted.txt"))
}

func TestForFormat(t *testing.T) {
	var buf bytes.Buffer

	assert.Equal(t, render.FormatText, render.ForFormat(render.FormatAuto, &buf).Format(), "non-file writers get plain text")
	assert.Equal(t, render.FormatHTML, render.ForFormat(render.FormatHTML, &buf).Format())
	assert.Equal(t, render.FormatText, render.ForFormat(render.FormatText, &buf).Format())

	term := render.ForFormat(render.FormatTerminal, &buf)
	require.Equal(t, render.FormatTerminal, term.Format())
	assert.Contains(t, term.RenderLine(annotate.Default.Annotate("✓")), "\x1b[", "explicit terminal output is colored")
}
