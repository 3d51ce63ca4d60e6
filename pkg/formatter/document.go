package formatter

import (
	"strings"

	"github.com/akhuoa/console-formatter/pkg/render"
	"github.com/beevik/etree"
)

// DefaultTitle is the document title used when none is given
const DefaultTitle = "Console output"

// Document wraps an HTML fragment produced by the renderer or the converter
// in a complete page: doctype, the category stylesheet and a
// <pre class="console"> holding the fragment.
//
// Control characters other than tab and newline cannot appear in the page
// and are dropped. A fragment that still does not parse is embedded as text.
func Document(title, body string) (string, error) {
	if title == "" {
		title = DefaultTitle
	}

	doc := etree.NewDocument()
	doc.CreateDirective("DOCTYPE html")

	html := doc.CreateElement("html")
	html.CreateAttr("lang", "en")

	head := html.CreateElement("head")
	head.CreateElement("meta").CreateAttr("charset", "utf-8")
	head.CreateElement("title").SetText(title)
	head.CreateElement("style").SetText(render.Stylesheet())

	pre := html.CreateElement("body").CreateElement("pre")
	pre.CreateAttr("class", "console")

	frag := etree.NewDocument()
	body = dropControls(body)
	if err := frag.ReadFromString("<pre>" + body + "</pre>"); err == nil && frag.Root() != nil {
		children := append([]etree.Token(nil), frag.Root().Child...)
		for _, child := range children {
			pre.AddChild(child)
		}
	} else {
		pre.SetText(body)
	}

	return doc.WriteToString()
}

func dropControls(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
