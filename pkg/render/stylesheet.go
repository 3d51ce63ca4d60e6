package render

// Stylesheet returns the CSS rules for the classes written by the HTML
// renderer and the escape-sequence converter, tuned for a dark background.
func Stylesheet() string {
	return stylesheet
}

const stylesheet = `.console {
  background: #0d1117;
  color: #c9d1d9;
  font-family: ui-monospace, SFMono-Regular, Menlo, Consolas, monospace;
  font-size: 13px;
  line-height: 1.45;
  padding: 16px;
  white-space: pre;
}
.ansi-gray { color: #8b949e; }
.ansi-red { color: #ff7b72; }
.ansi-green { color: #3fb950; }
.ansi-yellow { color: #d29922; }
.ansi-blue { color: #58a6ff; }
.ansi-magenta { color: #d2a8ff; }
.ansi-cyan { color: #39c5cf; }
.ansi-white { color: #f0f6fc; }
.bold { font-weight: 700; }
.underline { text-decoration: underline; }
.dim { opacity: 0.7; }
`
