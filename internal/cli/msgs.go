package cli

import (
	_ "embed"
	"os"
	"strings"
	"text/template"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort      = "Annotate Cypress and console logs for terminals and browsers"
	MsgServeShort     = "Serve the web UI and its API"
	MsgFetchShort     = "Fetch a remote log and format it"
	MsgPermalinkShort = "Pack logs into shareable #log= links"
	MsgEncodeShort    = "Print the permalink fragment of a log"
	MsgDecodeShort    = "Print the log carried by a permalink"
	MsgConfigShort    = "Print the effective configuration as TOML"
	MsgVersionShort   = "Print version information"

	// Status messages
	MsgSaved     = "✓ Formatted output saved to: %s"
	MsgListening = "Serving on http://%s (Ctrl-C to stop)"
	MsgVersion   = "console-formatter version %s\n  commit: %s\n  built:  %s\n"

	// Error messages
	MsgErrTooManyArgs   = "Too many arguments"
	MsgErrFollowArgs    = "--follow needs exactly one input file"
	MsgErrFollowFormat  = "--follow writes to the terminal; use --format term or text"
	MsgErrDecodeNoLog   = "no #log= fragment found"
	MsgErrUnknownFormat = "unknown format %q (use auto, term, html or text)"
	MsgWarnStandalone   = "--standalone only applies to HTML output; ignored"

	// Flag descriptions
	MsgFlagVerbose    = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagFormat     = "Output format: auto, term, html or text"
	MsgFlagStandalone = "Wrap HTML output in a complete page"
	MsgFlagTitle      = "Title of the standalone HTML page"
	MsgFlagFollow     = "Keep formatting lines appended to the input file"
	MsgFlagConfig     = "Config file (default $XDG_CONFIG_HOME/console-formatter/config.toml)"
	MsgFlagStyles     = "YAML style sheet overriding category styles"
	MsgFlagAddr       = "Listen address"
	MsgFlagStatic     = "Serve the UI from this directory instead of the built-in one"
	MsgFlagBase       = "Prefix the fragment with this URL"
	MsgFlagRaw        = "Print the text without formatting"
	MsgFlagDefaults   = "Print the built-in defaults instead"
)

// Long messages (multi-line, loaded from files)
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/root-example.txt
	msgRootExampleRaw string
	MsgRootExample    = strings.TrimRight(msgRootExampleRaw, "\n")

	//go:embed msgs/serve-long.txt
	msgServeLongRaw string
	MsgServeLong    = strings.TrimSpace(msgServeLongRaw)

	//go:embed msgs/permalink-long.txt
	msgPermalinkLongRaw string
	MsgPermalinkLong    = strings.TrimSpace(msgPermalinkLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw) + "\n"
)

// usageFuncs are the helpers MsgUsageTemplate calls. Styling is dropped when
// stdout is not a terminal so piped help stays plain.
var usageFuncs = template.FuncMap{
	"bold": func(s string) string {
		if !stdoutIsTerminal() {
			return s
		}
		return pterm.Bold.Sprint(s)
	},
	"heading": func(s string) string {
		s = strings.ToUpper(s)
		if !stdoutIsTerminal() {
			return s
		}
		return pterm.Bold.Sprint(s)
	},
}

// stdoutIsTerminal reports whether stdout may carry styling
func stdoutIsTerminal() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
