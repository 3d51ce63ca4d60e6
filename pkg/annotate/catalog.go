package annotate

import (
	"regexp"
	"strings"

	"github.com/akhuoa/console-formatter/pkg/styles"
)

// Category identifies a class of lexical pattern. Its value is also the key
// of its style in a styles.Registry.
type Category string

// Categories, in application order
const (
	Passing    Category = "passing"
	Failing    Category = "failing"
	Pending    Category = "pending"
	Command    Category = "command"
	Assertion  Category = "assertion"
	Duration   Category = "duration"
	Timestamp  Category = "timestamp"
	URL        Category = "url"
	Path       Category = "path"
	LogInfo    Category = "log-info"
	LogWarn    Category = "log-warn"
	LogError   Category = "log-error"
	LogDebug   Category = "log-debug"
	FailedWord Category = "failed-word"
	Arrow      Category = "arrow"
	Bullet     Category = "bullet"
	Summary    Category = "summary"
	Count      Category = "count"

	// Structural categories, keyed on line position
	Block Category = "block"
	Case  Category = "case"
)

// DefaultPrefix is the namespace command invocations are recognized under
const DefaultPrefix = "cy"

// DefaultCommands is the command allow-list recognized after the prefix
var DefaultCommands = []string{"visit", "get", "click", "type", "should", "contains", "wait", "intercept"}

// Rule is one entry of a catalog.
type Rule struct {
	Category Category
	Pattern  *regexp.Regexp
	Style    styles.Spec

	order int
}

// Apply returns l with one span added per match of the rule's pattern.
// Matching runs on the visible text, so earlier spans never hide a match.
func (r Rule) Apply(l Line) Line {
	matches := r.Pattern.FindAllStringIndex(l.Text, -1)
	if len(matches) == 0 {
		return l
	}

	spans := make([]Span, len(l.Spans), len(l.Spans)+len(matches))
	copy(spans, l.Spans)
	for _, m := range matches {
		if m[0] == m[1] {
			continue
		}
		spans = append(spans, Span{
			Start:    m[0],
			End:      m[1],
			Category: r.Category,
			Style:    r.Style,
			order:    r.order,
		})
	}
	return Line{Text: l.Text, Spans: spans}
}

// Options configures a catalog
type Options struct {
	// Prefix is the command namespace, "cy" when empty
	Prefix string
	// Commands is the command allow-list, DefaultCommands when empty
	Commands []string
	// Styles resolves category styles, styles.Default() when nil
	Styles styles.Registry
}

// DefaultOptions returns the options of the default catalog
func DefaultOptions() Options {
	return Options{
		Prefix:   DefaultPrefix,
		Commands: DefaultCommands,
		Styles:   styles.Default(),
	}
}

// Catalog is an ordered, immutable list of rules followed by the structural
// rules. It is safe for concurrent use.
type Catalog struct {
	rules      []Rule
	structural []Rule
}

// Default is the catalog built from DefaultOptions
var Default = NewCatalog(DefaultOptions())

type ruleDef struct {
	category Category
	pattern  string
}

// NewCatalog builds a catalog. Command names are quoted, so no option value
// can make a pattern fail to compile.
func NewCatalog(opts Options) *Catalog {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Styles == nil {
		opts.Styles = styles.Default()
	}

	commands := quoteCommands(opts.Commands)
	if len(commands) == 0 {
		commands = quoteCommands(DefaultCommands)
	}

	defs := []ruleDef{
		// 1. result markers
		{Passing, `(?i)✓|✅|\bPASS\b|\bpassed\b`},
		{Failing, `(?i)✗|❌|\bFAIL(?:ED)?\b`},
		{Pending, `(?i)⚠|\bpending\b|\bskipped\b`},
		// 2. command invocations
		{Command, `\b` + regexp.QuoteMeta(opts.Prefix) + `\.(?:` + strings.Join(commands, "|") + `)\b`},
		// 3. assertion vocabulary
		{Assertion, `(?i)\b(?:should|expect|assert)\b`},
		// 4. durations
		{Duration, `\(\d+ms\)|\b\d+ms\b`},
		// 5. timestamps
		{Timestamp, `\b\d{4}-\d{2}-\d{2}.*\d{2}:\d{2}:\d{2}\b`},
		// 6. URLs
		{URL, `\b[a-zA-Z][a-zA-Z0-9+.\-]*://\S+`},
		// 7. file paths
		{Path, `/[\w\-.@/]+\.[a-z]{1,8}\b`},
		// 8. log levels: bracketed in any case, bare in upper case
		{LogInfo, `(?i:\[info\])|\bINFO\b`},
		{LogWarn, `(?i:\[warn(?:ing)?\])|\bWARN(?:ING)?\b`},
		{LogError, `(?i:\[error\])|\bERROR\b`},
		{LogDebug, `(?i:\[debug\])|\bDEBUG\b`},
		// 9. softer failure word
		{FailedWord, `(?i)\bfailed\b`},
		// 10. glyphs
		{Arrow, `→|->|=>`},
		{Bullet, `•|·`},
		// 11. summary lines
		{Summary, `(?i)All specs passed!|Some tests failed|Tests completed`},
		// 12. aggregate counts
		{Count, `(?i)\b\d+ (?:passing|failing|pending)\b`},
	}

	c := &Catalog{rules: make([]Rule, 0, len(defs))}
	for i, d := range defs {
		c.rules = append(c.rules, Rule{
			Category: d.category,
			Pattern:  regexp.MustCompile(d.pattern),
			Style:    opts.Styles.Get(string(d.category)),
			order:    i,
		})
	}

	// Structural rules sort before every pattern rule so they end up outermost.
	// Only the first matching one applies.
	c.structural = []Rule{
		{Category: Block, Pattern: regexp.MustCompile(`^\s*(?:describe|context)\s*\(`), Style: opts.Styles.Get(string(Block)), order: -2},
		{Category: Case, Pattern: regexp.MustCompile(`^\s*it\s*\(`), Style: opts.Styles.Get(string(Case)), order: -1},
	}
	return c
}

// quoteCommands drops blank names and quotes the rest
func quoteCommands(names []string) []string {
	commands := make([]string, 0, len(names))
	for _, c := range names {
		if c = strings.TrimSpace(c); c != "" {
			commands = append(commands, regexp.QuoteMeta(c))
		}
	}
	return commands
}

// Rules returns the pattern rules in application order followed by the
// structural rules
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, 0, len(c.rules)+len(c.structural))
	out = append(out, c.rules...)
	return append(out, c.structural...)
}

// Annotate classifies the substrings of a single line. It never fails; a line
// with no recognized text comes back with no spans.
func (c *Catalog) Annotate(line string) Line {
	l := Line{Text: line}
	for _, r := range c.rules {
		l = r.Apply(l)
	}

	// The structural pass looks at the original line, not at what the
	// pattern rules produced.
	for _, r := range c.structural {
		if r.Pattern.MatchString(line) {
			l.Spans = append(l.Spans, Span{
				Start:    0,
				End:      len(line),
				Category: r.Category,
				Style:    r.Style,
				order:    r.order,
			})
			break
		}
	}
	return l
}
