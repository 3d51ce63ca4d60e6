// Package styles defines the visual attributes applied to annotated spans.
//
// A Spec is target independent: the terminal renderer turns it into SGR codes
// through lipgloss, the HTML renderer into CSS class names. Category styles
// are loaded from an embedded YAML sheet and can be overridden by a user
// sheet, category by category:
//
//	categories:
//	  passing:
//	    foreground: green
//	  failed-word:
//	    foreground: red
//	    dim: true
package styles

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/akhuoa/console-formatter/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Color is a foreground color category. Bright and normal variants of a
// terminal color share one category.
type Color int

const (
	ColorNone Color = iota
	ColorGray
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
)

var colorNames = map[Color]string{
	ColorGray:    "gray",
	ColorRed:     "red",
	ColorGreen:   "green",
	ColorYellow:  "yellow",
	ColorBlue:    "blue",
	ColorMagenta: "magenta",
	ColorCyan:    "cyan",
	ColorWhite:   "white",
}

// String returns the color name, or "" for ColorNone
func (c Color) String() string {
	return colorNames[c]
}

// ParseColor parses a color name. "grey" and "black" are accepted as gray.
func ParseColor(s string) (Color, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "", "none":
		return ColorNone, nil
	case "grey", "black":
		return ColorGray, nil
	}
	for c, n := range colorNames {
		if n == name {
			return c, nil
		}
	}
	return ColorNone, fmt.Errorf("unknown color: %s", s)
}

// Spec is a composable set of visual attributes.
type Spec struct {
	Color     Color
	Bold      bool
	Underline bool
	Dim       bool
}

// IsZero reports whether the spec carries no attribute at all
func (s Spec) IsZero() bool {
	return s == Spec{}
}

// Merge layers inner over s: the inner color wins when set, flags accumulate.
func (s Spec) Merge(inner Spec) Spec {
	out := s
	if inner.Color != ColorNone {
		out.Color = inner.Color
	}
	out.Bold = out.Bold || inner.Bold
	out.Underline = out.Underline || inner.Underline
	out.Dim = out.Dim || inner.Dim
	return out
}

// String renders the spec as a space separated attribute list, e.g. "red bold"
func (s Spec) String() string {
	var parts []string
	if s.Color != ColorNone {
		parts = append(parts, s.Color.String())
	}
	if s.Bold {
		parts = append(parts, "bold")
	}
	if s.Underline {
		parts = append(parts, "underline")
	}
	if s.Dim {
		parts = append(parts, "dim")
	}
	return strings.Join(parts, " ")
}

// StyleDef represents a style definition in YAML
type StyleDef struct {
	Foreground string `yaml:"foreground,omitempty"`
	Bold       bool   `yaml:"bold,omitempty"`
	Underline  bool   `yaml:"underline,omitempty"`
	Dim        bool   `yaml:"dim,omitempty"`
}

// Config represents a complete style sheet
type Config struct {
	Categories map[string]StyleDef `yaml:"categories"`
}

// Registry maps category ids to specs. Registries are treated as values:
// every function returning one returns a fresh map.
type Registry map[string]Spec

//go:embed styles.yaml
var embeddedStyles []byte

var defaultRegistry Registry

func init() {
	reg, err := LoadStylesFromData(embeddedStyles)
	if err != nil {
		panic(fmt.Sprintf("embedded styles.yaml is invalid: %v", err))
	}
	defaultRegistry = reg
}

// Default returns a copy of the built-in category styles
func Default() Registry {
	return defaultRegistry.Merge(nil)
}

// LoadStylesFromData parses a YAML style sheet
func LoadStylesFromData(data []byte) (Registry, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(err, errors.ErrStylesLoad, "failed to parse styles data")
	}

	reg := make(Registry, len(config.Categories))
	for name, def := range config.Categories {
		spec, err := buildSpec(def)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrStylesLoad, "invalid style for category %q", name)
		}
		reg[name] = spec
	}
	return reg, nil
}

// LoadStyles reads a user style sheet and merges it over the built-in styles
func LoadStyles(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrStylesLoad, "failed to read styles file %s", path).
			WithDetail("path", path)
	}

	user, err := LoadStylesFromData(data)
	if err != nil {
		return nil, err
	}
	return Default().Merge(user), nil
}

// Get returns the spec of a category; unknown categories are unstyled
func (r Registry) Get(name string) Spec {
	return r[name]
}

// Merge returns a new registry with the entries of o replacing those of r
func (r Registry) Merge(o Registry) Registry {
	out := make(Registry, len(r)+len(o))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Names returns the category ids in the registry, sorted
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func buildSpec(def StyleDef) (Spec, error) {
	color, err := ParseColor(def.Foreground)
	if err != nil {
		return Spec{}, err
	}
	return Spec{
		Color:     color,
		Bold:      def.Bold,
		Underline: def.Underline,
		Dim:       def.Dim,
	}, nil
}
