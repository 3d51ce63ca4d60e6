// Package ansihtml converts text carrying SGR escape sequences
// (ESC [ params m) into HTML, one <span class="..."> per run of text with the
// same attributes.
//
// Only the attributes the annotator itself can produce are tracked: a
// foreground color category, bold and underline. Every other SGR code is
// decoded and dropped. Escape sequences that are not SGR are kept as literal
// text.
package ansihtml

import (
	"strconv"
	"strings"

	"github.com/akhuoa/console-formatter/pkg/styles"
)

// Kind tags an Attribute
type Kind int

const (
	KindReset Kind = iota + 1
	KindColor
	KindClearColor
	KindBold
	KindNoBold
	KindUnderline
	KindNoUnderline
)

var kindNames = map[Kind]string{
	KindReset:       "reset",
	KindColor:       "color",
	KindClearColor:  "clear-color",
	KindBold:        "bold",
	KindNoBold:      "no-bold",
	KindUnderline:   "underline",
	KindNoUnderline: "no-underline",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Attribute is one decoded SGR code. Color is only set for KindColor.
type Attribute struct {
	Kind  Kind
	Color styles.Color
}

// sgrColors maps the normal and bright foreground codes to color categories.
// Black is shown as gray.
var sgrColors = map[int]styles.Color{
	30: styles.ColorGray, 90: styles.ColorGray,
	31: styles.ColorRed, 91: styles.ColorRed,
	32: styles.ColorGreen, 92: styles.ColorGreen,
	33: styles.ColorYellow, 93: styles.ColorYellow,
	34: styles.ColorBlue, 94: styles.ColorBlue,
	35: styles.ColorMagenta, 95: styles.ColorMagenta,
	36: styles.ColorCyan, 96: styles.ColorCyan,
	37: styles.ColorWhite, 97: styles.ColorWhite,
}

// ParseParams splits the parameter bytes of a sequence. An empty list and
// empty fields read as 0; a field that is not a number reads as -1 and is
// ignored by Decode.
func ParseParams(s string) []int {
	if s == "" {
		return []int{0}
	}
	fields := strings.Split(s, ";")
	params := make([]int, len(fields))
	for i, f := range fields {
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			n = -1
		}
		params[i] = n
	}
	return params
}

// Decode turns SGR codes into attributes, in order. Extended color
// introducers (38 and 48) swallow their 5;n or 2;r;g;b arguments.
func Decode(params []int) []Attribute {
	var attrs []Attribute
	for i := 0; i < len(params); i++ {
		code := params[i]
		switch {
		case code == 0:
			attrs = append(attrs, Attribute{Kind: KindReset})
		case code == 1:
			attrs = append(attrs, Attribute{Kind: KindBold})
		case code == 22:
			attrs = append(attrs, Attribute{Kind: KindNoBold})
		case code == 4:
			attrs = append(attrs, Attribute{Kind: KindUnderline})
		case code == 24:
			attrs = append(attrs, Attribute{Kind: KindNoUnderline})
		case code == 39:
			attrs = append(attrs, Attribute{Kind: KindClearColor})
		case code == 38 || code == 48:
			i += extendedArgs(params[i+1:])
		default:
			if c, ok := sgrColors[code]; ok {
				attrs = append(attrs, Attribute{Kind: KindColor, Color: c})
			}
		}
	}
	return attrs
}

// extendedArgs returns how many parameters follow an extended color
// introducer
func extendedArgs(rest []int) int {
	if len(rest) == 0 {
		return 0
	}
	n := 1
	switch rest[0] {
	case 5:
		n += 1
	case 2:
		n += 3
	}
	if n > len(rest) {
		n = len(rest)
	}
	return n
}
