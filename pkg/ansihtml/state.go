package ansihtml

import "github.com/akhuoa/console-formatter/pkg/styles"

// State is the set of attributes in effect at a point of the stream. The zero
// value is the state at stream start.
type State struct {
	Color     styles.Color
	Bold      bool
	Underline bool
}

// Apply returns the state after a
func (s State) Apply(a Attribute) State {
	switch a.Kind {
	case KindReset:
		return State{}
	case KindColor:
		s.Color = a.Color
	case KindClearColor:
		s.Color = styles.ColorNone
	case KindBold:
		s.Bold = true
	case KindNoBold:
		s.Bold = false
	case KindUnderline:
		s.Underline = true
	case KindNoUnderline:
		s.Underline = false
	}
	return s
}

// Empty reports whether no attribute is set
func (s State) Empty() bool {
	return s == State{}
}

// Spec returns the style of the state
func (s State) Spec() styles.Spec {
	return styles.Spec{Color: s.Color, Bold: s.Bold, Underline: s.Underline}
}
