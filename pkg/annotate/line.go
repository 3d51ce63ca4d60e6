package annotate

import (
	"sort"

	"github.com/akhuoa/console-formatter/pkg/styles"
)

// Span marks the byte range [Start, End) of a line as belonging to a category
type Span struct {
	Start    int
	End      int
	Category Category
	Style    styles.Spec

	order int
}

// Line is a line of text and the spans found in it. Lines carry no state
// from one another.
type Line struct {
	Text  string
	Spans []Span
}

// Segment is a run of text covered by the same spans. Spans lists them
// outer to inner.
type Segment struct {
	Text  string
	Spans []Span
}

// Style returns the effective style of the segment, inner spans layered
// over outer ones
func (s Segment) Style() styles.Spec {
	var spec styles.Spec
	for _, sp := range s.Spans {
		spec = spec.Merge(sp.Style)
	}
	return spec
}

// outer reports whether a nests outside b
func outer(a, b Span) bool {
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	if a.End != b.End {
		return a.End > b.End
	}
	return a.order < b.order
}

// Segments splits the line at every span boundary. Concatenating the segment
// texts gives back the line.
func (l Line) Segments() []Segment {
	if l.Text == "" {
		return nil
	}
	if len(l.Spans) == 0 {
		return []Segment{{Text: l.Text}}
	}

	spans := make([]Span, len(l.Spans))
	copy(spans, l.Spans)
	sort.SliceStable(spans, func(i, j int) bool { return outer(spans[i], spans[j]) })

	bounds := []int{0, len(l.Text)}
	for _, sp := range spans {
		bounds = append(bounds, sp.Start, sp.End)
	}
	sort.Ints(bounds)

	var segs []Segment
	for i := 1; i < len(bounds); i++ {
		from, to := bounds[i-1], bounds[i]
		if from == to {
			continue
		}
		var active []Span
		for _, sp := range spans {
			if sp.Start <= from && sp.End >= to {
				active = append(active, sp)
			}
		}
		segs = append(segs, Segment{Text: l.Text[from:to], Spans: active})
	}
	return segs
}

// Categories returns the categories found in the line, in the order their
// spans open
func (l Line) Categories() []Category {
	spans := make([]Span, len(l.Spans))
	copy(spans, l.Spans)
	sort.SliceStable(spans, func(i, j int) bool { return outer(spans[i], spans[j]) })

	out := make([]Category, 0, len(spans))
	for _, sp := range spans {
		out = append(out, sp.Category)
	}
	return out
}

// Has reports whether some span of the category covers exactly text
func (l Line) Has(category Category, text string) bool {
	for _, sp := range l.Spans {
		if sp.Category == category && l.Text[sp.Start:sp.End] == text {
			return true
		}
	}
	return false
}
