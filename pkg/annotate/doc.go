/*
Package annotate classifies substrings of test-runner log lines into named
categories.

A Catalog is an ordered, immutable list of rules. Annotating a line folds the
rules over it: each rule is a pure step that adds one span per match of its
pattern. The text itself is never modified, so every rule matches against the
visible line, whatever earlier rules already wrapped.

# Overlap policy

Rules are independent whole-line passes. When two rules match the same
characters both spans are kept and nest:

  - a span whose range encloses another is outer;
  - for identical ranges the earlier rule is outer;
  - partially overlapping spans are split by the renderer (close, reopen).

So in "✗ test failed (120ms)" the word "failed" carries the failing style
(rule 1) with the dimmer failed-word style (rule 9) nested inside it.

After the pattern rules, a structural pass looks at the start of the original
line for describe(/context( or it( and wraps the whole line. Structural spans
are always outermost.

# Rendering

A Line does not know about output targets. Segments splits it into runs of
text with the list of enclosing spans, outer to inner, which is what the
renderers in pkg/render consume.
*/
package annotate
