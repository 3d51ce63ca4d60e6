package ansihtml

import (
	"bufio"
	"io"
	"strings"

	"github.com/akhuoa/console-formatter/pkg/errors"
	"github.com/akhuoa/console-formatter/pkg/render"
)

const (
	esc = 0x1b

	// maxParams bounds the parameter bytes of one sequence. Longer runs are
	// not treated as a sequence.
	maxParams = 64
	// flushAt is the amount of pending text written out in one go
	flushAt = 4096
)

// Detect reports whether s contains at least one escape sequence introducer
func Detect(s string) bool {
	return strings.Contains(s, "\x1b[")
}

// Convert renders a whole stream as HTML. It never fails.
func Convert(s string) string {
	var b strings.Builder
	_ = NewConverter().ConvertTo(&b, strings.NewReader(s))
	return b.String()
}

// Converter runs the conversion over a reader. Its state lives in a single
// ConvertTo call, so one Converter can serve many streams concurrently.
type Converter struct{}

// NewConverter creates a converter
func NewConverter() *Converter {
	return &Converter{}
}

// ConvertTo reads r to the end and writes its HTML rendering to w. The span
// left open when reading stops, at end of input or on a read error, is
// closed exactly once and the text read so far is written out.
func (c *Converter) ConvertTo(w io.Writer, r io.Reader) error {
	br := bufio.NewReader(r)
	m := &machine{w: bufio.NewWriter(w)}

	var text []byte
	readErr := func() error {
		for {
			b, err := br.ReadByte()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}

			if b != esc {
				text = append(text, b)
				if len(text) >= flushAt {
					m.text(text)
					text = text[:0]
				}
				continue
			}

			params, literal, err := readSequence(br)
			if err != nil {
				return err
			}
			if literal != nil {
				text = append(text, esc)
				text = append(text, literal...)
				continue
			}
			m.text(text)
			text = text[:0]
			m.sequence(params)
		}
	}()

	m.text(text)
	m.end()
	flushErr := m.w.Flush()

	if readErr != nil {
		return errors.Wrap(readErr, errors.ErrFileAccess, "failed to read input")
	}
	if flushErr != nil {
		return errors.Wrap(flushErr, errors.ErrFileWrite, "failed to write output")
	}
	return nil
}

// readSequence reads what follows an ESC byte. For an SGR sequence it
// returns its parameter bytes; otherwise it returns the bytes consumed, which
// are plain text, and leaves the first byte that broke the sequence unread.
func readSequence(br *bufio.Reader) (string, []byte, error) {
	consumed := []byte{}

	b, err := br.ReadByte()
	if err == io.EOF {
		return "", consumed, nil
	}
	if err != nil {
		return "", nil, err
	}
	if b != '[' {
		_ = br.UnreadByte()
		return "", consumed, nil
	}
	consumed = append(consumed, b)

	for len(consumed) <= maxParams+1 {
		b, err := br.ReadByte()
		if err == io.EOF {
			return "", consumed, nil
		}
		if err != nil {
			return "", nil, err
		}
		switch {
		case b == 'm':
			return string(consumed[1:]), nil, nil
		case b == ';' || (b >= '0' && b <= '9'):
			consumed = append(consumed, b)
		default:
			_ = br.UnreadByte()
			return "", consumed, nil
		}
	}
	return "", consumed, nil
}

// machine tracks the attribute state and the span currently open in the
// output. Spans are opened when text is written under them, so a run of
// sequences with no text in between leaves no empty markup behind.
type machine struct {
	w *bufio.Writer

	cur    State
	open   State
	isOpen bool
}

func (m *machine) sequence(params string) {
	for _, a := range Decode(ParseParams(params)) {
		m.cur = m.cur.Apply(a)
	}
}

func (m *machine) text(p []byte) {
	if len(p) == 0 {
		return
	}
	if m.isOpen && m.open != m.cur {
		m.close()
	}
	if !m.isOpen && !m.cur.Empty() {
		_, _ = m.w.WriteString(render.OpenTag(m.cur.Spec()))
		m.open = m.cur
		m.isOpen = true
	}
	_, _ = m.w.WriteString(render.EscapeHTML(string(p)))
}

func (m *machine) close() {
	_, _ = m.w.WriteString(render.CloseTag)
	m.isOpen = false
}

func (m *machine) end() {
	if m.isOpen {
		m.close()
	}
}
