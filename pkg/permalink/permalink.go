// Package permalink packs a log into a URL fragment, #log=<data>, so that a
// formatted log can be shared as a link without server storage.
//
// The data is the gzip-compressed text in unpadded base64url. Fragments
// made by browsers without a compression API carry the raw UTF-8 bytes
// instead; Decode accepts both.
package permalink

import (
	"bytes"
	"encoding/base64"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/akhuoa/console-formatter/pkg/errors"
	"github.com/akhuoa/console-formatter/pkg/logging"
	"github.com/klauspost/compress/gzip"
)

// FragmentPrefix starts every permalink fragment
const FragmentPrefix = "#log="

// MaxDecodedSize bounds the text a fragment may expand to
const MaxDecodedSize = 16 << 20

var fragmentPattern = regexp.MustCompile(`#log=([A-Za-z0-9_-]+)`)

var gzipMagic = []byte{0x1f, 0x8b}

// Encode compresses text and returns it as unpadded base64url
func Encode(text string) (string, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrPermalinkEncode, "failed to create compressor")
	}
	if _, err := io.WriteString(zw, text); err != nil {
		return "", errors.Wrap(err, errors.ErrPermalinkEncode, "failed to compress text")
	}
	if err := zw.Close(); err != nil {
		return "", errors.Wrap(err, errors.ErrPermalinkEncode, "failed to compress text")
	}
	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode reverses Encode. Padding is tolerated.
func Decode(data string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrPermalinkDecode, "invalid base64url data")
	}

	if !bytes.HasPrefix(raw, gzipMagic) {
		if !utf8.Valid(raw) {
			return "", errors.New(errors.ErrPermalinkDecode, "data is neither gzip nor text")
		}
		return string(raw), nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrPermalinkDecode, "invalid gzip data")
	}
	defer func() { _ = zr.Close() }()

	text, err := io.ReadAll(io.LimitReader(zr, MaxDecodedSize+1))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrPermalinkDecode, "invalid gzip data")
	}
	if len(text) > MaxDecodedSize {
		return "", errors.Newf(errors.ErrPermalinkDecode, "decoded text larger than %d bytes", MaxDecodedSize)
	}
	return string(text), nil
}

// Fragment returns the #log= fragment of text
func Fragment(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New(errors.ErrMissingInput, "No content")
	}
	data, err := Encode(text)
	if err != nil {
		return "", err
	}
	return FragmentPrefix + data, nil
}

// Link appends the fragment of text to base, replacing any fragment base
// already has
func Link(base, text string) (string, error) {
	fragment, err := Fragment(text)
	if err != nil {
		return "", err
	}
	if i := strings.IndexByte(base, '#'); i >= 0 {
		base = base[:i]
	}
	return base + fragment, nil
}

// ParseFragment finds the #log= data in a fragment or a full URL
func ParseFragment(s string) (string, bool) {
	m := fragmentPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Load returns the text carried by a fragment or URL. It never fails: a
// missing fragment gives "", and a fragment that does not decode is logged
// and gives "".
func Load(s string) string {
	data, ok := ParseFragment(s)
	if !ok {
		return ""
	}
	text, err := Decode(data)
	if err != nil {
		logger := logging.GetLogger("permalink")
		logger.Warn().Err(err).Msg("Failed to decode permalink")
		return ""
	}
	return text
}
