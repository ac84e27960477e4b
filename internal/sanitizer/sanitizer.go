// Package sanitizer turns raw invoice uploads of unknown encoding into text
// the XML extractor can always be handed.
package sanitizer

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// RootElement is the synthetic element wrapping every sanitized document.
const RootElement = "root"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// fallbacks are tried in order when the input is not valid UTF-8.
var fallbacks = []encoding.Encoding{
	charmap.ISO8859_1,
	charmap.Windows1252,
}

// Sanitize decodes raw, wraps it in the synthetic root element and drops
// every character an XML parser would reject. It never fails.
func Sanitize(raw []byte) string {
	return Scrub(Wrap(Decode(raw)))
}

// Decode converts raw to a UTF-8 string. Valid UTF-8 is taken as is, and
// input holding at least one valid multi-byte UTF-8 sequence is read as
// UTF-8 with its invalid bytes dropped. Otherwise ISO-8859-1 and then
// Windows-1252 are tried, and a decoding that produces replacement or C1
// control characters is rejected. When no decoding is clean the
// Windows-1252 result is kept with those characters dropped.
func Decode(raw []byte) string {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw)
	}
	if hasMultiByteUTF8(raw) {
		return strings.ToValidUTF8(string(raw), "")
	}

	var last string
	for _, enc := range fallbacks {
		out, err := enc.NewDecoder().Bytes(raw)
		if err != nil {
			continue
		}
		last = string(out)
		if clean(last) {
			return last
		}
	}
	if last == "" {
		return strings.ToValidUTF8(string(raw), "")
	}
	return strings.Map(func(r rune) rune {
		if degraded(r) {
			return -1
		}
		return r
	}, last)
}

// Wrap encloses text in the synthetic root element so several concatenated
// top-level invoices parse as one document.
func Wrap(text string) string {
	return "<" + RootElement + ">" + text + "</" + RootElement + ">"
}

// Scrub removes every rune outside tab, LF, CR, printable ASCII and
// U+00A0..U+FFFF.
func Scrub(s string) string {
	return strings.Map(func(r rune) rune {
		if allowed(r) {
			return r
		}
		return -1
	}, s)
}

func allowed(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r >= 0x20 && r <= 0x7E:
		return true
	case r >= 0xA0 && r <= 0xFFFF:
		return true
	}
	return false
}

// hasMultiByteUTF8 reports whether raw contains a valid UTF-8 sequence of
// two or more bytes.
func hasMultiByteUTF8(raw []byte) bool {
	for len(raw) > 0 {
		r, size := utf8.DecodeRune(raw)
		if r != utf8.RuneError && size > 1 {
			return true
		}
		raw = raw[size:]
	}
	return false
}

func clean(s string) bool {
	for _, r := range s {
		if degraded(r) {
			return false
		}
	}
	return true
}

// degraded reports runes that signal a wrong code page guess.
func degraded(r rune) bool {
	return r == utf8.RuneError || (r >= 0x80 && r <= 0x9F)
}
