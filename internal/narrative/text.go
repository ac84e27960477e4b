package narrative

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	trailingBlanks = regexp.MustCompile(`[ \t]+\n`)
	leadingBlanks  = regexp.MustCompile(`\n[ \t]+`)
	blankRuns      = regexp.MustCompile(`[ \t]{2,}`)

	escapedNewlines = strings.NewReplacer(`\s\n`, "\n", `\n`, "\n")
)

// Text is a normalized narrative block: its non-empty trimmed lines and the
// lines joined back with "\n".
type Text struct {
	Lines []string
	Whole string
}

// Normalize canonicalizes a raw narrative block. Space separators such as
// U+00A0 become plain spaces, literal "\n" and "\s\n" escapes become
// newlines, blanks around newlines are removed, inner runs of blanks
// collapse to one space and the result is trimmed.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	txt := strings.Map(plainSpace, norm.NFC.String(raw))
	txt = escapedNewlines.Replace(txt)
	txt = trailingBlanks.ReplaceAllString(txt, "\n")
	txt = leadingBlanks.ReplaceAllString(txt, "\n")
	txt = blankRuns.ReplaceAllString(txt, " ")
	return strings.TrimSpace(txt)
}

// Prepare normalizes raw and splits it into lines.
func Prepare(raw string) Text {
	var lines []string
	for _, ln := range strings.Split(Normalize(raw), "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, ln)
		}
	}
	return Text{Lines: lines, Whole: strings.Join(lines, "\n")}
}

func plainSpace(r rune) rune {
	if unicode.Is(unicode.Zs, r) {
		return ' '
	}
	return r
}
