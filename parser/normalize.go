package parser

import (
	"regexp"
	"strings"
)

var (
	reLineBreaks = regexp.MustCompile(`\r\n?`)
	reSpaceRuns  = regexp.MustCompile(` {2,}`)
	// no-break space, narrow no-break space, figure space, tab
	hardSpaces = strings.NewReplacer("\u00a0", " ", "\u202f", " ", "\u2007", " ", "\t", " ")
)

// Normalize canonicalizes whitespace in raw receipt text before extraction:
// line breaks become \n, non-breaking space variants become plain spaces,
// control characters are stripped, space runs collapse to one space and each
// line is trimmed. Line boundaries are preserved since extractors are both
// line and whole-text aware. Never fails; empty input yields empty output.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	s := reLineBreaks.ReplaceAllString(raw, "\n")
	s = hardSpaces.Replace(s)
	s = strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	s = reSpaceRuns.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
