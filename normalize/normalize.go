package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Filler tokens common in voice transcripts, stripped on word boundaries.
var fillerWords = []string{"uh", "um", "basically", "you know", "like"}

var (
	fillerPatterns []*regexp.Regexp
	whitespaceRe   = regexp.MustCompile(`\s+`)
	// Runs of sentence terminators, including the Devanagari danda.
	terminatorRunRe  = regexp.MustCompile(`[।.]{3,}`)
	exclamationRunRe = regexp.MustCompile(`!{2,}`)
)

func init() {
	for _, filler := range fillerWords {
		fillerPatterns = append(fillerPatterns,
			regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(filler)+`\b`))
	}
}

// Text cleans raw report text: filler removal, encoding repair, whitespace
// and punctuation collapsing. It never fails; the result may be empty.
func Text(raw string) string {
	text := repairEncoding(raw)

	for _, re := range fillerPatterns {
		text = re.ReplaceAllString(text, "")
	}

	text = whitespaceRe.ReplaceAllString(text, " ")
	text = terminatorRunRe.ReplaceAllString(text, "।")
	text = exclamationRunRe.ReplaceAllString(text, "!")

	return strings.TrimSpace(text)
}

// repairEncoding drops invalid UTF-8 sequences so downstream regex and
// translation calls always see well-formed text.
func repairEncoding(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "")
}
