package fields

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)

	// OCR confusions specific to this domain: a lone I/l where a quantity
	// belongs is the digit 1, and a leading 0 glued to an uppercase letter is
	// the letter O. The second following character must also be a letter so
	// id-shaped tokens like 0B12 are left alone.
	reQtyLetterOne = regexp.MustCompile(`(?i)\b(qty|quantity)\s*[:=]?\s*[Il]\b`)
	reO0Artifacts  = regexp.MustCompile(`\b0([A-Z][A-Za-z])`)
)

// Normalize collapses noisy whitespace and fixes common OCR artifacts.
// Conservative: keeps line breaks (line structure matters for line-item
// scanning); collapses >2 newlines into a single blank line.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, "  ")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")

	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	s = strings.Join(lines, "\n")

	s = reQtyLetterOne.ReplaceAllStringFunc(s, func(m string) string {
		return m[:len(m)-1] + "1"
	})
	s = reO0Artifacts.ReplaceAllString(s, "O$1")
	return strings.TrimSpace(s)
}
