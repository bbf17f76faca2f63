package fields

import (
	"regexp"
	"strings"
)

var (
	reEmail       = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reFindEmail   = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	reCharRun     = regexp.MustCompile(`([A-Za-z])\1{2,}`)
	reNonAlpha    = regexp.MustCompile(`[^A-Za-z ]`)
	reNonAlnum    = regexp.MustCompile(`[^A-Za-z0-9]`)
	reInnerSpaces = regexp.MustCompile(` {2,}`)
)

// CleanName repairs a name-shaped OCR capture: runs of the same letter
// longer than two collapse to one (a common scanner artifact), everything
// non-alphabetic is stripped, and the result is title-cased. Returns "" when
// fewer than 3 letters survive or the capture carried digits.
func CleanName(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "0123456789") {
		return ""
	}
	s = reCharRun.ReplaceAllString(s, "$1")
	s = reNonAlpha.ReplaceAllString(s, " ")
	s = strings.TrimSpace(reInnerSpaces.ReplaceAllString(s, " "))

	letters := 0
	for _, r := range s {
		if r != ' ' {
			letters++
		}
	}
	if letters < 3 {
		return ""
	}
	return titleCase(s)
}

// ValidEmail accepts only a conservative local@domain.tld shape; anything
// else is rejected outright rather than partially accepted.
func ValidEmail(s string) bool {
	return reEmail.MatchString(strings.TrimSpace(s))
}

// StripNonAlnum removes everything outside [A-Za-z0-9].
func StripNonAlnum(s string) string {
	return reNonAlnum.ReplaceAllString(s, "")
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
