package fields

import (
	"strings"
	"time"
)

// Accepted input layouts, most specific first. Output is always ISO-8601.
var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
}

// NormalizeDate canonicalizes date-shaped text to YYYY-MM-DD. Unparseable
// text yields "", never a guessed date. Feeding ISO output back through is
// the identity.
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.Trim(s, ".,;")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}
