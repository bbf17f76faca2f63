package ocr

import "strings"

// Scoring policy for competing OCR candidates. The bonuses encode what a
// usable lending-invoice text looks like; tests depend on these exact
// values, tune here only.
const (
	// KeywordBonus is added once when any invoice keyword is present.
	KeywordBonus = 40
	// DigitBonus is added once when the text contains any digit.
	DigitBonus = 20
	// MinUsableTextLen: candidates at or below this length count as empty.
	MinUsableTextLen = 10
)

var invoiceKeywords = []string{
	"invoice", "borrow", "student", "equipment",
	"item", "qty", "total", "date", "issued", "return",
}

// Score ranks an OCR candidate: text length plus a bonus for invoice
// keywords and a bonus for digits. Empty text scores 0.
func Score(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	score := len(trimmed)
	lower := strings.ToLower(trimmed)
	for _, kw := range invoiceKeywords {
		if strings.Contains(lower, kw) {
			score += KeywordBonus
			break
		}
	}
	if strings.ContainsAny(trimmed, "0123456789") {
		score += DigitBonus
	}
	return score
}
