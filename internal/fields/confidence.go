package fields

import "github.com/equiplend/invoice-pipeline/internal/entity"

// Confidence weights. These encode extraction policy: borrower identity
// carries the most weight, contact/date fields a medium weight, contextual
// fields and line items the least. The weights of all scoreable fields plus
// MaxScoredItems items sum to exactly 100; tune here only.
const (
	WeightBorrowerName = 18
	WeightBorrowerID   = 18
	WeightEmail        = 12
	WeightDueDate      = 12
	WeightDepartment   = 10
	WeightIssuerName   = 8
	WeightPurpose      = 7
	WeightLocation     = 7
	WeightPerItem      = 2
	MaxScoredItems     = 4

	// FallbackConfidenceCap bounds what the minimal secondary grammar can
	// ever claim.
	FallbackConfidenceCap = 25
)

// confidenceScore computes the 0-100 heuristic for an extracted invoice.
// Every weight is positive, so adding a correctly matched field never
// lowers the score.
func confidenceScore(inv *entity.ExtractedInvoice) int {
	score := 0
	if inv.BorrowerName != "" {
		score += WeightBorrowerName
	}
	if inv.BorrowerExternalID != "" {
		score += WeightBorrowerID
	}
	if inv.BorrowerEmail != "" {
		score += WeightEmail
	}
	if inv.BorrowerDepartment != "" {
		score += WeightDepartment
	}
	if inv.DueDate != "" {
		score += WeightDueDate
	}
	if inv.LendingPurpose != "" {
		score += WeightPurpose
	}
	if inv.LendingLocation != "" {
		score += WeightLocation
	}
	if inv.IssuerName != "" {
		score += WeightIssuerName
	}

	items := len(inv.Items)
	if items > MaxScoredItems {
		items = MaxScoredItems
	}
	score += items * WeightPerItem

	if score > 100 {
		score = 100
	}
	return score
}
