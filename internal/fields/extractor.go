package fields

import (
	"log/slog"

	"github.com/equiplend/invoice-pipeline/internal/entity"
)

// Extractor turns OCR text into a structured invoice. It never errors past
// its boundary: degenerate input yields an empty invoice with score 0, and a
// panic anywhere in the primary grammar drops to the minimal fallback
// grammar instead of escaping.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract runs the two-tier grammar over an OCR result.
func (e *Extractor) Extract(ocr entity.OcrResult) (inv entity.ExtractedInvoice) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("primary grammar panicked, using fallback grammar", "panic", r)
			inv = e.fallbackExtract(ocr.Text)
		}
	}()

	text := Normalize(ocr.Text)
	if text == "" {
		return entity.ExtractedInvoice{Items: []entity.LineItem{}}
	}

	inv = entity.ExtractedInvoice{
		InvoiceNumber:      firstMatch(text, invoiceNumberRules),
		BorrowerExternalID: firstMatch(text, borrowerIDRules),
		BorrowerName:       firstMatch(text, borrowerNameRules),
		BorrowerEmail:      firstMatch(text, borrowerEmailRules),
		BorrowerPhone:      firstMatch(text, phoneRules),
		BorrowerDepartment: firstMatch(text, departmentRules),
		BorrowerAddress:    firstMatch(text, addressRules),
		BorrowerLevel:      firstMatch(text, levelRules),
		IssuerName:         firstMatch(text, issuerNameRules),
		IssuerDesignation:  firstMatch(text, issuerDesignationRules),
		DueDate:            firstMatch(text, dueDateRules),
		LendingPurpose:     firstMatch(text, purposeRules),
		LendingLocation:    firstMatch(text, locationRules),
		ProjectName:        firstMatch(text, projectRules),
		SupervisorName:     firstMatch(text, supervisorNameRules),
		SupervisorEmail:    firstMatch(text, supervisorEmailRules),
		Notes:              firstMatch(text, notesRules),
		Items:              ExtractItems(text),
	}
	// downstream consumers serialize Items as a JSON array, never null
	if inv.Items == nil {
		inv.Items = []entity.LineItem{}
	}
	inv.ConfidenceScore = confidenceScore(&inv)

	e.logger.Debug("field extraction complete",
		"confidence", inv.ConfidenceScore,
		"items", len(inv.Items),
		"has_borrower_name", inv.BorrowerName != "",
		"has_borrower_id", inv.BorrowerExternalID != "",
	)
	return inv
}

// fallbackExtract is the minimal secondary grammar: name, id and email only.
func (e *Extractor) fallbackExtract(raw string) entity.ExtractedInvoice {
	inv := entity.ExtractedInvoice{
		BorrowerName:       firstMatch(raw, fallbackNameRules),
		BorrowerExternalID: firstMatch(raw, fallbackIDRules),
		BorrowerEmail:      firstMatch(raw, fallbackEmailRules),
		Items:              []entity.LineItem{},
	}
	score := confidenceScore(&inv)
	if score > FallbackConfidenceCap {
		score = FallbackConfidenceCap
	}
	inv.ConfidenceScore = score
	return inv
}
