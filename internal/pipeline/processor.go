package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/equiplend/invoice-pipeline/constants"
	"github.com/equiplend/invoice-pipeline/internal/entity"
	"github.com/equiplend/invoice-pipeline/internal/repository"
)

// DefaultOCRExcerptLimit caps the raw OCR text attached to the saved
// invoice for audit.
const DefaultOCRExcerptLimit = 4000

// TextAcquirer is stage 1: document -> best OCR text.
type TextAcquirer interface {
	Acquire(ctx context.Context, doc entity.RawDocument) (entity.OcrResult, error)
}

// FieldExtractor is stage 2: OCR text -> structured invoice. Never errors;
// degenerate input yields a low-confidence invoice.
type FieldExtractor interface {
	Extract(ocr entity.OcrResult) entity.ExtractedInvoice
}

// EntityResolver is stage 3: identity clues -> canonical reference.
type EntityResolver interface {
	Resolve(ctx context.Context, kind constants.EntityKind, name, externalID, email string) (entity.EntityRef, error)
}

// Archiver produces the durable copy of the raw bytes.
type Archiver interface {
	Archive(ctx context.Context, doc entity.RawDocument) (string, error)
}

type Config struct {
	// MinConfidence marks results below it for manual review.
	MinConfidence   int
	OCRExcerptLimit int
}

// Result is the assembled package handed back to the ingress collaborator.
type Result struct {
	InvoiceID   uuid.UUID               `json:"invoice_id"`
	Extracted   entity.ExtractedInvoice `json:"extracted"`
	BorrowerRef entity.EntityRef        `json:"borrower_ref"`
	IssuerRef   *entity.EntityRef       `json:"issuer_ref,omitempty"`
	OCRQuality  int                     `json:"ocr_quality"`
	Method      string                  `json:"processing_method"`
	ArchivePath string                  `json:"archive_path,omitempty"`
	NeedsReview bool                    `json:"needs_review"`
}

// Processor sequences acquisition, field extraction, entity resolution and
// persistence for one document. Each Process call owns all of its state;
// Processor is safe for concurrent use.
type Processor struct {
	logger    *slog.Logger
	cfg       Config
	acquirer  TextAcquirer
	extractor FieldExtractor
	resolver  EntityResolver
	invoices  repository.InvoiceStore
	archiver  Archiver
}

func NewProcessor(
	logger *slog.Logger,
	cfg Config,
	acquirer TextAcquirer,
	extractor FieldExtractor,
	resolver EntityResolver,
	invoices repository.InvoiceStore,
	archiver Archiver,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.OCRExcerptLimit <= 0 {
		cfg.OCRExcerptLimit = DefaultOCRExcerptLimit
	}
	return &Processor{
		logger:    logger,
		cfg:       cfg,
		acquirer:  acquirer,
		extractor: extractor,
		resolver:  resolver,
		invoices:  invoices,
		archiver:  archiver,
	}
}

// Process runs the full pipeline. A missing borrower identity is the only
// stage failure that aborts the run after acquisition; issuer resolution
// and archiving degrade with a log line.
func (p *Processor) Process(ctx context.Context, doc entity.RawDocument) (*Result, error) {
	ocr, err := p.acquirer.Acquire(ctx, doc)
	if err != nil {
		p.logger.Error("acquisition failed", "media_type", doc.MediaType, "error", err)
		return nil, fmt.Errorf("acquire: %w", err)
	}
	p.logger.Debug("acquisition ok",
		"quality", ocr.QualityScore, "engine_config", ocr.EngineConfig, "bytes", len(ocr.Text))

	inv := p.extractor.Extract(ocr)

	borrowerRef, err := p.resolver.Resolve(ctx, constants.KindBorrower,
		inv.BorrowerName, inv.BorrowerExternalID, inv.BorrowerEmail)
	if err != nil {
		p.logger.Error("borrower resolution failed", "error", err)
		return nil, fmt.Errorf("resolve borrower: %w", err)
	}

	var issuerRef *entity.EntityRef
	if inv.IssuerName != "" || inv.IssuerDesignation != "" {
		ref, rerr := p.resolver.Resolve(ctx, constants.KindIssuer,
			inv.IssuerName, inv.IssuerDesignation, "")
		if rerr != nil {
			// issuer is optional; the invoice is still usable without one
			p.logger.Warn("issuer resolution failed, continuing without issuer", "error", rerr)
		} else {
			issuerRef = &ref
		}
	}

	archivePath := ""
	if p.archiver != nil {
		if path, aerr := p.archiver.Archive(ctx, doc); aerr != nil {
			p.logger.Warn("archive failed, invoice saved without durable copy", "error", aerr)
		} else {
			archivePath = path
		}
	}

	invoiceID, err := p.invoices.SaveInvoice(ctx, &repository.SaveInvoiceRequest{
		Invoice:     inv,
		BorrowerRef: borrowerRef,
		IssuerRef:   issuerRef,
		OCRQuality:  ocr.QualityScore,
		Method:      method(doc, ocr),
		ArchivePath: archivePath,
		OCRExcerpt:  excerpt(ocr.Text, p.cfg.OCRExcerptLimit),
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		InvoiceID:   invoiceID,
		Extracted:   inv,
		BorrowerRef: borrowerRef,
		IssuerRef:   issuerRef,
		OCRQuality:  ocr.QualityScore,
		Method:      method(doc, ocr),
		ArchivePath: archivePath,
		NeedsReview: inv.ConfidenceScore < p.cfg.MinConfidence,
	}
	if err := validateResult(res); err != nil {
		return nil, fmt.Errorf("assembled result invalid: %w", err)
	}

	p.logger.Info("pipeline complete",
		"invoice_id", invoiceID,
		"borrower", borrowerRef.ExternalID,
		"new_borrower", borrowerRef.NewlyCreated,
		"confidence", inv.ConfidenceScore,
		"needs_review", res.NeedsReview,
	)
	return res, nil
}

func method(doc entity.RawDocument, ocr entity.OcrResult) string {
	if ocr.EngineConfig == entity.EngineNone {
		return constants.MethodNone
	}
	if constants.MapMediaType(doc.MediaType) == constants.PDF {
		return constants.MethodPDFOCR
	}
	return constants.MethodImageOCR
}

func excerpt(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}
