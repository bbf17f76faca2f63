package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/equiplend/invoice-pipeline/internal/common"
	"github.com/equiplend/invoice-pipeline/internal/entity"
)

// SaveInvoiceRequest wraps everything the orchestrator hands over for
// persistence: the extracted invoice, resolved references and audit fields.
type SaveInvoiceRequest struct {
	Invoice     entity.ExtractedInvoice
	BorrowerRef entity.EntityRef
	IssuerRef   *entity.EntityRef
	OCRQuality  int
	Method      string
	ArchivePath string
	OCRExcerpt  string
}

// InvoiceStore persists finished extraction results.
type InvoiceStore interface {
	SaveInvoice(ctx context.Context, req *SaveInvoiceRequest) (uuid.UUID, error)
}

type gormInvoiceStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewInvoiceStore(db *gorm.DB, logger *slog.Logger) InvoiceStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &gormInvoiceStore{db: db, logger: logger}
}

func (s *gormInvoiceStore) SaveInvoice(ctx context.Context, req *SaveInvoiceRequest) (uuid.UUID, error) {
	inv := req.Invoice

	rec := InvoiceRecord{
		ID:              uuid.New(),
		InvoiceNumber:   inv.InvoiceNumber,
		BorrowerID:      req.BorrowerRef.ID,
		LendingPurpose:  inv.LendingPurpose,
		LendingLocation: inv.LendingLocation,
		ProjectName:     inv.ProjectName,
		SupervisorName:  inv.SupervisorName,
		SupervisorEmail: inv.SupervisorEmail,
		Notes:           inv.Notes,
		ConfidenceScore: inv.ConfidenceScore,
		OCRQuality:      req.OCRQuality,
		Method:          req.Method,
		ArchivePath:     req.ArchivePath,
		OCRExcerpt:      req.OCRExcerpt,
	}
	if req.IssuerRef != nil {
		rec.IssuerID = &req.IssuerRef.ID
	}
	if inv.DueDate != "" {
		if due, err := time.Parse("2006-01-02", inv.DueDate); err == nil {
			rec.DueDate = &due
		}
	}
	for _, it := range inv.Items {
		rec.Items = append(rec.Items, InvoiceItemRecord{
			ID:         uuid.New(),
			InvoiceID:  rec.ID,
			Name:       it.Name,
			SKU:        it.SKU,
			Quantity:   it.Quantity,
			UnitValue:  it.UnitValue,
			TotalValue: it.TotalValue,
		})
	}

	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		s.logger.Error("invoice save failed", "invoice_number", rec.InvoiceNumber, "error", err)
		return uuid.Nil, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}
	s.logger.Info("saved invoice",
		"invoice_id", rec.ID,
		"borrower_id", rec.BorrowerID,
		"items", len(rec.Items),
		"confidence", rec.ConfidenceScore,
	)
	return rec.ID, nil
}
