package repository

import (
	"time"

	"github.com/google/uuid"
)

// EntityRecord is one canonical borrower or issuer. The (kind, external_id)
// pair is unique so a concurrent duplicate creation surfaces as a store
// error instead of a silent second row.
type EntityRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind       string    `gorm:"size:16;not null;uniqueIndex:idx_entities_kind_external_id,priority:1;index:idx_entities_kind_name,priority:1"`
	ExternalID string    `gorm:"size:32;not null;uniqueIndex:idx_entities_kind_external_id,priority:2"`
	Name       string    `gorm:"size:128;not null;index:idx_entities_kind_name,priority:2"`
	Email      string    `gorm:"size:128"`
	Department string    `gorm:"size:64"`
	Phone      string    `gorm:"size:32"`
	Address    string    `gorm:"size:256"`
	Level      string    `gorm:"size:32"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (EntityRecord) TableName() string { return "entities" }

// InvoiceRecord is the persisted form of one extracted invoice, including
// the audit fields the orchestrator attaches (archive path, OCR excerpt,
// processing method).
type InvoiceRecord struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	InvoiceNumber   string     `gorm:"size:32;index"`
	BorrowerID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	IssuerID        *uuid.UUID `gorm:"type:uuid;index"`
	DueDate         *time.Time `gorm:"type:date"`
	LendingPurpose  string     `gorm:"size:128"`
	LendingLocation string     `gorm:"size:96"`
	ProjectName     string     `gorm:"size:96"`
	SupervisorName  string     `gorm:"size:128"`
	SupervisorEmail string     `gorm:"size:128"`
	Notes           string     `gorm:"size:512"`
	ConfidenceScore int        `gorm:"not null"`
	OCRQuality      int        `gorm:"not null"`
	Method          string     `gorm:"size:24;not null"`
	ArchivePath     string     `gorm:"size:512"`
	OCRExcerpt      string     `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Items []InvoiceItemRecord `gorm:"foreignKey:InvoiceID"`
}

func (InvoiceRecord) TableName() string { return "invoices" }

// InvoiceItemRecord is one equipment row of a saved invoice.
type InvoiceItemRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	InvoiceID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"size:128;not null"`
	SKU        string    `gorm:"size:32"`
	Quantity   int       `gorm:"not null"`
	UnitValue  float64   `gorm:"type:numeric(12,2)"`
	TotalValue float64   `gorm:"type:numeric(12,2)"`
}

func (InvoiceItemRecord) TableName() string { return "invoice_items" }
