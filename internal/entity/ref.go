package entity

import (
	"github.com/google/uuid"

	"github.com/equiplend/invoice-pipeline/constants"
)

// EntityRef points at a canonical borrower or issuer record. Only the
// resolver constructs these; the field extractor produces candidate identity
// strings, never a resolved reference.
type EntityRef struct {
	Kind         constants.EntityKind `json:"kind"`
	ID           uuid.UUID            `json:"id"`
	ExternalID   string               `json:"external_id"`
	NewlyCreated bool                 `json:"newly_created"`
}

// NewEntity carries the fields for a freshly minted borrower or issuer.
// Missing required fields are substituted with defaults by the resolver
// before this reaches the store.
type NewEntity struct {
	ExternalID string
	Name       string
	Email      string
	Department string
	Phone      string
	Address    string
	Level      string
}
