package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// resultSchema is the contract the ingress collaborator consumes. The
// assembled package is validated against it before leaving the pipeline, so
// a field-name or shape regression fails loudly here instead of downstream.
const resultSchema = `{
  "type": "object",
  "required": ["invoice_id", "extracted", "borrower_ref", "ocr_quality", "processing_method", "needs_review"],
  "properties": {
    "invoice_id": {"type": "string", "minLength": 1},
    "ocr_quality": {"type": "integer", "minimum": 0},
    "processing_method": {"type": "string", "enum": ["image-ocr", "pdf-ocr", "none"]},
    "needs_review": {"type": "boolean"},
    "archive_path": {"type": "string"},
    "extracted": {
      "type": "object",
      "required": ["items", "confidence_score"],
      "properties": {
        "confidence_score": {"type": "integer", "minimum": 0, "maximum": 100},
        "due_date": {"type": "string", "pattern": "^(\\d{4}-\\d{2}-\\d{2})?$"},
        "items": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["name", "sku", "quantity", "unit_value", "total_value"],
            "properties": {
              "name": {"type": "string", "minLength": 3},
              "sku": {"type": "string", "minLength": 1},
              "quantity": {"type": "integer", "minimum": 1},
              "unit_value": {"type": "number", "minimum": 0},
              "total_value": {"type": "number", "minimum": 0}
            }
          }
        }
      }
    },
    "borrower_ref": {"$ref": "#/$defs/entityRef"},
    "issuer_ref": {"$ref": "#/$defs/entityRef"}
  },
  "$defs": {
    "entityRef": {
      "type": "object",
      "required": ["kind", "id", "external_id", "newly_created"],
      "properties": {
        "kind": {"type": "string", "enum": ["BORROWER", "ISSUER"]},
        "id": {"type": "string", "minLength": 1},
        "external_id": {"type": "string", "minLength": 1},
        "newly_created": {"type": "boolean"}
      }
    }
  }
}`

var compiledResultSchema = jsonschema.MustCompileString("process_result.json", resultSchema)

func validateResult(res *Result) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("reparse result: %w", err)
	}
	return compiledResultSchema.Validate(doc)
}
