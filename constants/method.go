package constants

// Method tags describe how text was recovered from a document. The tag is
// stored next to the saved invoice for audit.
const (
	MethodImageOCR = "image-ocr"
	MethodPDFOCR   = "pdf-ocr"
	MethodNone     = "none"
)

// EntityKind is the identity role an invoice references.
type EntityKind string

const (
	KindBorrower EntityKind = "BORROWER"
	KindIssuer   EntityKind = "ISSUER"
)
