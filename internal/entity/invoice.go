package entity

// ExtractedInvoice is the central value object of the pipeline: a
// structured, confidence-scored reading of one lending invoice. All fields
// except Items and ConfidenceScore are optional; an empty string means the
// field could not be recovered. Date-shaped fields are canonical ISO-8601
// (YYYY-MM-DD) or empty, never any other format.
type ExtractedInvoice struct {
	BorrowerName       string `json:"borrower_name"`
	BorrowerExternalID string `json:"borrower_external_id"`
	BorrowerEmail      string `json:"borrower_email"`
	BorrowerDepartment string `json:"borrower_department"`
	BorrowerPhone      string `json:"borrower_phone"`
	BorrowerAddress    string `json:"borrower_address"`
	BorrowerLevel      string `json:"borrower_level"`

	IssuerName        string `json:"issuer_name"`
	IssuerDesignation string `json:"issuer_designation"`

	InvoiceNumber   string `json:"invoice_number"`
	DueDate         string `json:"due_date"`
	LendingPurpose  string `json:"lending_purpose"`
	LendingLocation string `json:"lending_location"`
	ProjectName     string `json:"project_name"`
	SupervisorName  string `json:"supervisor_name"`
	SupervisorEmail string `json:"supervisor_email"`
	Notes           string `json:"notes"`

	Items []LineItem `json:"items"`

	// ConfidenceScore is a 0-100 heuristic over how much of the invoice was
	// reliably populated.
	ConfidenceScore int `json:"confidence_score"`
}

// LineItem is one equipment row on an invoice.
type LineItem struct {
	Name       string  `json:"name"`
	SKU        string  `json:"sku"`
	Quantity   int     `json:"quantity"`
	UnitValue  float64 `json:"unit_value"`
	TotalValue float64 `json:"total_value"`
}
