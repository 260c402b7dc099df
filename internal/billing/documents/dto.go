package documents

// LineItemInput is a line item as supplied by the caller. Product fields act
// as defaults; explicit fields override them. Items without a product
// reference are free-text positions.
type LineItemInput struct {
	ProductID       string   `json:"product_id,omitempty"`
	Name            string   `json:"name,omitempty"`
	Description     string   `json:"description,omitempty"`
	Unit            string   `json:"unit,omitempty"`
	Quantity        float64  `json:"quantity" validate:"required,gt=0"`
	UnitPrice       *float64 `json:"unit_price,omitempty" validate:"omitempty,gte=0"`
	DiscountPercent float64  `json:"discount_percent" validate:"gte=0,lte=100"`
	VATRate         *float64 `json:"vat_rate,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// CreateDocumentRequest creates a new document in DRAFT status.
type CreateDocumentRequest struct {
	Type              DocumentType    `json:"document_type" validate:"required"`
	CustomerID        string          `json:"customer_id" validate:"required"`
	Items             []LineItemInput `json:"items" validate:"required,min=1,dive"`
	Notes             string          `json:"notes,omitempty"`
	PaymentTermsDays  *int            `json:"payment_terms_days,omitempty" validate:"omitempty,gte=0"`
	IssueDate         string          `json:"issue_date,omitempty"`
	ServiceDate       string          `json:"service_date,omitempty"`
	RelatedDocumentID string          `json:"related_document_id,omitempty"`
}

// UpdateDocumentRequest patches a DRAFT document. Nil fields are left alone.
type UpdateDocumentRequest struct {
	CustomerID       *string          `json:"customer_id,omitempty"`
	Items            *[]LineItemInput `json:"items,omitempty" validate:"omitempty,min=1,dive"`
	Notes            *string          `json:"notes,omitempty"`
	PaymentTermsDays *int             `json:"payment_terms_days,omitempty" validate:"omitempty,gte=0"`
	IssueDate        *string          `json:"issue_date,omitempty"`
	ServiceDate      *string          `json:"service_date,omitempty"`
}

// ChangeStatusRequest requests a status transition.
type ChangeStatusRequest struct {
	Status DocumentStatus `json:"status" validate:"required"`
}

// AddPaymentRequest records a payment against an invoice.
type AddPaymentRequest struct {
	Amount float64       `json:"amount" validate:"required"`
	Method PaymentMethod `json:"method,omitempty"`
	Note   string        `json:"note,omitempty"`
}

// AddReminderRequest appends a dunning record.
type AddReminderRequest struct {
	Fee  float64 `json:"fee" validate:"gte=0"`
	Note string  `json:"note,omitempty"`
}

// ConvertQuoteRequest controls quote-to-invoice conversion.
type ConvertQuoteRequest struct {
	IssueDate        string `json:"issue_date,omitempty"`
	PaymentTermsDays *int   `json:"payment_terms_days,omitempty" validate:"omitempty,gte=0"`
}

// PartialInvoiceRequest bills a portion of an invoice's gross amount.
type PartialInvoiceRequest struct {
	Amount           float64 `json:"amount" validate:"required"`
	Notes            string  `json:"notes,omitempty"`
	PaymentTermsDays *int    `json:"payment_terms_days,omitempty" validate:"omitempty,gte=0"`
}

// RelatedSummary is the compact representation returned by the related
// documents query.
type RelatedSummary struct {
	ID     string         `json:"id"`
	Number string         `json:"document_number"`
	Type   DocumentType   `json:"document_type"`
	Status DocumentStatus `json:"status"`
	Gross  float64        `json:"gross"`
}

// RelatedDocuments groups a document's parent and children.
type RelatedDocuments struct {
	Parent   *RelatedSummary  `json:"parent"`
	Children []RelatedSummary `json:"children"`
}
