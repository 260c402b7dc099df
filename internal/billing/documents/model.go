package documents

import (
	"time"

	"github.com/faktura-erp/faktura/internal/billing/money"
)

// DocumentType enumerates the business document kinds.
type DocumentType string

const (
	TypeInvoice           DocumentType = "INVOICE"
	TypeQuote             DocumentType = "QUOTE"
	TypeDeliveryNote      DocumentType = "DELIVERY_NOTE"
	TypeOrderConfirmation DocumentType = "ORDER_CONFIRMATION"
	TypePartialInvoice    DocumentType = "PARTIAL_INVOICE"
	TypeCreditNote        DocumentType = "CREDIT_NOTE"
	TypeCancellation      DocumentType = "CANCELLATION"
)

// NumberPrefix maps each document type to its number prefix.
var NumberPrefix = map[DocumentType]string{
	TypeInvoice:           "INV",
	TypeQuote:             "QUO",
	TypeDeliveryNote:      "LS",
	TypeOrderConfirmation: "AB",
	TypePartialInvoice:    "TINV",
	TypeCreditNote:        "GS",
	TypeCancellation:      "ST",
}

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	_, ok := NumberPrefix[t]
	return ok
}

// Negative reports whether documents of this type carry sign-flipped totals.
func (t DocumentType) Negative() bool {
	return t == TypeCreditNote || t == TypeCancellation
}

// Payable reports whether the payment and reminder ledgers apply to this type.
func (t DocumentType) Payable() bool {
	return t == TypeInvoice || t == TypePartialInvoice
}

// DocumentStatus enumerates document lifecycle states.
type DocumentStatus string

const (
	StatusDraft         DocumentStatus = "DRAFT"
	StatusSent          DocumentStatus = "SENT"
	StatusPaid          DocumentStatus = "PAID"
	StatusPartiallyPaid DocumentStatus = "PARTIALLY_PAID"
	StatusOverdue       DocumentStatus = "OVERDUE"
	StatusCancelled     DocumentStatus = "CANCELLED"
	StatusAccepted      DocumentStatus = "ACCEPTED"
	StatusRejected      DocumentStatus = "REJECTED"
	StatusConverted     DocumentStatus = "CONVERTED"
)

// PaymentMethod enumerates supported payment methods.
type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodCash         PaymentMethod = "CASH"
	MethodPaypal       PaymentMethod = "PAYPAL"
)

// LineItem is a single position on a document. Derived amounts are computed
// by the money package and never hand-edited; items are immutable once the
// owning document leaves DRAFT.
type LineItem struct {
	ProductID       string  `json:"product_id,omitempty"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Unit            string  `json:"unit"`
	Quantity        float64 `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	DiscountPercent float64 `json:"discount_percent"`
	VATRate         float64 `json:"vat_rate"`
	DiscountAmount  float64 `json:"discount_amount"`
	NetAmount       float64 `json:"net_amount"`
	VATAmount       float64 `json:"vat_amount"`
	GrossAmount     float64 `json:"gross_amount"`
}

// Totals aggregates a document's monetary state.
type Totals struct {
	Net             float64 `json:"net"`
	VAT             float64 `json:"vat"`
	Gross           float64 `json:"gross"`
	PaidAmount      float64 `json:"paid_amount"`
	RemainingAmount float64 `json:"remaining_amount"`
}

// Payment is an immutable record appended by the payment ledger.
type Payment struct {
	Amount     float64       `json:"amount"`
	Method     PaymentMethod `json:"method"`
	Note       string        `json:"note,omitempty"`
	Reference  string        `json:"reference,omitempty"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// Reminder is an immutable dunning record appended by the reminder ledger.
type Reminder struct {
	Level  int       `json:"level"`
	Fee    float64   `json:"fee"`
	Note   string    `json:"note,omitempty"`
	SentAt time.Time `json:"sent_at"`
}

// Document is the central entity: an invoice, quote or related business
// document together with its financial state.
type Document struct {
	ID                  string         `json:"id"`
	CompanyID           string         `json:"company_id"`
	CustomerID          string         `json:"customer_id"`
	Type                DocumentType   `json:"document_type"`
	Number              string         `json:"document_number"`
	Status              DocumentStatus `json:"status"`
	Items               []LineItem     `json:"items"`
	Totals              Totals         `json:"totals"`
	Payments            []Payment      `json:"payments"`
	Reminders           []Reminder     `json:"reminders"`
	SmallBusinessExempt bool           `json:"is_small_business_exempt"`
	Notes               string         `json:"notes,omitempty"`
	PaymentTermsDays    int            `json:"payment_terms_days"`
	IssueDate           string         `json:"issue_date"`
	ServiceDate         string         `json:"service_date,omitempty"`
	DueDate             string         `json:"due_date"`
	RelatedDocumentID   string         `json:"related_document_id,omitempty"`
	Version             int64          `json:"-"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// DateLayout is the wire format for issue, service and due dates.
const DateLayout = "2006-01-02"

// NewLineItem computes the derived amounts for a resolved line item.
func NewLineItem(productID, name, description, unit string, quantity, unitPrice, discountPercent, vatRate float64) LineItem {
	amounts := money.ComputeLine(quantity, unitPrice, discountPercent, vatRate)
	return LineItem{
		ProductID:       productID,
		Name:            name,
		Description:     description,
		Unit:            unit,
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		DiscountPercent: discountPercent,
		VATRate:         vatRate,
		DiscountAmount:  amounts.DiscountAmount,
		NetAmount:       amounts.NetAmount,
		VATAmount:       amounts.VATAmount,
		GrossAmount:     amounts.GrossAmount,
	}
}

// ComputeTotals derives document totals from the given items, applying the
// sign flip for credit notes and cancellations. Remaining equals gross on a
// fresh document (no payments yet).
func ComputeTotals(items []LineItem, smallBusinessExempt bool, docType DocumentType) Totals {
	lines := make([]money.LineAmounts, len(items))
	for i, item := range items {
		lines[i] = money.LineAmounts{
			DiscountAmount: item.DiscountAmount,
			NetAmount:      item.NetAmount,
			VATAmount:      item.VATAmount,
			GrossAmount:    item.GrossAmount,
		}
	}
	sums := money.ComputeTotals(lines, smallBusinessExempt)

	t := Totals{Net: sums.Net, VAT: sums.VAT, Gross: sums.Gross}
	if docType.Negative() {
		t.Net = -abs(t.Net)
		t.VAT = -abs(t.VAT)
		t.Gross = -abs(t.Gross)
	}
	t.RemainingAmount = t.Gross
	return t
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Terminal reports whether the document's status admits no further transition.
func (d *Document) Terminal() bool {
	return len(transitionsFor(d.Type)[d.Status]) == 0
}
