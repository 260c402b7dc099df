package products

import "time"

// Product represents a sellable product or service. Its fields act as
// defaults for document line items referencing it.
type Product struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Unit        string    `json:"unit"`
	UnitPrice   float64   `json:"unit_price"`
	VATRate     float64   `json:"vat_rate"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
