package customers

import "time"

// Customer represents a billing customer.
type Customer struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	Street    string    `json:"street"`
	ZipCode   string    `json:"zip_code"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
	Email     string    `json:"email,omitempty"`
	TaxID     string    `json:"tax_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
