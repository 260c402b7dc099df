package companies

import "time"

// Company holds a tenant's master data and billing settings. Documents
// snapshot the relevant fields at creation time so historical documents are
// not altered by later settings changes.
type Company struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Street              string    `json:"street"`
	ZipCode             string    `json:"zip_code"`
	City                string    `json:"city"`
	Country             string    `json:"country"`
	TaxID               string    `json:"tax_id,omitempty"`
	VATID               string    `json:"vat_id,omitempty"`
	IBAN                string    `json:"iban,omitempty"`
	BIC                 string    `json:"bic,omitempty"`
	SmallBusinessExempt bool      `json:"is_small_business_exempt"`
	DefaultVATRate      float64   `json:"default_vat_rate"`
	PaymentTermsDays    int       `json:"payment_terms_days"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// AllowedVATRates are the configured German VAT rates.
var AllowedVATRates = []float64{0.19, 0.07, 0.0}
