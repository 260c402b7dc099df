// Package stats aggregates revenue figures over settled billing documents.
// Queries are cached in Redis because the dashboard polls them frequently
// while the underlying numbers change rarely.
package stats

// MonthlyRevenue is the settled revenue of one calendar month. Credit notes
// and cancellations carry negative totals and therefore reduce the figures.
type MonthlyRevenue struct {
	Month string  `json:"month"` // YYYY-MM
	Net   float64 `json:"net"`
	VAT   float64 `json:"vat"`
	Gross float64 `json:"gross"`
}

// CustomerRevenue ranks a customer by settled gross revenue.
type CustomerRevenue struct {
	CustomerID    string  `json:"customer_id"`
	CustomerName  string  `json:"customer_name"`
	Gross         float64 `json:"gross"`
	DocumentCount int     `json:"document_count"`
}

// Overview summarizes the receivables position.
type Overview struct {
	OpenAmount    float64 `json:"open_amount"`
	OpenCount     int     `json:"open_count"`
	OverdueAmount float64 `json:"overdue_amount"`
	OverdueCount  int     `json:"overdue_count"`
	DraftCount    int     `json:"draft_count"`
	PaidGross     float64 `json:"paid_gross"`
	PaidCount     int     `json:"paid_count"`
}
