package stats

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs the aggregate queries.
type Repository interface {
	MonthlyRevenue(ctx context.Context, companyID string, year int) ([]MonthlyRevenue, error)
	TopCustomers(ctx context.Context, companyID string, limit int) ([]CustomerRevenue, error)
	Overview(ctx context.Context, companyID string) (Overview, error)
}

// revenueTypes are the document types that count toward revenue. Credit
// notes and cancellations are included with their negative totals.
const (
	revenueTypes = `('INVOICE','PARTIAL_INVOICE','CREDIT_NOTE','CANCELLATION')`
	payableTypes = `('INVOICE','PARTIAL_INVOICE')`
	// Credit notes and cancellations are issued as SENT and never reach
	// PAID; they count as settled the moment they are issued.
	settledDocs = `(status = 'PAID' OR (doc_type IN ('CREDIT_NOTE','CANCELLATION') AND status = 'SENT'))`
)

type pgRepository struct {
	db *pgxpool.Pool
}

// NewRepository builds a Postgres-backed Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &pgRepository{db: db}
}

func (r *pgRepository) MonthlyRevenue(ctx context.Context, companyID string, year int) ([]MonthlyRevenue, error) {
	rows, err := r.db.Query(ctx, `
		SELECT substring(issue_date, 1, 7) AS month,
		       COALESCE(SUM((totals->>'net')::numeric), 0),
		       COALESCE(SUM((totals->>'vat')::numeric), 0),
		       COALESCE(SUM((totals->>'gross')::numeric), 0)
		FROM documents
		WHERE company_id = $1
		  AND `+settledDocs+`
		  AND doc_type IN `+revenueTypes+`
		  AND substring(issue_date, 1, 4) = $2
		GROUP BY month
		ORDER BY month
	`, companyID, fmt.Sprintf("%04d", year))
	if err != nil {
		return nil, fmt.Errorf("stats: monthly revenue: %w", err)
	}
	defer rows.Close()

	var out []MonthlyRevenue
	for rows.Next() {
		var m MonthlyRevenue
		if err := rows.Scan(&m.Month, &m.Net, &m.VAT, &m.Gross); err != nil {
			return nil, fmt.Errorf("stats: scan monthly revenue: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *pgRepository) TopCustomers(ctx context.Context, companyID string, limit int) ([]CustomerRevenue, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(ctx, `
		SELECT d.customer_id,
		       COALESCE(c.name, ''),
		       COALESCE(SUM((d.totals->>'gross')::numeric), 0) AS gross,
		       COUNT(*)
		FROM documents d
		LEFT JOIN customers c ON c.company_id = d.company_id AND c.id = d.customer_id
		WHERE d.company_id = $1
		  AND `+settledDocs+`
		  AND d.doc_type IN `+revenueTypes+`
		GROUP BY d.customer_id, c.name
		ORDER BY gross DESC
		LIMIT $2
	`, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("stats: top customers: %w", err)
	}
	defer rows.Close()

	var out []CustomerRevenue
	for rows.Next() {
		var c CustomerRevenue
		if err := rows.Scan(&c.CustomerID, &c.CustomerName, &c.Gross, &c.DocumentCount); err != nil {
			return nil, fmt.Errorf("stats: scan top customers: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *pgRepository) Overview(ctx context.Context, companyID string) (Overview, error) {
	var o Overview
	err := r.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM((totals->>'remaining_amount')::numeric) FILTER (WHERE doc_type IN `+payableTypes+` AND status IN ('SENT','PARTIALLY_PAID','OVERDUE')), 0),
			COUNT(*) FILTER (WHERE doc_type IN `+payableTypes+` AND status IN ('SENT','PARTIALLY_PAID','OVERDUE')),
			COALESCE(SUM((totals->>'remaining_amount')::numeric) FILTER (WHERE status = 'OVERDUE'), 0),
			COUNT(*) FILTER (WHERE status = 'OVERDUE'),
			COUNT(*) FILTER (WHERE status = 'DRAFT'),
			COALESCE(SUM((totals->>'gross')::numeric) FILTER (WHERE `+settledDocs+`), 0),
			COUNT(*) FILTER (WHERE `+settledDocs+`)
		FROM documents
		WHERE company_id = $1 AND doc_type IN `+revenueTypes+`
	`, companyID).Scan(
		&o.OpenAmount, &o.OpenCount,
		&o.OverdueAmount, &o.OverdueCount,
		&o.DraftCount,
		&o.PaidGross, &o.PaidCount,
	)
	if err != nil && err != pgx.ErrNoRows {
		return Overview{}, fmt.Errorf("stats: overview: %w", err)
	}
	return o, nil
}
