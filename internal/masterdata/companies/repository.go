package companies

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/faktura-erp/faktura/internal/platform/httpx"
)

// Repository abstracts company persistence.
type Repository interface {
	Get(ctx context.Context, id string) (Company, error)
	Update(ctx context.Context, c Company) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a PostgreSQL backed company repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, id string) (Company, error) {
	var c Company
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, street, zip_code, city, country, tax_id, vat_id, iban, bic,
		       small_business_exempt, default_vat_rate, payment_terms_days, created_at, updated_at
		FROM companies WHERE id = $1
	`, id).Scan(
		&c.ID, &c.Name, &c.Street, &c.ZipCode, &c.City, &c.Country, &c.TaxID, &c.VATID, &c.IBAN, &c.BIC,
		&c.SmallBusinessExempt, &c.DefaultVATRate, &c.PaymentTermsDays, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, httpx.ErrNotFound
		}
		return Company{}, fmt.Errorf("companies: get %s: %w", id, err)
	}
	return c, nil
}

func (r *repository) Update(ctx context.Context, c Company) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE companies SET name=$2, street=$3, zip_code=$4, city=$5, country=$6, tax_id=$7, vat_id=$8,
		       iban=$9, bic=$10, small_business_exempt=$11, default_vat_rate=$12, payment_terms_days=$13, updated_at=$14
		WHERE id = $1
	`, c.ID, c.Name, c.Street, c.ZipCode, c.City, c.Country, c.TaxID, c.VATID,
		c.IBAN, c.BIC, c.SmallBusinessExempt, c.DefaultVATRate, c.PaymentTermsDays, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("companies: update %s: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
