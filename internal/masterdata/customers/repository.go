package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/faktura-erp/faktura/internal/platform/httpx"
)

// Repository abstracts customer persistence.
type Repository interface {
	Get(ctx context.Context, companyID, id string) (Customer, error)
	List(ctx context.Context, companyID string, search string, limit, offset int) ([]Customer, int, error)
	Create(ctx context.Context, c Customer) error
	Update(ctx context.Context, c Customer) error
	Delete(ctx context.Context, companyID, id string) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a PostgreSQL backed customer repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const customerColumns = `id, company_id, name, street, zip_code, city, country, email, tax_id, created_at, updated_at`

func (r *repository) Get(ctx context.Context, companyID, id string) (Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE company_id = $1 AND id = $2`,
		companyID, id,
	).Scan(&c.ID, &c.CompanyID, &c.Name, &c.Street, &c.ZipCode, &c.City, &c.Country, &c.Email, &c.TaxID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, httpx.ErrNotFound
		}
		return Customer{}, fmt.Errorf("customers: get %s: %w", id, err)
	}
	return c, nil
}

func (r *repository) List(ctx context.Context, companyID string, search string, limit, offset int) ([]Customer, int, error) {
	where := "WHERE company_id = $1"
	args := []interface{}{companyID}
	if search != "" {
		where += " AND (name ILIKE $2 OR city ILIKE $2)"
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM customers "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("customers: count: %w", err)
	}

	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(
		"SELECT %s FROM customers %s ORDER BY name LIMIT $%d OFFSET $%d",
		customerColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("customers: list: %w", err)
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Street, &c.ZipCode, &c.City, &c.Country, &c.Email, &c.TaxID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("customers: scan: %w", err)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, c Customer) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO customers (id, company_id, name, street, zip_code, city, country, email, tax_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, c.ID, c.CompanyID, c.Name, c.Street, c.ZipCode, c.City, c.Country, c.Email, c.TaxID, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("customers: create: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, c Customer) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE customers SET name=$3, street=$4, zip_code=$5, city=$6, country=$7, email=$8, tax_id=$9, updated_at=$10
		WHERE company_id = $1 AND id = $2
	`, c.CompanyID, c.ID, c.Name, c.Street, c.ZipCode, c.City, c.Country, c.Email, c.TaxID, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("customers: update %s: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return fmt.Errorf("customers: delete %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
