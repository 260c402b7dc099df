package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/faktura-erp/faktura/internal/platform/httpx"
)

// Repository abstracts product persistence.
type Repository interface {
	Get(ctx context.Context, companyID, id string) (Product, error)
	List(ctx context.Context, companyID string, search string, limit, offset int) ([]Product, int, error)
	Create(ctx context.Context, p Product) error
	Update(ctx context.Context, p Product) error
	Delete(ctx context.Context, companyID, id string) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a PostgreSQL backed product repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `id, company_id, name, description, unit, unit_price, vat_rate, is_active, created_at, updated_at`

func (r *repository) Get(ctx context.Context, companyID, id string) (Product, error) {
	var p Product
	err := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE company_id = $1 AND id = $2`,
		companyID, id,
	).Scan(&p.ID, &p.CompanyID, &p.Name, &p.Description, &p.Unit, &p.UnitPrice, &p.VATRate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, httpx.ErrNotFound
		}
		return Product{}, fmt.Errorf("products: get %s: %w", id, err)
	}
	return p, nil
}

func (r *repository) List(ctx context.Context, companyID string, search string, limit, offset int) ([]Product, int, error) {
	where := "WHERE company_id = $1"
	args := []interface{}{companyID}
	if search != "" {
		where += " AND (name ILIKE $2 OR description ILIKE $2)"
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("products: count: %w", err)
	}

	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(
		"SELECT %s FROM products %s ORDER BY name LIMIT $%d OFFSET $%d",
		productColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("products: list: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Description, &p.Unit, &p.UnitPrice, &p.VATRate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("products: scan: %w", err)
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, p Product) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (id, company_id, name, description, unit, unit_price, vat_rate, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, p.ID, p.CompanyID, p.Name, p.Description, p.Unit, p.UnitPrice, p.VATRate, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("products: create: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, p Product) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET name=$3, description=$4, unit=$5, unit_price=$6, vat_rate=$7, is_active=$8, updated_at=$9
		WHERE company_id = $1 AND id = $2
	`, p.CompanyID, p.ID, p.Name, p.Description, p.Unit, p.UnitPrice, p.VATRate, p.IsActive, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("products: update %s: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return fmt.Errorf("products: delete %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
