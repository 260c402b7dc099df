package numbering

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type pgCounterRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a PostgreSQL backed counter repository.
func NewRepository(pool *pgxpool.Pool) CounterRepository {
	return &pgCounterRepository{pool: pool}
}

// NextSequence relies on the upsert being a single read-modify-write statement;
// PostgreSQL serialises concurrent upserts on the same key, so no two callers
// can receive the same value and a failed statement leaves no gap behind.
func (r *pgCounterRepository) NextSequence(ctx context.Context, companyID, counterType string) (int64, error) {
	var seq int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO counters (company_id, counter_type, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (company_id, counter_type)
		DO UPDATE SET seq = counters.seq + 1
		RETURNING seq
	`, companyID, counterType).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return seq, nil
}
