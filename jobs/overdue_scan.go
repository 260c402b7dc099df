package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/faktura-erp/faktura/internal/billing/documents"
)

// OverdueScanJob flips invoices whose due date has passed to OVERDUE. It
// only touches statuses the transition tables allow to become overdue, so a
// manual status change can never be undone by the scan.
type OverdueScanJob struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
	clock  func() time.Time
}

// NewOverdueScanJob initialises the overdue scan handler.
func NewOverdueScanJob(pool *pgxpool.Pool, logger *slog.Logger) *OverdueScanJob {
	return &OverdueScanJob{
		Pool:   pool,
		Logger: logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the overdue scan.
func (j *OverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("overdue scan: handler not configured")
	}
	var payload OverdueScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	today := j.clock().Format(documents.DateLayout)
	query := `
		UPDATE documents
		SET status = 'OVERDUE', updated_at = now(), version = version + 1
		WHERE status IN ('SENT','PARTIALLY_PAID')
		  AND doc_type IN ('INVOICE','PARTIAL_INVOICE')
		  AND due_date <> ''
		  AND due_date < $1`
	args := []any{today}
	if payload.CompanyID != "" {
		query += ` AND company_id = $2`
		args = append(args, payload.CompanyID)
	}

	tag, err := j.Pool.Exec(ctx, query, args...)
	if err != nil {
		j.Logger.Error("overdue scan failed", slog.Any("error", err))
		return err
	}
	if tag.RowsAffected() > 0 {
		j.Logger.Info("overdue scan finished",
			slog.Int64("marked", tag.RowsAffected()),
			slog.String("cutoff", today))
	}
	return nil
}
