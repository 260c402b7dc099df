package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/faktura-erp/faktura/internal/platform/db"
	"github.com/faktura-erp/faktura/internal/platform/httpx"
)

// ListFilter narrows document listings.
type ListFilter struct {
	Type   *DocumentType
	Status *DocumentStatus
	Search string
	Limit  int
	Offset int
}

// Repository abstracts document persistence.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Insert(ctx context.Context, doc *Document) error
	Get(ctx context.Context, companyID, id string) (*Document, error)
	// GetForUpdate locks the document row for the duration of the enclosing
	// transaction. Outside a transaction it behaves like Get.
	GetForUpdate(ctx context.Context, companyID, id string) (*Document, error)
	// Update persists the document conditioned on the version it was read at
	// and bumps the version. Returns ErrVersionConflict when another writer
	// got there first.
	Update(ctx context.Context, doc *Document) error
	Delete(ctx context.Context, companyID, id string) error
	List(ctx context.Context, companyID string, filter ListFilter) ([]Document, int, error)
	// ListRelated returns all documents whose related_document_id equals id,
	// newest first.
	ListRelated(ctx context.Context, companyID, id string) ([]Document, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
	inTx bool
}

// NewRepository returns a PostgreSQL backed document repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool, inTx: true})
	})
}

const documentColumns = `
	id, company_id, customer_id, doc_type, doc_number, status,
	items, totals, payments, reminders,
	small_business_exempt, notes, payment_terms_days,
	issue_date, service_date, due_date, related_document_id,
	version, created_at, updated_at`

func (r *repository) Insert(ctx context.Context, doc *Document) error {
	items, totals, payments, reminders, err := marshalDocumentJSON(doc)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO documents (
			id, company_id, customer_id, doc_type, doc_number, status,
			items, totals, payments, reminders,
			small_business_exempt, notes, payment_terms_days,
			issue_date, service_date, due_date, related_document_id,
			version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
	`,
		doc.ID, doc.CompanyID, doc.CustomerID, doc.Type, doc.Number, doc.Status,
		items, totals, payments, reminders,
		doc.SmallBusinessExempt, doc.Notes, doc.PaymentTermsDays,
		doc.IssueDate, doc.ServiceDate, doc.DueDate, doc.RelatedDocumentID,
		doc.Version, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return insertError(doc.Number, err)
	}
	return nil
}

const documentNumberConstraint = "documents_company_id_doc_number_key"

// insertError maps a unique violation on the document number to ErrDuplicate.
func insertError(number string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName == documentNumberConstraint {
		return fmt.Errorf("documents: number %s already exists: %w", number, httpx.ErrDuplicate)
	}
	return fmt.Errorf("documents: insert %s: %w", number, err)
}

func (r *repository) Get(ctx context.Context, companyID, id string) (*Document, error) {
	return r.get(ctx, companyID, id, false)
}

func (r *repository) GetForUpdate(ctx context.Context, companyID, id string) (*Document, error) {
	return r.get(ctx, companyID, id, r.inTx)
}

func (r *repository) get(ctx context.Context, companyID, id string, lock bool) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE company_id = $1 AND id = $2`
	if lock {
		query += ` FOR UPDATE`
	}
	row := r.db.QueryRow(ctx, query, companyID, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("documents: get %s: %w", id, err)
	}
	return doc, nil
}

func (r *repository) Update(ctx context.Context, doc *Document) error {
	items, totals, payments, reminders, err := marshalDocumentJSON(doc)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE documents SET
			customer_id = $3, status = $4,
			items = $5, totals = $6, payments = $7, reminders = $8,
			small_business_exempt = $9, notes = $10, payment_terms_days = $11,
			issue_date = $12, service_date = $13, due_date = $14,
			version = version + 1, updated_at = $15
		WHERE company_id = $1 AND id = $2 AND version = $16
	`,
		doc.CompanyID, doc.ID, doc.CustomerID, doc.Status,
		items, totals, payments, reminders,
		doc.SmallBusinessExempt, doc.Notes, doc.PaymentTermsDays,
		doc.IssueDate, doc.ServiceDate, doc.DueDate,
		doc.UpdatedAt, doc.Version,
	)
	if err != nil {
		return fmt.Errorf("documents: update %s: %w", doc.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	doc.Version++
	return nil
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return fmt.Errorf("documents: delete %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, companyID string, filter ListFilter) ([]Document, int, error) {
	conditions := []string{"company_id = $1"}
	args := []interface{}{companyID}
	argPos := 2

	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("doc_type = $%d", argPos))
		args = append(args, *filter.Type)
		argPos++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *filter.Status)
		argPos++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(doc_number ILIKE $%d OR notes ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+filter.Search+"%")
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM documents %s", whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("documents: count: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(
		"SELECT %s FROM documents %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		documentColumns, whereClause, argPos, argPos+1,
	)
	args = append(args, limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("documents: list: %w", err)
	}
	defer rows.Close()

	docs, err := scanDocuments(rows)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (r *repository) ListRelated(ctx context.Context, companyID, id string) ([]Document, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE company_id = $1 AND related_document_id = $2
		ORDER BY created_at DESC
	`, companyID, id)
	if err != nil {
		return nil, fmt.Errorf("documents: list related %s: %w", id, err)
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func marshalDocumentJSON(doc *Document) (items, totals, payments, reminders []byte, err error) {
	if items, err = json.Marshal(doc.Items); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("documents: marshal items: %w", err)
	}
	if totals, err = json.Marshal(doc.Totals); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("documents: marshal totals: %w", err)
	}
	if payments, err = json.Marshal(doc.Payments); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("documents: marshal payments: %w", err)
	}
	if reminders, err = json.Marshal(doc.Reminders); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("documents: marshal reminders: %w", err)
	}
	return items, totals, payments, reminders, nil
}

func scanDocument(row pgx.Row) (*Document, error) {
	var doc Document
	var items, totals, payments, reminders []byte
	err := row.Scan(
		&doc.ID, &doc.CompanyID, &doc.CustomerID, &doc.Type, &doc.Number, &doc.Status,
		&items, &totals, &payments, &reminders,
		&doc.SmallBusinessExempt, &doc.Notes, &doc.PaymentTermsDays,
		&doc.IssueDate, &doc.ServiceDate, &doc.DueDate, &doc.RelatedDocumentID,
		&doc.Version, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &doc.Items); err != nil {
		return nil, fmt.Errorf("documents: unmarshal items: %w", err)
	}
	if err := json.Unmarshal(totals, &doc.Totals); err != nil {
		return nil, fmt.Errorf("documents: unmarshal totals: %w", err)
	}
	if err := json.Unmarshal(payments, &doc.Payments); err != nil {
		return nil, fmt.Errorf("documents: unmarshal payments: %w", err)
	}
	if err := json.Unmarshal(reminders, &doc.Reminders); err != nil {
		return nil, fmt.Errorf("documents: unmarshal reminders: %w", err)
	}
	return &doc, nil
}

func scanDocuments(rows pgx.Rows) ([]Document, error) {
	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("documents: scan rows: %w", err)
	}
	return docs, nil
}
