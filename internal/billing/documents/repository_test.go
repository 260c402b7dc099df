package documents

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/faktura-erp/faktura/internal/platform/httpx"
)

func TestInsertErrorMapsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: documentNumberConstraint}

	err := insertError("INV-000001", fmt.Errorf("exec: %w", pgErr))
	require.ErrorIs(t, err, httpx.ErrDuplicate)
	require.Contains(t, err.Error(), "INV-000001")
}

func TestInsertErrorPassesThroughOtherErrors(t *testing.T) {
	err := insertError("INV-000002", errors.New("connection reset"))
	require.NotErrorIs(t, err, httpx.ErrDuplicate)

	otherConstraint := &pgconn.PgError{Code: "23503", ConstraintName: "documents_customer_id_fkey"}
	err = insertError("INV-000003", otherConstraint)
	require.NotErrorIs(t, err, httpx.ErrDuplicate)
}
