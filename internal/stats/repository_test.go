package stats

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/faktura-erp/faktura/internal/billing/documents"
)

// Credit notes and cancellations are issued as SENT and can never reach
// PAID, so the settled predicate has to accept that route or their negative
// totals would silently drop out of every revenue figure.
func TestSettledPredicateMatchesStatusMachine(t *testing.T) {
	for _, docType := range []documents.DocumentType{documents.TypeCreditNote, documents.TypeCancellation} {
		require.False(t, documents.CanTransition(docType, documents.StatusSent, documents.StatusPaid))
		require.Contains(t, settledDocs, string(docType))
	}
	require.Contains(t, settledDocs, "status = 'PAID'")
	require.Contains(t, settledDocs, "status = 'SENT'")
}
