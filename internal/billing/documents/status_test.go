package documents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var allStatuses = []DocumentStatus{
	StatusDraft, StatusSent, StatusPaid, StatusPartiallyPaid,
	StatusOverdue, StatusCancelled, StatusAccepted, StatusRejected, StatusConverted,
}

var allTypes = []DocumentType{
	TypeInvoice, TypeQuote, TypeDeliveryNote, TypeOrderConfirmation,
	TypePartialInvoice, TypeCreditNote, TypeCancellation,
}

func TestInvoiceTransitions(t *testing.T) {
	allowed := map[DocumentStatus][]DocumentStatus{
		StatusDraft:         {StatusSent, StatusCancelled},
		StatusSent:          {StatusPaid, StatusPartiallyPaid, StatusOverdue, StatusCancelled},
		StatusPartiallyPaid: {StatusPaid, StatusOverdue, StatusCancelled},
		StatusOverdue:       {StatusPaid, StatusPartiallyPaid, StatusCancelled},
	}
	assertTransitionTable(t, TypeInvoice, allowed)
	assertTransitionTable(t, TypePartialInvoice, allowed)
}

func TestQuoteTransitions(t *testing.T) {
	assertTransitionTable(t, TypeQuote, map[DocumentStatus][]DocumentStatus{
		StatusDraft:    {StatusSent, StatusCancelled},
		StatusSent:     {StatusAccepted, StatusRejected, StatusCancelled},
		StatusAccepted: {StatusConverted},
	})
}

func TestNonFinancialTransitions(t *testing.T) {
	draftOnly := map[DocumentStatus][]DocumentStatus{
		StatusDraft: {StatusSent, StatusCancelled},
	}
	assertTransitionTable(t, TypeDeliveryNote, draftOnly)
	assertTransitionTable(t, TypeOrderConfirmation, draftOnly)
	assertTransitionTable(t, TypeCreditNote, draftOnly)
	assertTransitionTable(t, TypeCancellation, map[DocumentStatus][]DocumentStatus{
		StatusDraft: {StatusSent},
	})
}

// assertTransitionTable checks CanTransition against the expected table for
// every (from, to) pair, not just the allowed ones.
func assertTransitionTable(t *testing.T, docType DocumentType, allowed map[DocumentStatus][]DocumentStatus) {
	t.Helper()
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := false
			for _, s := range allowed[from] {
				if s == to {
					want = true
				}
			}
			require.Equal(t, want, CanTransition(docType, from, to),
				"%s: %s -> %s", docType, from, to)
		}
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	for _, docType := range allTypes {
		require.False(t, (&Document{Type: docType, Status: StatusDraft}).Terminal())
		for _, from := range []DocumentStatus{StatusPaid, StatusCancelled, StatusRejected, StatusConverted} {
			require.True(t, (&Document{Type: docType, Status: from}).Terminal(),
				"%s: %s must be terminal", docType, from)
			for _, to := range allStatuses {
				require.False(t, CanTransition(docType, from, to),
					"%s: %s must be terminal, allows -> %s", docType, from, to)
			}
		}
	}
}

func TestTransitionRejectsAndLeavesDocumentUnchanged(t *testing.T) {
	doc := &Document{Type: TypeInvoice, Status: StatusDraft}
	before := doc.UpdatedAt

	err := doc.Transition(StatusPaid, time.Now().UTC())
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Equal(t, StatusDraft, doc.Status)
	require.Equal(t, before, doc.UpdatedAt)

	require.NoError(t, doc.Transition(StatusSent, time.Now().UTC()))
	require.Equal(t, StatusSent, doc.Status)
}
