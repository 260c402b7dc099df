package documents

import (
	"fmt"
	"time"
)

// Status transition tables per document type. A transition absent from the
// table fails with ErrInvalidTransition and leaves the document unchanged.
//
// The payment and reminder ledgers deliberately do not consult these tables:
// they own narrower, hardcoded status rules (see payments.go, reminders.go).

var invoiceTransitions = map[DocumentStatus][]DocumentStatus{
	StatusDraft:         {StatusSent, StatusCancelled},
	StatusSent:          {StatusPaid, StatusPartiallyPaid, StatusOverdue, StatusCancelled},
	StatusPartiallyPaid: {StatusPaid, StatusOverdue, StatusCancelled},
	StatusOverdue:       {StatusPaid, StatusPartiallyPaid, StatusCancelled},
}

var quoteTransitions = map[DocumentStatus][]DocumentStatus{
	StatusDraft:    {StatusSent, StatusCancelled},
	StatusSent:     {StatusAccepted, StatusRejected, StatusCancelled},
	StatusAccepted: {StatusConverted},
}

// Non-financial document types only move from DRAFT to SENT or CANCELLED;
// cancellations are issued and never cancelled themselves.
var draftOnlyTransitions = map[DocumentStatus][]DocumentStatus{
	StatusDraft: {StatusSent, StatusCancelled},
}

var cancellationTransitions = map[DocumentStatus][]DocumentStatus{
	StatusDraft: {StatusSent},
}

func transitionsFor(t DocumentType) map[DocumentStatus][]DocumentStatus {
	switch t {
	case TypeInvoice, TypePartialInvoice:
		return invoiceTransitions
	case TypeQuote:
		return quoteTransitions
	case TypeCancellation:
		return cancellationTransitions
	default:
		return draftOnlyTransitions
	}
}

// CanTransition reports whether a document of the given type may move from
// one status to another.
func CanTransition(t DocumentType, from, to DocumentStatus) bool {
	for _, allowed := range transitionsFor(t)[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition applies a validated status change. It mutates only Status and
// UpdatedAt; financial recomputation belongs to the ledgers.
func (d *Document) Transition(to DocumentStatus, now time.Time) error {
	if !CanTransition(d.Type, d.Status, to) {
		return fmt.Errorf("%w: %s -> %s for %s", ErrInvalidTransition, d.Status, to, d.Type)
	}
	d.Status = to
	d.UpdatedAt = now
	return nil
}
