package documents

import "errors"

// Business rule violations raised by the document lifecycle, payment and
// reminder operations. All are expected, user-facing conditions; the HTTP
// layer maps them to problem responses.
var (
	ErrDocumentNotFound    = errors.New("document not found")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrInvalidState        = errors.New("operation not allowed in current document status")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrWrongDocumentType   = errors.New("operation not allowed for this document type")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrExceedsRemaining    = errors.New("payment exceeds remaining amount")
	ErrExceedsSourceAmount = errors.New("partial invoices exceed source document amount")
	ErrMaxLevelReached     = errors.New("maximum reminder level reached")
	ErrAlreadyCancelled    = errors.New("document already cancelled")

	// ErrVersionConflict signals an optimistic concurrency failure on a
	// document write. Infrastructure category: callers may retry.
	ErrVersionConflict = errors.New("document was modified concurrently")
)
