package documents

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/faktura-erp/faktura/internal/billing/money"
)

// AddPayment appends an immutable payment record to an invoice, recomputes
// the paid and remaining amounts and derives the new status (PAID when the
// gross is settled within tolerance, PARTIALLY_PAID otherwise).
//
// The status is set directly here, not through the generic transition table:
// the ledger owns this narrower rule.
func (s *Service) AddPayment(ctx context.Context, companyID, id string, req AddPaymentRequest) (*Document, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: got %.2f", ErrInvalidAmount, req.Amount)
	}
	method := req.Method
	if method == "" {
		method = MethodBankTransfer
	}

	var updated *Document
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		doc, err := repo.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if !doc.Type.Payable() {
			return fmt.Errorf("%w: payments only allowed on invoices, got %s", ErrWrongDocumentType, doc.Type)
		}
		switch doc.Status {
		case StatusDraft, StatusCancelled, StatusPaid:
			return fmt.Errorf("%w: cannot add payment to a %s document", ErrInvalidState, doc.Status)
		}
		if req.Amount > doc.Totals.RemainingAmount+amountTolerance {
			return fmt.Errorf("%w: %.2f exceeds remaining %.2f",
				ErrExceedsRemaining, req.Amount, doc.Totals.RemainingAmount)
		}

		now := s.now().UTC()
		s.applyPayment(doc, Payment{
			Amount:     req.Amount,
			Method:     method,
			Note:       req.Note,
			RecordedAt: now,
		})
		if err := repo.Update(ctx, doc); err != nil {
			return err
		}

		// A fully paid partial invoice settles the same amount on its
		// parent invoice.
		if doc.Type == TypePartialInvoice && doc.Status == StatusPaid && doc.RelatedDocumentID != "" {
			if err := s.settleOnParent(ctx, repo, doc, method); err != nil {
				return err
			}
		}

		s.logger.Info("payment recorded",
			slog.String("number", doc.Number),
			slog.Float64("amount", req.Amount),
			slog.String("status", string(doc.Status)))
		updated = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// applyPayment appends the record and re-derives the financial state and
// status. Callers have already validated amount, type and status.
func (s *Service) applyPayment(doc *Document, p Payment) {
	doc.Payments = append(doc.Payments, p)

	var paid float64
	for _, record := range doc.Payments {
		paid += record.Amount
	}
	doc.Totals.PaidAmount = money.Round2(paid)
	doc.Totals.RemainingAmount = remaining(doc.Totals.Gross, doc.Totals.PaidAmount)

	if abs(doc.Totals.PaidAmount-abs(doc.Totals.Gross)) < amountTolerance {
		doc.Status = StatusPaid
	} else {
		doc.Status = StatusPartiallyPaid
	}
	doc.UpdatedAt = p.RecordedAt
}

func (s *Service) settleOnParent(ctx context.Context, repo Repository, partial *Document, method PaymentMethod) error {
	parent, err := repo.GetForUpdate(ctx, partial.CompanyID, partial.RelatedDocumentID)
	if err != nil {
		// An unlinked parent must not block settling the partial invoice.
		s.logger.Warn("partial invoice parent not found",
			slog.String("partial", partial.Number),
			slog.String("parent_id", partial.RelatedDocumentID))
		return nil
	}
	if parent.Type != TypeInvoice || parent.Status == StatusCancelled || parent.Status == StatusPaid {
		return nil
	}

	amount := abs(partial.Totals.Gross)
	if amount > parent.Totals.RemainingAmount+amountTolerance {
		s.logger.Warn("partial settlement exceeds parent remaining",
			slog.String("partial", partial.Number),
			slog.String("parent", parent.Number))
		return nil
	}

	s.applyPayment(parent, Payment{
		Amount:     amount,
		Method:     method,
		Reference:  "Abschlagsrechnung " + partial.Number,
		RecordedAt: s.now().UTC(),
	})
	if err := repo.Update(ctx, parent); err != nil {
		return err
	}
	s.logger.Info("partial settlement synced to parent",
		slog.String("parent", parent.Number),
		slog.Float64("amount", amount))
	return nil
}

func remaining(gross, paid float64) float64 {
	r := money.Round2(gross - paid)
	if r < 0 {
		return 0
	}
	return r
}
