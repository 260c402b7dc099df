package documents

import (
	"context"
	"fmt"
	"log/slog"
)

// AddReminder appends a dunning record (Mahnung) to an invoice. Levels are
// issued strictly in sequence 1..max; the document is moved to OVERDUE
// unconditionally, even from PARTIALLY_PAID.
//
// Like AddPayment, the status change is a hardcoded ledger rule and does not
// consult the generic transition table.
func (s *Service) AddReminder(ctx context.Context, companyID, id string, req AddReminderRequest) (*Document, error) {
	if req.Fee < 0 {
		return nil, fmt.Errorf("%w: fee %.2f", ErrInvalidAmount, req.Fee)
	}

	var updated *Document
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		doc, err := repo.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if !doc.Type.Payable() {
			return fmt.Errorf("%w: reminders only apply to invoices, got %s", ErrWrongDocumentType, doc.Type)
		}
		switch doc.Status {
		case StatusSent, StatusOverdue, StatusPartiallyPaid:
		default:
			return fmt.Errorf("%w: cannot remind a %s document", ErrInvalidState, doc.Status)
		}
		if len(doc.Reminders) >= s.maxReminderLevel {
			return fmt.Errorf("%w: level %d", ErrMaxLevelReached, s.maxReminderLevel)
		}

		now := s.now().UTC()
		doc.Reminders = append(doc.Reminders, Reminder{
			Level:  len(doc.Reminders) + 1,
			Fee:    req.Fee,
			Note:   req.Note,
			SentAt: now,
		})
		doc.Status = StatusOverdue
		doc.UpdatedAt = now

		if err := repo.Update(ctx, doc); err != nil {
			return err
		}
		s.logger.Info("reminder recorded",
			slog.String("number", doc.Number),
			slog.Int("level", len(doc.Reminders)))
		updated = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
