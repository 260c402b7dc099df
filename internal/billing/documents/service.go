package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/faktura-erp/faktura/internal/billing/money"
	"github.com/faktura-erp/faktura/internal/billing/numbering"
	"github.com/faktura-erp/faktura/internal/masterdata/companies"
	"github.com/faktura-erp/faktura/internal/masterdata/customers"
	"github.com/faktura-erp/faktura/internal/masterdata/products"
	"github.com/faktura-erp/faktura/internal/platform/httpx"
)

// amountTolerance absorbs cent-level float drift in payment and partial
// invoice cap comparisons.
const amountTolerance = 0.01

// CustomerLookup resolves customers for document creation.
type CustomerLookup interface {
	Get(ctx context.Context, companyID, id string) (customers.Customer, error)
}

// ProductLookup resolves products referenced by line items.
type ProductLookup interface {
	Get(ctx context.Context, companyID, id string) (products.Product, error)
}

// CompanyLookup provides the company settings snapshot at creation time.
type CompanyLookup interface {
	Get(ctx context.Context, id string) (companies.Company, error)
}

// Service orchestrates the document lifecycle: creation, draft updates,
// status transitions, derived-document generation and the payment and
// reminder ledgers.
type Service struct {
	logger           *slog.Logger
	repo             Repository
	numbers          *numbering.Authority
	customers        CustomerLookup
	products         ProductLookup
	companies        CompanyLookup
	maxReminderLevel int
	now              func() time.Time
}

// NewService builds a Service instance.
func NewService(
	logger *slog.Logger,
	repo Repository,
	numbers *numbering.Authority,
	customerLookup CustomerLookup,
	productLookup ProductLookup,
	companyLookup CompanyLookup,
	maxReminderLevel int,
) *Service {
	if maxReminderLevel <= 0 {
		maxReminderLevel = 3
	}
	return &Service{
		logger:           logger,
		repo:             repo,
		numbers:          numbers,
		customers:        customerLookup,
		products:         productLookup,
		companies:        companyLookup,
		maxReminderLevel: maxReminderLevel,
		now:              time.Now,
	}
}

// Get returns a single document.
func (s *Service) Get(ctx context.Context, companyID, id string) (*Document, error) {
	return s.repo.Get(ctx, companyID, id)
}

// List returns documents matching the filter plus the total match count.
func (s *Service) List(ctx context.Context, companyID string, filter ListFilter) ([]Document, int, error) {
	return s.repo.List(ctx, companyID, filter)
}

// Create builds and persists a new DRAFT document with server-calculated
// totals and a freshly issued document number.
func (s *Service) Create(ctx context.Context, companyID string, req CreateDocumentRequest) (*Document, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrWrongDocumentType, req.Type)
	}

	if _, err := s.customers.Get(ctx, companyID, req.CustomerID); err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCustomerNotFound, req.CustomerID)
		}
		return nil, fmt.Errorf("resolve customer: %w", err)
	}

	company, err := s.companies.Get(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("load company settings: %w", err)
	}

	items, err := s.resolveItems(ctx, companyID, req.Items, company)
	if err != nil {
		return nil, err
	}

	number, err := s.numbers.NextNumber(ctx, companyID, string(req.Type), NumberPrefix[req.Type])
	if err != nil {
		return nil, err
	}

	terms := company.PaymentTermsDays
	if req.PaymentTermsDays != nil {
		terms = *req.PaymentTermsDays
	}
	issueDate := req.IssueDate
	if issueDate == "" {
		issueDate = s.now().UTC().Format(DateLayout)
	}

	doc := s.buildDocument(companyID, req.Type, req.CustomerID, number, items,
		company.SmallBusinessExempt, req.Notes, terms, issueDate, req.ServiceDate, req.RelatedDocumentID)

	if err := s.repo.Insert(ctx, doc); err != nil {
		return nil, err
	}
	s.logger.Info("document created",
		slog.String("type", string(doc.Type)),
		slog.String("number", doc.Number),
		slog.String("company", companyID))
	return doc, nil
}

// Update patches a DRAFT document. Items, customer and totals are
// re-resolved exactly as during creation; number, id and created_at are
// preserved.
func (s *Service) Update(ctx context.Context, companyID, id string, req UpdateDocumentRequest) (*Document, error) {
	var updated *Document
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		doc, err := repo.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if doc.Status != StatusDraft {
			return fmt.Errorf("%w: only DRAFT documents can be edited, got %s", ErrInvalidState, doc.Status)
		}

		if req.CustomerID != nil {
			if _, err := s.customers.Get(ctx, companyID, *req.CustomerID); err != nil {
				if errors.Is(err, httpx.ErrNotFound) {
					return fmt.Errorf("%w: %s", ErrCustomerNotFound, *req.CustomerID)
				}
				return fmt.Errorf("resolve customer: %w", err)
			}
			doc.CustomerID = *req.CustomerID
		}
		if req.Items != nil {
			company, err := s.companies.Get(ctx, companyID)
			if err != nil {
				return fmt.Errorf("load company settings: %w", err)
			}
			items, err := s.resolveItems(ctx, companyID, *req.Items, company)
			if err != nil {
				return err
			}
			doc.Items = items
			doc.SmallBusinessExempt = company.SmallBusinessExempt
			doc.Totals = ComputeTotals(items, doc.SmallBusinessExempt, doc.Type)
		}
		if req.Notes != nil {
			doc.Notes = *req.Notes
		}
		if req.PaymentTermsDays != nil {
			doc.PaymentTermsDays = *req.PaymentTermsDays
		}
		if req.IssueDate != nil {
			doc.IssueDate = *req.IssueDate
		}
		if req.ServiceDate != nil {
			doc.ServiceDate = *req.ServiceDate
		}
		doc.DueDate = dueDate(doc.IssueDate, doc.PaymentTermsDays)
		doc.UpdatedAt = s.now().UTC()

		if err := repo.Update(ctx, doc); err != nil {
			return err
		}
		updated = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteDraft removes a DRAFT document. Non-draft documents are never
// physically deleted.
func (s *Service) DeleteDraft(ctx context.Context, companyID, id string) error {
	doc, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return err
	}
	if doc.Status != StatusDraft {
		return fmt.Errorf("%w: only DRAFT documents can be deleted, got %s", ErrInvalidState, doc.Status)
	}
	return s.repo.Delete(ctx, companyID, id)
}

// ChangeStatus applies a validated status transition. Accepting a quote also
// generates an order confirmation referencing it, inside the same
// transaction.
func (s *Service) ChangeStatus(ctx context.Context, companyID, id string, to DocumentStatus) (*Document, error) {
	var updated *Document
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		doc, err := repo.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		from := doc.Status
		if err := doc.Transition(to, s.now().UTC()); err != nil {
			return err
		}
		if err := repo.Update(ctx, doc); err != nil {
			return err
		}

		if doc.Type == TypeQuote && to == StatusAccepted {
			if err := s.createOrderConfirmation(ctx, repo, doc); err != nil {
				return err
			}
		}

		s.logger.Info("document status changed",
			slog.String("number", doc.Number),
			slog.String("from", string(from)),
			slog.String("to", string(to)))
		updated = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Cancel marks an invoice CANCELLED and generates a CANCELLATION document
// with sign-flipped totals, both inside one transaction. The original's
// status is set directly, bypassing the generic transition table, so even a
// PAID invoice can be reversed.
func (s *Service) Cancel(ctx context.Context, companyID, id string) (*Document, error) {
	var cancellation *Document
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		doc, err := repo.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if !doc.Type.Payable() {
			return fmt.Errorf("%w: only invoices can be cancelled, got %s", ErrWrongDocumentType, doc.Type)
		}
		if doc.Status == StatusCancelled {
			return fmt.Errorf("%w: %s", ErrAlreadyCancelled, doc.Number)
		}

		number, err := s.numbers.NextNumber(ctx, companyID, string(TypeCancellation), NumberPrefix[TypeCancellation])
		if err != nil {
			return err
		}

		today := s.now().UTC().Format(DateLayout)
		derived := s.buildDocument(companyID, TypeCancellation, doc.CustomerID, number,
			copyItems(doc.Items), doc.SmallBusinessExempt,
			"Storno zu "+doc.Number, 0, today, doc.ServiceDate, doc.ID)
		derived.Status = StatusSent

		doc.Status = StatusCancelled
		doc.UpdatedAt = s.now().UTC()

		if err := repo.Update(ctx, doc); err != nil {
			return err
		}
		if err := repo.Insert(ctx, derived); err != nil {
			return err
		}
		s.logger.Info("document cancelled",
			slog.String("number", doc.Number),
			slog.String("cancellation", derived.Number))
		cancellation = derived
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancellation, nil
}

// CreateCreditNote generates a CREDIT_NOTE with sign-flipped totals
// referencing the given invoice. The original's status is left untouched.
func (s *Service) CreateCreditNote(ctx context.Context, companyID, id string) (*Document, error) {
	var credit *Document
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		doc, err := repo.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if !doc.Type.Payable() {
			return fmt.Errorf("%w: credit notes can only reference invoices, got %s", ErrWrongDocumentType, doc.Type)
		}
		if doc.Status == StatusCancelled {
			return fmt.Errorf("%w: cannot credit %s", ErrAlreadyCancelled, doc.Number)
		}

		number, err := s.numbers.NextNumber(ctx, companyID, string(TypeCreditNote), NumberPrefix[TypeCreditNote])
		if err != nil {
			return err
		}

		today := s.now().UTC().Format(DateLayout)
		derived := s.buildDocument(companyID, TypeCreditNote, doc.CustomerID, number,
			copyItems(doc.Items), doc.SmallBusinessExempt,
			"Gutschrift zu "+doc.Number, 0, today, doc.ServiceDate, doc.ID)
		derived.Status = StatusSent

		if err := repo.Insert(ctx, derived); err != nil {
			return err
		}
		s.logger.Info("credit note created",
			slog.String("number", derived.Number),
			slog.String("source", doc.Number))
		credit = derived
		return nil
	})
	if err != nil {
		return nil, err
	}
	return credit, nil
}

// ConvertQuoteToInvoice turns an ACCEPTED quote into a new INVOICE carrying
// the quote's items, and marks the quote CONVERTED.
func (s *Service) ConvertQuoteToInvoice(ctx context.Context, companyID, id string, req ConvertQuoteRequest) (*Document, error) {
	var invoice *Document
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		quote, err := repo.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if quote.Type != TypeQuote {
			return fmt.Errorf("%w: only quotes can be converted, got %s", ErrWrongDocumentType, quote.Type)
		}
		if quote.Status != StatusAccepted {
			return fmt.Errorf("%w: only ACCEPTED quotes can be converted, got %s", ErrInvalidState, quote.Status)
		}

		number, err := s.numbers.NextNumber(ctx, companyID, string(TypeInvoice), NumberPrefix[TypeInvoice])
		if err != nil {
			return err
		}

		terms := quote.PaymentTermsDays
		if req.PaymentTermsDays != nil {
			terms = *req.PaymentTermsDays
		}
		issueDate := req.IssueDate
		if issueDate == "" {
			issueDate = s.now().UTC().Format(DateLayout)
		}

		derived := s.buildDocument(companyID, TypeInvoice, quote.CustomerID, number,
			copyItems(quote.Items), quote.SmallBusinessExempt,
			quote.Notes, terms, issueDate, quote.ServiceDate, quote.ID)

		if err := quote.Transition(StatusConverted, s.now().UTC()); err != nil {
			return err
		}
		if err := repo.Update(ctx, quote); err != nil {
			return err
		}
		if err := repo.Insert(ctx, derived); err != nil {
			return err
		}
		s.logger.Info("quote converted",
			slog.String("quote", quote.Number),
			slog.String("invoice", derived.Number))
		invoice = derived
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// CreatePartialInvoice bills a portion of an invoice's gross amount as a new
// PARTIAL_INVOICE. The cumulative gross of all partial invoices may never
// exceed the source invoice's gross; the source row stays locked while the
// cap is checked.
func (s *Service) CreatePartialInvoice(ctx context.Context, companyID, id string, req PartialInvoiceRequest) (*Document, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: got %.2f", ErrInvalidAmount, req.Amount)
	}

	var partial *Document
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		source, err := repo.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if source.Type != TypeInvoice {
			return fmt.Errorf("%w: partial invoices require an INVOICE source, got %s", ErrWrongDocumentType, source.Type)
		}
		if source.Status == StatusCancelled {
			return fmt.Errorf("%w: source %s is cancelled", ErrInvalidState, source.Number)
		}

		children, err := repo.ListRelated(ctx, companyID, id)
		if err != nil {
			return err
		}
		var partialSum float64
		for _, child := range children {
			if child.Type == TypePartialInvoice {
				partialSum += abs(child.Totals.Gross)
			}
		}
		sourceGross := abs(source.Totals.Gross)
		if partialSum+req.Amount > sourceGross+amountTolerance {
			return fmt.Errorf("%w: %.2f + %.2f exceeds %.2f",
				ErrExceedsSourceAmount, partialSum, req.Amount, sourceGross)
		}

		// The requested amount is gross; derive the net unit price from the
		// source's first line rate. An exempt source bills the amount as net.
		var vatRate float64
		if !source.SmallBusinessExempt && len(source.Items) > 0 {
			vatRate = source.Items[0].VATRate
		}
		net := req.Amount
		if vatRate != 0 {
			net = money.Round2(req.Amount / (1 + vatRate))
		}
		line := NewLineItem("", "Abschlag zu "+source.Number, "", "Pauschal", 1, net, 0, vatRate)

		number, err := s.numbers.NextNumber(ctx, companyID, string(TypePartialInvoice), NumberPrefix[TypePartialInvoice])
		if err != nil {
			return err
		}

		terms := source.PaymentTermsDays
		if req.PaymentTermsDays != nil {
			terms = *req.PaymentTermsDays
		}
		notes := req.Notes
		if notes == "" {
			notes = "Abschlagsrechnung zu " + source.Number
		}
		issueDate := s.now().UTC().Format(DateLayout)

		derived := s.buildDocument(companyID, TypePartialInvoice, source.CustomerID, number,
			[]LineItem{line}, source.SmallBusinessExempt, notes, terms, issueDate, source.ServiceDate, source.ID)

		if err := repo.Insert(ctx, derived); err != nil {
			return err
		}
		s.logger.Info("partial invoice created",
			slog.String("number", derived.Number),
			slog.String("source", source.Number),
			slog.Float64("amount", req.Amount))
		partial = derived
		return nil
	})
	if err != nil {
		return nil, err
	}
	return partial, nil
}

// Related returns the parent referenced by the document plus all documents
// referencing it.
func (s *Service) Related(ctx context.Context, companyID, id string) (*RelatedDocuments, error) {
	doc, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	children, err := s.repo.ListRelated(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	rel := &RelatedDocuments{Children: make([]RelatedSummary, 0, len(children))}
	for _, child := range children {
		rel.Children = append(rel.Children, summarize(&child))
	}

	if doc.RelatedDocumentID != "" {
		parent, err := s.repo.Get(ctx, companyID, doc.RelatedDocumentID)
		if err == nil {
			summary := summarize(parent)
			rel.Parent = &summary
		} else if !errors.Is(err, ErrDocumentNotFound) {
			return nil, err
		}
	}
	return rel, nil
}

func (s *Service) createOrderConfirmation(ctx context.Context, repo Repository, quote *Document) error {
	number, err := s.numbers.NextNumber(ctx, quote.CompanyID, string(TypeOrderConfirmation), NumberPrefix[TypeOrderConfirmation])
	if err != nil {
		return err
	}
	derived := s.buildDocument(quote.CompanyID, TypeOrderConfirmation, quote.CustomerID, number,
		copyItems(quote.Items), quote.SmallBusinessExempt,
		"Auftragsbestätigung zu Angebot "+quote.Number,
		quote.PaymentTermsDays, quote.IssueDate, quote.ServiceDate, quote.ID)
	if err := repo.Insert(ctx, derived); err != nil {
		return err
	}
	s.logger.Info("order confirmation created",
		slog.String("number", derived.Number),
		slog.String("quote", quote.Number))
	return nil
}

func (s *Service) resolveItems(ctx context.Context, companyID string, inputs []LineItemInput, company companies.Company) ([]LineItem, error) {
	items := make([]LineItem, 0, len(inputs))
	for _, in := range inputs {
		name := in.Name
		description := in.Description
		unit := in.Unit
		unitPrice := 0.0
		if in.UnitPrice != nil {
			unitPrice = *in.UnitPrice
		}
		vatRate := company.DefaultVATRate
		if in.VATRate != nil {
			vatRate = *in.VATRate
		}

		if in.ProductID != "" {
			product, err := s.products.Get(ctx, companyID, in.ProductID)
			if err != nil {
				if errors.Is(err, httpx.ErrNotFound) {
					return nil, fmt.Errorf("%w: %s", ErrProductNotFound, in.ProductID)
				}
				return nil, fmt.Errorf("resolve product %s: %w", in.ProductID, err)
			}
			if name == "" {
				name = product.Name
			}
			if description == "" {
				description = product.Description
			}
			if unit == "" {
				unit = product.Unit
			}
			if in.UnitPrice == nil {
				unitPrice = product.UnitPrice
			}
			if in.VATRate == nil {
				vatRate = product.VATRate
			}
		}

		if name == "" {
			name = description
		}
		if name == "" {
			name = "Position"
		}
		if unit == "" {
			unit = "Stück"
		}
		if company.SmallBusinessExempt {
			vatRate = 0
		}

		items = append(items, NewLineItem(in.ProductID, name, description, unit,
			in.Quantity, unitPrice, in.DiscountPercent, vatRate))
	}
	return items, nil
}

func (s *Service) buildDocument(
	companyID string, typ DocumentType, customerID, number string,
	items []LineItem, exempt bool, notes string, terms int,
	issueDate, serviceDate, relatedID string,
) *Document {
	now := s.now().UTC()
	return &Document{
		ID:                  uuid.NewString(),
		CompanyID:           companyID,
		CustomerID:          customerID,
		Type:                typ,
		Number:              number,
		Status:              StatusDraft,
		Items:               items,
		Totals:              ComputeTotals(items, exempt, typ),
		Payments:            []Payment{},
		Reminders:           []Reminder{},
		SmallBusinessExempt: exempt,
		Notes:               notes,
		PaymentTermsDays:    terms,
		IssueDate:           issueDate,
		ServiceDate:         serviceDate,
		DueDate:             dueDate(issueDate, terms),
		RelatedDocumentID:   relatedID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func dueDate(issueDate string, termsDays int) string {
	issued, err := time.Parse(DateLayout, issueDate)
	if err != nil {
		return issueDate
	}
	return issued.AddDate(0, 0, termsDays).Format(DateLayout)
}

func copyItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

func summarize(doc *Document) RelatedSummary {
	return RelatedSummary{
		ID:     doc.ID,
		Number: doc.Number,
		Type:   doc.Type,
		Status: doc.Status,
		Gross:  doc.Totals.Gross,
	}
}
