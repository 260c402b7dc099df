package documents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func sentInvoice(t *testing.T, env *testEnv, items []LineItemInput) *Document {
	t.Helper()
	doc := createInvoice(t, env, items)
	doc, err := env.service.ChangeStatus(context.Background(), testCompany, doc.ID, StatusSent)
	require.NoError(t, err)
	return doc
}

func TestAddPaymentPartialThenFull(t *testing.T) {
	env := newTestEnv(t)
	doc := sentInvoice(t, env, standardItems())

	doc, err := env.service.AddPayment(context.Background(), testCompany, doc.ID, AddPaymentRequest{Amount: 666.00})
	require.NoError(t, err)
	require.Equal(t, StatusPartiallyPaid, doc.Status)
	require.InDelta(t, 666.00, doc.Totals.PaidAmount, 1e-9)
	require.InDelta(t, 1000.00, doc.Totals.RemainingAmount, 1e-9)
	require.Len(t, doc.Payments, 1)
	require.Equal(t, MethodBankTransfer, doc.Payments[0].Method)

	doc, err = env.service.AddPayment(context.Background(), testCompany, doc.ID, AddPaymentRequest{Amount: 1000.00, Method: MethodCash})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, doc.Status)
	require.InDelta(t, 1666.00, doc.Totals.PaidAmount, 1e-9)
	require.InDelta(t, 0.0, doc.Totals.RemainingAmount, 1e-9)
	require.Len(t, doc.Payments, 2)
}

func TestAddPaymentWithinTolerance(t *testing.T) {
	env := newTestEnv(t)
	doc := sentInvoice(t, env, []LineItemInput{
		{Name: "Leistung", Quantity: 1, UnitPrice: price(84.03), VATRate: rate(0.19)},
	})
	// gross 100.00, a payment within a cent settles it
	require.InDelta(t, 100.00, doc.Totals.Gross, 1e-9)

	doc, err := env.service.AddPayment(context.Background(), testCompany, doc.ID, AddPaymentRequest{Amount: 99.995})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, doc.Status)
	require.InDelta(t, 0.0, doc.Totals.RemainingAmount, 0.011)
}

func TestAddPaymentExceedsRemaining(t *testing.T) {
	env := newTestEnv(t)
	doc := sentInvoice(t, env, standardItems())

	_, err := env.service.AddPayment(context.Background(), testCompany, doc.ID, AddPaymentRequest{Amount: 2000.00})
	require.ErrorIs(t, err, ErrExceedsRemaining)

	_, err = env.service.AddPayment(context.Background(), testCompany, doc.ID, AddPaymentRequest{Amount: 1600.00})
	require.NoError(t, err)
	_, err = env.service.AddPayment(context.Background(), testCompany, doc.ID, AddPaymentRequest{Amount: 100.00})
	require.ErrorIs(t, err, ErrExceedsRemaining)
}

func TestAddPaymentInvalidAmount(t *testing.T) {
	env := newTestEnv(t)
	doc := sentInvoice(t, env, standardItems())

	_, err := env.service.AddPayment(context.Background(), testCompany, doc.ID, AddPaymentRequest{Amount: 0})
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = env.service.AddPayment(context.Background(), testCompany, doc.ID, AddPaymentRequest{Amount: -50})
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAddPaymentInvalidStates(t *testing.T) {
	env := newTestEnv(t)

	draft := createInvoice(t, env, standardItems())
	_, err := env.service.AddPayment(context.Background(), testCompany, draft.ID, AddPaymentRequest{Amount: 100})
	require.ErrorIs(t, err, ErrInvalidState)

	cancelled := createInvoice(t, env, standardItems())
	_, err = env.service.Cancel(context.Background(), testCompany, cancelled.ID)
	require.NoError(t, err)
	_, err = env.service.AddPayment(context.Background(), testCompany, cancelled.ID, AddPaymentRequest{Amount: 100})
	require.ErrorIs(t, err, ErrInvalidState)

	paid := sentInvoice(t, env, standardItems())
	_, err = env.service.AddPayment(context.Background(), testCompany, paid.ID, AddPaymentRequest{Amount: 1666.00})
	require.NoError(t, err)
	_, err = env.service.AddPayment(context.Background(), testCompany, paid.ID, AddPaymentRequest{Amount: 1})
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestAddPaymentWrongType(t *testing.T) {
	env := newTestEnv(t)
	quote, err := env.service.Create(context.Background(), testCompany, CreateDocumentRequest{
		Type:       TypeQuote,
		CustomerID: "cust-1",
		Items:      standardItems(),
	})
	require.NoError(t, err)
	_, err = env.service.AddPayment(context.Background(), testCompany, quote.ID, AddPaymentRequest{Amount: 100})
	require.ErrorIs(t, err, ErrWrongDocumentType)
}

func TestPaidPartialInvoiceSettlesParent(t *testing.T) {
	env := newTestEnv(t)
	parent := sentInvoice(t, env, standardItems())

	partial, err := env.service.CreatePartialInvoice(context.Background(), testCompany, parent.ID, PartialInvoiceRequest{Amount: 500.00})
	require.NoError(t, err)
	_, err = env.service.ChangeStatus(context.Background(), testCompany, partial.ID, StatusSent)
	require.NoError(t, err)

	partial, err = env.service.AddPayment(context.Background(), testCompany, partial.ID, AddPaymentRequest{Amount: 500.00})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, partial.Status)

	parent, err = env.service.Get(context.Background(), testCompany, parent.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPartiallyPaid, parent.Status)
	require.InDelta(t, 500.00, parent.Totals.PaidAmount, 1e-9)
	require.InDelta(t, 1166.00, parent.Totals.RemainingAmount, 1e-9)
	require.Len(t, parent.Payments, 1)
	require.Equal(t, "Abschlagsrechnung "+partial.Number, parent.Payments[0].Reference)
}

func TestPartialSettlementSkipsPaidParent(t *testing.T) {
	env := newTestEnv(t)
	parent := sentInvoice(t, env, standardItems())

	partial, err := env.service.CreatePartialInvoice(context.Background(), testCompany, parent.ID, PartialInvoiceRequest{Amount: 500.00})
	require.NoError(t, err)
	_, err = env.service.ChangeStatus(context.Background(), testCompany, partial.ID, StatusSent)
	require.NoError(t, err)

	_, err = env.service.AddPayment(context.Background(), testCompany, parent.ID, AddPaymentRequest{Amount: 1666.00})
	require.NoError(t, err)

	// settling the partial must not touch the already settled parent
	_, err = env.service.AddPayment(context.Background(), testCompany, partial.ID, AddPaymentRequest{Amount: 500.00})
	require.NoError(t, err)

	parent, err = env.service.Get(context.Background(), testCompany, parent.ID)
	require.NoError(t, err)
	require.Len(t, parent.Payments, 1)
	require.InDelta(t, 1666.00, parent.Totals.PaidAmount, 1e-9)
}

func TestRemainingNeverNegative(t *testing.T) {
	env := newTestEnv(t)
	doc := sentInvoice(t, env, []LineItemInput{
		{Name: "Leistung", Quantity: 1, UnitPrice: price(84.03), VATRate: rate(0.19)},
	})

	doc, err := env.service.AddPayment(context.Background(), testCompany, doc.ID, AddPaymentRequest{Amount: 100.005})
	require.NoError(t, err)
	require.GreaterOrEqual(t, doc.Totals.RemainingAmount, 0.0)
}
