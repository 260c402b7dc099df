package documents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddReminderLevels(t *testing.T) {
	env := newTestEnv(t)
	doc := sentInvoice(t, env, standardItems())

	fees := []float64{0, 5.00, 10.00}
	for i, fee := range fees {
		var err error
		doc, err = env.service.AddReminder(context.Background(), testCompany, doc.ID, AddReminderRequest{Fee: fee})
		require.NoError(t, err)
		require.Len(t, doc.Reminders, i+1)
		require.Equal(t, i+1, doc.Reminders[i].Level)
		require.InDelta(t, fee, doc.Reminders[i].Fee, 1e-9)
		require.Equal(t, StatusOverdue, doc.Status)
	}

	_, err := env.service.AddReminder(context.Background(), testCompany, doc.ID, AddReminderRequest{})
	require.ErrorIs(t, err, ErrMaxLevelReached)
}

func TestAddReminderForcesOverdue(t *testing.T) {
	env := newTestEnv(t)
	doc := sentInvoice(t, env, standardItems())

	doc, err := env.service.AddPayment(context.Background(), testCompany, doc.ID, AddPaymentRequest{Amount: 500})
	require.NoError(t, err)
	require.Equal(t, StatusPartiallyPaid, doc.Status)

	doc, err = env.service.AddReminder(context.Background(), testCompany, doc.ID, AddReminderRequest{Fee: 5})
	require.NoError(t, err)
	require.Equal(t, StatusOverdue, doc.Status)
}

func TestAddReminderInvalidStates(t *testing.T) {
	env := newTestEnv(t)

	draft := createInvoice(t, env, standardItems())
	_, err := env.service.AddReminder(context.Background(), testCompany, draft.ID, AddReminderRequest{})
	require.ErrorIs(t, err, ErrInvalidState)

	paid := sentInvoice(t, env, standardItems())
	_, err = env.service.AddPayment(context.Background(), testCompany, paid.ID, AddPaymentRequest{Amount: 1666.00})
	require.NoError(t, err)
	_, err = env.service.AddReminder(context.Background(), testCompany, paid.ID, AddReminderRequest{})
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestAddReminderNegativeFee(t *testing.T) {
	env := newTestEnv(t)
	doc := sentInvoice(t, env, standardItems())
	_, err := env.service.AddReminder(context.Background(), testCompany, doc.ID, AddReminderRequest{Fee: -1})
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAddReminderWrongType(t *testing.T) {
	env := newTestEnv(t)
	quote, err := env.service.Create(context.Background(), testCompany, CreateDocumentRequest{
		Type:       TypeQuote,
		CustomerID: "cust-1",
		Items:      standardItems(),
	})
	require.NoError(t, err)
	_, err = env.service.AddReminder(context.Background(), testCompany, quote.ID, AddReminderRequest{})
	require.ErrorIs(t, err, ErrWrongDocumentType)
}
