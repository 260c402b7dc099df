package report

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/faktura-erp/faktura/internal/billing/documents"
	"github.com/faktura-erp/faktura/internal/masterdata/companies"
	"github.com/faktura-erp/faktura/internal/masterdata/customers"
)

func sampleDocument(docType documents.DocumentType) *documents.Document {
	items := []documents.LineItem{
		documents.NewLineItem("", "Beratung", "Projektberatung März", "Std", 10, 95.00, 0, 0.19),
		documents.NewLineItem("", "Konzept", "", "Stück", 1, 450.00, 0, 0.19),
	}
	doc := &documents.Document{
		ID:         "doc-1",
		CompanyID:  "company-1",
		CustomerID: "cust-1",
		Type:       docType,
		Number:     "INV-000042",
		Status:     documents.StatusSent,
		Items:      items,
		IssueDate:  "2026-03-02",
		DueDate:    "2026-03-16",
	}
	doc.Totals = documents.ComputeTotals(doc.Items, false, docType)
	return doc
}

func sampleCompany() companies.Company {
	return companies.Company{
		Name: "Musterfirma GmbH", Street: "Hauptstr. 1", ZipCode: "10115", City: "Berlin",
		VATID: "DE123456789", IBAN: "DE02120300000000202051", BIC: "BYLADEM1001",
	}
}

func sampleCustomer() customers.Customer {
	return customers.Customer{Name: "Kunde AG", Street: "Nebenweg 2", ZipCode: "80331", City: "München"}
}

func TestRenderInvoiceHTML(t *testing.T) {
	html, err := RenderInvoiceHTML(sampleDocument(documents.TypeInvoice), sampleCompany(), sampleCustomer())
	require.NoError(t, err)

	require.Contains(t, html, "Rechnung INV-000042")
	require.Contains(t, html, "Kunde AG")
	require.Contains(t, html, "Musterfirma GmbH")
	require.Contains(t, html, "02.03.2026")
	require.Contains(t, html, "Fällig bis: 16.03.2026")
	// German decimal formatting
	require.Contains(t, html, "1.400,00 €")
	require.Contains(t, html, "266,00 €")
	require.Contains(t, html, "1.666,00 €")
	require.Contains(t, html, "DE02120300000000202051")
	require.Contains(t, html, "Verwendungszweck: INV-000042")
}

func TestRenderTitlesPerType(t *testing.T) {
	cases := map[documents.DocumentType]string{
		documents.TypeQuote:             "Angebot",
		documents.TypePartialInvoice:    "Abschlagsrechnung",
		documents.TypeCreditNote:        "Gutschrift",
		documents.TypeCancellation:      "Stornorechnung",
		documents.TypeOrderConfirmation: "Auftragsbestätigung",
	}
	for docType, title := range cases {
		html, err := RenderInvoiceHTML(sampleDocument(docType), sampleCompany(), sampleCustomer())
		require.NoError(t, err)
		require.Contains(t, html, title)
	}
}

func TestRenderSmallBusinessNotice(t *testing.T) {
	doc := sampleDocument(documents.TypeInvoice)
	doc.SmallBusinessExempt = true
	doc.Items = []documents.LineItem{
		documents.NewLineItem("", "Leistung", "", "Stück", 1, 100.00, 0, 0),
	}
	doc.Totals = documents.ComputeTotals(doc.Items, true, doc.Type)

	html, err := RenderInvoiceHTML(doc, sampleCompany(), sampleCustomer())
	require.NoError(t, err)
	require.Contains(t, html, "§ 19 UStG")
	require.NotContains(t, html, "Umsatzsteuer</td>")
}

func TestRenderCreditNoteHidesPaymentInfo(t *testing.T) {
	html, err := RenderInvoiceHTML(sampleDocument(documents.TypeCreditNote), sampleCompany(), sampleCustomer())
	require.NoError(t, err)
	require.NotContains(t, html, "Bitte überweisen Sie")
}

func TestGotenbergRenderHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		require.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1 << 20))
		_, header, err := r.FormFile("files")
		require.NoError(t, err)
		require.Equal(t, "index.html", header.Filename)
		_, _ = w.Write([]byte("%PDF-1.7 fake"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	require.NoError(t, client.Ping(context.Background()))

	pdf, err := client.RenderHTML(context.Background(), "<html></html>")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(pdf), "%PDF"))
}

func TestGotenbergErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).RenderHTML(context.Background(), "<html></html>")
	require.Error(t, err)
}
