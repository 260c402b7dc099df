package einvoice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/faktura-erp/faktura/internal/billing/documents"
	"github.com/faktura-erp/faktura/internal/masterdata/companies"
	"github.com/faktura-erp/faktura/internal/masterdata/customers"
)

func sampleInvoice() *documents.Document {
	items := []documents.LineItem{
		documents.NewLineItem("", "Beratung", "", "Std", 10, 95.00, 0, 0.19),
		documents.NewLineItem("", "Konzept", "", "Stück", 1, 450.00, 0, 0.19),
	}
	doc := &documents.Document{
		ID:         "doc-1",
		CompanyID:  "company-1",
		CustomerID: "cust-1",
		Type:       documents.TypeInvoice,
		Number:     "INV-000042",
		Status:     documents.StatusSent,
		Items:      items,
		IssueDate:  "2026-03-02",
		DueDate:    "2026-03-16",
	}
	doc.Totals = documents.ComputeTotals(doc.Items, doc.SmallBusinessExempt, doc.Type)
	return doc
}

func sampleSeller() companies.Company {
	return companies.Company{
		ID: "company-1", Name: "Musterfirma GmbH",
		Street: "Hauptstr. 1", ZipCode: "10115", City: "Berlin", Country: "DE",
		VATID: "DE123456789", IBAN: "DE02120300000000202051", BIC: "BYLADEM1001",
	}
}

func sampleBuyer() customers.Customer {
	return customers.Customer{
		ID: "cust-1", Name: "Kunde AG",
		Street: "Nebenweg 2", ZipCode: "80331", City: "München", Country: "DE",
	}
}

func TestXRechnungUBL(t *testing.T) {
	out, err := XRechnungUBL(sampleInvoice(), sampleSeller(), sampleBuyer())
	require.NoError(t, err)

	xml := string(out)
	require.True(t, strings.HasPrefix(xml, "<?xml"))
	require.Contains(t, xml, "xrechnung_3.0")
	require.Contains(t, xml, "<cbc:ID>INV-000042</cbc:ID>")
	require.Contains(t, xml, "<cbc:InvoiceTypeCode>380</cbc:InvoiceTypeCode>")
	require.Contains(t, xml, "<cbc:IssueDate>2026-03-02</cbc:IssueDate>")
	require.Contains(t, xml, "<cbc:DueDate>2026-03-16</cbc:DueDate>")
	require.Contains(t, xml, `currencyID="EUR">1400.00<`)
	require.Contains(t, xml, `currencyID="EUR">266.00<`)
	require.Contains(t, xml, `currencyID="EUR">1666.00<`)
	require.Contains(t, xml, "<cbc:PaymentMeansCode>58</cbc:PaymentMeansCode>")
	require.Contains(t, xml, "DE02120300000000202051")
	require.Contains(t, xml, "DE123456789")
	require.Contains(t, xml, "<cbc:Percent>19.00</cbc:Percent>")
	require.Equal(t, 2, strings.Count(xml, "<cac:InvoiceLine>"))
}

func TestXRechnungTypeCodes(t *testing.T) {
	doc := sampleInvoice()

	doc.Type = documents.TypeCreditNote
	out, err := XRechnungUBL(doc, sampleSeller(), sampleBuyer())
	require.NoError(t, err)
	require.Contains(t, string(out), "<cbc:InvoiceTypeCode>381</cbc:InvoiceTypeCode>")

	doc.Type = documents.TypePartialInvoice
	out, err = XRechnungUBL(doc, sampleSeller(), sampleBuyer())
	require.NoError(t, err)
	require.Contains(t, string(out), "<cbc:InvoiceTypeCode>326</cbc:InvoiceTypeCode>")

	doc.Type = documents.TypeQuote
	_, err = XRechnungUBL(doc, sampleSeller(), sampleBuyer())
	require.Error(t, err)
}

func TestXRechnungSmallBusinessExemption(t *testing.T) {
	doc := sampleInvoice()
	doc.SmallBusinessExempt = true
	doc.Items = []documents.LineItem{
		documents.NewLineItem("", "Leistung", "", "Stück", 1, 100.00, 0, 0),
	}
	doc.Totals = documents.ComputeTotals(doc.Items, doc.SmallBusinessExempt, doc.Type)

	out, err := XRechnungUBL(doc, sampleSeller(), sampleBuyer())
	require.NoError(t, err)
	xml := string(out)
	require.Contains(t, xml, "<cbc:ID>E</cbc:ID>")
	require.Contains(t, xml, "<cbc:Percent>0.00</cbc:Percent>")
}

func TestZUGFeRDCII(t *testing.T) {
	out, err := ZUGFeRDCII(sampleInvoice(), sampleSeller(), sampleBuyer())
	require.NoError(t, err)

	xml := string(out)
	require.Contains(t, xml, "rsm:CrossIndustryInvoice")
	require.Contains(t, xml, "urn:cen.eu:en16931:2017")
	require.Contains(t, xml, "<ram:ID>INV-000042</ram:ID>")
	require.Contains(t, xml, "<ram:TypeCode>380</ram:TypeCode>")
	require.Contains(t, xml, `format="102">20260302<`)
	require.Contains(t, xml, "<ram:LineTotalAmount>1400.00</ram:LineTotalAmount>")
	require.Contains(t, xml, "<ram:GrandTotalAmount>1666.00</ram:GrandTotalAmount>")
	require.Contains(t, xml, "<ram:DuePayableAmount>1666.00</ram:DuePayableAmount>")
	require.Equal(t, 2, strings.Count(xml, "<ram:IncludedSupplyChainTradeLineItem>"))
}

func TestTaxSubtotalsGroupByRate(t *testing.T) {
	doc := sampleInvoice()
	doc.Items = []documents.LineItem{
		documents.NewLineItem("", "Standard", "", "Stück", 1, 100.00, 0, 0.19),
		documents.NewLineItem("", "Ermäßigt", "", "Stück", 1, 100.00, 0, 0.07),
		documents.NewLineItem("", "Standard 2", "", "Stück", 1, 50.00, 0, 0.19),
	}
	doc.Totals = documents.ComputeTotals(doc.Items, doc.SmallBusinessExempt, doc.Type)

	total := ublTaxes(doc)
	require.Len(t, total.Subtotals, 2)
	require.Equal(t, "150.00", total.Subtotals[0].TaxableAmount.Value)
	require.Equal(t, "28.50", total.Subtotals[0].TaxAmount.Value)
	require.Equal(t, "100.00", total.Subtotals[1].TaxableAmount.Value)
	require.Equal(t, "7.00", total.Subtotals[1].TaxAmount.Value)
}
