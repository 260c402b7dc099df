package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/faktura-erp/faktura/internal/billing/documents"
	"github.com/faktura-erp/faktura/internal/masterdata/companies"
	"github.com/faktura-erp/faktura/internal/masterdata/customers"
)

var typeTitles = map[documents.DocumentType]string{
	documents.TypeInvoice:           "Rechnung",
	documents.TypeQuote:             "Angebot",
	documents.TypeDeliveryNote:      "Lieferschein",
	documents.TypeOrderConfirmation: "Auftragsbestätigung",
	documents.TypePartialInvoice:    "Abschlagsrechnung",
	documents.TypeCreditNote:        "Gutschrift",
	documents.TypeCancellation:      "Stornorechnung",
}

// german formats amounts and quantities the way a German invoice shows them
// (dot as thousands separator, comma as decimal separator).
var german = message.NewPrinter(language.German)

func formatEUR(v float64) string {
	return german.Sprintf("%.2f €", v)
}

func formatQty(v float64) string {
	return german.Sprintf("%v", v)
}

func formatDate(iso string) string {
	t, err := time.Parse(documents.DateLayout, iso)
	if err != nil {
		return iso
	}
	return t.Format("02.01.2006")
}

var invoiceTemplate = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"eur":  formatEUR,
	"qty":  formatQty,
	"date": formatDate,
	"pct":  func(rate float64) string { return german.Sprintf("%.0f %%", rate*100) },
	"inc":  func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html lang="de">
<head>
<meta charset="utf-8">
<title>{{.Title}} {{.Doc.Number}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 11pt; color: #222; margin: 2.5cm 2cm; }
header { display: flex; justify-content: space-between; margin-bottom: 2cm; }
.sender { font-size: 8pt; color: #666; border-bottom: 1px solid #ccc; margin-bottom: 4px; }
h1 { font-size: 16pt; margin-bottom: 0.2cm; }
.meta { text-align: right; font-size: 10pt; }
table.items { width: 100%; border-collapse: collapse; margin-top: 1cm; }
table.items th { text-align: left; border-bottom: 2px solid #222; padding: 4px; font-size: 9pt; }
table.items td { border-bottom: 1px solid #ddd; padding: 6px 4px; vertical-align: top; }
td.num, th.num { text-align: right; white-space: nowrap; }
table.totals { margin-left: auto; margin-top: 0.5cm; }
table.totals td { padding: 3px 8px; }
table.totals tr.gross td { border-top: 2px solid #222; font-weight: bold; }
footer { margin-top: 2cm; font-size: 8pt; color: #666; }
.notes { margin-top: 1cm; white-space: pre-line; }
</style>
</head>
<body>
<header>
  <div>
    <div class="sender">{{.Company.Name}} · {{.Company.Street}} · {{.Company.ZipCode}} {{.Company.City}}</div>
    <div>
      {{.Customer.Name}}<br>
      {{.Customer.Street}}<br>
      {{.Customer.ZipCode}} {{.Customer.City}}
    </div>
  </div>
  <div class="meta">
    <strong>{{.Company.Name}}</strong><br>
    {{.Company.Street}}<br>
    {{.Company.ZipCode}} {{.Company.City}}<br>
    {{if .Company.VATID}}USt-IdNr.: {{.Company.VATID}}<br>{{end}}
    {{if .Company.TaxID}}Steuernummer: {{.Company.TaxID}}<br>{{end}}
  </div>
</header>

<h1>{{.Title}} {{.Doc.Number}}</h1>
<div class="meta">
  Datum: {{date .Doc.IssueDate}}
  {{- if .Doc.ServiceDate}}<br>Leistungsdatum: {{date .Doc.ServiceDate}}{{end}}
  {{- if .ShowDueDate}}<br>Fällig bis: {{date .Doc.DueDate}}{{end}}
</div>

<table class="items">
  <tr>
    <th>Pos.</th><th>Bezeichnung</th><th class="num">Menge</th><th>Einheit</th>
    <th class="num">Einzelpreis</th><th class="num">USt.</th><th class="num">Gesamt</th>
  </tr>
  {{range $i, $item := .Doc.Items}}
  <tr>
    <td>{{inc $i}}</td>
    <td>{{$item.Name}}{{if $item.Description}}<br><small>{{$item.Description}}</small>{{end}}</td>
    <td class="num">{{qty $item.Quantity}}</td>
    <td>{{$item.Unit}}</td>
    <td class="num">{{eur $item.UnitPrice}}</td>
    <td class="num">{{pct $item.VATRate}}</td>
    <td class="num">{{eur $item.NetAmount}}</td>
  </tr>
  {{end}}
</table>

<table class="totals">
  <tr><td>Nettobetrag</td><td class="num">{{eur .Doc.Totals.Net}}</td></tr>
  {{if not .Doc.SmallBusinessExempt}}<tr><td>Umsatzsteuer</td><td class="num">{{eur .Doc.Totals.VAT}}</td></tr>{{end}}
  <tr class="gross"><td>Gesamtbetrag</td><td class="num">{{eur .Doc.Totals.Gross}}</td></tr>
</table>

{{if .Doc.SmallBusinessExempt}}
<p>Gemäß § 19 UStG wird keine Umsatzsteuer berechnet.</p>
{{end}}

{{if .Doc.Notes}}<div class="notes">{{.Doc.Notes}}</div>{{end}}

{{if .ShowPaymentInfo}}
<p>
  Bitte überweisen Sie den Betrag bis zum {{date .Doc.DueDate}} auf folgendes Konto:<br>
  IBAN: {{.Company.IBAN}}{{if .Company.BIC}} · BIC: {{.Company.BIC}}{{end}}<br>
  Verwendungszweck: {{.Doc.Number}}
</p>
{{end}}

<footer>
  {{.Company.Name}} · {{.Company.Street}} · {{.Company.ZipCode}} {{.Company.City}}
  {{if .Company.IBAN}} · IBAN {{.Company.IBAN}}{{end}}
</footer>
</body>
</html>`))

type templateData struct {
	Title           string
	Doc             *documents.Document
	Company         companies.Company
	Customer        customers.Customer
	ShowDueDate     bool
	ShowPaymentInfo bool
}

// RenderInvoiceHTML builds the printable HTML for any document type.
func RenderInvoiceHTML(doc *documents.Document, company companies.Company, customer customers.Customer) (string, error) {
	title, ok := typeTitles[doc.Type]
	if !ok {
		return "", fmt.Errorf("report: no template title for %s documents", doc.Type)
	}

	payable := doc.Type.Payable() && doc.Totals.Gross > 0
	data := templateData{
		Title:           title,
		Doc:             doc,
		Company:         company,
		Customer:        customer,
		ShowDueDate:     payable && doc.DueDate != "",
		ShowPaymentInfo: payable && company.IBAN != "",
	}

	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("report: render %s: %w", doc.Number, err)
	}
	return buf.String(), nil
}
