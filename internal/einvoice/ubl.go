package einvoice

import (
	"encoding/xml"
	"fmt"

	"github.com/faktura-erp/faktura/internal/billing/documents"
	"github.com/faktura-erp/faktura/internal/billing/money"
	"github.com/faktura-erp/faktura/internal/masterdata/companies"
	"github.com/faktura-erp/faktura/internal/masterdata/customers"
)

// XRechnung customization and profile identifiers, version 3.0.
const (
	ublCustomizationID = "urn:cen.eu:en16931:2017#compliant#urn:xeinkauf.de:kosit:xrechnung_3.0"
	ublProfileID       = "urn:fdc:peppol.eu:2017:poacc:billing:01:1.0"
)

type ublInvoice struct {
	XMLName         xml.Name `xml:"urn:oasis:names:specification:ubl:schema:xsd:Invoice-2 Invoice"`
	CBC             string   `xml:"xmlns:cbc,attr"`
	CAC             string   `xml:"xmlns:cac,attr"`
	CustomizationID string   `xml:"cbc:CustomizationID"`
	ProfileID       string   `xml:"cbc:ProfileID"`
	ID              string   `xml:"cbc:ID"`
	IssueDate       string   `xml:"cbc:IssueDate"`
	DueDate         string   `xml:"cbc:DueDate,omitempty"`
	InvoiceTypeCode string   `xml:"cbc:InvoiceTypeCode"`
	Note            string   `xml:"cbc:Note,omitempty"`
	CurrencyCode    string   `xml:"cbc:DocumentCurrencyCode"`

	Supplier      ublParty           `xml:"cac:AccountingSupplierParty>cac:Party"`
	Customer      ublParty           `xml:"cac:AccountingCustomerParty>cac:Party"`
	PaymentMeans  *ublPaymentMeans   `xml:"cac:PaymentMeans,omitempty"`
	TaxTotal      ublTaxTotal        `xml:"cac:TaxTotal"`
	MonetaryTotal ublMonetaryTotal   `xml:"cac:LegalMonetaryTotal"`
	Lines         []ublInvoiceLine   `xml:"cac:InvoiceLine"`
}

type ublParty struct {
	Name     string      `xml:"cac:PartyName>cbc:Name"`
	Street   string      `xml:"cac:PostalAddress>cbc:StreetName,omitempty"`
	City     string      `xml:"cac:PostalAddress>cbc:CityName,omitempty"`
	Zip      string      `xml:"cac:PostalAddress>cbc:PostalZone,omitempty"`
	Country  string      `xml:"cac:PostalAddress>cac:Country>cbc:IdentificationCode,omitempty"`
	TaxID    *ublTaxID   `xml:"cac:PartyTaxScheme,omitempty"`
	LegalReg ublLegalReg `xml:"cac:PartyLegalEntity"`
}

type ublTaxID struct {
	CompanyID string `xml:"cbc:CompanyID"`
	Scheme    string `xml:"cac:TaxScheme>cbc:ID"`
}

type ublLegalReg struct {
	Name string `xml:"cbc:RegistrationName"`
}

type ublPaymentMeans struct {
	Code string `xml:"cbc:PaymentMeansCode"`
	IBAN string `xml:"cac:PayeeFinancialAccount>cbc:ID"`
	BIC  string `xml:"cac:PayeeFinancialAccount>cac:FinancialInstitutionBranch>cbc:ID,omitempty"`
}

type ublTaxTotal struct {
	TaxAmount   ublAmount        `xml:"cbc:TaxAmount"`
	Subtotals   []ublTaxSubtotal `xml:"cac:TaxSubtotal"`
}

type ublTaxSubtotal struct {
	TaxableAmount ublAmount      `xml:"cbc:TaxableAmount"`
	TaxAmount     ublAmount      `xml:"cbc:TaxAmount"`
	Category      ublTaxCategory `xml:"cac:TaxCategory"`
}

type ublTaxCategory struct {
	ID      string `xml:"cbc:ID"`
	Percent string `xml:"cbc:Percent"`
	Scheme  string `xml:"cac:TaxScheme>cbc:ID"`
}

type ublMonetaryTotal struct {
	LineExtension ublAmount `xml:"cbc:LineExtensionAmount"`
	TaxExclusive  ublAmount `xml:"cbc:TaxExclusiveAmount"`
	TaxInclusive  ublAmount `xml:"cbc:TaxInclusiveAmount"`
	Payable       ublAmount `xml:"cbc:PayableAmount"`
}

type ublInvoiceLine struct {
	ID            string         `xml:"cbc:ID"`
	Quantity      ublQuantity    `xml:"cbc:InvoicedQuantity"`
	LineExtension ublAmount      `xml:"cbc:LineExtensionAmount"`
	ItemName      string         `xml:"cac:Item>cbc:Name"`
	TaxCategory   ublTaxCategory `xml:"cac:Item>cac:ClassifiedTaxCategory"`
	PriceAmount   ublAmount      `xml:"cac:Price>cbc:PriceAmount"`
}

type ublAmount struct {
	Value    string `xml:",chardata"`
	Currency string `xml:"currencyID,attr"`
}

type ublQuantity struct {
	Value    string `xml:",chardata"`
	UnitCode string `xml:"unitCode,attr"`
}

func eur(v float64) ublAmount {
	return ublAmount{Value: amount(v), Currency: "EUR"}
}

// XRechnungUBL renders the document as an XRechnung 3.0 UBL invoice.
func XRechnungUBL(doc *documents.Document, seller companies.Company, buyer customers.Customer) ([]byte, error) {
	code, err := typeCode(doc.Type)
	if err != nil {
		return nil, err
	}

	inv := ublInvoice{
		CBC:             "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2",
		CAC:             "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2",
		CustomizationID: ublCustomizationID,
		ProfileID:       ublProfileID,
		ID:              doc.Number,
		IssueDate:       doc.IssueDate,
		DueDate:         doc.DueDate,
		InvoiceTypeCode: code,
		Note:            doc.Notes,
		CurrencyCode:    "EUR",
		Supplier:        ublSeller(seller),
		Customer:        ublBuyer(buyer),
		TaxTotal:        ublTaxes(doc),
		MonetaryTotal: ublMonetaryTotal{
			LineExtension: eur(doc.Totals.Net),
			TaxExclusive:  eur(doc.Totals.Net),
			TaxInclusive:  eur(doc.Totals.Gross),
			Payable:       eur(doc.Totals.Gross),
		},
	}
	if seller.IBAN != "" {
		// 58 = SEPA credit transfer
		inv.PaymentMeans = &ublPaymentMeans{Code: "58", IBAN: seller.IBAN, BIC: seller.BIC}
	}
	for i, item := range doc.Items {
		inv.Lines = append(inv.Lines, ublInvoiceLine{
			ID:            fmt.Sprintf("%d", i+1),
			Quantity:      ublQuantity{Value: fmt.Sprintf("%g", item.Quantity), UnitCode: "C62"},
			LineExtension: eur(item.NetAmount),
			ItemName:      item.Name,
			TaxCategory:   taxCategory(item.VATRate, doc.SmallBusinessExempt),
			PriceAmount:   eur(item.UnitPrice),
		})
	}

	out, err := xml.MarshalIndent(inv, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("einvoice: marshal ubl: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

func ublSeller(c companies.Company) ublParty {
	p := ublParty{
		Name:     c.Name,
		Street:   c.Street,
		City:     c.City,
		Zip:      c.ZipCode,
		Country:  countryCode(c.Country),
		LegalReg: ublLegalReg{Name: c.Name},
	}
	if c.VATID != "" {
		p.TaxID = &ublTaxID{CompanyID: c.VATID, Scheme: "VAT"}
	}
	return p
}

func ublBuyer(c customers.Customer) ublParty {
	p := ublParty{
		Name:     c.Name,
		Street:   c.Street,
		City:     c.City,
		Zip:      c.ZipCode,
		Country:  countryCode(c.Country),
		LegalReg: ublLegalReg{Name: c.Name},
	}
	if c.TaxID != "" {
		p.TaxID = &ublTaxID{CompanyID: c.TaxID, Scheme: "VAT"}
	}
	return p
}

// ublTaxes groups line VAT amounts per rate into tax subtotals.
func ublTaxes(doc *documents.Document) ublTaxTotal {
	type bucket struct{ net, vat float64 }
	byRate := map[float64]*bucket{}
	var order []float64
	for _, item := range doc.Items {
		b, ok := byRate[item.VATRate]
		if !ok {
			b = &bucket{}
			byRate[item.VATRate] = b
			order = append(order, item.VATRate)
		}
		b.net += item.NetAmount
		b.vat += item.VATAmount
	}

	total := ublTaxTotal{TaxAmount: eur(doc.Totals.VAT)}
	for _, r := range order {
		b := byRate[r]
		total.Subtotals = append(total.Subtotals, ublTaxSubtotal{
			TaxableAmount: eur(money.Round2(b.net)),
			TaxAmount:     eur(money.Round2(b.vat)),
			Category:      taxCategory(r, doc.SmallBusinessExempt),
		})
	}
	return total
}

// taxCategory maps the rate to an UNCL5305 category: S for standard rates,
// E for the small business exemption (§19 UStG), Z for a genuine zero rate.
func taxCategory(rate float64, exempt bool) ublTaxCategory {
	id := "S"
	if rate == 0 {
		id = "Z"
		if exempt {
			id = "E"
		}
	}
	return ublTaxCategory{ID: id, Percent: percent(rate), Scheme: "VAT"}
}

func countryCode(country string) string {
	switch country {
	case "", "Deutschland", "Germany", "DE":
		return "DE"
	default:
		if len(country) == 2 {
			return country
		}
		return ""
	}
}
