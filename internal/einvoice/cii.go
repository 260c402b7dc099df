package einvoice

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/faktura-erp/faktura/internal/billing/documents"
	"github.com/faktura-erp/faktura/internal/masterdata/companies"
	"github.com/faktura-erp/faktura/internal/masterdata/customers"
)

// ZUGFeRD EN16931 comfort profile.
const ciiGuidelineID = "urn:cen.eu:en16931:2017"

type ciiInvoice struct {
	XMLName xml.Name `xml:"rsm:CrossIndustryInvoice"`
	RSM     string   `xml:"xmlns:rsm,attr"`
	RAM     string   `xml:"xmlns:ram,attr"`
	UDT     string   `xml:"xmlns:udt,attr"`

	Context     ciiContext     `xml:"rsm:ExchangedDocumentContext"`
	Document    ciiDocument    `xml:"rsm:ExchangedDocument"`
	Transaction ciiTransaction `xml:"rsm:SupplyChainTradeTransaction"`
}

type ciiContext struct {
	GuidelineID string `xml:"ram:GuidelineSpecifiedDocumentContextParameter>ram:ID"`
}

type ciiDocument struct {
	ID        string   `xml:"ram:ID"`
	TypeCode  string   `xml:"ram:TypeCode"`
	IssueDate ciiDate  `xml:"ram:IssueDateTime>udt:DateTimeString"`
	Notes     []string `xml:"ram:IncludedNote>ram:Content,omitempty"`
}

type ciiDate struct {
	Value  string `xml:",chardata"`
	Format string `xml:"format,attr"`
}

type ciiTransaction struct {
	Lines      []ciiLine     `xml:"ram:IncludedSupplyChainTradeLineItem"`
	Agreement  ciiAgreement  `xml:"ram:ApplicableHeaderTradeAgreement"`
	Delivery   ciiDelivery   `xml:"ram:ApplicableHeaderTradeDelivery"`
	Settlement ciiSettlement `xml:"ram:ApplicableHeaderTradeSettlement"`
}

type ciiLine struct {
	LineID    string      `xml:"ram:AssociatedDocumentLineDocument>ram:LineID"`
	Name      string      `xml:"ram:SpecifiedTradeProduct>ram:Name"`
	NetPrice  ciiAmount   `xml:"ram:SpecifiedLineTradeAgreement>ram:NetPriceProductTradePrice>ram:ChargeAmount"`
	Quantity  ciiQuantity `xml:"ram:SpecifiedLineTradeDelivery>ram:BilledQuantity"`
	Tax       ciiTax      `xml:"ram:SpecifiedLineTradeSettlement>ram:ApplicableTradeTax"`
	LineTotal ciiAmount   `xml:"ram:SpecifiedLineTradeSettlement>ram:SpecifiedTradeSettlementLineMonetarySummation>ram:LineTotalAmount"`
}

type ciiAgreement struct {
	Seller ciiParty `xml:"ram:SellerTradeParty"`
	Buyer  ciiParty `xml:"ram:BuyerTradeParty"`
}

type ciiParty struct {
	Name    string  `xml:"ram:Name"`
	Zip     string  `xml:"ram:PostalTradeAddress>ram:PostcodeCode,omitempty"`
	Street  string  `xml:"ram:PostalTradeAddress>ram:LineOne,omitempty"`
	City    string  `xml:"ram:PostalTradeAddress>ram:CityName,omitempty"`
	Country string  `xml:"ram:PostalTradeAddress>ram:CountryID,omitempty"`
	VATReg  *ciiReg `xml:"ram:SpecifiedTaxRegistration,omitempty"`
}

type ciiReg struct {
	ID string `xml:"ram:ID"`
}

type ciiDelivery struct {
	OccurrenceDate *ciiDate `xml:"ram:ActualDeliverySupplyChainEvent>ram:OccurrenceDateTime>udt:DateTimeString,omitempty"`
}

type ciiSettlement struct {
	Currency     string          `xml:"ram:InvoiceCurrencyCode"`
	PaymentMeans *ciiPayment     `xml:"ram:SpecifiedTradeSettlementPaymentMeans,omitempty"`
	Taxes        []ciiTax        `xml:"ram:ApplicableTradeTax"`
	Terms        *ciiTerms       `xml:"ram:SpecifiedTradePaymentTerms,omitempty"`
	Summation    ciiSummation    `xml:"ram:SpecifiedTradeSettlementHeaderMonetarySummation"`
}

type ciiPayment struct {
	TypeCode string `xml:"ram:TypeCode"`
	IBAN     string `xml:"ram:PayeePartyCreditorFinancialAccount>ram:IBANID"`
}

type ciiTax struct {
	Calculated *ciiAmountPlain `xml:"ram:CalculatedAmount,omitempty"`
	TypeCode   string          `xml:"ram:TypeCode"`
	Basis      *ciiAmountPlain `xml:"ram:BasisAmount,omitempty"`
	Category   string          `xml:"ram:CategoryCode"`
	Percent    string          `xml:"ram:RateApplicablePercent"`
}

type ciiTerms struct {
	DueDate *ciiDate `xml:"ram:DueDateDateTime>udt:DateTimeString,omitempty"`
}

type ciiSummation struct {
	LineTotal     ciiAmountPlain `xml:"ram:LineTotalAmount"`
	TaxBasisTotal ciiAmountPlain `xml:"ram:TaxBasisTotalAmount"`
	TaxTotal      ciiAmount      `xml:"ram:TaxTotalAmount"`
	GrandTotal    ciiAmountPlain `xml:"ram:GrandTotalAmount"`
	DuePayable    ciiAmountPlain `xml:"ram:DuePayableAmount"`
}

type ciiAmount struct {
	Value    string `xml:",chardata"`
	Currency string `xml:"currencyID,attr"`
}

type ciiAmountPlain struct {
	Value string `xml:",chardata"`
}

type ciiQuantity struct {
	Value    string `xml:",chardata"`
	UnitCode string `xml:"unitCode,attr"`
}

func plain(v float64) ciiAmountPlain { return ciiAmountPlain{Value: amount(v)} }

func ciiDateOf(iso string) ciiDate {
	// CII format 102 is YYYYMMDD
	return ciiDate{Value: strings.ReplaceAll(iso, "-", ""), Format: "102"}
}

// ZUGFeRDCII renders the document as a ZUGFeRD (EN16931 profile) CII invoice.
func ZUGFeRDCII(doc *documents.Document, seller companies.Company, buyer customers.Customer) ([]byte, error) {
	code, err := typeCode(doc.Type)
	if err != nil {
		return nil, err
	}

	inv := ciiInvoice{
		RSM:     "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100",
		RAM:     "urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100",
		UDT:     "urn:un:unece:uncefact:data:standard:UnqualifiedDataType:100",
		Context: ciiContext{GuidelineID: ciiGuidelineID},
		Document: ciiDocument{
			ID:        doc.Number,
			TypeCode:  code,
			IssueDate: ciiDateOf(doc.IssueDate),
		},
	}
	if doc.Notes != "" {
		inv.Document.Notes = []string{doc.Notes}
	}

	inv.Transaction.Agreement = ciiAgreement{
		Seller: ciiParty{
			Name: seller.Name, Street: seller.Street, Zip: seller.ZipCode,
			City: seller.City, Country: countryCode(seller.Country),
		},
		Buyer: ciiParty{
			Name: buyer.Name, Street: buyer.Street, Zip: buyer.ZipCode,
			City: buyer.City, Country: countryCode(buyer.Country),
		},
	}
	if seller.VATID != "" {
		inv.Transaction.Agreement.Seller.VATReg = &ciiReg{ID: seller.VATID}
	}
	if doc.ServiceDate != "" {
		d := ciiDateOf(doc.ServiceDate)
		inv.Transaction.Delivery.OccurrenceDate = &d
	}

	for i, item := range doc.Items {
		cat := taxCategory(item.VATRate, doc.SmallBusinessExempt)
		inv.Transaction.Lines = append(inv.Transaction.Lines, ciiLine{
			LineID:   fmt.Sprintf("%d", i+1),
			Name:     item.Name,
			NetPrice: ciiAmount{Value: amount(item.UnitPrice), Currency: "EUR"},
			Quantity: ciiQuantity{Value: fmt.Sprintf("%g", item.Quantity), UnitCode: "C62"},
			Tax: ciiTax{
				TypeCode: "VAT",
				Category: cat.ID,
				Percent:  cat.Percent,
			},
			LineTotal: ciiAmount{Value: amount(item.NetAmount), Currency: "EUR"},
		})
	}

	settlement := ciiSettlement{
		Currency: "EUR",
		Summation: ciiSummation{
			LineTotal:     plain(doc.Totals.Net),
			TaxBasisTotal: plain(doc.Totals.Net),
			TaxTotal:      ciiAmount{Value: amount(doc.Totals.VAT), Currency: "EUR"},
			GrandTotal:    plain(doc.Totals.Gross),
			DuePayable:    plain(doc.Totals.RemainingAmount),
		},
	}
	if seller.IBAN != "" {
		settlement.PaymentMeans = &ciiPayment{TypeCode: "58", IBAN: seller.IBAN}
	}
	if doc.DueDate != "" {
		d := ciiDateOf(doc.DueDate)
		settlement.Terms = &ciiTerms{DueDate: &d}
	}
	for _, sub := range ublTaxes(doc).Subtotals {
		settlement.Taxes = append(settlement.Taxes, ciiTax{
			Calculated: &ciiAmountPlain{Value: sub.TaxAmount.Value},
			TypeCode:   "VAT",
			Basis:      &ciiAmountPlain{Value: sub.TaxableAmount.Value},
			Category:   sub.Category.ID,
			Percent:    sub.Category.Percent,
		})
	}
	inv.Transaction.Settlement = settlement

	out, err := xml.MarshalIndent(inv, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("einvoice: marshal cii: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
