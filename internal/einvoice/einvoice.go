// Package einvoice renders electronic invoice XML in the two formats used in
// German B2G/B2B billing: XRechnung (UBL 2.1) and ZUGFeRD 2.x (UN/CEFACT
// CII). Both renderers serialize the already computed document amounts; no
// financial math happens here.
package einvoice

import (
	"fmt"

	"github.com/faktura-erp/faktura/internal/billing/documents"
)

// Format selects the output syntax.
type Format string

const (
	FormatXRechnung Format = "xrechnung"
	FormatZUGFeRD   Format = "zugferd"
)

// UN/EDIFACT 1001 document type codes.
const (
	codeInvoice    = "380"
	codePartial    = "326"
	codeCreditNote = "381"
	codeCorrected  = "384"
)

func typeCode(t documents.DocumentType) (string, error) {
	switch t {
	case documents.TypeInvoice:
		return codeInvoice, nil
	case documents.TypePartialInvoice:
		return codePartial, nil
	case documents.TypeCreditNote:
		return codeCreditNote, nil
	case documents.TypeCancellation:
		return codeCorrected, nil
	default:
		return "", fmt.Errorf("einvoice: no type code for %s documents", t)
	}
}

func amount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func percent(rate float64) string {
	return fmt.Sprintf("%.2f", rate*100)
}
