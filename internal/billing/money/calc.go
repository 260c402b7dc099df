// Package money implements the monetary calculations for document line items
// and document totals. All amounts are kept at two decimal places; rounding is
// applied at every intermediate step so repeated calculation of already-rounded
// values is a no-op.
package money

import "math"

// LineAmounts holds the derived amounts of a single line item.
type LineAmounts struct {
	DiscountAmount float64
	NetAmount      float64
	VATAmount      float64
	GrossAmount    float64
}

// Totals holds the aggregated amounts of a document.
type Totals struct {
	Net   float64
	VAT   float64
	Gross float64
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeLine derives discount, net, VAT and gross amounts for one line item.
// Rounding happens at each step: subtotal, discount, net and VAT are rounded
// independently, gross is the sum of the two rounded parts.
func ComputeLine(quantity, unitPrice, discountPercent, vatRate float64) LineAmounts {
	subtotal := Round2(quantity * unitPrice)
	discount := Round2(subtotal * (discountPercent / 100))
	net := Round2(subtotal - discount)
	vat := Round2(net * vatRate)
	return LineAmounts{
		DiscountAmount: discount,
		NetAmount:      net,
		VATAmount:      vat,
		GrossAmount:    Round2(net + vat),
	}
}

// ComputeTotals sums already-computed line amounts into document totals.
// When smallBusinessExempt is set (Kleinunternehmer §19 UStG), VAT is forced
// to zero and gross equals net regardless of the per-line VAT amounts.
func ComputeTotals(lines []LineAmounts, smallBusinessExempt bool) Totals {
	var net, vat float64
	for _, l := range lines {
		net += l.NetAmount
		vat += l.VATAmount
	}
	t := Totals{Net: Round2(net)}
	if !smallBusinessExempt {
		t.VAT = Round2(vat)
	}
	t.Gross = Round2(t.Net + t.VAT)
	return t
}
