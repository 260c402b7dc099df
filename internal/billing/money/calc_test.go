package money

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRound2HalfAwayFromZero(t *testing.T) {
	require.InDelta(t, 1.24, Round2(1.235), 1e-9)
	require.InDelta(t, -1.24, Round2(-1.235), 1e-9)
	require.InDelta(t, 0.0, Round2(0), 1e-9)
	require.InDelta(t, 2.68, Round2(2.675), 1e-9)
}

func TestComputeLine(t *testing.T) {
	l := ComputeLine(10, 95.00, 0, 0.19)
	require.InDelta(t, 950.00, l.NetAmount, 1e-9)
	require.InDelta(t, 180.50, l.VATAmount, 1e-9)
	require.InDelta(t, 1130.50, l.GrossAmount, 1e-9)
	require.InDelta(t, 0.00, l.DiscountAmount, 1e-9)
}

func TestComputeLineWithDiscount(t *testing.T) {
	l := ComputeLine(3, 33.33, 10, 0.19)
	// subtotal 99.99, discount 10.00, net 89.99, vat 17.10
	require.InDelta(t, 10.00, l.DiscountAmount, 1e-9)
	require.InDelta(t, 89.99, l.NetAmount, 1e-9)
	require.InDelta(t, 17.10, l.VATAmount, 1e-9)
	require.InDelta(t, 107.09, l.GrossAmount, 1e-9)
}

func TestComputeLineIdempotent(t *testing.T) {
	first := ComputeLine(7, 19.99, 5, 0.07)
	second := ComputeLine(1, first.NetAmount, 0, 0.07)
	require.InDelta(t, first.NetAmount, second.NetAmount, 1e-9)
	require.InDelta(t, first.VATAmount, second.VATAmount, 1e-9)
}

func TestComputeTotalsAdditivity(t *testing.T) {
	lines := []LineAmounts{
		ComputeLine(10, 95.00, 0, 0.19),
		ComputeLine(1, 450.00, 0, 0.19),
	}
	totals := ComputeTotals(lines, false)
	require.InDelta(t, 1400.00, totals.Net, 1e-9)
	require.InDelta(t, 266.00, totals.VAT, 1e-9)
	require.InDelta(t, 1666.00, totals.Gross, 1e-9)
}

func TestComputeTotalsSmallBusinessExempt(t *testing.T) {
	lines := []LineAmounts{
		ComputeLine(1, 100.00, 0, 0.19),
		ComputeLine(2, 49.50, 0, 0.07),
	}
	totals := ComputeTotals(lines, true)
	require.InDelta(t, 0.0, totals.VAT, 1e-9)
	require.InDelta(t, totals.Net, totals.Gross, 1e-9)
}
