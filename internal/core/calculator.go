package core

import "github.com/shopspring/decimal"

// LineAmount derives a line's amount. Always Quantity × UnitPrice, never a
// stored value, and recomputed whenever either operand changes. No clamping:
// negative inputs produce the exact mathematical product (rejecting them is
// an input-surface concern, not the calculator's).
func LineAmount(quantity, unitPrice int64) int64 {
	return quantity * unitPrice
}

// Totals is the computed money summary of an invoice.
type Totals struct {
	Subtotal int64
	Tax      int64
	Total    int64
}

// ComputeTotals sums the derived line amounts and applies the tax rate:
//
//	subtotal = Σ qty_i × unitPrice_i
//	tax      = floor(subtotal × rate)      (floor, not round)
//	total    = subtotal + tax
//
// taxRatePercent is the integer percent from settings (10 → 10%). The floor
// runs in decimal arithmetic so the result is exact for any subtotal.
func ComputeTotals(items []LineItem, taxRatePercent int) Totals {
	var subtotal int64
	for _, item := range items {
		subtotal += LineAmount(item.Quantity, item.UnitPrice)
	}

	rate := decimal.NewFromInt(int64(taxRatePercent)).Div(decimal.NewFromInt(100))
	tax := decimal.NewFromInt(subtotal).Mul(rate).Floor().IntPart()

	return Totals{Subtotal: subtotal, Tax: tax, Total: subtotal + tax}
}

// TaxRateFraction converts the settings percent into the fraction snapshot
// stored on an issued invoice.
func TaxRateFraction(taxRatePercent int) float64 {
	return float64(taxRatePercent) / 100
}

// NormalizeTaxRate falls back to the default when settings carry no usable
// rate, matching the issuing behavior for never-saved settings.
func NormalizeTaxRate(taxRatePercent int) int {
	if taxRatePercent <= 0 {
		return DefaultTaxRatePercent
	}
	return taxRatePercent
}
