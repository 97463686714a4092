package domain

import "math"

// DefaultTaxRateBasisPoints is the flat clinic tax rate (15%), applied after
// the discount.
const DefaultTaxRateBasisPoints int64 = 1500

// LineInput is one requested bill line before persistence.
type LineInput struct {
	Description    string
	ItemType       ItemType
	Quantity       int64
	UnitPriceCents int64
}

// Totals is the derived money breakdown of a bill.
type Totals struct {
	SubtotalCents int64
	DiscountCents int64
	TaxCents      int64
	TotalCents    int64
}

// ComputeTotals derives subtotal, discount, tax, and total from line items.
//
// This function is PURE and fully deterministic:
//
//	subtotal = Σ(quantity × unitPrice)
//	discount = round(subtotal × discountPercent / 100)
//	tax      = round((subtotal − discount) × taxRate)
//	total    = subtotal − discount + tax
func ComputeTotals(items []LineInput, discountPercent float64, taxRateBasisPoints int64) Totals {
	var subtotal int64
	for _, item := range items {
		subtotal += item.Quantity * item.UnitPriceCents
	}

	discount := int64(math.Round(float64(subtotal) * discountPercent / 100))
	taxable := subtotal - discount
	tax := int64(math.Round(float64(taxable) * float64(taxRateBasisPoints) / 10000))

	return Totals{
		SubtotalCents: subtotal,
		DiscountCents: discount,
		TaxCents:      tax,
		TotalCents:    taxable + tax,
	}
}
