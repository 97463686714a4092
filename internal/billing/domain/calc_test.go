package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotals(t *testing.T) {
	items := []LineInput{
		{Description: "Consultation", Quantity: 2, UnitPriceCents: 5000},
		{Description: "Dressing kit", Quantity: 1, UnitPriceCents: 3000},
	}

	totals := ComputeTotals(items, 10, DefaultTaxRateBasisPoints)

	assert.Equal(t, int64(13000), totals.SubtotalCents)
	assert.Equal(t, int64(1300), totals.DiscountCents)
	assert.Equal(t, int64(1755), totals.TaxCents, "tax applies after discount")
	assert.Equal(t, int64(13455), totals.TotalCents)
}

func TestComputeTotalsNoDiscount(t *testing.T) {
	items := []LineInput{
		{Description: "Lab panel", Quantity: 1, UnitPriceCents: 2500},
	}

	totals := ComputeTotals(items, 0, DefaultTaxRateBasisPoints)

	assert.Equal(t, int64(2500), totals.SubtotalCents)
	assert.Equal(t, int64(0), totals.DiscountCents)
	assert.Equal(t, int64(375), totals.TaxCents)
	assert.Equal(t, int64(2875), totals.TotalCents)
}

func TestComputeTotalsFullDiscount(t *testing.T) {
	items := []LineInput{
		{Description: "Charity case", Quantity: 3, UnitPriceCents: 1000},
	}

	totals := ComputeTotals(items, 100, DefaultTaxRateBasisPoints)

	assert.Equal(t, int64(3000), totals.SubtotalCents)
	assert.Equal(t, int64(3000), totals.DiscountCents)
	assert.Equal(t, int64(0), totals.TaxCents)
	assert.Equal(t, int64(0), totals.TotalCents)
}

func TestComputeTotalsRoundsHalfUp(t *testing.T) {
	items := []LineInput{
		{Description: "Odd price", Quantity: 1, UnitPriceCents: 333},
	}

	totals := ComputeTotals(items, 50, DefaultTaxRateBasisPoints)

	// 333 * 50% = 166.5 rounds to 167; tax on 166 = 24.9 rounds to 25.
	assert.Equal(t, int64(167), totals.DiscountCents)
	assert.Equal(t, int64(25), totals.TaxCents)
	assert.Equal(t, int64(191), totals.TotalCents)
}
