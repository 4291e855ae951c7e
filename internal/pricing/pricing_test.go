package pricing

import (
	"testing"

	"github.com/greenkart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCompute_BelowThreshold(t *testing.T) {
	lines := []domain.CartLine{
		{ProductID: "p1", UnitPrice: 250, Quantity: 2},
	}

	b := Compute(lines)
	assert.Equal(t, float64(500), b.Subtotal)
	assert.Equal(t, float64(50), b.ShippingFee)
	assert.Equal(t, float64(90), b.Tax)
	assert.Equal(t, float64(640), b.Total)
}

func TestCompute_AboveThreshold_FreeShipping(t *testing.T) {
	lines := []domain.CartLine{
		{ProductID: "p1", UnitPrice: 400, Quantity: 3},
	}

	b := Compute(lines)
	assert.Equal(t, float64(1200), b.Subtotal)
	assert.Equal(t, float64(0), b.ShippingFee)
	assert.Equal(t, float64(216), b.Tax)
	assert.Equal(t, float64(1416), b.Total)
}

func TestCompute_ExactlyAtThreshold_StillPaysShipping(t *testing.T) {
	lines := []domain.CartLine{
		{ProductID: "p1", UnitPrice: 1000, Quantity: 1},
	}

	b := Compute(lines)
	assert.Equal(t, float64(1000), b.Subtotal)
	assert.Equal(t, float64(50), b.ShippingFee)
}

func TestCompute_MultipleLines(t *testing.T) {
	lines := []domain.CartLine{
		{ProductID: "p1", UnitPrice: 300, Quantity: 2},
		{ProductID: "p2", UnitPrice: 49.5, Quantity: 1},
	}

	b := Compute(lines)
	assert.Equal(t, float64(649.5), b.Subtotal)
	assert.Equal(t, float64(50), b.ShippingFee)
	assert.Equal(t, float64(117), b.Tax) // round(649.5 * 0.18) = round(116.91)
	assert.Equal(t, float64(816.5), b.Total)
}

func TestCompute_EmptyCart_NoSpecialCase(t *testing.T) {
	b := Compute(nil)
	assert.Equal(t, float64(0), b.Subtotal)
	assert.Equal(t, float64(50), b.ShippingFee) // the 1000 threshold rule, applied uniformly
	assert.Equal(t, float64(0), b.Tax)
	assert.Equal(t, float64(50), b.Total)
}

func TestCompute_TaxRoundsToNearestUnit(t *testing.T) {
	lines := []domain.CartLine{
		{ProductID: "p1", UnitPrice: 99.99, Quantity: 1},
	}

	b := Compute(lines)
	assert.Equal(t, float64(18), b.Tax) // round(17.9982)
}
