// Package pricing derives the order totals from a cart snapshot. All
// functions are pure; nothing here holds state or touches storage.
package pricing

import (
	"math"

	"github.com/greenkart/storefront/internal/domain"
)

const (
	// FreeShippingThreshold waives the flat fee only for subtotals strictly
	// above it. A subtotal of exactly 1000 still pays shipping.
	FreeShippingThreshold = 1000

	// FlatShippingFee applies whenever the threshold is not exceeded,
	// with no special case for an empty cart.
	FlatShippingFee = 50

	// TaxRate is the flat consumption tax applied to the subtotal only,
	// never to shipping.
	TaxRate = 0.18
)

// Breakdown is recomputed on every read; it is never stored.
type Breakdown struct {
	Subtotal    float64 `json:"subtotal"`
	ShippingFee float64 `json:"shippingFee"`
	Tax         float64 `json:"tax"`
	Total       float64 `json:"total"`
}

// Compute prices the given cart lines. Tax is rounded to the nearest
// currency unit here, once, so the running total shown in the cart and the
// amount submitted with the order can never disagree.
func Compute(lines []domain.CartLine) Breakdown {
	var subtotal float64
	for _, line := range lines {
		subtotal += line.UnitPrice * float64(line.Quantity)
	}

	shipping := float64(FlatShippingFee)
	if subtotal > FreeShippingThreshold {
		shipping = 0
	}

	tax := math.Round(subtotal * TaxRate)

	return Breakdown{
		Subtotal:    subtotal,
		ShippingFee: shipping,
		Tax:         tax,
		Total:       subtotal + shipping + tax,
	}
}
