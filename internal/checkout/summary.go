package checkout

import (
	"cart-service/internal/cart"

	"github.com/shopspring/decimal"
)

var (
	// FreeShippingThreshold is the subtotal above which shipping is free
	FreeShippingThreshold = decimal.NewFromInt(100)
	// FlatShipping is charged on non-empty carts at or below the threshold
	FlatShipping = decimal.NewFromInt(10)
	// TaxRate applies to the subtotal
	TaxRate = decimal.RequireFromString("0.08")
)

// Summary is the order summary shown on the checkout page
type Summary struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// FreeShipping reports whether the order ships for free
func (s Summary) FreeShipping() bool {
	return s.Shipping.IsZero()
}

// Summarize derives the order summary from a cart snapshot. Tax is rounded
// to cents before it is added to the total.
func Summarize(snap cart.Snapshot) Summary {
	subtotal := snap.Total

	shipping := decimal.Zero
	if len(snap.Items) > 0 && subtotal.LessThanOrEqual(FreeShippingThreshold) {
		shipping = FlatShipping
	}

	tax := subtotal.Mul(TaxRate).Round(2)

	return Summary{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}
