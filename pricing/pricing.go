// Package pricing derives the price breakdown of a cart.
//
// Amounts are whole rupees. The gateway works in paise; use MinorUnits at that boundary.
package pricing

import "outfitorbit/models"

const (
	ExpressFee            int64 = 199
	StandardFee           int64 = 99
	FreeShippingThreshold int64 = 2000
	TaxPercent            int64 = 18 // GST
)

// Subtotal is the sum of price × quantity over all lines.
func Subtotal(items []models.CartItem) int64 {
	var total int64
	for _, it := range items {
		total += it.LineTotal()
	}
	return total
}

// ShippingFee returns the delivery charge for a method at a given subtotal.
// Unknown methods are charged as standard.
func ShippingFee(method models.DeliveryMethod, subtotal int64) int64 {
	if method == models.DeliveryExpress {
		return ExpressFee
	}
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	return StandardFee
}

// Tax is round(subtotal × 0.18), halves rounded up.
func Tax(subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}
	return (subtotal*TaxPercent + 50) / 100
}

// Calculate prices the cart for the chosen delivery method.
// An empty cart costs nothing, shipping included.
func Calculate(items []models.CartItem, method models.DeliveryMethod) models.PriceBreakdown {
	if len(items) == 0 {
		return models.PriceBreakdown{}
	}
	sub := Subtotal(items)
	b := models.PriceBreakdown{
		Subtotal:  sub,
		Shipping:  ShippingFee(method, sub),
		Tax:       Tax(sub),
		ItemCount: itemCount(items),
	}
	b.Total = b.Subtotal + b.Shipping + b.Tax
	return b
}

// CartSummary is the preview shown on the cart page: standard delivery, no tax.
func CartSummary(items []models.CartItem) models.PriceBreakdown {
	if len(items) == 0 {
		return models.PriceBreakdown{}
	}
	sub := Subtotal(items)
	ship := ShippingFee(models.DeliveryStandard, sub)
	return models.PriceBreakdown{
		Subtotal:  sub,
		Shipping:  ship,
		Total:     sub + ship,
		ItemCount: itemCount(items),
	}
}

// MinorUnits converts rupees to paise.
func MinorUnits(amount int64) int64 {
	return amount * 100
}

func itemCount(items []models.CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
