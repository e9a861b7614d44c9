// Package pricing derives the payment breakdown shown on the order
// sheet. Everything here is pure: the same draft always produces the
// same breakdown, and inputs are never mutated.
package pricing

import "storefront/models"

const (
	// DiscountRatePercent is the flat member discount applied to the
	// product total.
	DiscountRatePercent = 10

	// ShippingFee is the fixed delivery cost per order.
	ShippingFee = 3000
)

// Options carries the optional coupon and mileage selections.
type Options struct {
	CouponDiscount int64
	Miles          int64
}

// Compute derives the amount breakdown for a draft. Discount amounts
// are floored to whole currency units before subtraction and the
// final amount never goes below zero.
func Compute(draft models.OrderDraft, opts Options) models.AmountBreakdown {
	var total int64
	for _, item := range draft.Items {
		total += item.Product.Price * item.Quantity
	}

	// Integer division floors the percentage discount.
	discount := total * DiscountRatePercent / 100

	coupon := opts.CouponDiscount
	if coupon < 0 {
		coupon = 0
	}
	miles := opts.Miles
	if miles < 0 {
		miles = 0
	}

	final := total - discount - coupon - miles + ShippingFee
	if final < 0 {
		final = 0
	}

	return models.AmountBreakdown{
		TotalProductAmount: total,
		DiscountAmount:     discount,
		ShippingFee:        ShippingFee,
		CouponDiscount:     coupon,
		MilesDiscount:      miles,
		FinalAmount:        final,
	}
}
