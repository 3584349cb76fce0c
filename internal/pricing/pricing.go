// Package pricing computes order totals. All arithmetic uses decimal
// values; float64 never touches money.
package pricing

import (
	"github.com/sara-kitchen/api/internal/enum"
	"github.com/shopspring/decimal"
)

// Fees holds the configured delivery fees. A nil *Fees means the
// settings row could not be loaded; checkout proceeds with zero fees
// rather than blocking the customer.
type Fees struct {
	InsideCity  decimal.Decimal
	OutsideCity decimal.Decimal
}

type Totals struct {
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
}

// DeliveryFee returns the fee for a delivery type. Pickup is always free.
func DeliveryFee(deliveryType string, fees *Fees) decimal.Decimal {
	if fees == nil {
		return decimal.Zero
	}
	switch deliveryType {
	case enum.DeliveryTypeInsideCity:
		return fees.InsideCity
	case enum.DeliveryTypeOutsideCity:
		return fees.OutsideCity
	default:
		return decimal.Zero
	}
}

// ComputeTotals derives the full price breakdown for an order. The
// grand total is clamped at zero so a discount can never produce a
// negative charge. Calling it twice with the same inputs yields the
// same result.
func ComputeTotals(subtotal decimal.Decimal, deliveryType string, fees *Fees, discount decimal.Decimal) Totals {
	fee := DeliveryFee(deliveryType, fees)
	total := subtotal.Add(fee).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return Totals{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Discount:    discount,
		Total:       total,
	}
}

// LineTotal prices a single cart line: (unit price + option
// adjustments) * quantity.
func LineTotal(unitPrice, optionsAdjustment decimal.Decimal, quantity int32) decimal.Decimal {
	return unitPrice.Add(optionsAdjustment).Mul(decimal.NewFromInt32(quantity))
}
