package recorder

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals applies a percentage tax to subtotal and subtracts the flat
// discount. Values are exact; rounding is left to presentation.
func ComputeTotals(subtotal, taxRate, discount decimal.Decimal) Totals {
	tax := subtotal.Mul(taxRate).Div(hundred)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Discount: discount,
		Total:    subtotal.Add(tax).Sub(discount),
	}
}

// LineTotal is quantity times unit amount.
func LineTotal(qty int, unit decimal.Decimal) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(qty)))
}
