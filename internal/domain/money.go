package domain

import "github.com/shopspring/decimal"

// Money is a decimal amount in the store currency.
type Money = decimal.Decimal

// DiscountedPrice applies a whole-percent discount and rounds to cents.
func DiscountedPrice(price Money, discount int) Money {
	if discount <= 0 {
		return price.Round(2)
	}
	factor := decimal.NewFromInt(int64(100 - discount)).Div(decimal.NewFromInt(100))
	return price.Mul(factor).Round(2)
}
