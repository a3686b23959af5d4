package pricing

import "github.com/shopspring/decimal"

// Quantity tiers for the standard markup over a product's base (cost-anchored)
// price. Thresholds are inclusive lower bounds and are checked highest first,
// so a quantity of exactly 100 gets the bulk tier.
var (
	markupBulk   = decimal.NewFromInt(11) // quantity >= 100
	markupMedium = decimal.NewFromInt(13) // 10 <= quantity < 100
	markupRetail = decimal.NewFromInt(15) // quantity < 10
)

var one = decimal.NewFromInt(1)
var hundred = decimal.NewFromInt(100)

// TieredMarkupPercent returns the markup percent for a given quantity.
func TieredMarkupPercent(quantity int) decimal.Decimal {
	switch {
	case quantity >= 100:
		return markupBulk
	case quantity >= 10:
		return markupMedium
	default:
		return markupRetail
	}
}

// UnitPrice computes the sellable unit price for a base price and quantity
// using the tiered markup, rounded to the nearest whole currency unit.
func UnitPrice(basePrice int64, quantity int) int64 {
	return applyMarkup(basePrice, TieredMarkupPercent(quantity))
}

// NegotiatedPrice computes a unit price from an operator-supplied markup
// percent, fully overriding the tiered calculation.
func NegotiatedPrice(basePrice int64, markupPercent decimal.Decimal) int64 {
	return applyMarkup(basePrice, markupPercent)
}

// Discount reports the difference between the tiered price and a negotiated
// price for display. May be zero or negative; a negotiated price above the
// tier price is allowed and simply shown as a non-discount.
func Discount(tieredPrice, negotiatedPrice int64) int64 {
	return tieredPrice - negotiatedPrice
}

func applyMarkup(basePrice int64, markupPercent decimal.Decimal) int64 {
	factor := one.Add(markupPercent.Div(hundred))
	return decimal.NewFromInt(basePrice).Mul(factor).Round(0).IntPart()
}
