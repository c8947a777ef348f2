package holdings

import (
	"github.com/shopspring/decimal"
)

// Position is the (quantity, average price) pair the cost-basis rules act on.
type Position struct {
	Quantity     decimal.Decimal
	AveragePrice decimal.Decimal
}

// ApplyBuy returns the position after buying deltaQty at price.
//
// A buy against an empty position adopts the buy price directly; otherwise
// the average price becomes the quantity-weighted average of the old position
// and the new lot. Non-positive deltaQty or price is a silent no-op, not an
// error.
func ApplyBuy(p Position, deltaQty, price decimal.Decimal) Position {
	if !deltaQty.IsPositive() || !price.IsPositive() {
		return p
	}
	if p.Quantity.IsZero() {
		return Position{Quantity: deltaQty, AveragePrice: price}
	}
	newQty := p.Quantity.Add(deltaQty)
	newAvg := p.Quantity.Mul(p.AveragePrice).Add(deltaQty.Mul(price)).Div(newQty)
	return Position{Quantity: newQty, AveragePrice: newAvg}
}

// ApplySell returns the position after selling deltaQty.
//
// The average price never changes on a sell. Selling more than held clamps
// the quantity at zero rather than erroring. Non-positive deltaQty is a
// silent no-op.
func ApplySell(p Position, deltaQty decimal.Decimal) Position {
	if !deltaQty.IsPositive() {
		return p
	}
	newQty := p.Quantity.Sub(deltaQty)
	if newQty.IsNegative() {
		newQty = decimal.Zero
	}
	return Position{Quantity: newQty, AveragePrice: p.AveragePrice}
}
