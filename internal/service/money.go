package service

import (
	"github.com/shopspring/decimal"

	"github.com/vitrinshop/vitrin/internal/model"
)

// computeTotals derives the money split for a set of line-item snapshots.
// Each field is rounded to two fractional digits exactly once: the
// subtotal after summation, the fee after applying the percentage, and
// the seller amount is the exact difference of the two with no further
// rounding.  Deriving it any other way reintroduces penny drift.
func computeTotals(items []model.OrderItem, feePercentage decimal.Decimal) (subtotal, platformFee, sellerAmount decimal.Decimal) {
	subtotal = decimal.Zero
	for i := range items {
		line := items[i].UnitPrice.Mul(decimal.NewFromInt(int64(items[i].Quantity)))
		subtotal = subtotal.Add(line)
	}
	subtotal = subtotal.Round(2)
	platformFee = subtotal.Mul(feePercentage).Div(decimal.NewFromInt(100)).Round(2)
	sellerAmount = subtotal.Sub(platformFee)
	return subtotal, platformFee, sellerAmount
}
