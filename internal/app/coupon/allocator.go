package coupon

import (
	"github.com/jonasahlin/matbit/internal/domain"
)

// LinePrice is the allocator's answer for one cart line, per unit.
type LinePrice struct {
	Original   float64
	Discounted float64
	Discount   float64
}

// PriceFor computes the discounted unit price of one line under the applied
// campaign. It is a pure function of the whole cart: fixed-amount discounts
// are spread across the eligible lines proportionally to each line's share
// of the eligible value, so the allocation has to be recomputed whenever
// the cart changes. Per-line amounts stay unrounded; rounding happens in
// Totals.
func PriceFor(line domain.CartLine, lines []domain.CartLine, campaign *domain.Campaign) LinePrice {
	price := LinePrice{Original: line.UnitPrice, Discounted: line.UnitPrice}
	if campaign == nil || !campaign.EligibleDish(line.ItemID) {
		return price
	}

	switch campaign.DiscountType {
	case domain.DiscountPercentage:
		price.Discount = line.UnitPrice * campaign.DiscountPercentage / 100

	case domain.DiscountFixed:
		eligibleValue := 0.0
		for _, l := range lines {
			if campaign.EligibleDish(l.ItemID) {
				eligibleValue += l.UnitPrice * float64(l.Quantity)
			}
		}
		if eligibleValue <= 0 {
			return price
		}
		pool := campaign.DiscountFixed
		if pool > eligibleValue {
			pool = eligibleValue
		}
		price.Discount = pool * line.UnitPrice / eligibleValue
	}

	price.Discounted = line.UnitPrice - price.Discount
	if price.Discounted < 0 {
		price.Discounted = 0
		price.Discount = line.UnitPrice
	}
	return price
}

// Totals aggregates the cart under the applied campaign. Both sums are
// rounded to whole öre here, at the aggregate level only.
func Totals(lines []domain.CartLine, campaign *domain.Campaign) (total, totalDiscount float64) {
	for _, line := range lines {
		lp := PriceFor(line, lines, campaign)
		total += lp.Discounted * float64(line.Quantity)
		totalDiscount += lp.Discount * float64(line.Quantity)
	}
	return domain.Round2(total), domain.Round2(totalDiscount)
}
