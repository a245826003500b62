package coupon

import (
	"math"
	"testing"

	"github.com/jonasahlin/matbit/internal/domain"
)

func TestPriceFor_NoCoupon(t *testing.T) {
	line := domain.CartLine{ItemID: "dish-1", UnitPrice: 100, Quantity: 2}

	lp := PriceFor(line, []domain.CartLine{line}, nil)
	if lp.Discount != 0 || lp.Discounted != 100 {
		t.Errorf("expected no discount without a coupon, got %+v", lp)
	}
}

func TestPriceFor_PercentageIsPerLine(t *testing.T) {
	campaign := &domain.Campaign{
		CouponCode:         "TEN",
		DiscountType:       domain.DiscountPercentage,
		DiscountPercentage: 10,
	}
	line := domain.CartLine{ItemID: "dish-1", UnitPrice: 80, Quantity: 1}

	// Percentage discounts must not depend on the rest of the cart.
	small := []domain.CartLine{line}
	big := append(small, domain.CartLine{ItemID: "dish-2", UnitPrice: 500, Quantity: 3})

	lpSmall := PriceFor(line, small, campaign)
	lpBig := PriceFor(line, big, campaign)

	if lpSmall.Discount != 8 {
		t.Errorf("expected discount 8, got %v", lpSmall.Discount)
	}
	if lpSmall.Discount != lpBig.Discount {
		t.Errorf("percentage discount changed with cart contents: %v vs %v", lpSmall.Discount, lpBig.Discount)
	}
}

func TestPriceFor_IneligibleLine(t *testing.T) {
	campaign := &domain.Campaign{
		CouponCode:         "TEN",
		DiscountType:       domain.DiscountPercentage,
		DiscountPercentage: 10,
		EligibleDishes:     []string{"dish-2"},
	}
	line := domain.CartLine{ItemID: "dish-1", UnitPrice: 80, Quantity: 1}

	lp := PriceFor(line, []domain.CartLine{line}, campaign)
	if lp.Discount != 0 {
		t.Errorf("expected no discount for ineligible line, got %v", lp.Discount)
	}
}

func TestPriceFor_FixedAmountDistribution(t *testing.T) {
	campaign := &domain.Campaign{
		CouponCode:    "50OFF",
		DiscountType:  domain.DiscountFixed,
		DiscountFixed: 50,
	}
	lines := []domain.CartLine{
		{ItemID: "dish-1", UnitPrice: 100, Quantity: 2}, // 200 of 300
		{ItemID: "dish-2", UnitPrice: 50, Quantity: 2},  // 100 of 300
	}

	lp1 := PriceFor(lines[0], lines, campaign)
	lp2 := PriceFor(lines[1], lines, campaign)

	// Proportional split: line 1 carries 2/3 of the pool, line 2 carries 1/3.
	sum := lp1.Discount*2 + lp2.Discount*2
	if math.Abs(sum-50) > 1e-9 {
		t.Errorf("expected allocated discounts to sum to 50, got %v", sum)
	}
	if math.Abs(lp1.Discount-50.0/3) > 1e-9 {
		t.Errorf("expected per-unit discount 50/3 on line 1, got %v", lp1.Discount)
	}
}

func TestPriceFor_FixedAmountCappedAtEligibleValue(t *testing.T) {
	campaign := &domain.Campaign{
		CouponCode:    "BIG",
		DiscountType:  domain.DiscountFixed,
		DiscountFixed: 500,
	}
	lines := []domain.CartLine{{ItemID: "dish-1", UnitPrice: 60, Quantity: 1}}

	lp := PriceFor(lines[0], lines, campaign)
	if lp.Discounted != 0 {
		t.Errorf("expected price floored at 0, got %v", lp.Discounted)
	}
	if lp.Discount != 60 {
		t.Errorf("expected discount capped at line value 60, got %v", lp.Discount)
	}
}

func TestPriceFor_FixedAmountReallocatesOnCartChange(t *testing.T) {
	campaign := &domain.Campaign{
		CouponCode:     "50OFF",
		DiscountType:   domain.DiscountFixed,
		DiscountFixed:  50,
		EligibleDishes: []string{"dish-1", "dish-2"},
	}
	full := []domain.CartLine{
		{ItemID: "dish-1", UnitPrice: 100, Quantity: 1},
		{ItemID: "dish-2", UnitPrice: 100, Quantity: 1},
		{ItemID: "dish-3", UnitPrice: 70, Quantity: 1}, // not eligible
	}

	// Dropping the ineligible line must not change the allocated total.
	_, discBefore := Totals(full, campaign)
	_, discAfter := Totals(full[:2], campaign)
	if discBefore != 50 || discAfter != 50 {
		t.Errorf("expected total discount 50 before and after, got %v and %v", discBefore, discAfter)
	}

	// Dropping an eligible line shifts the whole pool onto the remainder.
	one := []domain.CartLine{full[0]}
	lp := PriceFor(one[0], one, campaign)
	if lp.Discount != 50 {
		t.Errorf("expected full pool 50 on the only eligible line, got %v", lp.Discount)
	}
}

func TestTotals_RoundsAtAggregateLevel(t *testing.T) {
	campaign := &domain.Campaign{
		CouponCode:         "THIRD",
		DiscountType:       domain.DiscountPercentage,
		DiscountPercentage: 33.333,
	}
	lines := []domain.CartLine{
		{ItemID: "dish-1", UnitPrice: 10, Quantity: 3},
		{ItemID: "dish-2", UnitPrice: 10, Quantity: 3},
	}

	total, discount := Totals(lines, campaign)
	if total != domain.Round2(total) || discount != domain.Round2(discount) {
		t.Errorf("expected rounded aggregates, got %v / %v", total, discount)
	}
	if math.Abs((total+discount)-60) > 0.01 {
		t.Errorf("expected total plus discount to equal cart value, got %v", total+discount)
	}
}

func TestTotals_NoCoupon(t *testing.T) {
	lines := []domain.CartLine{
		{ItemID: "dish-1", UnitPrice: 95, Quantity: 2},
		{ItemID: "dish-2", UnitPrice: 45.5, Quantity: 1},
	}

	total, discount := Totals(lines, nil)
	if total != 235.5 || discount != 0 {
		t.Errorf("expected 235.5 / 0, got %v / %v", total, discount)
	}
}
