package domain

import (
	"testing"
	"time"
)

// 2025-06-02 is a Monday.
func mondayAt(hour, minute int) time.Time {
	return time.Date(2025, 6, 2, hour, minute, 0, 0, time.UTC)
}

func TestCampaign_DateBounds(t *testing.T) {
	now := mondayAt(12, 0)

	future := Campaign{StartDate: now.AddDate(0, 0, 3)}
	if !future.NotYetActive(now) {
		t.Error("campaign starting in 3 days should not be active yet")
	}

	past := Campaign{EndDate: now.AddDate(0, 0, -1)}
	if !past.Expired(now) {
		t.Error("campaign that ended yesterday should be expired")
	}

	// Both bounds are inclusive and date-only.
	today := Campaign{StartDate: mondayAt(23, 59), EndDate: mondayAt(0, 1)}
	if today.NotYetActive(now) || today.Expired(now) {
		t.Error("campaign bounded to today should be active all day")
	}

	unbounded := Campaign{}
	if unbounded.NotYetActive(now) || unbounded.Expired(now) {
		t.Error("campaign without dates should be unbounded")
	}
}

func TestCampaign_WithinWindow(t *testing.T) {
	lunch := Campaign{
		HasTimeRestriction: true,
		StartTime:          "11:00",
		EndTime:            "14:00",
		DaysOfWeek:         []int{1, 2, 3, 4, 5},
	}

	if !lunch.WithinWindow(mondayAt(12, 0)) {
		t.Error("12:00 Monday should be inside the lunch window")
	}
	if lunch.WithinWindow(mondayAt(15, 0)) {
		t.Error("15:00 Monday should be outside the lunch window")
	}
	if !lunch.WithinWindow(mondayAt(11, 0)) || !lunch.WithinWindow(mondayAt(14, 0)) {
		t.Error("window bounds should be inclusive")
	}

	sunday := mondayAt(12, 0).AddDate(0, 0, -1)
	if lunch.WithinWindow(sunday) {
		t.Error("Sunday should be outside a Mon-Fri window")
	}
}

func TestCampaign_WithinWindow_Overnight(t *testing.T) {
	night := Campaign{
		HasTimeRestriction: true,
		StartTime:          "22:00",
		EndTime:            "02:00",
		DaysOfWeek:         []int{0, 1, 2, 3, 4, 5, 6},
	}

	if !night.WithinWindow(mondayAt(22, 0)) {
		t.Error("start bound of an overnight window should pass")
	}
	if !night.WithinWindow(mondayAt(2, 0)) {
		t.Error("end bound of an overnight window should pass")
	}
	if !night.WithinWindow(mondayAt(23, 30)) || !night.WithinWindow(mondayAt(1, 0)) {
		t.Error("times inside the overnight span should pass")
	}
	if night.WithinWindow(mondayAt(12, 0)) {
		t.Error("midday should be outside a 22:00-02:00 window")
	}
}

func TestCampaign_NoRestriction(t *testing.T) {
	c := Campaign{}
	if !c.WithinWindow(mondayAt(3, 33)) {
		t.Error("campaign without time restriction should always be within window")
	}
}

func TestCampaign_EligibleDish(t *testing.T) {
	open := Campaign{}
	if !open.EligibleDish("anything") {
		t.Error("empty eligible list should allow every dish")
	}

	restricted := Campaign{EligibleDishes: []string{"dish-1", "dish-2"}}
	if !restricted.EligibleDish("dish-2") {
		t.Error("listed dish should be eligible")
	}
	if restricted.EligibleDish("dish-3") {
		t.Error("unlisted dish should not be eligible")
	}
}

func TestCampaign_Validate(t *testing.T) {
	valid := Campaign{
		Title:              LocalizedText{English: "Lunch deal"},
		CouponCode:         "LUNCH10",
		DiscountType:       DiscountPercentage,
		DiscountPercentage: 10,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("expected valid campaign, got %v", err)
	}

	badPct := valid
	badPct.DiscountPercentage = 120
	if err := badPct.Validate(); err == nil {
		t.Error("expected error for percentage over 100")
	}

	badClock := valid
	badClock.HasTimeRestriction = true
	badClock.StartTime = "25:00"
	badClock.EndTime = "14:00"
	if err := badClock.Validate(); err == nil {
		t.Error("expected error for invalid start time")
	}

	bannerOnly := Campaign{Title: LocalizedText{Swedish: "Sommar"}}
	if err := bannerOnly.Validate(); err != nil {
		t.Errorf("banner-only campaign should not need discount fields: %v", err)
	}
}

func TestOrder_CalculateTotals(t *testing.T) {
	order := Order{
		Items: []OrderItem{
			{UnitPrice: 100, Quantity: 2, AppliedDiscount: 10},
			{UnitPrice: 45.5, Quantity: 1},
		},
	}
	order.CalculateTotals()

	if order.OriginalTotal != 245.5 {
		t.Errorf("expected original total 245.5, got %v", order.OriginalTotal)
	}
	if order.TotalDiscount != 20 {
		t.Errorf("expected total discount 20, got %v", order.TotalDiscount)
	}
	if order.FinalTotal != 225.5 {
		t.Errorf("expected final total 225.5, got %v", order.FinalTotal)
	}
	if order.Items[0].LineTotal != 180 {
		t.Errorf("expected discounted line total 180, got %v", order.Items[0].LineTotal)
	}
}

func TestOrder_ValidateDeliveryAddress(t *testing.T) {
	items := []OrderItem{{ItemID: "dish-1", UnitPrice: 100, Quantity: 1}}

	_, err := NewOrder("user-1", items, ServiceHomeDelivery, PaymentCard, nil)
	if err != ErrAddressRequired {
		t.Errorf("expected ErrAddressRequired, got %v", err)
	}

	_, err = NewOrder("user-1", items, ServiceHomeDelivery, PaymentCard, &DeliveryAddress{Street: "Storgatan 1"})
	if err != ErrAddressIncomplete {
		t.Errorf("expected ErrAddressIncomplete, got %v", err)
	}

	order, err := NewOrder("user-1", items, ServiceTakeout, PaymentCash, nil)
	if err != nil {
		t.Fatalf("takeout order should not need an address: %v", err)
	}
	if order.Status != StatusPending {
		t.Errorf("expected new order to be pending, got %q", order.Status)
	}
}
