package domain

import "errors"

// CartLine is one item in a cart. Name, description and price are
// denormalized snapshots taken when the line is added, so later menu edits
// do not change a cart the customer already built.
type CartLine struct {
	ItemID      string        `json:"item_id"`
	Name        LocalizedText `json:"name"`
	Description LocalizedText `json:"description"`
	Image       string        `json:"image"`
	Volume      Volume        `json:"volume"`
	UnitPrice   float64       `json:"unit_price"`
	Quantity    int           `json:"quantity"`
	LineTotal   float64       `json:"line_total"`
}

// Recalculate refreshes the derived line total.
func (l *CartLine) Recalculate() {
	l.LineTotal = l.UnitPrice * float64(l.Quantity)
}

// Validate applies business validation rules for a cart line.
func (l *CartLine) Validate() error {
	if l.ItemID == "" {
		return errors.New("cart line item id is required")
	}
	if l.Quantity < 1 {
		return errors.New("cart line quantity must be at least 1")
	}
	if l.UnitPrice <= 0 {
		return errors.New("cart line price must be positive")
	}
	return nil
}

// CouponState tracks what the applied coupon is currently doing. A coupon
// whose conditions stop holding is soft-disabled: the record is retained so
// it re-activates on its own when the cart changes back into compliance.
type CouponState string

const (
	CouponStateNone     CouponState = "none"
	CouponStateActive   CouponState = "active"
	CouponStateDisabled CouponState = "disabled"
)

// Cart is the per-session cart aggregate. It is persisted as JSON in the
// key-value store and reloaded on session start.
type Cart struct {
	SessionID      string      `json:"session_id"`
	UserID         string      `json:"user_id,omitempty"`
	Lines          []CartLine  `json:"lines"`
	Coupon         *Campaign   `json:"coupon,omitempty"`
	CouponState    CouponState `json:"coupon_state"`
	DisabledReason string      `json:"disabled_reason,omitempty"`
	Subtotal       float64     `json:"subtotal"`
	Total          float64     `json:"total"`
	TotalDiscount  float64     `json:"total_discount"`
}

// ActiveCoupon returns the applied campaign when its discount is currently
// in effect, nil while soft-disabled or absent.
func (c *Cart) ActiveCoupon() *Campaign {
	if c.CouponState == CouponStateActive {
		return c.Coupon
	}
	return nil
}

// RawTotal sums the undiscounted line totals.
func (c *Cart) RawTotal() float64 {
	total := 0.0
	for _, l := range c.Lines {
		total += l.LineTotal
	}
	return total
}

// FindLine returns the index of the line for the item/volume pair, or -1.
func (c *Cart) FindLine(itemID string, volume Volume) int {
	for i, l := range c.Lines {
		if l.ItemID == itemID && l.Volume == volume {
			return i
		}
	}
	return -1
}
