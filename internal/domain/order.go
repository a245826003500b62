package domain

import (
	"errors"
	"strings"
	"time"
)

// Order represents a placed order. Items and the applied coupon are
// snapshots taken at checkout; later menu or campaign edits never change an
// existing order.
type Order struct {
	ID              string
	Number          string
	UserID          string
	Items           []OrderItem
	OriginalTotal   float64
	FinalTotal      float64
	TotalDiscount   float64
	AppliedCoupon   *CouponSnapshot
	ServiceType     ServiceType
	PaymentMethod   PaymentMethod
	DeliveryAddress *DeliveryAddress
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem is a cart line frozen into an order, with the per-line discount
// that was in effect at checkout.
type OrderItem struct {
	ID              int
	OrderID         string
	ItemID          string
	Name            LocalizedText
	Volume          Volume
	UnitPrice       float64
	Quantity        int
	AppliedDiscount float64
	LineTotal       float64
}

// CouponSnapshot is the subset of campaign fields kept on an order.
type CouponSnapshot struct {
	CampaignID         string       `json:"campaign_id"`
	Code               string       `json:"code"`
	DiscountType       DiscountType `json:"discount_type"`
	DiscountPercentage float64      `json:"discount_percentage,omitempty"`
	DiscountFixed      float64      `json:"discount_fixed,omitempty"`
}

// DeliveryAddress is required for home delivery orders. When UseProfile is
// set the fields were copied from the customer's profile at checkout.
type DeliveryAddress struct {
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	UseProfile bool   `json:"use_profile"`
}

// NewOrder creates a pending order from checkout data and validates it.
func NewOrder(userID string, items []OrderItem, serviceType ServiceType, payment PaymentMethod, address *DeliveryAddress) (*Order, error) {
	now := time.Now()
	order := &Order{
		UserID:          userID,
		Items:           items,
		ServiceType:     serviceType,
		PaymentMethod:   payment,
		DeliveryAddress: address,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	order.CalculateTotals()
	return order, nil
}

// Validate applies business validation rules.
func (o *Order) Validate() error {
	if len(o.Items) < 1 {
		return errors.New("order must contain at least 1 item")
	}

	switch o.ServiceType {
	case ServiceDineIn, ServiceTakeout:
		// no address needed
	case ServiceHomeDelivery:
		if o.DeliveryAddress == nil {
			return ErrAddressRequired
		}
		a := o.DeliveryAddress
		if strings.TrimSpace(a.Street) == "" || strings.TrimSpace(a.PostalCode) == "" || strings.TrimSpace(a.City) == "" {
			return ErrAddressIncomplete
		}
	default:
		return errors.New("invalid service type")
	}

	if o.PaymentMethod != PaymentCash && o.PaymentMethod != PaymentCard {
		// Online payment is deliberately not offered.
		return errors.New("invalid payment method")
	}

	for _, item := range o.Items {
		if item.Quantity < 1 {
			return errors.New("order item quantity must be at least 1")
		}
		if item.UnitPrice <= 0 {
			return errors.New("order item price must be positive")
		}
		if item.AppliedDiscount < 0 {
			return errors.New("order item discount must not be negative")
		}
	}

	return nil
}

// CalculateTotals derives the order totals from its item snapshots.
func (o *Order) CalculateTotals() {
	original := 0.0
	discount := 0.0
	for i := range o.Items {
		item := &o.Items[i]
		item.LineTotal = (item.UnitPrice - item.AppliedDiscount) * float64(item.Quantity)
		original += item.UnitPrice * float64(item.Quantity)
		discount += item.AppliedDiscount * float64(item.Quantity)
	}
	o.OriginalTotal = Round2(original)
	o.TotalDiscount = Round2(discount)
	o.FinalTotal = Round2(original - discount)
}

var (
	ErrAddressRequired   = errors.New("delivery address required for home delivery")
	ErrAddressIncomplete = errors.New("delivery address is incomplete")
)
