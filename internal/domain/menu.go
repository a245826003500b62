package domain

import (
	"errors"
	"time"
)

// MenuItem represents a dish on the menu.
type MenuItem struct {
	ID            string
	Name          LocalizedText
	Description   LocalizedText
	Price         PriceSpec
	Category      string
	SubCategory   string
	Image         string
	Available     bool
	Discount      *ItemDiscount
	OriginalPrice float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ItemDiscount is a per-item price cut set by the admin, independent of
// campaign coupons.
type ItemDiscount struct {
	Enabled bool    `json:"enabled"`
	Value   float64 `json:"value"`
}

// Validate applies business validation rules before a menu item is stored.
func (m *MenuItem) Validate() error {
	if m.Name.IsEmpty() {
		return errors.New("menu item name is required")
	}
	if len(m.Price.Options) == 0 {
		return errors.New("menu item must have at least one price")
	}
	for _, opt := range m.Price.Options {
		if opt.Amount <= 0 {
			return errors.New("menu item price must be positive")
		}
	}
	if m.Category == "" {
		return errors.New("menu item category is required")
	}
	return nil
}

// Category groups menu items on the public menu.
type Category struct {
	ID    string
	Name  LocalizedText
	Order int
}
