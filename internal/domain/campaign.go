package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Campaign is a promotional record. It may carry a banner display and/or a
// redeemable coupon code; a campaign without a code is banner-only.
type Campaign struct {
	ID           string
	Title        LocalizedText
	Subtitle     LocalizedText
	Text         LocalizedText
	Image        string
	TextPosition string
	IsMain       bool

	// Date bounds are date-only and inclusive; a zero value means the
	// campaign is unbounded on that side.
	StartDate time.Time
	EndDate   time.Time

	CouponCode         string
	HideCouponCode     bool
	DiscountType       DiscountType
	DiscountPercentage float64
	DiscountFixed      float64
	MaxUsagesPerUser   int
	MinimumOrderAmount float64
	EligibleDishes     []string

	HasTimeRestriction bool
	StartTime          string // "HH:MM"
	EndTime            string // "HH:MM"
	DaysOfWeek         []int  // 0=Sunday .. 6=Saturday

	AutoApplyOnMenu bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasCoupon reports whether the campaign carries a redeemable code.
func (c *Campaign) HasCoupon() bool {
	return c.CouponCode != ""
}

// NotYetActive reports whether the campaign's start date is still in the
// future on the given day.
func (c *Campaign) NotYetActive(now time.Time) bool {
	if c.StartDate.IsZero() {
		return false
	}
	return dateOf(now).Before(dateOf(c.StartDate))
}

// Expired reports whether the campaign's end date has passed. The end date
// itself is still valid.
func (c *Campaign) Expired(now time.Time) bool {
	if c.EndDate.IsZero() {
		return false
	}
	return dateOf(now).After(dateOf(c.EndDate))
}

// WithinWindow reports whether now falls inside the campaign's time
// restriction. Campaigns without a restriction are always inside. When the
// end time is not after the start time the window spans midnight, so now
// only has to be on one side of it. Both bounds are inclusive.
func (c *Campaign) WithinWindow(now time.Time) bool {
	if !c.HasTimeRestriction {
		return true
	}
	if len(c.DaysOfWeek) > 0 && !c.activeOnDay(int(now.Weekday())) {
		return false
	}

	start, err := parseClock(c.StartTime)
	if err != nil {
		return false
	}
	end, err := parseClock(c.EndTime)
	if err != nil {
		return false
	}

	minute := now.Hour()*60 + now.Minute()
	if end <= start {
		// Overnight window, e.g. 22:00-02:00.
		return minute >= start || minute <= end
	}
	return minute >= start && minute <= end
}

func (c *Campaign) activeOnDay(weekday int) bool {
	for _, d := range c.DaysOfWeek {
		if d == weekday {
			return true
		}
	}
	return false
}

// EligibleDish reports whether the item may receive this campaign's
// discount. An empty eligible list means every item is eligible.
func (c *Campaign) EligibleDish(itemID string) bool {
	if len(c.EligibleDishes) == 0 {
		return true
	}
	for _, id := range c.EligibleDishes {
		if id == itemID {
			return true
		}
	}
	return false
}

// Validate applies business validation rules before a campaign is stored.
func (c *Campaign) Validate() error {
	if c.Title.IsEmpty() {
		return errors.New("campaign title is required")
	}
	if c.HasCoupon() {
		switch c.DiscountType {
		case DiscountPercentage:
			if c.DiscountPercentage < 1 || c.DiscountPercentage > 100 {
				return errors.New("discount percentage must be between 1 and 100")
			}
		case DiscountFixed:
			if c.DiscountFixed < 0 {
				return errors.New("fixed discount amount must not be negative")
			}
		default:
			return fmt.Errorf("invalid discount type %q", c.DiscountType)
		}
		if c.MaxUsagesPerUser < 0 {
			return errors.New("max usages per user must not be negative")
		}
		if c.MinimumOrderAmount < 0 {
			return errors.New("minimum order amount must not be negative")
		}
	}
	if c.HasTimeRestriction {
		if _, err := parseClock(c.StartTime); err != nil {
			return fmt.Errorf("invalid start time: %w", err)
		}
		if _, err := parseClock(c.EndTime); err != nil {
			return fmt.Errorf("invalid end time: %w", err)
		}
		for _, d := range c.DaysOfWeek {
			if d < 0 || d > 6 {
				return errors.New("days of week must be between 0 and 6")
			}
		}
	}
	if !c.StartDate.IsZero() && !c.EndDate.IsZero() && dateOf(c.EndDate).Before(dateOf(c.StartDate)) {
		return errors.New("campaign end date must not precede start date")
	}
	return nil
}

// parseClock converts "HH:MM" into minutes since midnight.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CouponUsage is the per-user redemption counter for one coupon code.
type CouponUsage struct {
	UserID     string
	CouponCode string
	CampaignID string
	UsageCount int
	FirstUsed  time.Time
	LastUsed   time.Time
}
