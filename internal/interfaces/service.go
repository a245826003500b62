package interfaces

import (
	"context"
	"time"

	"github.com/jonasahlin/matbit/internal/domain"
)

// RejectReason is a stable code describing why a coupon was not accepted.
// The HTTP layer maps these to localized user-facing messages; the
// background auto-apply path drops them silently.
type RejectReason string

const (
	ReasonInvalid      RejectReason = "invalid"
	ReasonNotStarted   RejectReason = "not_started"
	ReasonExpired      RejectReason = "expired"
	ReasonOutsideHours RejectReason = "outside_hours"
	ReasonMinimumOrder RejectReason = "minimum_order"
	ReasonNotEligible  RejectReason = "not_eligible"
	ReasonUsageLimit   RejectReason = "usage_limit"
)

type CouponEvalInput struct {
	Now              time.Time
	Lines            []domain.CartLine
	CurrentTotal     float64
	UserID           string
	SkipMinimumOrder bool
}

type CouponEvalResult struct {
	Accepted bool
	Campaign *domain.Campaign
	Reason   RejectReason
	// Shortfall carries the missing SEK amount when the reason is
	// minimum_order, for the user-facing message.
	Shortfall float64
}

type CouponEvaluator interface {
	Evaluate(ctx context.Context, code string, in CouponEvalInput) (CouponEvalResult, error)
}
