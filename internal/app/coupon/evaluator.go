package coupon

import (
	"context"
	"strings"

	"github.com/jonasahlin/matbit/internal/adapter/logger"
	"github.com/jonasahlin/matbit/internal/domain"
	"github.com/jonasahlin/matbit/internal/interfaces"
)

// Evaluator decides whether a coupon code may be applied to a cart. The
// checks run in a fixed order and the first failure wins. Two callers use
// it with different semantics: the interactive apply surfaces the rejection
// reason to the user, the background auto-apply passes SkipMinimumOrder and
// treats any rejection as "do not apply".
type Evaluator struct {
	campaigns interfaces.CampaignRepository
	usages    interfaces.CouponUsageRepository
	logger    logger.Logger
}

func NewEvaluator(campaigns interfaces.CampaignRepository, usages interfaces.CouponUsageRepository, logger logger.Logger) *Evaluator {
	return &Evaluator{
		campaigns: campaigns,
		usages:    usages,
		logger:    logger,
	}
}

func (e *Evaluator) Evaluate(ctx context.Context, code string, in interfaces.CouponEvalInput) (interfaces.CouponEvalResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	campaign, err := e.campaigns.FindByCoupon(ctx, code)
	if err != nil {
		return interfaces.CouponEvalResult{}, err
	}
	if campaign == nil || !campaign.HasCoupon() {
		return reject(interfaces.ReasonInvalid), nil
	}

	if campaign.NotYetActive(in.Now) {
		return reject(interfaces.ReasonNotStarted), nil
	}
	if campaign.Expired(in.Now) {
		return reject(interfaces.ReasonExpired), nil
	}

	if campaign.HasTimeRestriction && !campaign.WithinWindow(in.Now) {
		return reject(interfaces.ReasonOutsideHours), nil
	}

	if !in.SkipMinimumOrder && in.CurrentTotal < campaign.MinimumOrderAmount {
		return interfaces.CouponEvalResult{
			Reason:    interfaces.ReasonMinimumOrder,
			Shortfall: domain.Round2(campaign.MinimumOrderAmount - in.CurrentTotal),
		}, nil
	}

	if len(campaign.EligibleDishes) > 0 && !anyLineEligible(campaign, in.Lines) {
		return reject(interfaces.ReasonNotEligible), nil
	}

	// A cap of 0 means unlimited. Anonymous carts skip the check; the cap
	// is enforced again at checkout when the user is known.
	if in.UserID != "" && campaign.MaxUsagesPerUser > 0 {
		used, err := e.usages.CountForUser(ctx, in.UserID, code)
		if err != nil {
			return interfaces.CouponEvalResult{}, err
		}
		if used >= campaign.MaxUsagesPerUser {
			return reject(interfaces.ReasonUsageLimit), nil
		}
	}

	e.logger.Debug("coupon_accepted", "Coupon accepted", "", map[string]interface{}{
		"code":        code,
		"campaign_id": campaign.ID,
	})
	return interfaces.CouponEvalResult{Accepted: true, Campaign: campaign}, nil
}

func anyLineEligible(campaign *domain.Campaign, lines []domain.CartLine) bool {
	for _, line := range lines {
		if campaign.EligibleDish(line.ItemID) {
			return true
		}
	}
	return false
}

func reject(reason interfaces.RejectReason) interfaces.CouponEvalResult {
	return interfaces.CouponEvalResult{Reason: reason}
}
