package coupon

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jonasahlin/matbit/internal/adapter/logger"
	"github.com/jonasahlin/matbit/internal/domain"
	"github.com/jonasahlin/matbit/internal/interfaces"
)

type fakeCampaignRepo struct {
	byCode map[string]*domain.Campaign
}

func (f *fakeCampaignRepo) FindByCoupon(ctx context.Context, code string) (*domain.Campaign, error) {
	return f.byCode[strings.ToUpper(code)], nil
}

func (f *fakeCampaignRepo) Create(ctx context.Context, c *domain.Campaign) error { return nil }
func (f *fakeCampaignRepo) Update(ctx context.Context, c *domain.Campaign) error { return nil }
func (f *fakeCampaignRepo) Delete(ctx context.Context, id string) error          { return nil }
func (f *fakeCampaignRepo) FindByID(ctx context.Context, id string) (*domain.Campaign, error) {
	return nil, nil
}
func (f *fakeCampaignRepo) ListAll(ctx context.Context) ([]*domain.Campaign, error) {
	return nil, nil
}
func (f *fakeCampaignRepo) ListAutoApply(ctx context.Context) ([]*domain.Campaign, error) {
	var out []*domain.Campaign
	for _, c := range f.byCode {
		if c.AutoApplyOnMenu && c.HasTimeRestriction {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeUsageRepo struct {
	counts map[string]int // userID|code -> count
}

func (f *fakeUsageRepo) CountForUser(ctx context.Context, userID, code string) (int, error) {
	return f.counts[userID+"|"+strings.ToUpper(code)], nil
}

func (f *fakeUsageRepo) RecordUse(ctx context.Context, userID, code, campaignID string) error {
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	f.counts[userID+"|"+strings.ToUpper(code)]++
	return nil
}

func newTestEvaluator(campaigns ...*domain.Campaign) (*Evaluator, *fakeUsageRepo) {
	byCode := make(map[string]*domain.Campaign)
	for _, c := range campaigns {
		byCode[strings.ToUpper(c.CouponCode)] = c
	}
	usages := &fakeUsageRepo{counts: make(map[string]int)}
	return NewEvaluator(&fakeCampaignRepo{byCode: byCode}, usages, logger.New("test")), usages
}

func lunchCampaign() *domain.Campaign {
	return &domain.Campaign{
		ID:                 "camp-1",
		Title:              domain.LocalizedText{English: "Lunch deal"},
		CouponCode:         "LUNCH10",
		DiscountType:       domain.DiscountPercentage,
		DiscountPercentage: 10,
	}
}

func cartLines() []domain.CartLine {
	return []domain.CartLine{
		{ItemID: "dish-1", UnitPrice: 100, Quantity: 1, LineTotal: 100},
		{ItemID: "dish-2", UnitPrice: 50, Quantity: 1, LineTotal: 50},
	}
}

func TestEvaluate_UnknownCode(t *testing.T) {
	ev, _ := newTestEvaluator(lunchCampaign())

	res, err := ev.Evaluate(context.Background(), "NOPE", interfaces.CouponEvalInput{Now: mondayAt(12, 0)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Accepted || res.Reason != interfaces.ReasonInvalid {
		t.Errorf("expected invalid rejection, got %+v", res)
	}
}

func TestEvaluate_CodeIsCaseInsensitive(t *testing.T) {
	ev, _ := newTestEvaluator(lunchCampaign())

	res, err := ev.Evaluate(context.Background(), " lunch10 ", interfaces.CouponEvalInput{
		Now: mondayAt(12, 0), Lines: cartLines(), CurrentTotal: 150,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Accepted {
		t.Errorf("expected lowercase code to be accepted, got reason %q", res.Reason)
	}
}

func TestEvaluate_NotYetActive(t *testing.T) {
	c := lunchCampaign()
	c.StartDate = mondayAt(12, 0).AddDate(0, 0, 5)
	ev, _ := newTestEvaluator(c)

	res, _ := ev.Evaluate(context.Background(), "LUNCH10", interfaces.CouponEvalInput{
		Now: mondayAt(12, 0), Lines: cartLines(), CurrentTotal: 150,
	})
	if res.Accepted || res.Reason != interfaces.ReasonNotStarted {
		t.Errorf("expected not_started, got %+v", res)
	}
}

func TestEvaluate_Expired(t *testing.T) {
	c := lunchCampaign()
	c.EndDate = mondayAt(12, 0).AddDate(0, 0, -2)
	ev, _ := newTestEvaluator(c)

	res, _ := ev.Evaluate(context.Background(), "LUNCH10", interfaces.CouponEvalInput{
		Now: mondayAt(12, 0), Lines: cartLines(), CurrentTotal: 150,
	})
	if res.Accepted || res.Reason != interfaces.ReasonExpired {
		t.Errorf("expected expired, got %+v", res)
	}
}

func TestEvaluate_OutsideHours(t *testing.T) {
	c := lunchCampaign()
	c.HasTimeRestriction = true
	c.StartTime = "11:00"
	c.EndTime = "14:00"
	c.DaysOfWeek = []int{1, 2, 3, 4, 5}
	ev, _ := newTestEvaluator(c)

	res, _ := ev.Evaluate(context.Background(), "LUNCH10", interfaces.CouponEvalInput{
		Now: mondayAt(15, 0), Lines: cartLines(), CurrentTotal: 150,
	})
	if res.Accepted || res.Reason != interfaces.ReasonOutsideHours {
		t.Errorf("expected outside_hours at 15:00, got %+v", res)
	}

	res, _ = ev.Evaluate(context.Background(), "LUNCH10", interfaces.CouponEvalInput{
		Now: mondayAt(12, 0), Lines: cartLines(), CurrentTotal: 150,
	})
	if !res.Accepted {
		t.Errorf("expected acceptance at 12:00 Monday, got reason %q", res.Reason)
	}
}

func TestEvaluate_MinimumOrderShortfall(t *testing.T) {
	c := lunchCampaign()
	c.MinimumOrderAmount = 200
	ev, _ := newTestEvaluator(c)

	res, _ := ev.Evaluate(context.Background(), "LUNCH10", interfaces.CouponEvalInput{
		Now: mondayAt(12, 0), Lines: cartLines(), CurrentTotal: 150,
	})
	if res.Accepted || res.Reason != interfaces.ReasonMinimumOrder {
		t.Fatalf("expected minimum_order rejection, got %+v", res)
	}
	if res.Shortfall != 50 {
		t.Errorf("expected shortfall 50, got %v", res.Shortfall)
	}
}

func TestEvaluate_SkipMinimumOrder(t *testing.T) {
	c := lunchCampaign()
	c.MinimumOrderAmount = 200
	ev, _ := newTestEvaluator(c)

	// The background auto-apply path ignores the minimum order.
	res, _ := ev.Evaluate(context.Background(), "LUNCH10", interfaces.CouponEvalInput{
		Now: mondayAt(12, 0), Lines: cartLines(), CurrentTotal: 150, SkipMinimumOrder: true,
	})
	if !res.Accepted {
		t.Errorf("expected acceptance with SkipMinimumOrder, got reason %q", res.Reason)
	}
}

func TestEvaluate_NoEligibleLines(t *testing.T) {
	c := lunchCampaign()
	c.EligibleDishes = []string{"dish-9"}
	ev, _ := newTestEvaluator(c)

	res, _ := ev.Evaluate(context.Background(), "LUNCH10", interfaces.CouponEvalInput{
		Now: mondayAt(12, 0), Lines: cartLines(), CurrentTotal: 150,
	})
	if res.Accepted || res.Reason != interfaces.ReasonNotEligible {
		t.Errorf("expected not_eligible, got %+v", res)
	}
}

func TestEvaluate_UsageCap(t *testing.T) {
	c := lunchCampaign()
	c.MaxUsagesPerUser = 2
	ev, usages := newTestEvaluator(c)

	in := interfaces.CouponEvalInput{
		Now: mondayAt(12, 0), Lines: cartLines(), CurrentTotal: 150, UserID: "user-1",
	}

	usages.counts["user-1|LUNCH10"] = 1
	res, _ := ev.Evaluate(context.Background(), "LUNCH10", in)
	if !res.Accepted {
		t.Errorf("expected acceptance with 1 of 2 usages, got reason %q", res.Reason)
	}

	usages.counts["user-1|LUNCH10"] = 2
	res, _ = ev.Evaluate(context.Background(), "LUNCH10", in)
	if res.Accepted || res.Reason != interfaces.ReasonUsageLimit {
		t.Errorf("expected usage_limit with 2 of 2 usages, got %+v", res)
	}
}

func TestEvaluate_ZeroCapIsUnlimited(t *testing.T) {
	c := lunchCampaign()
	c.MaxUsagesPerUser = 0
	ev, usages := newTestEvaluator(c)
	usages.counts["user-1|LUNCH10"] = 99

	res, _ := ev.Evaluate(context.Background(), "LUNCH10", interfaces.CouponEvalInput{
		Now: mondayAt(12, 0), Lines: cartLines(), CurrentTotal: 150, UserID: "user-1",
	})
	if !res.Accepted {
		t.Errorf("expected unlimited usage with cap 0, got reason %q", res.Reason)
	}
}

func TestEvaluate_BannerOnlyCampaign(t *testing.T) {
	banner := &domain.Campaign{ID: "camp-2", Title: domain.LocalizedText{English: "Summer"}}
	ev, _ := newTestEvaluator(banner)

	res, _ := ev.Evaluate(context.Background(), "", interfaces.CouponEvalInput{Now: mondayAt(12, 0)})
	if res.Accepted || res.Reason != interfaces.ReasonInvalid {
		t.Errorf("expected banner-only campaign to reject empty code, got %+v", res)
	}
}

// 2025-06-02 is a Monday.
func mondayAt(hour, minute int) time.Time {
	return time.Date(2025, 6, 2, hour, minute, 0, 0, time.UTC)
}
