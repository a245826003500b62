package autoapply

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jonasahlin/matbit/internal/adapter/logger"
	"github.com/jonasahlin/matbit/internal/app/cart"
	"github.com/jonasahlin/matbit/internal/domain"
	"github.com/jonasahlin/matbit/internal/interfaces"
)

type fakeCampaignRepo struct {
	autoApply []*domain.Campaign
}

func (f *fakeCampaignRepo) Create(ctx context.Context, c *domain.Campaign) error { return nil }
func (f *fakeCampaignRepo) Update(ctx context.Context, c *domain.Campaign) error { return nil }
func (f *fakeCampaignRepo) Delete(ctx context.Context, id string) error          { return nil }
func (f *fakeCampaignRepo) FindByID(ctx context.Context, id string) (*domain.Campaign, error) {
	return nil, nil
}
func (f *fakeCampaignRepo) FindByCoupon(ctx context.Context, code string) (*domain.Campaign, error) {
	return nil, nil
}
func (f *fakeCampaignRepo) ListAll(ctx context.Context) ([]*domain.Campaign, error) {
	return nil, nil
}
func (f *fakeCampaignRepo) ListAutoApply(ctx context.Context) ([]*domain.Campaign, error) {
	return f.autoApply, nil
}

type fakeKV struct {
	data map[string]string
}

func newFakeKV() *fakeKV { return &fakeKV{data: map[string]string{}} }

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) { return f.data[key], nil }
func (f *fakeKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.data[key] = value
	return nil
}
func (f *fakeKV) Delete(ctx context.Context, key string) error {
	delete(f.data, key)
	return nil
}

var _ interfaces.KeyValueStore = (*fakeKV)(nil)

// 2025-06-02 is a Monday.
func mondayAt(hour, minute int) time.Time {
	return time.Date(2025, 6, 2, hour, minute, 0, 0, time.UTC)
}

func lunchCampaign() *domain.Campaign {
	return &domain.Campaign{
		ID:                 "camp-lunch",
		Title:              domain.LocalizedText{English: "Lunch deal"},
		CouponCode:         "LUNCH10",
		DiscountType:       domain.DiscountPercentage,
		DiscountPercentage: 10,
		HasTimeRestriction: true,
		StartTime:          "11:00",
		EndTime:            "14:00",
		DaysOfWeek:         []int{1, 2, 3, 4, 5},
		AutoApplyOnMenu:    true,
	}
}

func newTestSelector(repo *fakeCampaignRepo, kv *fakeKV, at time.Time) *Selector {
	s := NewSelector(repo, kv, logger.New("autoapply-test"))
	s.now = func() time.Time { return at }
	return s
}

func TestRecompute_PublishesCampaignInsideWindow(t *testing.T) {
	kv := newFakeKV()
	s := newTestSelector(&fakeCampaignRepo{autoApply: []*domain.Campaign{lunchCampaign()}}, kv, mondayAt(12, 0))

	if _, err := s.Recompute(context.Background()); err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	raw, ok := kv.data[cart.AutoApplyKey]
	if !ok {
		t.Fatal("expected campaign published under the auto-apply key")
	}
	var published domain.Campaign
	if err := json.Unmarshal([]byte(raw), &published); err != nil {
		t.Fatalf("published campaign does not decode: %v", err)
	}
	if published.ID != "camp-lunch" || published.CouponCode != "LUNCH10" {
		t.Errorf("unexpected published campaign %s/%s", published.ID, published.CouponCode)
	}
}

func TestRecompute_ClearsKeyOutsideWindow(t *testing.T) {
	kv := newFakeKV()
	kv.data[cart.AutoApplyKey] = "stale"
	s := newTestSelector(&fakeCampaignRepo{autoApply: []*domain.Campaign{lunchCampaign()}}, kv, mondayAt(15, 0))

	if _, err := s.Recompute(context.Background()); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if _, ok := kv.data[cart.AutoApplyKey]; ok {
		t.Error("expected the auto-apply key cleared outside the window")
	}
}

func TestRecompute_SkipsExpiredCampaign(t *testing.T) {
	expired := lunchCampaign()
	expired.EndDate = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	kv := newFakeKV()
	s := newTestSelector(&fakeCampaignRepo{autoApply: []*domain.Campaign{expired}}, kv, mondayAt(12, 0))

	if _, err := s.Recompute(context.Background()); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if _, ok := kv.data[cart.AutoApplyKey]; ok {
		t.Error("expected no publication for an expired campaign")
	}
}

func TestRecompute_FirstMatchWins(t *testing.T) {
	second := lunchCampaign()
	second.ID = "camp-second"
	second.CouponCode = "SECOND"

	kv := newFakeKV()
	repo := &fakeCampaignRepo{autoApply: []*domain.Campaign{lunchCampaign(), second}}
	s := newTestSelector(repo, kv, mondayAt(12, 0))

	if _, err := s.Recompute(context.Background()); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	var published domain.Campaign
	if err := json.Unmarshal([]byte(kv.data[cart.AutoApplyKey]), &published); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if published.ID != "camp-lunch" {
		t.Errorf("expected first candidate published, got %s", published.ID)
	}
}

func TestNextBoundary_WakesAtWindowEdge(t *testing.T) {
	// At 10:45 the lunch window opens in 15 minutes.
	wait := nextBoundary(mondayAt(10, 45), []*domain.Campaign{lunchCampaign()})
	if wait != 15*time.Minute {
		t.Errorf("expected 15m until the window opens, got %v", wait)
	}

	// At 13:59 the next edge is the 14:00 end minute.
	wait = nextBoundary(mondayAt(13, 59), []*domain.Campaign{lunchCampaign()})
	if wait != 1*time.Minute {
		t.Errorf("expected 1m until the end minute, got %v", wait)
	}

	// With no candidates the fallback interval caps the sleep.
	wait = nextBoundary(mondayAt(3, 0), nil)
	if wait != fallbackInterval {
		t.Errorf("expected fallback interval, got %v", wait)
	}
}

func TestCampaignEventHandler_TriggersRecompute(t *testing.T) {
	s := newTestSelector(&fakeCampaignRepo{}, newFakeKV(), mondayAt(12, 0))
	handler := s.CampaignEventHandler()

	body, _ := json.Marshal(interfaces.CampaignEventMessage{CampaignID: "camp-1", Action: "updated", Timestamp: mondayAt(12, 0)})
	if err := handler(context.Background(), body); err != nil {
		t.Fatalf("handler: %v", err)
	}

	select {
	case <-s.trigger:
	default:
		t.Error("expected a pending trigger after a campaign event")
	}

	if err := handler(context.Background(), []byte("{broken")); err == nil {
		t.Error("expected decode error for malformed event")
	}
}
