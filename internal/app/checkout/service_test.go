package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonasahlin/matbit/internal/adapter/logger"
	"github.com/jonasahlin/matbit/internal/app/cart"
	"github.com/jonasahlin/matbit/internal/domain"
	"github.com/jonasahlin/matbit/internal/interfaces"
)

type fakeMenuRepo struct {
	items map[string]*domain.MenuItem
}

func (f *fakeMenuRepo) Create(ctx context.Context, item *domain.MenuItem) error { return nil }
func (f *fakeMenuRepo) Update(ctx context.Context, item *domain.MenuItem) error { return nil }
func (f *fakeMenuRepo) Delete(ctx context.Context, id string) error             { return nil }
func (f *fakeMenuRepo) FindByID(ctx context.Context, id string) (*domain.MenuItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return item, nil
}
func (f *fakeMenuRepo) ListAll(ctx context.Context) ([]*domain.MenuItem, error)       { return nil, nil }
func (f *fakeMenuRepo) ListAvailable(ctx context.Context) ([]*domain.MenuItem, error) { return nil, nil }

type fakeKV struct {
	data map[string]string
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) { return f.data[key], nil }
func (f *fakeKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.data[key] = value
	return nil
}
func (f *fakeKV) Delete(ctx context.Context, key string) error {
	delete(f.data, key)
	return nil
}

type fakeEvaluator struct {
	results map[string]interfaces.CouponEvalResult
	atCap   map[string]bool
	err     error
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, code string, input interfaces.CouponEvalInput) (interfaces.CouponEvalResult, error) {
	if f.err != nil {
		return interfaces.CouponEvalResult{}, f.err
	}
	if f.atCap[input.UserID] {
		return interfaces.CouponEvalResult{Reason: interfaces.ReasonUsageLimit}, nil
	}
	if res, ok := f.results[code]; ok {
		return res, nil
	}
	return interfaces.CouponEvalResult{Reason: interfaces.ReasonInvalid}, nil
}

type fakeOrderRepo struct {
	created *domain.Order
}

func (f *fakeOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	f.created = o
	return nil
}
func (f *fakeOrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return nil, nil
}
func (f *fakeOrderRepo) ListAll(ctx context.Context) ([]*domain.Order, error) { return nil, nil }
func (f *fakeOrderRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	return nil, nil
}
func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, id string, status domain.Status, changedBy string) error {
	return nil
}
func (f *fakeOrderRepo) GetStatusHistory(ctx context.Context, orderID string) ([]*domain.StatusLog, error) {
	return nil, nil
}
func (f *fakeOrderRepo) GenerateOrderNumber(ctx context.Context) (string, error) {
	return "ORD_20250602_007", nil
}

type fakeUsageRepo struct {
	recorded []string
	err      error
}

func (f *fakeUsageRepo) CountForUser(ctx context.Context, userID, code string) (int, error) {
	return 0, nil
}
func (f *fakeUsageRepo) RecordUse(ctx context.Context, userID, code, campaignID string) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, userID+"|"+code)
	return nil
}

type fakePublisher struct {
	placed []interfaces.OrderPlacedMessage
	err    error
}

func (f *fakePublisher) PublishOrderPlaced(ctx context.Context, msg interfaces.OrderPlacedMessage) error {
	if f.err != nil {
		return f.err
	}
	f.placed = append(f.placed, msg)
	return nil
}
func (f *fakePublisher) PublishStatusUpdate(ctx context.Context, msg interfaces.StatusUpdateMessage) error {
	return nil
}
func (f *fakePublisher) PublishCampaignEvent(ctx context.Context, msg interfaces.CampaignEventMessage) error {
	return nil
}

type fixture struct {
	svc    *Service
	carts  *cart.Service
	eval   *fakeEvaluator
	kv     *fakeKV
	orders *fakeOrderRepo
	usages *fakeUsageRepo
	pub    *fakePublisher
}

func newFixture() *fixture {
	menu := &fakeMenuRepo{items: map[string]*domain.MenuItem{
		"dish-1": {
			ID:        "dish-1",
			Name:      domain.LocalizedText{English: "Margherita"},
			Price:     domain.NewPrice(100),
			Available: true,
		},
		"dish-2": {
			ID:        "dish-2",
			Name:      domain.LocalizedText{English: "Kebab"},
			Price:     domain.NewPrice(50),
			Available: true,
		},
	}}
	eval := &fakeEvaluator{results: map[string]interfaces.CouponEvalResult{
		"LUNCH10": {Accepted: true, Campaign: &domain.Campaign{
			ID:                 "camp-1",
			CouponCode:         "LUNCH10",
			DiscountType:       domain.DiscountPercentage,
			DiscountPercentage: 10,
		}},
	}}
	kv := &fakeKV{data: map[string]string{}}
	log := logger.New("checkout-test")
	carts := cart.NewService(menu, eval, kv, log, time.Hour)

	f := &fixture{
		carts:  carts,
		eval:   eval,
		kv:     kv,
		orders: &fakeOrderRepo{},
		usages: &fakeUsageRepo{},
		pub:    &fakePublisher{},
	}
	f.svc = NewService(carts, eval, f.orders, f.usages, f.pub, log)
	return f
}

func (f *fixture) fillCart(t *testing.T, withCoupon bool) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.carts.AddItem(ctx, "sess-1", "dish-1", domain.VolumeNormal, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := f.carts.AddItem(ctx, "sess-1", "dish-2", domain.VolumeNormal, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if withCoupon {
		if _, _, err := f.carts.ApplyCoupon(ctx, "sess-1", "", "LUNCH10"); err != nil {
			t.Fatalf("ApplyCoupon: %v", err)
		}
	}
}

func TestPlaceOrder_SnapshotsCartWithCoupon(t *testing.T) {
	f := newFixture()
	f.fillCart(t, true)

	order, err := f.svc.PlaceOrder(context.Background(), Request{
		SessionID:     "sess-1",
		UserID:        "user-1",
		ServiceType:   domain.ServiceTakeout,
		PaymentMethod: domain.PaymentCard,
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if order.Number != "ORD_20250602_007" {
		t.Errorf("unexpected order number %s", order.Number)
	}
	if order.ID == "" {
		t.Error("expected generated order id")
	}
	if order.OriginalTotal != 200 || order.TotalDiscount != 20 || order.FinalTotal != 180 {
		t.Errorf("unexpected totals %v/%v/%v", order.OriginalTotal, order.TotalDiscount, order.FinalTotal)
	}
	if order.AppliedCoupon == nil || order.AppliedCoupon.Code != "LUNCH10" {
		t.Fatal("expected coupon snapshot on the order")
	}
	for _, item := range order.Items {
		expected := item.UnitPrice / 10
		if item.AppliedDiscount != expected {
			t.Errorf("item %s: expected per-unit discount %v, got %v", item.ItemID, expected, item.AppliedDiscount)
		}
	}

	if f.orders.created == nil {
		t.Fatal("expected order persisted")
	}
	if len(f.usages.recorded) != 1 || f.usages.recorded[0] != "user-1|LUNCH10" {
		t.Errorf("expected one usage recorded, got %v", f.usages.recorded)
	}
	if len(f.pub.placed) != 1 || f.pub.placed[0].CouponCode != "LUNCH10" {
		t.Errorf("expected placed message with coupon, got %v", f.pub.placed)
	}
	if _, ok := f.kv.data["cart:sess-1"]; ok {
		t.Error("expected cart cleared after checkout")
	}
}

func TestPlaceOrder_WithoutCoupon(t *testing.T) {
	f := newFixture()
	f.fillCart(t, false)

	order, err := f.svc.PlaceOrder(context.Background(), Request{
		SessionID:     "sess-1",
		ServiceType:   domain.ServiceDineIn,
		PaymentMethod: domain.PaymentCash,
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if order.AppliedCoupon != nil {
		t.Error("expected no coupon snapshot")
	}
	if order.FinalTotal != 200 {
		t.Errorf("expected total 200, got %v", order.FinalTotal)
	}
	if len(f.usages.recorded) != 0 {
		t.Errorf("expected no usage recorded, got %v", f.usages.recorded)
	}
}

func TestPlaceOrder_EmptyCartRejected(t *testing.T) {
	f := newFixture()
	_, err := f.svc.PlaceOrder(context.Background(), Request{
		SessionID:     "sess-1",
		ServiceType:   domain.ServiceDineIn,
		PaymentMethod: domain.PaymentCash,
	})
	if !errors.Is(err, ErrEmptyCart) {
		t.Errorf("expected ErrEmptyCart, got %v", err)
	}
}

func TestPlaceOrder_HomeDeliveryNeedsAddress(t *testing.T) {
	f := newFixture()
	f.fillCart(t, false)

	_, err := f.svc.PlaceOrder(context.Background(), Request{
		SessionID:     "sess-1",
		ServiceType:   domain.ServiceHomeDelivery,
		PaymentMethod: domain.PaymentCard,
	})
	if !errors.Is(err, domain.ErrAddressRequired) {
		t.Errorf("expected ErrAddressRequired, got %v", err)
	}
}

func TestPlaceOrder_UserAtUsageCapGetsNoDiscount(t *testing.T) {
	f := newFixture()
	f.fillCart(t, true)
	// The code was applied on an anonymous cart; the user who signs the
	// order has already exhausted the coupon.
	f.eval.atCap = map[string]bool{"user-1": true}

	order, err := f.svc.PlaceOrder(context.Background(), Request{
		SessionID:     "sess-1",
		UserID:        "user-1",
		ServiceType:   domain.ServiceTakeout,
		PaymentMethod: domain.PaymentCard,
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if order.AppliedCoupon != nil {
		t.Error("expected coupon dropped at checkout")
	}
	if order.TotalDiscount != 0 || order.FinalTotal != 200 {
		t.Errorf("expected undiscounted totals, got %v/%v", order.TotalDiscount, order.FinalTotal)
	}
	if len(f.usages.recorded) != 0 {
		t.Errorf("expected no usage recorded, got %v", f.usages.recorded)
	}
}

func TestPlaceOrder_RecheckFailureKeepsCoupon(t *testing.T) {
	f := newFixture()
	f.fillCart(t, true)
	f.eval.err = errors.New("lookup timeout")

	order, err := f.svc.PlaceOrder(context.Background(), Request{
		SessionID:     "sess-1",
		UserID:        "user-1",
		ServiceType:   domain.ServiceTakeout,
		PaymentMethod: domain.PaymentCard,
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if order.AppliedCoupon == nil || order.FinalTotal != 180 {
		t.Errorf("expected discount kept on recheck failure, got %+v", order)
	}
}

func TestPlaceOrder_UsageFailureDoesNotFailCheckout(t *testing.T) {
	f := newFixture()
	f.usages.err = errors.New("connection reset")
	f.fillCart(t, true)

	order, err := f.svc.PlaceOrder(context.Background(), Request{
		SessionID:     "sess-1",
		UserID:        "user-1",
		ServiceType:   domain.ServiceTakeout,
		PaymentMethod: domain.PaymentCard,
	})
	if err != nil {
		t.Fatalf("expected checkout to succeed despite usage failure, got %v", err)
	}
	if order == nil || f.orders.created == nil {
		t.Fatal("expected order persisted")
	}
}

func TestPlaceOrder_PublishFailureDoesNotFailCheckout(t *testing.T) {
	f := newFixture()
	f.pub.err = errors.New("broker down")
	f.fillCart(t, true)

	if _, err := f.svc.PlaceOrder(context.Background(), Request{
		SessionID:     "sess-1",
		UserID:        "user-1",
		ServiceType:   domain.ServiceTakeout,
		PaymentMethod: domain.PaymentCard,
	}); err != nil {
		t.Fatalf("expected checkout to succeed despite publish failure, got %v", err)
	}
}
