package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonasahlin/matbit/internal/adapter/logger"
	"github.com/jonasahlin/matbit/internal/app/coupon"
	"github.com/jonasahlin/matbit/internal/domain"
	"github.com/jonasahlin/matbit/internal/interfaces"
)

// AutoApplyKey is where the campaign selector publishes the campaign that
// should silently attach to new carts.
const AutoApplyKey = "campaign:auto-apply"

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

// Service is the per-session cart aggregate. Totals and the applied
// coupon's state are recomputed on every mutation rather than assuming any
// prior validity, since campaign edits can land at any time.
type Service struct {
	menu      interfaces.MenuRepository
	evaluator interfaces.CouponEvaluator
	kv        interfaces.KeyValueStore
	logger    logger.Logger
	ttl       time.Duration
	now       func() time.Time
}

func NewService(menu interfaces.MenuRepository, evaluator interfaces.CouponEvaluator, kv interfaces.KeyValueStore, logger logger.Logger, ttl time.Duration) *Service {
	return &Service{
		menu:      menu,
		evaluator: evaluator,
		kv:        kv,
		logger:    logger,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Get loads the session's cart, creating an empty one when nothing is
// persisted. A cart without a coupon silently picks up the published
// auto-apply campaign after re-validating it through the full evaluator.
func (s *Service) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if cart.Coupon == nil {
		s.adoptAutoApply(ctx, cart)
	}

	s.refresh(cart)
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem snapshots the menu item into a cart line. Adding the same
// item/volume again merges into the existing line.
func (s *Service) AddItem(ctx context.Context, sessionID, itemID string, volume domain.Volume, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, errors.New("quantity must be at least 1")
	}

	item, err := s.menu.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.Available {
		return nil, ErrItemUnavailable
	}

	price, ok := item.Price.Resolve(volume)
	if !ok {
		return nil, fmt.Errorf("item %s has no %s volume", itemID, volume)
	}

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if i := cart.FindLine(itemID, volume); i >= 0 {
		cart.Lines[i].Quantity += quantity
		cart.Lines[i].Recalculate()
	} else {
		line := domain.CartLine{
			ItemID:      item.ID,
			Name:        item.Name,
			Description: item.Description,
			Image:       item.Image,
			Volume:      volume,
			UnitPrice:   price,
			Quantity:    quantity,
		}
		line.Recalculate()
		cart.Lines = append(cart.Lines, line)
	}

	s.refresh(cart)
	return cart, s.save(ctx, cart)
}

// UpdateQuantity sets a line's quantity; zero removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, itemID string, volume domain.Volume, quantity int) (*domain.Cart, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	i := cart.FindLine(itemID, volume)
	if i < 0 {
		return nil, ErrLineNotFound
	}

	if quantity <= 0 {
		cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
	} else {
		cart.Lines[i].Quantity = quantity
		cart.Lines[i].Recalculate()
	}

	s.refresh(cart)
	return cart, s.save(ctx, cart)
}

// RemoveLine drops a line from the cart.
func (s *Service) RemoveLine(ctx context.Context, sessionID, itemID string, volume domain.Volume) (*domain.Cart, error) {
	return s.UpdateQuantity(ctx, sessionID, itemID, volume, 0)
}

// Clear throws the persisted cart away.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.kv.Delete(ctx, cartKey(sessionID))
}

// ApplyCoupon runs the interactive evaluation and attaches the campaign on
// acceptance. A non-empty userID sticks to the cart so the per-user usage
// cap counts against the signed-in user. The rejection result is returned
// for the UI either way.
func (s *Service) ApplyCoupon(ctx context.Context, sessionID, userID, code string) (*domain.Cart, interfaces.CouponEvalResult, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, interfaces.CouponEvalResult{}, err
	}
	if userID != "" {
		cart.UserID = userID
	}

	res, err := s.evaluator.Evaluate(ctx, code, interfaces.CouponEvalInput{
		Now:          s.now(),
		Lines:        cart.Lines,
		CurrentTotal: cart.RawTotal(),
		UserID:       cart.UserID,
	})
	if err != nil {
		return nil, interfaces.CouponEvalResult{}, err
	}

	if res.Accepted {
		cart.Coupon = res.Campaign
		cart.CouponState = domain.CouponStateActive
		cart.DisabledReason = ""
	}

	s.refresh(cart)
	if err := s.save(ctx, cart); err != nil {
		return nil, interfaces.CouponEvalResult{}, err
	}
	return cart, res, nil
}

// RemoveCoupon is the manual removal: unlike a soft disable it clears the
// coupon record and every related bit of state.
func (s *Service) RemoveCoupon(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.Coupon = nil
	cart.CouponState = domain.CouponStateNone
	cart.DisabledReason = ""

	s.refresh(cart)
	return cart, s.save(ctx, cart)
}

// SetUser attaches the signed-in user to the session's cart.
func (s *Service) SetUser(ctx context.Context, sessionID, userID string) (*domain.Cart, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cart.UserID = userID
	s.refresh(cart)
	return cart, s.save(ctx, cart)
}

// refresh recomputes derived state: line totals, the applied coupon's
// active/disabled state, and the cart totals. The coupon record survives a
// disable so it re-activates by itself when the cart comes back into
// compliance.
func (s *Service) refresh(cart *domain.Cart) {
	for i := range cart.Lines {
		cart.Lines[i].Recalculate()
	}
	subtotal := cart.RawTotal()
	cart.Subtotal = domain.Round2(subtotal)

	if cart.Coupon == nil {
		cart.CouponState = domain.CouponStateNone
		cart.DisabledReason = ""
	} else {
		switch {
		case subtotal < cart.Coupon.MinimumOrderAmount:
			cart.CouponState = domain.CouponStateDisabled
			cart.DisabledReason = string(interfaces.ReasonMinimumOrder)
		case len(cart.Lines) > 0 && !anyLineEligible(cart.Coupon, cart.Lines):
			cart.CouponState = domain.CouponStateDisabled
			cart.DisabledReason = string(interfaces.ReasonNotEligible)
		default:
			cart.CouponState = domain.CouponStateActive
			cart.DisabledReason = ""
		}
	}

	cart.Total, cart.TotalDiscount = coupon.Totals(cart.Lines, cart.ActiveCoupon())
}

// adoptAutoApply reads the published campaign and attaches it when the full
// evaluation (minus the minimum-order check) still passes. Failures are
// silent: auto-apply is a convenience, not a user action.
func (s *Service) adoptAutoApply(ctx context.Context, cart *domain.Cart) {
	raw, err := s.kv.Get(ctx, AutoApplyKey)
	if err != nil || raw == "" {
		return
	}

	var published domain.Campaign
	if err := json.Unmarshal([]byte(raw), &published); err != nil {
		s.logger.Error("auto_apply_decode_failed", "Failed to decode published campaign", "", nil, err)
		return
	}
	if !published.HasCoupon() {
		return
	}

	res, err := s.evaluator.Evaluate(ctx, published.CouponCode, interfaces.CouponEvalInput{
		Now:              s.now(),
		Lines:            cart.Lines,
		CurrentTotal:     cart.RawTotal(),
		UserID:           cart.UserID,
		SkipMinimumOrder: true,
	})
	if err != nil || !res.Accepted {
		return
	}

	cart.Coupon = res.Campaign
	cart.CouponState = domain.CouponStateActive
	s.logger.Debug("auto_apply_adopted", "Auto-apply campaign attached to cart", "", map[string]interface{}{
		"session_id":  cart.SessionID,
		"campaign_id": res.Campaign.ID,
	})
}

func (s *Service) load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	raw, err := s.kv.Get(ctx, cartKey(sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if raw == "" {
		return &domain.Cart{SessionID: sessionID, CouponState: domain.CouponStateNone}, nil
	}

	var cart domain.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	cart.SessionID = sessionID
	return &cart, nil
}

func (s *Service) save(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.kv.Set(ctx, cartKey(cart.SessionID), string(data), s.ttl); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}

func anyLineEligible(campaign *domain.Campaign, lines []domain.CartLine) bool {
	for _, line := range lines {
		if campaign.EligibleDish(line.ItemID) {
			return true
		}
	}
	return false
}

var (
	ErrItemUnavailable = errors.New("menu item is not available")
	ErrLineNotFound    = errors.New("cart line not found")
)
