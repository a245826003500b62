package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonasahlin/matbit/internal/adapter/logger"
	"github.com/jonasahlin/matbit/internal/app/cart"
	"github.com/jonasahlin/matbit/internal/app/coupon"
	"github.com/jonasahlin/matbit/internal/domain"
	"github.com/jonasahlin/matbit/internal/interfaces"
)

// Request carries the checkout choices the customer made.
type Request struct {
	SessionID     string
	UserID        string
	ServiceType   domain.ServiceType
	PaymentMethod domain.PaymentMethod
	Address       *domain.DeliveryAddress
}

// Service turns a cart into a persisted order. The order row is the source
// of truth; usage recording and the placed notification are best effort and
// never fail a checkout that already stored the order.
type Service struct {
	carts     *cart.Service
	evaluator interfaces.CouponEvaluator
	orders    interfaces.OrderRepository
	usages    interfaces.CouponUsageRepository
	publisher interfaces.MessagePublisher
	logger    logger.Logger
	now       func() time.Time
}

func NewService(carts *cart.Service, evaluator interfaces.CouponEvaluator, orders interfaces.OrderRepository, usages interfaces.CouponUsageRepository, publisher interfaces.MessagePublisher, logger logger.Logger) *Service {
	return &Service{
		carts:     carts,
		evaluator: evaluator,
		orders:    orders,
		usages:    usages,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// PlaceOrder snapshots the session's cart into an order, stores it, records
// the coupon usage and clears the cart.
func (s *Service) PlaceOrder(ctx context.Context, req Request) (*domain.Order, error) {
	c, err := s.carts.Get(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(c.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	if req.UserID != "" {
		c.UserID = req.UserID
	}

	applied := c.ActiveCoupon()
	if applied != nil {
		applied = s.recheckCoupon(ctx, c, applied)
	}
	items := snapshotItems(c.Lines, applied)

	order, err := domain.NewOrder(c.UserID, items, req.ServiceType, req.PaymentMethod, req.Address)
	if err != nil {
		return nil, err
	}
	order.ID = uuid.New().String()
	if applied != nil {
		order.AppliedCoupon = &domain.CouponSnapshot{
			CampaignID:         applied.ID,
			Code:               applied.CouponCode,
			DiscountType:       applied.DiscountType,
			DiscountPercentage: applied.DiscountPercentage,
			DiscountFixed:      applied.DiscountFixed,
		}
	}

	number, err := s.orders.GenerateOrderNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate order number: %w", err)
	}
	order.Number = number

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.recordUsage(ctx, order)
	s.announce(ctx, order)

	if err := s.carts.Clear(ctx, req.SessionID); err != nil {
		s.logger.Error("cart_clear_failed", "Failed to clear cart after checkout", "", map[string]interface{}{
			"session_id": req.SessionID,
			"order_id":   order.ID,
		}, err)
	}

	s.logger.Info("order_placed", "Order placed", "", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.Number,
		"final_total":  order.FinalTotal,
	})
	return order, nil
}

// snapshotItems freezes cart lines with the per-unit discount each one
// carries under the applied coupon.
func snapshotItems(lines []domain.CartLine, applied *domain.Campaign) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		price := coupon.PriceFor(line, lines, applied)
		items = append(items, domain.OrderItem{
			ItemID:          line.ItemID,
			Name:            line.Name,
			Volume:          line.Volume,
			UnitPrice:       line.UnitPrice,
			Quantity:        line.Quantity,
			AppliedDiscount: price.Discount,
		})
	}
	return items
}

// recheckCoupon replays the evaluation with the checkout's user attached. A
// coupon applied anonymously must not dodge the per-user usage cap, so a
// rejection here drops the discount from the order. An evaluator failure
// keeps the coupon: the order should not lose a legitimate discount to a
// transient lookup error.
func (s *Service) recheckCoupon(ctx context.Context, c *domain.Cart, applied *domain.Campaign) *domain.Campaign {
	res, err := s.evaluator.Evaluate(ctx, applied.CouponCode, interfaces.CouponEvalInput{
		Now:          s.now(),
		Lines:        c.Lines,
		CurrentTotal: c.RawTotal(),
		UserID:       c.UserID,
	})
	if err != nil {
		s.logger.Error("coupon_recheck_failed", "Failed to re-evaluate coupon at checkout", "", map[string]interface{}{
			"coupon_code": applied.CouponCode,
		}, err)
		return applied
	}
	if !res.Accepted {
		s.logger.Info("coupon_dropped_at_checkout", "Coupon no longer valid at checkout", "", map[string]interface{}{
			"coupon_code": applied.CouponCode,
			"reason":      string(res.Reason),
		})
		return nil
	}
	return res.Campaign
}

// recordUsage increments the coupon's per-user counter. A failure here is
// logged and swallowed: the order already exists and an uncounted usage
// beats a lost order.
func (s *Service) recordUsage(ctx context.Context, order *domain.Order) {
	if order.AppliedCoupon == nil || order.UserID == "" {
		return
	}
	if err := s.usages.RecordUse(ctx, order.UserID, order.AppliedCoupon.Code, order.AppliedCoupon.CampaignID); err != nil {
		s.logger.Error("coupon_usage_record_failed", "Failed to record coupon usage", "", map[string]interface{}{
			"order_id":    order.ID,
			"coupon_code": order.AppliedCoupon.Code,
		}, err)
	}
}

// announce publishes the placed notification. Also best effort.
func (s *Service) announce(ctx context.Context, order *domain.Order) {
	if s.publisher == nil {
		return
	}
	msg := interfaces.OrderPlacedMessage{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		UserID:      order.UserID,
		ServiceType: order.ServiceType,
		FinalTotal:  order.FinalTotal,
		Timestamp:   s.now(),
	}
	if order.AppliedCoupon != nil {
		msg.CouponCode = order.AppliedCoupon.Code
	}
	if err := s.publisher.PublishOrderPlaced(ctx, msg); err != nil {
		s.logger.Error("order_placed_publish_failed", "Failed to publish order placed message", "", map[string]interface{}{
			"order_id": order.ID,
		}, err)
	}
}

var ErrEmptyCart = errors.New("cart is empty")
