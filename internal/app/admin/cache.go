package admin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonasahlin/matbit/internal/adapter/logger"
	"github.com/jonasahlin/matbit/internal/domain"
	"github.com/jonasahlin/matbit/internal/interfaces"
)

type FetchStatus string

const (
	StatusIdle      FetchStatus = "idle"
	StatusLoading   FetchStatus = "loading"
	StatusSucceeded FetchStatus = "succeeded"
	StatusFailed    FetchStatus = "failed"
)

// cacheState tracks one dataset's fetch lifecycle.
type cacheState struct {
	status      FetchStatus
	err         error
	lastFetched time.Time
}

func (s *cacheState) stale(now time.Time, ttl time.Duration) bool {
	switch s.status {
	case StatusIdle, StatusFailed:
		return true
	case StatusLoading:
		return false
	default:
		return now.Sub(s.lastFetched) > ttl
	}
}

// Service is the admin back-office layer. Users, orders and foods are held
// in a TTL cache so repeated dashboard loads do not hammer the database;
// every mutation writes through to the repository and then patches the
// cached copy in place instead of refetching.
type Service struct {
	users     interfaces.UserRepository
	orders    interfaces.OrderRepository
	menu      interfaces.MenuRepository
	campaigns interfaces.CampaignRepository
	publisher interfaces.MessagePublisher
	logger    logger.Logger
	ttl       time.Duration
	now       func() time.Time

	mu           sync.Mutex
	userState    cacheState
	orderState   cacheState
	foodState    cacheState
	cachedUsers  []*domain.User
	cachedOrders []*domain.Order
	cachedFoods  []*domain.MenuItem
}

func NewService(users interfaces.UserRepository, orders interfaces.OrderRepository, menu interfaces.MenuRepository, campaigns interfaces.CampaignRepository, publisher interfaces.MessagePublisher, logger logger.Logger, ttl time.Duration) *Service {
	return &Service{
		users:     users,
		orders:    orders,
		menu:      menu,
		campaigns: campaigns,
		publisher: publisher,
		logger:    logger,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Load brings the cached datasets up to date. Without force only idle,
// failed or expired entries are refetched.
func (s *Service) Load(ctx context.Context, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var errs []error

	if force || s.userState.stale(now, s.ttl) {
		s.userState.status = StatusLoading
		users, err := s.users.ListAll(ctx)
		s.finish(&s.userState, err)
		if err == nil {
			s.cachedUsers = users
		} else {
			errs = append(errs, fmt.Errorf("users: %w", err))
		}
	}

	if force || s.orderState.stale(now, s.ttl) {
		s.orderState.status = StatusLoading
		orders, err := s.orders.ListAll(ctx)
		s.finish(&s.orderState, err)
		if err == nil {
			s.cachedOrders = orders
		} else {
			errs = append(errs, fmt.Errorf("orders: %w", err))
		}
	}

	if force || s.foodState.stale(now, s.ttl) {
		s.foodState.status = StatusLoading
		foods, err := s.menu.ListAll(ctx)
		s.finish(&s.foodState, err)
		if err == nil {
			s.cachedFoods = foods
		} else {
			errs = append(errs, fmt.Errorf("foods: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (s *Service) finish(state *cacheState, err error) {
	state.err = err
	state.lastFetched = s.now()
	if err != nil {
		state.status = StatusFailed
		return
	}
	state.status = StatusSucceeded
}

// Users returns the cached user list.
func (s *Service) Users() []*domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cachedUsers
}

// Orders returns the cached order list.
func (s *Service) Orders() []*domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cachedOrders
}

// Foods returns the cached menu list, including unavailable items.
func (s *Service) Foods() []*domain.MenuItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cachedFoods
}

// UpdateOrderStatus persists the new status and patches the cached order.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID string, status domain.Status, changedBy string) error {
	if !domain.ValidStatus(status) {
		return fmt.Errorf("invalid order status %q", status)
	}

	var old domain.Status
	s.mu.Lock()
	for _, o := range s.cachedOrders {
		if o.ID == orderID {
			old = o.Status
			break
		}
	}
	s.mu.Unlock()

	if err := s.orders.UpdateStatus(ctx, orderID, status, changedBy); err != nil {
		return err
	}

	s.mu.Lock()
	for _, o := range s.cachedOrders {
		if o.ID == orderID {
			o.Status = status
			o.UpdatedAt = s.now()
			break
		}
	}
	s.mu.Unlock()

	s.notifyStatusChange(ctx, orderID, old, status, changedBy)
	return nil
}

func (s *Service) notifyStatusChange(ctx context.Context, orderID string, old, status domain.Status, changedBy string) {
	if s.publisher == nil {
		return
	}
	var number string
	s.mu.Lock()
	for _, o := range s.cachedOrders {
		if o.ID == orderID {
			number = o.Number
			break
		}
	}
	s.mu.Unlock()

	msg := interfaces.StatusUpdateMessage{
		OrderID:     orderID,
		OrderNumber: number,
		OldStatus:   old,
		NewStatus:   status,
		ChangedBy:   changedBy,
		Timestamp:   s.now(),
	}
	if err := s.publisher.PublishStatusUpdate(ctx, msg); err != nil {
		s.logger.Error("status_update_publish_failed", "Failed to publish status update", "", map[string]interface{}{
			"order_id": orderID,
		}, err)
	}
}

// SetUserActive persists and patches the cached user's active flag.
func (s *Service) SetUserActive(ctx context.Context, userID string, active bool) error {
	if err := s.users.SetActive(ctx, userID, active); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.cachedUsers {
		if u.ID == userID {
			u.Active = active
			break
		}
	}
	return nil
}

// SetUserRole persists and patches the cached user's role.
func (s *Service) SetUserRole(ctx context.Context, userID string, role domain.Role) error {
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return fmt.Errorf("invalid role %q", role)
	}
	if err := s.users.SetRole(ctx, userID, role); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.cachedUsers {
		if u.ID == userID {
			u.Role = role
			break
		}
	}
	return nil
}

// DeleteUser removes the user remotely and from the cache.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.cachedUsers {
		if u.ID == userID {
			s.cachedUsers = append(s.cachedUsers[:i], s.cachedUsers[i+1:]...)
			break
		}
	}
	return nil
}

// CreateFood validates, persists and appends the item to the cache.
func (s *Service) CreateFood(ctx context.Context, item *domain.MenuItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if err := s.menu.Create(ctx, item); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cachedFoods = append(s.cachedFoods, item)
	return nil
}

// UpdateFood validates, persists and patches the cached item.
func (s *Service) UpdateFood(ctx context.Context, item *domain.MenuItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if err := s.menu.Update(ctx, item); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.cachedFoods {
		if f.ID == item.ID {
			s.cachedFoods[i] = item
			break
		}
	}
	return nil
}

// DeleteFood removes the item remotely and from the cache.
func (s *Service) DeleteFood(ctx context.Context, id string) error {
	if err := s.menu.Delete(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.cachedFoods {
		if f.ID == id {
			s.cachedFoods = append(s.cachedFoods[:i], s.cachedFoods[i+1:]...)
			break
		}
	}
	return nil
}

// CreateCampaign persists the campaign and announces the change so the
// auto-apply selector recomputes.
func (s *Service) CreateCampaign(ctx context.Context, campaign *domain.Campaign) error {
	if err := campaign.Validate(); err != nil {
		return err
	}
	if err := s.campaigns.Create(ctx, campaign); err != nil {
		return err
	}
	s.announceCampaign(ctx, campaign.ID, "created")
	return nil
}

// UpdateCampaign persists the campaign and announces the change.
func (s *Service) UpdateCampaign(ctx context.Context, campaign *domain.Campaign) error {
	if err := campaign.Validate(); err != nil {
		return err
	}
	if err := s.campaigns.Update(ctx, campaign); err != nil {
		return err
	}
	s.announceCampaign(ctx, campaign.ID, "updated")
	return nil
}

// DeleteCampaign removes the campaign and announces the change.
func (s *Service) DeleteCampaign(ctx context.Context, id string) error {
	if err := s.campaigns.Delete(ctx, id); err != nil {
		return err
	}
	s.announceCampaign(ctx, id, "deleted")
	return nil
}

func (s *Service) announceCampaign(ctx context.Context, campaignID, action string) {
	if s.publisher == nil {
		return
	}
	msg := interfaces.CampaignEventMessage{
		CampaignID: campaignID,
		Action:     action,
		Timestamp:  s.now(),
	}
	if err := s.publisher.PublishCampaignEvent(ctx, msg); err != nil {
		s.logger.Error("campaign_event_publish_failed", "Failed to publish campaign event", "", map[string]interface{}{
			"campaign_id": campaignID,
			"action":      action,
		}, err)
	}
}
