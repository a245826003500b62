package interfaces

import (
	"context"

	"github.com/jonasahlin/matbit/internal/domain"
)

type MenuRepository interface {
	Create(ctx context.Context, item *domain.MenuItem) error
	Update(ctx context.Context, item *domain.MenuItem) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.MenuItem, error)
	ListAll(ctx context.Context) ([]*domain.MenuItem, error)
	ListAvailable(ctx context.Context) ([]*domain.MenuItem, error)
}

type CampaignRepository interface {
	Create(ctx context.Context, campaign *domain.Campaign) error
	Update(ctx context.Context, campaign *domain.Campaign) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.Campaign, error)
	// FindByCoupon matches the code case-insensitively.
	FindByCoupon(ctx context.Context, code string) (*domain.Campaign, error)
	ListAll(ctx context.Context) ([]*domain.Campaign, error)
	// ListAutoApply returns campaigns flagged for auto apply that carry a
	// time restriction.
	ListAutoApply(ctx context.Context) ([]*domain.Campaign, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	ListAll(ctx context.Context) ([]*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status, changedBy string) error
	GetStatusHistory(ctx context.Context, orderID string) ([]*domain.StatusLog, error)
	GenerateOrderNumber(ctx context.Context) (string, error)
}

type CouponUsageRepository interface {
	// CountForUser sums the recorded usages of one code by one user.
	CountForUser(ctx context.Context, userID, code string) (int, error)
	// RecordUse increments the usage counter, creating the row when it does
	// not exist yet. The increment is a single atomic statement.
	RecordUse(ctx context.Context, userID, code, campaignID string) error
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	ListAll(ctx context.Context) ([]*domain.User, error)
	SetActive(ctx context.Context, id string, active bool) error
	SetRole(ctx context.Context, id string, role domain.Role) error
	Delete(ctx context.Context, id string) error
}

type NewsRepository interface {
	Create(ctx context.Context, news *domain.News) error
	Update(ctx context.Context, news *domain.News) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]*domain.News, error)
	ListPublished(ctx context.Context) ([]*domain.News, error)
}

type ContactRepository interface {
	Get(ctx context.Context) (*domain.ContactInfo, error)
	Put(ctx context.Context, info *domain.ContactInfo) error
	CreateMessage(ctx context.Context, msg *domain.ContactMessage) error
	ListMessages(ctx context.Context) ([]*domain.ContactMessage, error)
	MarkMessageRead(ctx context.Context, id string) error
}
