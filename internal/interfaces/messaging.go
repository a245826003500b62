package interfaces

import (
	"context"
	"time"

	"github.com/jonasahlin/matbit/internal/domain"
)

// Messages published to RabbitMQ.
type OrderPlacedMessage struct {
	OrderID     string             `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	UserID      string             `json:"user_id"`
	ServiceType domain.ServiceType `json:"service_type"`
	FinalTotal  float64            `json:"final_total"`
	CouponCode  string             `json:"coupon_code,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
}

type StatusUpdateMessage struct {
	OrderID     string        `json:"order_id"`
	OrderNumber string        `json:"order_number"`
	OldStatus   domain.Status `json:"old_status"`
	NewStatus   domain.Status `json:"new_status"`
	ChangedBy   string        `json:"changed_by"`
	Timestamp   time.Time     `json:"timestamp"`
}

type CampaignEventMessage struct {
	CampaignID string    `json:"campaign_id"`
	Action     string    `json:"action"` // created, updated, deleted
	Timestamp  time.Time `json:"timestamp"`
}

type MessagePublisher interface {
	PublishOrderPlaced(ctx context.Context, msg OrderPlacedMessage) error
	PublishStatusUpdate(ctx context.Context, msg StatusUpdateMessage) error
	PublishCampaignEvent(ctx context.Context, msg CampaignEventMessage) error
}

type MessageConsumer interface {
	ConsumeNotifications(ctx context.Context, handler NotificationHandler) error
	ConsumeCampaignEvents(ctx context.Context, handler CampaignEventHandler) error
}

type (
	NotificationHandler  func(ctx context.Context, body []byte) error
	CampaignEventHandler func(ctx context.Context, body []byte) error
)
