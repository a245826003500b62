package amqp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonasahlin/matbit/internal/adapter/logger"
	"github.com/jonasahlin/matbit/internal/interfaces"
)

// NotificationHandler prints order notifications to the console. Both order
// placed and status update messages arrive on the same fanout; a status
// update is the one carrying a new_status.
type NotificationHandler struct {
	logger logger.Logger
}

func NewNotificationHandler(logger logger.Logger) *NotificationHandler {
	return &NotificationHandler{logger: logger}
}

func (h *NotificationHandler) HandleNotification(ctx context.Context, body []byte) error {
	var probe struct {
		NewStatus string `json:"new_status"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse notification", "", nil, err)
		return err
	}

	if probe.NewStatus != "" {
		return h.handleStatusUpdate(body)
	}
	return h.handleOrderPlaced(body)
}

func (h *NotificationHandler) handleStatusUpdate(body []byte) error {
	var msg interfaces.StatusUpdateMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse status update", "", nil, err)
		return err
	}

	h.logger.Debug("notification_received", fmt.Sprintf("Received status update for order %s", msg.OrderNumber),
		msg.OrderNumber, map[string]interface{}{
			"order_number": msg.OrderNumber,
			"new_status":   msg.NewStatus,
		})

	fmt.Printf("Notification for order %s: status changed from '%s' to '%s' by %s\n",
		msg.OrderNumber, msg.OldStatus, msg.NewStatus, msg.ChangedBy)
	return nil
}

func (h *NotificationHandler) handleOrderPlaced(body []byte) error {
	var msg interfaces.OrderPlacedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse order placed message", "", nil, err)
		return err
	}

	h.logger.Debug("notification_received", fmt.Sprintf("Received order placed for %s", msg.OrderNumber),
		msg.OrderNumber, map[string]interface{}{
			"order_number": msg.OrderNumber,
			"final_total":  msg.FinalTotal,
		})

	coupon := ""
	if msg.CouponCode != "" {
		coupon = fmt.Sprintf(" (coupon %s)", msg.CouponCode)
	}
	fmt.Printf("New order %s: %s for %.2f kr%s\n",
		msg.OrderNumber, msg.ServiceType, msg.FinalTotal, coupon)
	return nil
}
