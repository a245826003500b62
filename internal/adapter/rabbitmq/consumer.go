package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/jonasahlin/matbit/internal/adapter/logger"
	"github.com/jonasahlin/matbit/internal/interfaces"
)

const reconnectDelay = 5 * time.Second

type consumer struct {
	conn   Connection
	logger logger.Logger
}

func NewConsumer(conn Connection, logger logger.Logger) interfaces.MessageConsumer {
	return &consumer{conn: conn, logger: logger}
}

// ConsumeNotifications subscribes to the notifications fanout on a
// temporary exclusive queue and keeps reconnecting until the context ends.
func (c *consumer) ConsumeNotifications(ctx context.Context, handler interfaces.NotificationHandler) error {
	return c.consumeLoop(ctx, "notifications", func(ctx context.Context) error {
		return c.consumeFanout(ctx, notificationsExchange, "fanout", "", handler)
	})
}

// ConsumeCampaignEvents subscribes to every campaign.* event the same way.
func (c *consumer) ConsumeCampaignEvents(ctx context.Context, handler interfaces.CampaignEventHandler) error {
	return c.consumeLoop(ctx, "campaign events", func(ctx context.Context) error {
		return c.consumeFanout(ctx, campaignExchange, "topic", "campaign.#", interfaces.NotificationHandler(handler))
	})
}

func (c *consumer) consumeLoop(ctx context.Context, what string, consume func(context.Context) error) error {
	for {
		err := consume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			return nil
		}

		c.logger.Error("consumer_disconnected", fmt.Sprintf("Consumer for %s disconnected, reconnecting", what), "", nil, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *consumer) consumeFanout(ctx context.Context, exchange, kind, bindKey string, handler interfaces.NotificationHandler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	closeChan := ch.NotifyClose()

	if err := ch.ExchangeDeclare(exchange, kind, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	// Temporary exclusive queue: subscribers are stateless, a missed
	// message while disconnected is recovered on the next recompute.
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, bindKey, exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	msgs, err := ch.Consume(q.Name, "", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-closeChan:
			if err != nil {
				return fmt.Errorf("channel closed: %w", err)
			}
			return fmt.Errorf("channel closed gracefully")

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("messages channel closed")
			}
			if err := handler(ctx, msg.Body); err != nil {
				c.logger.Error("message_handler_failed", "Message handler returned an error", "", map[string]interface{}{
					"exchange": exchange,
				}, err)
			}
		}
	}
}
