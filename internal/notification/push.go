package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/pushgateway"
)

const pushTTLSeconds = 3600

// PushChannel web-push на все браузеры клиента
type PushChannel struct {
	subscriptions SubscriptionStore
	client        PushClient
	location      *time.Location
	logger        Logger
}

// NewPushChannel создает push-канал
func NewPushChannel(subscriptions SubscriptionStore, client PushClient, location *time.Location, logger Logger) *PushChannel {
	return &PushChannel{
		subscriptions: subscriptions,
		client:        client,
		location:      location,
		logger:        logger,
	}
}

func (c *PushChannel) Name() string { return "push" }

// Send рассылает сообщение по подпискам клиента
// Отозванные подписки удаляются и ошибкой не считаются
func (c *PushChannel) Send(ctx context.Context, event domain.NotificationEvent) error {
	subs, err := c.subscriptions.ListByEmail(ctx, event.Booking.BusinessID, event.Booking.CustomerEmail)
	if err != nil {
		return fmt.Errorf("notification: list subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return nil
	}

	title, body, err := renderMessage(event, c.location)
	if err != nil {
		return err
	}

	var errs []error
	for _, sub := range subs {
		err := c.client.Send(ctx, &pushgateway.Message{
			Subscription: sub.Subscription,
			Title:        title,
			Body:         body,
			TTL:          pushTTLSeconds,
		})
		switch {
		case err == nil:
		case errors.Is(err, pushgateway.ErrSubscriptionExpired):
			c.logger.Info("push: subscription id=%d expired, deleting", sub.ID)
			if delErr := c.subscriptions.Delete(ctx, sub.ID); delErr != nil {
				c.logger.Warn("push: failed to delete subscription id=%d: %v", sub.ID, delErr)
			}
		default:
			errs = append(errs, fmt.Errorf("subscription %d: %w", sub.ID, err))
		}
	}

	return errors.Join(errs...)
}
