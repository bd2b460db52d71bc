package notification

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/pushgateway"
)

// Channel канал доставки уведомлений
type Channel interface {
	Name() string
	Send(ctx context.Context, event domain.NotificationEvent) error
}

// Metrics метрики доставки
type Metrics interface {
	ObserveNotification(channel string, err error)
}

// SubscriptionStore хранилище push-подписок
type SubscriptionStore interface {
	ListByEmail(ctx context.Context, businessID, email string) ([]domain.PushSubscription, error)
	Delete(ctx context.Context, id int64) error
}

// PushClient клиент push-шлюза
type PushClient interface {
	Send(ctx context.Context, msg *pushgateway.Message) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
