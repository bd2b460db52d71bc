package subscriptions

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// SubscriptionRepository интерфейс репозитория push-подписок
type SubscriptionRepository interface {
	Upsert(ctx context.Context, sub *domain.PushSubscription) (*domain.PushSubscription, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
