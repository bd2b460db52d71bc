package bookings

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByCustomer(ctx context.Context, businessID, email string) ([]*domain.Booking, error)
	Cancel(ctx context.Context, id string) error
	CompleteElapsed(ctx context.Context, now time.Time) (int64, error)
	ListPendingReminders(ctx context.Context, from, to time.Time) ([]*domain.Booking, error)
	MarkReminderSent(ctx context.Context, id string, sentAt time.Time) error
}

// TransactionManager чтение записи вместе с позициями из одного снимка
type TransactionManager interface {
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier отправка уведомлений клиенту, не блокирует вызывающего
// Возвращает false, если событие не принято в очередь
type Notifier interface {
	Notify(event domain.NotificationEvent) bool
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
