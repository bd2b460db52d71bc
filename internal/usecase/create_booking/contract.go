package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	LockStaff(ctx context.Context, staffIDs []string) error
	ListBusy(ctx context.Context, businessID string, staffIDs []string, from, to time.Time) ([]domain.BusyInterval, error)
	HasOverlap(ctx context.Context, staffID string, start, end time.Time) (bool, error)
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// ScheduleRepository интерфейс репозитория рабочих смен
type ScheduleRepository interface {
	ListWindows(ctx context.Context, businessID string, dayOfWeek int) ([]domain.WorkingWindow, error)
}

// CatalogRepository интерфейс каталога услуг
type CatalogRepository interface {
	GetActiveByIDs(ctx context.Context, businessID string, ids []string) ([]domain.Service, error)
}

// CustomerRepository интерфейс репозитория клиентов
type CustomerRepository interface {
	Upsert(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
}

// PolicyResolver действующая политика записи салона
type PolicyResolver interface {
	Resolve(ctx context.Context, businessID string) (domain.BookingPolicy, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier отправка уведомлений клиенту, не блокирует вызывающего
// Возвращает false, если событие не принято в очередь
type Notifier interface {
	Notify(event domain.NotificationEvent) bool
}

// Metrics метрики создания записей
type Metrics interface {
	ObserveBooking(result string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
