package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ScheduleRepository интерфейс репозитория рабочих смен
type ScheduleRepository interface {
	ListWindows(ctx context.Context, businessID string, dayOfWeek int) ([]domain.WorkingWindow, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// ListBusy активные интервалы мастеров, пересекающиеся с [from, to)
	ListBusy(ctx context.Context, businessID string, staffIDs []string, from, to time.Time) ([]domain.BusyInterval, error)
}

// PolicyResolver действующая политика записи салона
type PolicyResolver interface {
	Resolve(ctx context.Context, businessID string) (domain.BookingPolicy, error)
}

// Metrics метрики расчета слотов
type Metrics interface {
	ObserveAvailability(slots int, degraded bool)
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
