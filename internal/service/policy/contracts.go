package policy

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// PolicyRepository интерфейс репозитория политик записи
type PolicyRepository interface {
	Get(ctx context.Context, businessID string) (*domain.BookingPolicy, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
