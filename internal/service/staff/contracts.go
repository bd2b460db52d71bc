package staff

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// StaffRepository интерфейс репозитория мастеров
type StaffRepository interface {
	ListActive(ctx context.Context, businessID string) ([]domain.Staff, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
