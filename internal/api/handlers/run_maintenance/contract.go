package run_maintenance

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
)

// Task служебный проход: завершение прошедших записей или рассылка напоминаний
type Task func(ctx context.Context) (*models.SweepResponse, error)

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
