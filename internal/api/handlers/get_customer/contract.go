package get_customer

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/service/customers/models"
)

type CustomerService interface {
	FindByEmail(ctx context.Context, businessID, email string) (*models.CustomerResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
