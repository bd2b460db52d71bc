package subscribe_push

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/service/subscriptions/models"
)

type SubscriptionService interface {
	Subscribe(ctx context.Context, req *models.SubscribeRequest) (*models.SubscribeResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
