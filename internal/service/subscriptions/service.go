package subscriptions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/subscriptions/models"
)

// Service сервис push-подписок
type Service struct {
	subscriptionRepo SubscriptionRepository
	logger           Logger
}

// NewService создает новый экземпляр сервиса подписок
func NewService(subscriptionRepo SubscriptionRepository, logger Logger) *Service {
	return &Service{subscriptionRepo: subscriptionRepo, logger: logger}
}

// Subscribe сохраняет подписку браузера
// Подписка должна быть JSON-объектом с полем endpoint
func (s *Service) Subscribe(ctx context.Context, req *models.SubscribeRequest) (*models.SubscribeResponse, error) {
	if _, err := uuid.Parse(req.BusinessID); err != nil {
		return nil, fmt.Errorf("%w: businessId must be a UUID", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if req.CustomerID != nil {
		if _, err := uuid.Parse(*req.CustomerID); err != nil {
			return nil, fmt.Errorf("%w: customerId must be a UUID", ErrInvalidInput)
		}
	}

	var payload struct {
		Endpoint string `json:"endpoint"`
	}
	if err := json.Unmarshal(req.Subscription, &payload); err != nil || payload.Endpoint == "" {
		return nil, fmt.Errorf("%w: subscription endpoint is required", ErrInvalidInput)
	}

	sub, err := s.subscriptionRepo.Upsert(ctx, &domain.PushSubscription{
		BusinessID:   req.BusinessID,
		Email:        req.Email,
		CustomerID:   req.CustomerID,
		UserAgent:    req.UserAgent,
		Subscription: req.Subscription,
	})
	if err != nil {
		s.logger.Error("Subscribe: repository error for business=%s: %v", req.BusinessID, err)
		return nil, fmt.Errorf("%w: Subscribe - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Subscribe: saved subscription id=%d for business=%s", sub.ID, req.BusinessID)
	return &models.SubscribeResponse{ID: sub.ID}, nil
}
