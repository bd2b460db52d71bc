package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	policyRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/policy"
	"github.com/m04kA/SMC-AppointmentService/internal/service/policy/models"
)

// Service сервис политик записи
type Service struct {
	policyRepo PolicyRepository
	defaults   domain.BookingPolicy
	logger     Logger
}

// NewService создает сервис; defaults используются для салонов без своей политики
func NewService(policyRepo PolicyRepository, defaults domain.BookingPolicy, logger Logger) *Service {
	defaults.IsDefault = true
	return &Service{
		policyRepo: policyRepo,
		defaults:   defaults.Normalize(),
		logger:     logger,
	}
}

// Resolve действующая политика салона с подстановкой значений по умолчанию
func (s *Service) Resolve(ctx context.Context, businessID string) (domain.BookingPolicy, error) {
	policy, err := s.policyRepo.Get(ctx, businessID)
	if err != nil {
		if errors.Is(err, policyRepo.ErrPolicyNotFound) {
			result := s.defaults
			result.BusinessID = businessID
			return result, nil
		}
		s.logger.Error("Resolve: repository error for business=%s: %v", businessID, err)
		return domain.BookingPolicy{}, fmt.Errorf("%w: Resolve - repository error: %v", ErrInternal, err)
	}

	return policy.Normalize(), nil
}

// Get действующая политика салона для API
func (s *Service) Get(ctx context.Context, businessID string) (*models.PolicyResponse, error) {
	if _, err := uuid.Parse(businessID); err != nil {
		return nil, fmt.Errorf("%w: businessId must be a UUID", ErrInvalidInput)
	}

	policy, err := s.Resolve(ctx, businessID)
	if err != nil {
		return nil, err
	}

	return models.FromDomainPolicy(policy), nil
}
