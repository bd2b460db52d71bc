package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	customerRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/customer"
	"github.com/m04kA/SMC-AppointmentService/internal/service/customers/models"
)

// Service сервис клиентов салона
type Service struct {
	customerRepo CustomerRepository
	logger       Logger
}

// NewService создает новый экземпляр сервиса клиентов
func NewService(customerRepo CustomerRepository, logger Logger) *Service {
	return &Service{customerRepo: customerRepo, logger: logger}
}

// FindByEmail ищет клиента салона по email
func (s *Service) FindByEmail(ctx context.Context, businessID, email string) (*models.CustomerResponse, error) {
	if _, err := uuid.Parse(businessID); err != nil || strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("%w: businessId and email are required", ErrInvalidInput)
	}

	customer, err := s.customerRepo.GetByEmail(ctx, businessID, email)
	if err != nil {
		if errors.Is(err, customerRepo.ErrCustomerNotFound) {
			return nil, ErrCustomerNotFound
		}
		s.logger.Error("FindByEmail: repository error for business=%s: %v", businessID, err)
		return nil, fmt.Errorf("%w: FindByEmail - repository error: %v", ErrInternal, err)
	}

	return &models.CustomerResponse{CustomerID: customer.ID}, nil
}
