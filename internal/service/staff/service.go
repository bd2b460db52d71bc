package staff

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/service/staff/models"
)

// Service сервис мастеров салона
type Service struct {
	staffRepo StaffRepository
	logger    Logger
}

// NewService создает новый экземпляр сервиса мастеров
func NewService(staffRepo StaffRepository, logger Logger) *Service {
	return &Service{staffRepo: staffRepo, logger: logger}
}

// ListActive активные мастера салона
func (s *Service) ListActive(ctx context.Context, businessID string) (*models.StaffListResponse, error) {
	if _, err := uuid.Parse(businessID); err != nil {
		return nil, fmt.Errorf("%w: businessId must be a UUID", ErrInvalidInput)
	}

	staff, err := s.staffRepo.ListActive(ctx, businessID)
	if err != nil {
		s.logger.Error("ListActive: repository error for business=%s: %v", businessID, err)
		return nil, fmt.Errorf("%w: ListActive - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainStaffList(staff), nil
}
