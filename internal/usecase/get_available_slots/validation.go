package get_available_slots

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// validateRequest валидирует и разбирает входные данные запроса
// defaultDuration подставляется, когда duration не передан
func validateRequest(req *Request, defaultDuration int) (*parsedRequest, error) {
	if _, err := uuid.Parse(req.BusinessID); err != nil {
		return nil, fmt.Errorf("%w: businessId must be a UUID", ErrInvalidInput)
	}

	date, err := time.Parse(domain.DateFormat, strings.TrimSpace(req.Date))
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}

	selector := domain.ParseStaffSelector(req.StaffID)
	if !selector.IsAny() {
		if _, err := uuid.Parse(selector.StaffID); err != nil {
			return nil, fmt.Errorf("%w: staffId must be a UUID or %q", ErrInvalidInput, domain.StaffSelectorAny)
		}
	}

	duration := defaultDuration
	if value := strings.TrimSpace(req.Duration); value != "" {
		duration, err = strconv.Atoi(value)
		if err != nil || duration <= 0 || duration > domain.MinutesPerDay {
			return nil, fmt.Errorf("%w: duration must be between 1 and %d minutes", ErrInvalidInput, domain.MinutesPerDay)
		}
	}

	return &parsedRequest{
		businessID: req.BusinessID,
		date:       date,
		selector:   selector,
		duration:   duration,
	}, nil
}
