package get_available_slots

import (
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date            string   `json:"date"`
	StaffID         string   `json:"staffId"`
	DurationMinutes int      `json:"durationMinutes"`
	Slots           []string `json:"slots"`
	Degraded        bool     `json:"degraded,omitempty"`
}

// ToUseCaseRequest создает запрос use case из path и query параметров
func ToUseCaseRequest(businessID, date, staffID, duration string) *getAvailableSlots.Request {
	return &getAvailableSlots.Request{
		BusinessID: businessID,
		Date:       date,
		StaffID:    staffID,
		Duration:   duration,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := resp.Slots
	if slots == nil {
		slots = []string{}
	}

	return &AvailableSlotsResponse{
		Date:            resp.Date.Format(domain.DateFormat),
		StaffID:         resp.Selector.String(),
		DurationMinutes: resp.DurationMinutes,
		Slots:           slots,
		Degraded:        resp.Degraded,
	}
}
