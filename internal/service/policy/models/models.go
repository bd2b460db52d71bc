package models

import "github.com/m04kA/SMC-AppointmentService/internal/domain"

// PolicyResponse действующие параметры записи салона
type PolicyResponse struct {
	BusinessID       string `json:"businessId"`
	SlotStepMinutes  int    `json:"slotStepMinutes"`
	MinNoticeMinutes int    `json:"minNoticeMinutes"`
	IsDefault        bool   `json:"isDefault"`
}

// FromDomainPolicy конвертирует domain модель в DTO
func FromDomainPolicy(p domain.BookingPolicy) *PolicyResponse {
	return &PolicyResponse{
		BusinessID:       p.BusinessID,
		SlotStepMinutes:  p.SlotStepMinutes,
		MinNoticeMinutes: p.MinNoticeMinutes,
		IsDefault:        p.IsDefault,
	}
}
