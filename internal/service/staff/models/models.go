package models

import "github.com/m04kA/SMC-AppointmentService/internal/domain"

// StaffResponse мастер салона
type StaffResponse struct {
	ID        string  `json:"id"`
	FullName  string  `json:"fullName"`
	Role      string  `json:"role"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// StaffListResponse список мастеров
type StaffListResponse struct {
	Staff []StaffResponse `json:"staff"`
}

// FromDomainStaffList конвертирует список domain моделей в DTO
func FromDomainStaffList(staff []domain.Staff) *StaffListResponse {
	resp := &StaffListResponse{Staff: make([]StaffResponse, 0, len(staff))}
	for _, member := range staff {
		resp.Staff = append(resp.Staff, StaffResponse{
			ID:        member.ID,
			FullName:  member.FullName,
			Role:      member.Role,
			AvatarURL: member.AvatarURL,
		})
	}
	return resp
}
