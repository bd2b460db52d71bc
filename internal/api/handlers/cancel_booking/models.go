package cancel_booking

import (
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
)

// CancelBookingRequest HTTP request model
// Владение подтверждается парой email + businessId
type CancelBookingRequest struct {
	Email      string `json:"email"`
	BusinessID string `json:"businessId"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *CancelBookingRequest) ToServiceRequest(bookingID string) *models.CancelBookingRequest {
	return &models.CancelBookingRequest{
		BookingID:  bookingID,
		BusinessID: r.BusinessID,
		Email:      r.Email,
	}
}
