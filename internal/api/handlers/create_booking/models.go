package create_booking

import (
	createBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	BusinessID    string        `json:"businessId"`
	Date          string        `json:"date"` // "2025-10-15"
	Time          string        `json:"time"` // "10:00"
	StaffID       string        `json:"staffId"`
	Services      []ServiceRef  `json:"services"`
	Client        ClientRequest `json:"client"`
	PaymentMethod string        `json:"paymentMethod"`
}

// ServiceRef ссылка на услугу каталога, цена и длительность берутся на сервере
type ServiceRef struct {
	ID string `json:"id"`
}

// ClientRequest контакты клиента
type ClientRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Comment *string `json:"comment,omitempty"`
}

// CreateBookingResponse HTTP response model
type CreateBookingResponse struct {
	Success    bool   `json:"success"`
	BookingID  string `json:"bookingId"`
	CustomerID string `json:"customerId"`
	StaffID    string `json:"staffId"`
	Status     string `json:"status"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest() *createBooking.Request {
	serviceIDs := make([]string, 0, len(r.Services))
	for _, s := range r.Services {
		serviceIDs = append(serviceIDs, s.ID)
	}

	return &createBooking.Request{
		BusinessID: r.BusinessID,
		Date:       r.Date,
		Time:       r.Time,
		StaffID:    r.StaffID,
		ServiceIDs: serviceIDs,
		Client: createBooking.Client{
			Name:    r.Client.Name,
			Email:   r.Client.Email,
			Phone:   r.Client.Phone,
			Comment: r.Client.Comment,
		},
		PaymentMethod: r.PaymentMethod,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *CreateBookingResponse {
	return &CreateBookingResponse{
		Success:    true,
		BookingID:  resp.BookingID,
		CustomerID: resp.CustomerID,
		StaffID:    resp.StaffID,
		Status:     string(resp.Status),
	}
}
