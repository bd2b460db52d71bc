package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модели

// GetBookingRequest запрос бронирования владельцем
type GetBookingRequest struct {
	BookingID  string
	BusinessID string
	Email      string
}

// GetCustomerBookingsRequest запрос истории записей клиента
type GetCustomerBookingsRequest struct {
	BusinessID string
	Email      string
}

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	BookingID  string
	BusinessID string
	Email      string
}

// Response модели

// BookingItemResponse услуга в составе бронирования
type BookingItemResponse struct {
	ServiceID       string  `json:"serviceId"`
	ServiceName     string  `json:"serviceName"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"durationMinutes"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              string  `json:"id"`
	BusinessID      string  `json:"businessId"`
	CustomerID      string  `json:"customerId"`
	StaffID         string  `json:"staffId"`
	StaffName       string  `json:"staffName"`
	Date            string  `json:"date"`      // "2025-10-15"
	StartTime       string  `json:"startTime"` // "10:00" по времени салона
	EndTime         string  `json:"endTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	TotalPrice      float64 `json:"totalPrice"`
	PaymentMethod   string  `json:"paymentMethod"`

	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	CustomerPhone string  `json:"customerPhone"`
	Comment       *string `json:"comment,omitempty"`

	Items []BookingItemResponse `json:"items"`

	CreatedAt time.Time `json:"createdAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// SweepResponse результат служебного прохода
type SweepResponse struct {
	Processed int64 `json:"processed"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO, время переводится в пояс салона
func FromDomainBooking(b *domain.Booking, loc *time.Location) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:              b.ID,
		BusinessID:      b.BusinessID,
		CustomerID:      b.CustomerID,
		StaffID:         b.StaffID,
		StaffName:       b.StaffName,
		Date:            b.Date.Format(domain.DateFormat),
		StartTime:       b.StartTime.In(loc).Format(domain.TimeFormat),
		EndTime:         b.EndTime.In(loc).Format(domain.TimeFormat),
		DurationMinutes: b.DurationMinutes(),
		Status:          string(b.Status),
		TotalPrice:      b.TotalPrice,
		PaymentMethod:   b.PaymentMethod,
		CustomerName:    b.CustomerName,
		CustomerEmail:   b.CustomerEmail,
		CustomerPhone:   b.CustomerPhone,
		Comment:         b.Comment,
		Items:           make([]BookingItemResponse, 0, len(b.Items)),
		CreatedAt:       b.CreatedAt,
	}

	for _, item := range b.Items {
		resp.Items = append(resp.Items, BookingItemResponse{
			ServiceID:       item.ServiceID,
			ServiceName:     item.ServiceName,
			Price:           item.Price,
			DurationMinutes: item.DurationMinutes,
		})
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking, loc *time.Location) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking, loc); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}
