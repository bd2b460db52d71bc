package create_booking

import "github.com/m04kA/SMC-AppointmentService/internal/domain"

// Request модель запроса на создание бронирования
type Request struct {
	BusinessID    string
	Date          string   // "2025-10-15"
	Time          string   // "10:00" по времени салона
	StaffID       string   // ID мастера или "any"
	ServiceIDs    []string // повторы игнорируются
	Client        Client
	PaymentMethod string
}

// Client контактные данные клиента
type Client struct {
	Name    string
	Email   string
	Phone   string
	Comment *string
}

// Response модель ответа с созданным бронированием
type Response struct {
	BookingID  string
	CustomerID string
	StaffID    string
	Status     domain.BookingStatus
}
