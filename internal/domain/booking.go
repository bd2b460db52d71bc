package domain

import "time"

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPendingPayment BookingStatus = "pending_payment"
	StatusConfirmed      BookingStatus = "confirmed"
	StatusCompleted      BookingStatus = "completed"
	StatusCancelled      BookingStatus = "cancelled"
	// StatusRejected выставляется администратором салона вне этого сервиса
	StatusRejected BookingStatus = "rejected"
)

// Booking represents a customer appointment with one staff member
type Booking struct {
	ID         string
	BusinessID string
	CustomerID string
	StaffID    string
	StaffName  string

	// Date календарная дата визита в часовом поясе салона
	Date      time.Time
	StartTime time.Time
	EndTime   time.Time
	Status    BookingStatus

	TotalPrice    float64
	PaymentMethod string

	// Denormalized customer data for history and notifications
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Comment       *string

	Items []BookingItem

	ReminderSentAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BookingItem услуга в составе бронирования (цена и длительность на момент записи)
type BookingItem struct {
	ServiceID       string
	ServiceName     string
	Price           float64
	DurationMinutes int
}

// DurationMinutes returns the booked duration
func (b *Booking) DurationMinutes() int {
	return int(b.EndTime.Sub(b.StartTime) / time.Minute)
}

// BlocksStaff returns true if the booking occupies the staff member's time
func (b *Booking) BlocksStaff() bool {
	return b.Status != StatusCancelled && b.Status != StatusRejected
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPendingPayment || b.Status == StatusConfirmed
}

// IsTerminal returns true for cancelled, rejected and completed bookings
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCancelled || b.Status == StatusRejected || b.Status == StatusCompleted
}

// InitialStatus статус новой записи в зависимости от способа оплаты
func InitialStatus(paymentMethod string) BookingStatus {
	if paymentMethod == PaymentMethodCard {
		return StatusPendingPayment
	}
	return StatusConfirmed
}
