package domain

import "time"

// NotificationType тип события для уведомления клиента
type NotificationType string

const (
	NotificationBookingConfirmed NotificationType = "booking_confirmed"
	NotificationBookingCancelled NotificationType = "booking_cancelled"
	NotificationBookingReminder  NotificationType = "booking_reminder"
)

// NotificationEvent снимок бронирования на момент события
type NotificationEvent struct {
	ID         string
	Type       NotificationType
	Booking    Booking
	OccurredAt time.Time
}
