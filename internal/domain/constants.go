package domain

// Default configuration values
const (
	DefaultSlotStepMinutes  = 30
	DefaultMinNoticeMinutes = 30
	DefaultDurationMinutes  = 30
)

// Business validation constants
const (
	MinutesPerDay       = 1440
	MinSlotStepMinutes  = 5
	MaxSlotStepMinutes  = 240
	MaxMinNoticeMinutes = 10080 // 1 week
	MaxCommentLength    = 500
	MaxNameLength       = 100
	MinPhoneDigits      = 9
	MaxPhoneDigits      = 15
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

const (
	StaffSelectorAny  = "any"
	PaymentMethodCard = "card"
)

// NonBlockingStatuses статусы, которые не занимают время мастера
var NonBlockingStatuses = []BookingStatus{
	StatusCancelled,
	StatusRejected,
}

// CancellableStatuses статусы, из которых разрешена отмена
var CancellableStatuses = []BookingStatus{
	StatusPendingPayment,
	StatusConfirmed,
}
