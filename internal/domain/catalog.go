package domain

import (
	"encoding/json"
	"time"
)

// Service услуга салона
type Service struct {
	ID              string
	BusinessID      string
	Title           string
	Price           float64
	DurationMinutes int
	IsActive        bool
}

// Customer клиент салона, уникален по (BusinessID, Email)
type Customer struct {
	ID         string
	BusinessID string
	Email      string
	FullName   string
	Phone      string
}

// PushSubscription web-push подписка клиента
type PushSubscription struct {
	ID           int64
	BusinessID   string
	Email        string
	CustomerID   *string
	UserAgent    string
	Subscription json.RawMessage
	CreatedAt    time.Time
}
