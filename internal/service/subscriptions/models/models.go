package models

import "encoding/json"

// SubscribeRequest регистрация браузера клиента для push-уведомлений
type SubscribeRequest struct {
	BusinessID   string          `json:"businessId"`
	Email        string          `json:"email"`
	CustomerID   *string         `json:"customerId,omitempty"`
	UserAgent    string          `json:"userAgent"`
	Subscription json.RawMessage `json:"subscription"`
}

// SubscribeResponse результат регистрации
type SubscribeResponse struct {
	ID int64 `json:"id"`
}
