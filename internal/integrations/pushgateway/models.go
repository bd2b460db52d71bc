package pushgateway

import "encoding/json"

// Message web-push сообщение для шлюза
type Message struct {
	// Subscription подписка браузера как ее вернул PushManager.subscribe
	Subscription json.RawMessage `json:"subscription"`
	Title        string          `json:"title"`
	Body         string          `json:"body"`
	URL          string          `json:"url,omitempty"`
	// TTL время жизни сообщения на push-сервисе в секундах
	TTL int `json:"ttl"`
}

// ErrorResponse модель ошибки от шлюза
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
