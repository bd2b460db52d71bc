package pushgateway

import "errors"

var (
	// ErrSubscriptionExpired возвращается, когда браузер отозвал подписку (404/410 от шлюза)
	ErrSubscriptionExpired = errors.New("pushgateway: subscription expired")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("pushgateway client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от шлюза
	ErrInvalidResponse = errors.New("pushgateway client: invalid response")
)
