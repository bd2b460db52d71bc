package customers

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")

	// ErrCustomerNotFound возвращается, когда клиент с таким email не найден
	ErrCustomerNotFound = errors.New("customer not found")
)
