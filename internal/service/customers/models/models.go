package models

// CustomerResponse идентификатор клиента салона
type CustomerResponse struct {
	CustomerID string `json:"customerId"`
}
