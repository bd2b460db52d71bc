package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модель запроса на получение свободных слотов
// Поля приходят из query string как есть и валидируются в use case
type Request struct {
	BusinessID string
	Date       string // "2025-10-15"
	StaffID    string // ID мастера или "any"
	Duration   string // минуты, пусто означает длительность по умолчанию
}

// Response модель ответа со списком свободных слотов
type Response struct {
	Date            time.Time
	Selector        domain.StaffSelector
	DurationMinutes int
	Slots           []string // "HH:MM" по времени салона, по возрастанию
	// Degraded выставляется, когда данные расписания не удалось прочитать
	Degraded bool
}

type parsedRequest struct {
	businessID string
	date       time.Time
	selector   domain.StaffSelector
	duration   int
}
