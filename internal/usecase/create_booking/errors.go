package create_booking

import "errors"

var (
	// ErrMissingFields возвращается, когда обязательные поля не заполнены или некорректны
	ErrMissingFields = errors.New("create_booking: missing or invalid fields")

	// ErrInvalidServices возвращается, когда часть услуг не найдена или неактивна
	ErrInvalidServices = errors.New("create_booking: invalid services")

	// ErrNoStaffAvailable возвращается, когда ни один мастер не свободен в это время
	ErrNoStaffAvailable = errors.New("create_booking: no staff available")

	// ErrSlotUnavailable возвращается, когда выбранное время занято или уже недоступно
	ErrSlotUnavailable = errors.New("create_booking: slot unavailable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")

	// errStaffBusy контрольная проверка нашла пересечение у выбранного мастера
	errStaffBusy = errors.New("create_booking: staff is busy")
)

// Reason машинно-различимая причина ошибки для API и метрик
func Reason(err error) string {
	switch {
	case err == nil:
		return "created"
	case errors.Is(err, ErrMissingFields):
		return "missing_fields"
	case errors.Is(err, ErrInvalidServices):
		return "invalid_services"
	case errors.Is(err, ErrNoStaffAvailable):
		return "no_staff_available"
	case errors.Is(err, ErrSlotUnavailable):
		return "slot_unavailable"
	default:
		return "internal_error"
	}
}
