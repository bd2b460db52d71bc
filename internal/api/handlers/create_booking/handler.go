package create_booking

import (
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	createBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingFields      = "не заполнены обязательные поля или они некорректны"
	msgInvalidServices    = "одна или несколько услуг не найдены или недоступны"
	msgNoStaffAvailable   = "на выбранное время нет свободных мастеров"
	msgSlotUnavailable    = "выбранное время уже занято, выберите другое"
	msgInternalError      = "не удалось создать запись, попробуйте позже"
)

var reasonMessages = map[string]string{
	handlers.ReasonMissingFields:    msgMissingFields,
	handlers.ReasonInvalidServices:  msgInvalidServices,
	handlers.ReasonNoStaffAvailable: msgNoStaffAvailable,
	handlers.ReasonSlotUnavailable:  msgSlotUnavailable,
	handlers.ReasonInternalError:    msgInternalError,
}

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondFailure(w, handlers.ReasonMissingFields, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest())
	if err != nil {
		reason := createBooking.Reason(err)
		if reason == handlers.ReasonInternalError {
			h.logger.Error("POST /bookings - Failed to create booking: business_id=%s, date=%s, time=%s, error=%v",
				req.BusinessID, req.Date, req.Time, err)
		} else {
			h.logger.Warn("POST /bookings - Booking rejected: business_id=%s, date=%s, time=%s, staff=%s, reason=%s",
				req.BusinessID, req.Date, req.Time, req.StaffID, reason)
		}
		handlers.RespondFailure(w, reason, reasonMessages[reason])
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%s, staff_id=%s, status=%s",
		result.BookingID, result.StaffID, result.Status)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
