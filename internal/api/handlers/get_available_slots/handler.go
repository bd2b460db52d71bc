package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
)

const (
	msgMissingDate  = "дата обязательна"
	msgInvalidQuery = "некорректные параметры запроса: businessId (UUID), date (YYYY-MM-DD), staffId (UUID или any), duration (1-1440)"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/businesses/{businessId}/availability
// Query params: date (required, YYYY-MM-DD), staffId (UUID или any), duration (минуты)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	businessID := mux.Vars(r)["businessId"]
	query := r.URL.Query()

	date := query.Get("date")
	if date == "" {
		h.logger.Warn("GET /businesses/{id}/availability - Missing date: business_id=%s", businessID)
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	useCaseReq := ToUseCaseRequest(businessID, date, query.Get("staffId"), query.Get("duration"))

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		if errors.Is(err, getAvailableSlots.ErrInvalidInput) {
			h.logger.Warn("GET /businesses/{id}/availability - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidQuery)
			return
		}

		h.logger.Error("GET /businesses/{id}/availability - Failed to get slots: business_id=%s, date=%s, error=%v",
			businessID, date, err)
		handlers.RespondInternalError(w)
		return
	}

	// Деградированный ответ отдается с кодом 200
	if result.Degraded {
		h.logger.Warn("GET /businesses/{id}/availability - Degraded response: business_id=%s, date=%s",
			businessID, date)
	}

	h.logger.Info("GET /businesses/{id}/availability - Slots retrieved: business_id=%s, date=%s, slots_count=%d",
		businessID, date, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
