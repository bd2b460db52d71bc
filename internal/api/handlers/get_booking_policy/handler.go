package get_booking_policy

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/policy"
)

const (
	msgInvalidBusinessID = "некорректный ID салона"
)

type Handler struct {
	service PolicyService
	logger  Logger
}

func NewHandler(service PolicyService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/businesses/{businessId}/policy
// Публичный endpoint: салон без своей политики получает значения по умолчанию
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	businessID := mux.Vars(r)["businessId"]

	result, err := h.service.Get(r.Context(), businessID)
	if err != nil {
		if errors.Is(err, policy.ErrInvalidInput) {
			h.logger.Warn("GET /businesses/{id}/policy - Invalid business ID: %s", businessID)
			handlers.RespondBadRequest(w, msgInvalidBusinessID)
			return
		}
		h.logger.Error("GET /businesses/{id}/policy - Failed to get policy: business_id=%s, error=%v",
			businessID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /businesses/{id}/policy - Policy retrieved: business_id=%s, default=%t",
		businessID, result.IsDefault)
	handlers.RespondJSON(w, http.StatusOK, result)
}
