package get_staff

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/staff"
)

const (
	msgInvalidBusinessID = "некорректный ID салона"
)

type Handler struct {
	service StaffService
	logger  Logger
}

func NewHandler(service StaffService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/businesses/{businessId}/staff
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	businessID := mux.Vars(r)["businessId"]

	result, err := h.service.ListActive(r.Context(), businessID)
	if err != nil {
		if errors.Is(err, staff.ErrInvalidInput) {
			h.logger.Warn("GET /businesses/{id}/staff - Invalid business ID: %s", businessID)
			handlers.RespondBadRequest(w, msgInvalidBusinessID)
			return
		}
		h.logger.Error("GET /businesses/{id}/staff - Failed to list staff: business_id=%s, error=%v",
			businessID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /businesses/{id}/staff - Staff retrieved: business_id=%s, count=%d",
		businessID, len(result.Staff))
	handlers.RespondJSON(w, http.StatusOK, result)
}
