package get_customer

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/customers"
)

const (
	msgInvalidParams = "некорректный businessId или email"
	msgNotFound      = "клиент не найден"
)

type Handler struct {
	service CustomerService
	logger  Logger
}

func NewHandler(service CustomerService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/businesses/{businessId}/customers
// Query params: email (required)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	businessID := mux.Vars(r)["businessId"]

	result, err := h.service.FindByEmail(r.Context(), businessID, r.URL.Query().Get("email"))
	if err != nil {
		switch {
		case errors.Is(err, customers.ErrInvalidInput):
			h.logger.Warn("GET /businesses/{id}/customers - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		case errors.Is(err, customers.ErrCustomerNotFound):
			h.logger.Info("GET /businesses/{id}/customers - Customer not found: business_id=%s", businessID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /businesses/{id}/customers - Failed to find customer: business_id=%s, error=%v",
				businessID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
