package get_customer_bookings

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
)

const (
	msgInvalidParams = "некорректный businessId или email"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/businesses/{businessId}/customers/bookings
// Query params: email (required)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	businessID := mux.Vars(r)["businessId"]

	result, err := h.service.GetCustomerBookings(r.Context(), &models.GetCustomerBookingsRequest{
		BusinessID: businessID,
		Email:      r.URL.Query().Get("email"),
	})
	if err != nil {
		if errors.Is(err, bookings.ErrInvalidInput) {
			h.logger.Warn("GET /businesses/{id}/customers/bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)
			return
		}
		h.logger.Error("GET /businesses/{id}/customers/bookings - Failed to get bookings: business_id=%s, error=%v",
			businessID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /businesses/{id}/customers/bookings - Bookings retrieved successfully: business_id=%s, count=%d",
		businessID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result)
}
