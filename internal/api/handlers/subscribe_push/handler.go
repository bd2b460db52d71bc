package subscribe_push

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/subscriptions"
	"github.com/m04kA/SMC-AppointmentService/internal/service/subscriptions/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidParams      = "подписка, email и businessId обязательны"
)

type Handler struct {
	service SubscriptionService
	logger  Logger
}

func NewHandler(service SubscriptionService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/push/subscriptions
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.SubscribeRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /push/subscriptions - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if req.UserAgent == "" {
		req.UserAgent = r.UserAgent()
	}

	result, err := h.service.Subscribe(r.Context(), &req)
	if err != nil {
		if errors.Is(err, subscriptions.ErrInvalidInput) {
			h.logger.Warn("POST /push/subscriptions - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidParams)
			return
		}
		h.logger.Error("POST /push/subscriptions - Failed to save subscription: business_id=%s, error=%v",
			req.BusinessID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /push/subscriptions - Subscription saved: id=%d", result.ID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
