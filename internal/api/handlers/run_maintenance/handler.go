package run_maintenance

import (
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
)

type Handler struct {
	name   string
	task   Task
	logger Logger
}

func NewHandler(name string, task Task, logger Logger) *Handler {
	return &Handler{
		name:   name,
		task:   task,
		logger: logger,
	}
}

// Handle POST /api/v1/maintenance/complete и POST /api/v1/maintenance/reminders
// Доступ проверяется middleware CronAuth
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.task(r.Context())
	if err != nil {
		h.logger.Error("POST /maintenance/%s - Failed: %v", h.name, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /maintenance/%s - Done: processed=%d", h.name, result.Processed)
	handlers.RespondJSON(w, http.StatusOK, result)
}
