package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const maxBodyBytes = 1 << 20

const (
	msgInternalError   = "внутренняя ошибка сервера"
	msgTooManyRequests = "слишком много запросов, попробуйте позже"
)

// Машинные причины ошибок API
const (
	ReasonMissingFields    = "missing_fields"
	ReasonInvalidServices  = "invalid_services"
	ReasonNoStaffAvailable = "no_staff_available"
	ReasonSlotUnavailable  = "slot_unavailable"
	ReasonBookingNotFound  = "booking_not_found"
	ReasonCannotCancel     = "cannot_cancel"
	ReasonInternalError    = "internal_error"
)

// ErrorResponse ответ с ошибкой для read-эндпоинтов
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// FailureResponse ответ с ошибкой для операций записи
type FailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SuccessResponse ответ без данных
type SuccessResponse struct {
	Success bool `json:"success"`
}

// DecodeJSON декодирует тело запроса, размер тела ограничен
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("empty request body")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return err
	}
	return nil
}

// RespondJSON пишет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Code: status, Message: message})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}

func RespondTooManyRequests(w http.ResponseWriter) {
	RespondError(w, http.StatusTooManyRequests, msgTooManyRequests)
}

// RespondFailure ответ {success:false, error, message}, код определяется причиной
func RespondFailure(w http.ResponseWriter, reason, message string) {
	RespondJSON(w, StatusForReason(reason), FailureResponse{
		Success: false,
		Error:   reason,
		Message: message,
	})
}

func RespondSuccess(w http.ResponseWriter) {
	RespondJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// StatusForReason HTTP код для машинной причины
func StatusForReason(reason string) int {
	switch reason {
	case ReasonMissingFields, ReasonInvalidServices:
		return http.StatusBadRequest
	case ReasonNoStaffAvailable, ReasonSlotUnavailable, ReasonCannotCancel:
		return http.StatusConflict
	case ReasonBookingNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
