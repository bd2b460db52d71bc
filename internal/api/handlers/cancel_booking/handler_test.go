package cancel_booking

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

const bookingID = "9b2d3c4e-5f60-4718-8293-a4b5c6d7e8f9"

type mockService struct {
	mock.Mock
}

func (m *mockService) Cancel(ctx context.Context, req *models.CancelBookingRequest) error {
	return m.Called(ctx, req).Error(0)
}

func serve(svc *mockService, body string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/bookings/{bookingId}/cancel", NewHandler(svc, logger.NewDiscard()).Handle).Methods(http.MethodPost)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bookings/"+bookingID+"/cancel", strings.NewReader(body))
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandle_Success(t *testing.T) {
	svc := &mockService{}
	svc.On("Cancel", mock.Anything, &models.CancelBookingRequest{
		BookingID:  bookingID,
		BusinessID: "biz",
		Email:      "maria@example.com",
	}).Return(nil)

	rec := serve(svc, `{"email":"maria@example.com","businessId":"biz"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{"invalid", bookings.ErrInvalidInput, http.StatusBadRequest, "missing_fields"},
		{"not found", bookings.ErrBookingNotFound, http.StatusNotFound, "booking_not_found"},
		{"terminal", bookings.ErrCannotCancel, http.StatusConflict, "cannot_cancel"},
		{"internal", errors.New("db down"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("Cancel", mock.Anything, mock.Anything).Return(tt.err)

			rec := serve(svc, `{"email":"maria@example.com","businessId":"biz"}`)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error":"`+tt.reason+`"`)
		})
	}
}
