package get_available_slots

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

const businessID = "6f1c7a52-0c1e-4a0d-9d55-3c7e1f0a0b01"

type fakeUseCase struct {
	req  *getAvailableSlots.Request
	resp *getAvailableSlots.Response
	err  error
}

func (f *fakeUseCase) Execute(_ context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error) {
	f.req = req
	return f.resp, f.err
}

func serve(uc *fakeUseCase, target string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/businesses/{businessId}/availability", NewHandler(uc, logger.NewDiscard()).Handle)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandle_ReturnsSlots(t *testing.T) {
	uc := &fakeUseCase{resp: &getAvailableSlots.Response{
		Date:            time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		Slots:           []string{"10:00", "10:30"},
	}}

	rec := serve(uc, fmt.Sprintf("/businesses/%s/availability?date=2030-06-03&staffId=any&duration=60", businessID))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, &getAvailableSlots.Request{
		BusinessID: businessID,
		Date:       "2030-06-03",
		StaffID:    "any",
		Duration:   "60",
	}, uc.req)

	var body AvailableSlotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"10:00", "10:30"}, body.Slots)
	assert.Equal(t, domain.StaffSelectorAny, body.StaffID)
	assert.False(t, body.Degraded)
}

func TestHandle_DegradedIsStillOK(t *testing.T) {
	uc := &fakeUseCase{resp: &getAvailableSlots.Response{
		Date:     time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC),
		Degraded: true,
	}}

	rec := serve(uc, fmt.Sprintf("/businesses/%s/availability?date=2030-06-03", businessID))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"date":"2030-06-03","staffId":"any","durationMinutes":0,"slots":[],"degraded":true}`, rec.Body.String())
}

func TestHandle_Errors(t *testing.T) {
	rec := serve(&fakeUseCase{}, fmt.Sprintf("/businesses/%s/availability", businessID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(&fakeUseCase{err: fmt.Errorf("%w: bad duration", getAvailableSlots.ErrInvalidInput)},
		fmt.Sprintf("/businesses/%s/availability?date=2030-06-03&duration=0", businessID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(&fakeUseCase{err: errors.New("boom")},
		fmt.Sprintf("/businesses/%s/availability?date=2030-06-03", businessID))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
