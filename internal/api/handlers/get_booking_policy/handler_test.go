package get_booking_policy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentService/internal/service/policy"
	"github.com/m04kA/SMC-AppointmentService/internal/service/policy/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type fakeService struct {
	resp *models.PolicyResponse
	err  error
}

func (f *fakeService) Get(_ context.Context, _ string) (*models.PolicyResponse, error) {
	return f.resp, f.err
}

func serve(svc *fakeService) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/businesses/{businessId}/policy", NewHandler(svc, logger.NewDiscard()).Handle)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/businesses/biz/policy", nil))
	return rec
}

func TestHandle(t *testing.T) {
	rec := serve(&fakeService{resp: &models.PolicyResponse{
		BusinessID:       "biz",
		SlotStepMinutes:  30,
		MinNoticeMinutes: 30,
		IsDefault:        true,
	}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"businessId":"biz","slotStepMinutes":30,"minNoticeMinutes":30,"isDefault":true}`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, serve(&fakeService{err: policy.ErrInvalidInput}).Code)
	assert.Equal(t, http.StatusInternalServerError, serve(&fakeService{err: policy.ErrInternal}).Code)
}
