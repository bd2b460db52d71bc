package get_customer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentService/internal/service/customers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/customers/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type fakeService struct {
	businessID, email string
	resp              *models.CustomerResponse
	err               error
}

func (f *fakeService) FindByEmail(_ context.Context, businessID, email string) (*models.CustomerResponse, error) {
	f.businessID, f.email = businessID, email
	return f.resp, f.err
}

func serve(svc *fakeService, target string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/businesses/{businessId}/customers", NewHandler(svc, logger.NewDiscard()).Handle)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandle(t *testing.T) {
	svc := &fakeService{resp: &models.CustomerResponse{CustomerID: "c-1"}}
	rec := serve(svc, "/businesses/biz/customers?email=maria@example.com")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"customerId":"c-1"}`, rec.Body.String())
	assert.Equal(t, "biz", svc.businessID)
	assert.Equal(t, "maria@example.com", svc.email)

	rec = serve(&fakeService{err: customers.ErrCustomerNotFound}, "/businesses/biz/customers?email=x@example.com")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(&fakeService{err: customers.ErrInvalidInput}, "/businesses/biz/customers")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(&fakeService{err: customers.ErrInternal}, "/businesses/biz/customers?email=x@example.com")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
