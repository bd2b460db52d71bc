package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

var (
	testLocation = time.FixedZone("CEST", 2*3600)
	testNow      = time.Date(2030, 6, 1, 22, 30, 0, 0, testLocation)

	businessID = "6f1c7a52-0c1e-4a0d-9d55-3c7e1f0a0b01"
	bookingID  = "9b2d3c4e-5f60-4718-8293-a4b5c6d7e8f9"
)

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	booking, _ := args.Get(0).(*domain.Booking)
	return booking, args.Error(1)
}

func (m *mockBookingRepo) ListByCustomer(ctx context.Context, businessID, email string) ([]*domain.Booking, error) {
	args := m.Called(ctx, businessID, email)
	bookings, _ := args.Get(0).([]*domain.Booking)
	return bookings, args.Error(1)
}

func (m *mockBookingRepo) Cancel(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockBookingRepo) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockBookingRepo) ListPendingReminders(ctx context.Context, from, to time.Time) ([]*domain.Booking, error) {
	args := m.Called(ctx, from, to)
	bookings, _ := args.Get(0).([]*domain.Booking)
	return bookings, args.Error(1)
}

func (m *mockBookingRepo) MarkReminderSent(ctx context.Context, id string, sentAt time.Time) error {
	return m.Called(ctx, id, sentAt).Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(event domain.NotificationEvent) bool {
	return m.Called(event).Bool(0)
}

// fakeTxManager выполняет fn сразу и считает вызовы
type fakeTxManager struct {
	calls int
	err   error
}

func (f *fakeTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}

func newTestService(repo *mockBookingRepo, notifier *mockNotifier) *Service {
	return newTestServiceWithTx(repo, &fakeTxManager{}, notifier)
}

func newTestServiceWithTx(repo *mockBookingRepo, tx *fakeTxManager, notifier *mockNotifier) *Service {
	return NewService(repo, tx, notifier, testLocation, func() time.Time { return testNow }, logger.NewDiscard())
}

func sampleBooking(status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID:            bookingID,
		BusinessID:    businessID,
		StaffID:       "11111111-1111-4111-8111-111111111111",
		StaffName:     "Анна",
		Date:          time.Date(2030, 6, 2, 0, 0, 0, 0, time.UTC),
		StartTime:     time.Date(2030, 6, 2, 8, 0, 0, 0, time.UTC),
		EndTime:       time.Date(2030, 6, 2, 9, 0, 0, 0, time.UTC),
		Status:        status,
		CustomerEmail: "maria@example.com",
		Items: []domain.BookingItem{
			{ServiceID: "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa", ServiceName: "Стрижка", Price: 25, DurationMinutes: 60},
		},
	}
}

func TestService_GetByID_ConvertsToBusinessTime(t *testing.T) {
	repo := &mockBookingRepo{}
	repo.On("GetByID", mock.Anything, bookingID).Return(sampleBooking(domain.StatusConfirmed), nil)
	svc := newTestService(repo, &mockNotifier{})

	resp, err := svc.GetByID(context.Background(), &models.GetBookingRequest{
		BookingID:  bookingID,
		BusinessID: businessID,
		Email:      "Maria@Example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "10:00", resp.StartTime)
	assert.Equal(t, "11:00", resp.EndTime)
	assert.Equal(t, 60, resp.DurationMinutes)
	assert.Equal(t, "2030-06-02", resp.Date)
	require.Len(t, resp.Items, 1)
	repo.AssertExpectations(t)
}

func TestService_GetByID_ForeignBookingLooksMissing(t *testing.T) {
	repo := &mockBookingRepo{}
	repo.On("GetByID", mock.Anything, bookingID).Return(sampleBooking(domain.StatusConfirmed), nil)
	svc := newTestService(repo, &mockNotifier{})

	_, err := svc.GetByID(context.Background(), &models.GetBookingRequest{
		BookingID:  bookingID,
		BusinessID: businessID,
		Email:      "someone@example.com",
	})
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = svc.GetByID(context.Background(), &models.GetBookingRequest{
		BookingID:  bookingID,
		BusinessID: "0e9d8c7b-6a59-4837-a261-50f4e3d2c1b0",
		Email:      "maria@example.com",
	})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestService_GetByID_InvalidInput(t *testing.T) {
	svc := newTestService(&mockBookingRepo{}, &mockNotifier{})

	_, err := svc.GetByID(context.Background(), &models.GetBookingRequest{BookingID: "42", BusinessID: businessID, Email: "a@b.c"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_Cancel_Success(t *testing.T) {
	repo := &mockBookingRepo{}
	notifier := &mockNotifier{}
	repo.On("GetByID", mock.Anything, bookingID).Return(sampleBooking(domain.StatusPendingPayment), nil)
	repo.On("Cancel", mock.Anything, bookingID).Return(nil)
	notifier.On("Notify", mock.MatchedBy(func(e domain.NotificationEvent) bool {
		return e.Type == domain.NotificationBookingCancelled &&
			e.Booking.Status == domain.StatusCancelled &&
			e.ID != ""
	})).Return(true)

	svc := newTestService(repo, notifier)
	err := svc.Cancel(context.Background(), &models.CancelBookingRequest{
		BookingID:  bookingID,
		BusinessID: businessID,
		Email:      "maria@example.com",
	})

	require.NoError(t, err)
	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestService_Cancel_TerminalStatus(t *testing.T) {
	for _, status := range []domain.BookingStatus{domain.StatusCancelled, domain.StatusCompleted, domain.StatusRejected} {
		t.Run(string(status), func(t *testing.T) {
			repo := &mockBookingRepo{}
			repo.On("GetByID", mock.Anything, bookingID).Return(sampleBooking(status), nil)
			svc := newTestService(repo, &mockNotifier{})

			err := svc.Cancel(context.Background(), &models.CancelBookingRequest{
				BookingID:  bookingID,
				BusinessID: businessID,
				Email:      "maria@example.com",
			})

			assert.ErrorIs(t, err, ErrCannotCancel)
			repo.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Cancel_ConcurrentStatusChange(t *testing.T) {
	repo := &mockBookingRepo{}
	repo.On("GetByID", mock.Anything, bookingID).Return(sampleBooking(domain.StatusConfirmed), nil)
	repo.On("Cancel", mock.Anything, bookingID).Return(bookingRepo.ErrCannotCancel)
	notifier := &mockNotifier{}
	svc := newTestService(repo, notifier)

	err := svc.Cancel(context.Background(), &models.CancelBookingRequest{
		BookingID:  bookingID,
		BusinessID: businessID,
		Email:      "maria@example.com",
	})

	assert.ErrorIs(t, err, ErrCannotCancel)
	notifier.AssertNotCalled(t, "Notify", mock.Anything)
}

func TestService_Cancel_NotFound(t *testing.T) {
	repo := &mockBookingRepo{}
	repo.On("GetByID", mock.Anything, bookingID).Return(nil, bookingRepo.ErrBookingNotFound)
	svc := newTestService(repo, &mockNotifier{})

	err := svc.Cancel(context.Background(), &models.CancelBookingRequest{
		BookingID:  bookingID,
		BusinessID: businessID,
		Email:      "maria@example.com",
	})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestService_GetCustomerBookings(t *testing.T) {
	repo := &mockBookingRepo{}
	repo.On("ListByCustomer", mock.Anything, businessID, "maria@example.com").
		Return([]*domain.Booking{sampleBooking(domain.StatusCompleted), sampleBooking(domain.StatusConfirmed)}, nil)
	svc := newTestService(repo, &mockNotifier{})

	resp, err := svc.GetCustomerBookings(context.Background(), &models.GetCustomerBookingsRequest{
		BusinessID: businessID,
		Email:      "maria@example.com",
	})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 2)

	repo.ExpectedCalls = nil
	repo.On("ListByCustomer", mock.Anything, businessID, "maria@example.com").Return(nil, errors.New("db down"))
	_, err = svc.GetCustomerBookings(context.Background(), &models.GetCustomerBookingsRequest{
		BusinessID: businessID,
		Email:      "maria@example.com",
	})
	assert.ErrorIs(t, err, ErrInternal)
}

func TestService_CompleteElapsed(t *testing.T) {
	repo := &mockBookingRepo{}
	repo.On("CompleteElapsed", mock.Anything, testNow).Return(int64(3), nil)
	svc := newTestService(repo, &mockNotifier{})

	resp, err := svc.CompleteElapsed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Processed)
}

func TestService_ReadsUseReadOnlyTransaction(t *testing.T) {
	repo := &mockBookingRepo{}
	repo.On("GetByID", mock.Anything, bookingID).Return(sampleBooking(domain.StatusConfirmed), nil)
	repo.On("ListByCustomer", mock.Anything, businessID, "maria@example.com").
		Return([]*domain.Booking{sampleBooking(domain.StatusConfirmed)}, nil)
	tx := &fakeTxManager{}
	svc := newTestServiceWithTx(repo, tx, &mockNotifier{})

	_, err := svc.GetByID(context.Background(), &models.GetBookingRequest{
		BookingID:  bookingID,
		BusinessID: businessID,
		Email:      "maria@example.com",
	})
	require.NoError(t, err)

	_, err = svc.GetCustomerBookings(context.Background(), &models.GetCustomerBookingsRequest{
		BusinessID: businessID,
		Email:      "maria@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, tx.calls)
}

func TestService_ReadTransactionFailureIsInternal(t *testing.T) {
	tx := &fakeTxManager{err: errors.New("txmanager: begin transaction: connection refused")}
	svc := newTestServiceWithTx(&mockBookingRepo{}, tx, &mockNotifier{})

	_, err := svc.GetByID(context.Background(), &models.GetBookingRequest{
		BookingID:  bookingID,
		BusinessID: businessID,
		Email:      "maria@example.com",
	})
	assert.ErrorIs(t, err, ErrInternal)

	_, err = svc.GetCustomerBookings(context.Background(), &models.GetCustomerBookingsRequest{
		BusinessID: businessID,
		Email:      "maria@example.com",
	})
	assert.ErrorIs(t, err, ErrInternal)
}

func TestService_SendReminders_UsesTomorrowInBusinessTime(t *testing.T) {
	repo := &mockBookingRepo{}
	notifier := &mockNotifier{}

	// 22:30 по времени салона 1 июня, завтра 2 июня
	from := time.Date(2030, 6, 2, 0, 0, 0, 0, testLocation)
	to := time.Date(2030, 6, 3, 0, 0, 0, 0, testLocation)

	first := sampleBooking(domain.StatusConfirmed)
	second := sampleBooking(domain.StatusConfirmed)
	second.ID = "0a1b2c3d-4e5f-4607-8819-2a3b4c5d6e7f"

	repo.On("ListPendingReminders", mock.Anything,
		mock.MatchedBy(func(t time.Time) bool { return t.Equal(from) }),
		mock.MatchedBy(func(t time.Time) bool { return t.Equal(to) }),
	).Return([]*domain.Booking{first, second}, nil)
	repo.On("MarkReminderSent", mock.Anything, first.ID, testNow).Return(nil)
	repo.On("MarkReminderSent", mock.Anything, second.ID, testNow).Return(errors.New("db down"))
	notifier.On("Notify", mock.MatchedBy(func(e domain.NotificationEvent) bool {
		return e.Type == domain.NotificationBookingReminder
	})).Return(true).Twice()

	svc := newTestService(repo, notifier)
	resp, err := svc.SendReminders(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Processed)
	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestService_SendReminders_DroppedReminderStaysPending(t *testing.T) {
	repo := &mockBookingRepo{}
	notifier := &mockNotifier{}

	queued := sampleBooking(domain.StatusConfirmed)
	dropped := sampleBooking(domain.StatusConfirmed)
	dropped.ID = "0a1b2c3d-4e5f-4607-8819-2a3b4c5d6e7f"

	repo.On("ListPendingReminders", mock.Anything, mock.Anything, mock.Anything).
		Return([]*domain.Booking{queued, dropped}, nil)
	repo.On("MarkReminderSent", mock.Anything, queued.ID, testNow).Return(nil)
	notifier.On("Notify", mock.MatchedBy(func(e domain.NotificationEvent) bool {
		return e.Booking.ID == queued.ID
	})).Return(true)
	notifier.On("Notify", mock.MatchedBy(func(e domain.NotificationEvent) bool {
		return e.Booking.ID == dropped.ID
	})).Return(false)

	svc := newTestService(repo, notifier)
	resp, err := svc.SendReminders(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Processed)
	repo.AssertNotCalled(t, "MarkReminderSent", mock.Anything, dropped.ID, mock.Anything)
	repo.AssertExpectations(t)
}
