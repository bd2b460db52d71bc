package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo BookingRepository
	txManager   TransactionManager
	notifier    Notifier
	location    *time.Location
	now         func() time.Time
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	txManager TransactionManager,
	notifier Notifier,
	location *time.Location,
	now func() time.Time,
	logger Logger,
) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		bookingRepo: bookingRepo,
		txManager:   txManager,
		notifier:    notifier,
		location:    location,
		now:         now,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID
// Владение подтверждается парой email + салон, чужая запись неотличима от отсутствующей
func (s *Service) GetByID(ctx context.Context, req *models.GetBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%s for business=%s", req.BookingID, req.BusinessID)

	var booking *domain.Booking
	err := s.readOnly(ctx, "GetByID", func(ctx context.Context) error {
		var err error
		booking, err = s.getOwned(ctx, "GetByID", req.BookingID, req.BusinessID, req.Email)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched booking id=%s", req.BookingID)
	return models.FromDomainBooking(booking, s.location), nil
}

// GetCustomerBookings история записей клиента салона, сначала новые
func (s *Service) GetCustomerBookings(ctx context.Context, req *models.GetCustomerBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetCustomerBookings: fetching bookings for business=%s", req.BusinessID)

	if !isUUID(req.BusinessID) || strings.TrimSpace(req.Email) == "" {
		return nil, fmt.Errorf("%w: businessId and email are required", ErrInvalidInput)
	}

	var bookings []*domain.Booking
	err := s.readOnly(ctx, "GetCustomerBookings", func(ctx context.Context) error {
		var err error
		bookings, err = s.bookingRepo.ListByCustomer(ctx, req.BusinessID, req.Email)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("GetCustomerBookings: successfully fetched %d bookings for business=%s", len(bookings), req.BusinessID)
	return models.FromDomainBookingList(bookings, s.location), nil
}

// Cancel отменяет бронирование клиента
// Уведомление об отмене отправляется асинхронно и не влияет на результат
func (s *Service) Cancel(ctx context.Context, req *models.CancelBookingRequest) error {
	s.logger.Info("Cancel: cancelling booking id=%s for business=%s", req.BookingID, req.BusinessID)

	booking, err := s.getOwned(ctx, "Cancel", req.BookingID, req.BusinessID, req.Email)
	if err != nil {
		return err
	}

	if !booking.CanBeCancelled() {
		s.logger.Warn("Cancel: booking id=%s cannot be cancelled, status=%s", req.BookingID, booking.Status)
		return ErrCannotCancel
	}

	if err := s.bookingRepo.Cancel(ctx, booking.ID); err != nil {
		// Статус мог смениться между чтением и обновлением
		if errors.Is(err, bookingRepo.ErrCannotCancel) {
			s.logger.Warn("Cancel: booking id=%s changed status concurrently", req.BookingID)
			return ErrCannotCancel
		}
		s.logger.Error("Cancel: repository error for booking id=%s: %v", req.BookingID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	booking.Status = domain.StatusCancelled
	s.notify(domain.NotificationBookingCancelled, booking)

	s.logger.Info("Cancel: successfully cancelled booking id=%s", req.BookingID)
	return nil
}

// CompleteElapsed завершает подтвержденные записи, время которых прошло
func (s *Service) CompleteElapsed(ctx context.Context) (*models.SweepResponse, error) {
	now := s.now()

	completed, err := s.bookingRepo.CompleteElapsed(ctx, now)
	if err != nil {
		s.logger.Error("CompleteElapsed: repository error: %v", err)
		return nil, fmt.Errorf("%w: CompleteElapsed - repository error: %v", ErrInternal, err)
	}

	if completed > 0 {
		s.logger.Info("CompleteElapsed: completed %d bookings", completed)
	}
	return &models.SweepResponse{Processed: completed}, nil
}

// SendReminders ставит в очередь напоминания о визитах на завтрашний день салона
// Запись помечается только после того, как очередь приняла уведомление.
// Отброшенное напоминание остается неотмеченным до следующего запуска.
func (s *Service) SendReminders(ctx context.Context) (*models.SweepResponse, error) {
	now := s.now()
	tomorrow := scheduling.CivilDate(now, s.location).AddDate(0, 0, 1)
	from := scheduling.StartOfDay(tomorrow, 0, s.location)
	to := scheduling.StartOfDay(tomorrow, domain.MinutesPerDay, s.location)

	bookings, err := s.bookingRepo.ListPendingReminders(ctx, from, to)
	if err != nil {
		s.logger.Error("SendReminders: repository error: %v", err)
		return nil, fmt.Errorf("%w: SendReminders - repository error: %v", ErrInternal, err)
	}

	var sent int64
	for _, booking := range bookings {
		if !s.notify(domain.NotificationBookingReminder, booking) {
			s.logger.Warn("SendReminders: reminder for booking id=%s not queued, will retry", booking.ID)
			continue
		}
		if err := s.bookingRepo.MarkReminderSent(ctx, booking.ID, now); err != nil {
			s.logger.Error("SendReminders: failed to mark booking id=%s: %v", booking.ID, err)
			continue
		}
		sent++
	}

	if sent > 0 {
		s.logger.Info("SendReminders: queued %d reminders for %s", sent, tomorrow.Format(domain.DateFormat))
	}
	return &models.SweepResponse{Processed: sent}, nil
}

func (s *Service) getOwned(ctx context.Context, op, bookingID, businessID, email string) (*domain.Booking, error) {
	if !isUUID(bookingID) || !isUUID(businessID) || strings.TrimSpace(email) == "" {
		s.logger.Warn("%s: invalid input for booking id=%s", op, bookingID)
		return nil, fmt.Errorf("%w: bookingId, businessId and email are required", ErrInvalidInput)
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%s not found", op, bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%s: %v", op, bookingID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	if booking.BusinessID != businessID || !strings.EqualFold(booking.CustomerEmail, strings.TrimSpace(email)) {
		s.logger.Warn("%s: booking id=%s does not belong to requester", op, bookingID)
		return nil, ErrBookingNotFound
	}

	return booking, nil
}

// readOnly выполняет чтение в транзакции только для чтения
// Ошибки сервиса возвращаются как есть, остальные оборачиваются в ErrInternal
func (s *Service) readOnly(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	err := s.txManager.DoReadOnly(ctx, fn)
	if err == nil || errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrBookingNotFound) || errors.Is(err, ErrInternal) {
		return err
	}
	s.logger.Error("%s: repository error: %v", op, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}

func (s *Service) notify(eventType domain.NotificationType, booking *domain.Booking) bool {
	if s.notifier == nil {
		return false
	}
	return s.notifier.Notify(domain.NotificationEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		Booking:    *booking,
		OccurredAt: s.now(),
	})
}

func isUUID(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}
