package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	scheduleRepo ScheduleRepository
	catalogRepo  CatalogRepository
	customerRepo CustomerRepository
	policies     PolicyResolver
	txManager    TransactionManager
	notifier     Notifier
	shuffler     scheduling.Shuffler
	location     *time.Location
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	scheduleRepo ScheduleRepository,
	catalogRepo CatalogRepository,
	customerRepo CustomerRepository,
	policies PolicyResolver,
	txManager TransactionManager,
	notifier Notifier,
	shuffler scheduling.Shuffler,
	location *time.Location,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		scheduleRepo: scheduleRepo,
		catalogRepo:  catalogRepo,
		customerRepo: customerRepo,
		policies:     policies,
		txManager:    txManager,
		notifier:     notifier,
		shuffler:     shuffler,
		location:     location,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case создания бронирования
// Выбор мастера и запись выполняются в одной сериализуемой транзакции
// под advisory-блокировками мастеров, поэтому параллельные запросы на одно время
// не могут оба завершиться успехом.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	resp, err := uc.execute(ctx, req)
	if uc.metrics != nil {
		uc.metrics.ObserveBooking(Reason(err))
	}
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: business=%s, date=%s, time=%s, staff=%s, services=%d",
		req.BusinessID, req.Date, req.Time, req.StaffID, len(req.ServiceIDs))

	// 1. Валидация входных данных
	parsed, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Услуги из каталога, цена и длительность считаются на сервере
	services, err := uc.catalogRepo.GetActiveByIDs(ctx, parsed.businessID, parsed.serviceIDs)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to load services: %v", err)
		return nil, fmt.Errorf("%w: failed to load services: %v", ErrInternal, err)
	}
	if len(services) != len(parsed.serviceIDs) {
		uc.logger.Warn("CreateBooking: requested %d services, found %d active", len(parsed.serviceIDs), len(services))
		return nil, ErrInvalidServices
	}

	items, totalPrice, duration := buildItems(services)
	if duration <= 0 {
		return nil, ErrInvalidServices
	}

	// 3. Время начала не раньше now + буфер салона
	policy, err := uc.policies.Resolve(ctx, parsed.businessID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to resolve policy: %v", err)
		return nil, fmt.Errorf("%w: failed to resolve policy: %v", ErrInternal, err)
	}

	now := uc.timeProvider.Now()
	start := scheduling.StartOfDay(parsed.date, parsed.startMinute, uc.location)
	end := start.Add(time.Duration(duration) * time.Minute)

	if start.Before(now.Add(time.Duration(policy.MinNoticeMinutes) * time.Minute)) {
		uc.logger.Warn("CreateBooking: start %s is earlier than allowed notice of %d minutes",
			start.Format(time.RFC3339), policy.MinNoticeMinutes)
		return nil, ErrSlotUnavailable
	}

	status := domain.InitialStatus(parsed.paymentMethod)

	var result *domain.Booking

	// 4. Выбор мастера и запись в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Смены на день недели
		windows, err := uc.scheduleRepo.ListWindows(txCtx, parsed.businessID, int(parsed.date.Weekday()))
		if err != nil {
			return fmt.Errorf("%w: failed to list windows: %w", ErrInternal, err)
		}

		candidates := candidateStaff(windows, parsed.selector)
		if len(candidates) == 0 {
			return noCandidateError(parsed.selector)
		}

		// 4.2. Блокируем мастеров-кандидатов
		if err := uc.bookingRepo.LockStaff(txCtx, candidates); err != nil {
			return fmt.Errorf("%w: failed to lock staff: %w", ErrInternal, err)
		}

		// 4.3. Свежая занятость под блокировкой
		dayStart := scheduling.StartOfDay(parsed.date, 0, uc.location)
		dayEnd := scheduling.StartOfDay(parsed.date, domain.MinutesPerDay, uc.location)
		busy, err := uc.bookingRepo.ListBusy(txCtx, parsed.businessID, candidates, dayStart, dayEnd)
		if err != nil {
			return fmt.Errorf("%w: failed to list busy intervals: %w", ErrInternal, err)
		}

		// 4.4. Выбор мастера
		staffID, err := scheduling.ResolveStaffAssignment(scheduling.AssignmentQuery{
			Selector:        parsed.selector,
			Date:            parsed.date,
			StartMinute:     parsed.startMinute,
			DurationMinutes: duration,
			Location:        uc.location,
		}, windows, busy, uc.shuffler)
		if err != nil {
			return err
		}

		// 4.5. Контрольная проверка по точному интервалу
		overlap, err := uc.bookingRepo.HasOverlap(txCtx, staffID, start, end)
		if err != nil {
			return fmt.Errorf("%w: failed to check overlap: %w", ErrInternal, err)
		}
		if overlap {
			return errStaffBusy
		}

		// 4.6. Клиент по (businessId, email)
		customer, err := uc.customerRepo.Upsert(txCtx, &domain.Customer{
			BusinessID: parsed.businessID,
			Email:      parsed.client.Email,
			FullName:   parsed.client.Name,
			Phone:      parsed.client.Phone,
		})
		if err != nil {
			return fmt.Errorf("%w: failed to upsert customer: %w", ErrInternal, err)
		}

		// 4.7. Бронирование с позициями
		created, err := uc.bookingRepo.Create(txCtx, &domain.Booking{
			BusinessID:    parsed.businessID,
			CustomerID:    customer.ID,
			StaffID:       staffID,
			StaffName:     staffName(windows, staffID),
			Date:          parsed.date,
			StartTime:     start,
			EndTime:       end,
			Status:        status,
			TotalPrice:    totalPrice,
			PaymentMethod: parsed.paymentMethod,
			CustomerName:  parsed.client.Name,
			CustomerEmail: parsed.client.Email,
			CustomerPhone: parsed.client.Phone,
			Comment:       parsed.client.Comment,
			Items:         items,
		})
		if err != nil {
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		mapped := mapTxError(err)
		if errors.Is(mapped, ErrInternal) {
			uc.logger.Error("CreateBooking: transaction failed: %v", err)
		} else {
			uc.logger.Warn("CreateBooking: booking rejected: %v", err)
		}
		return nil, mapped
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%s staff=%s status=%s",
		result.ID, result.StaffID, result.Status)

	// 5. Уведомление только после фиксации и не для оплаты картой
	if result.Status == domain.StatusConfirmed && uc.notifier != nil {
		uc.notifier.Notify(domain.NotificationEvent{
			ID:         uuid.NewString(),
			Type:       domain.NotificationBookingConfirmed,
			Booking:    *result,
			OccurredAt: now,
		})
	}

	return &Response{
		BookingID:  result.ID,
		CustomerID: result.CustomerID,
		StaffID:    result.StaffID,
		Status:     result.Status,
	}, nil
}

// mapTxError приводит ошибку транзакции к ошибке use case
// Конфликты сериализации после всех повторов и нарушение exclusion constraint
// означают, что время занял параллельный запрос.
func mapTxError(err error) error {
	switch {
	case errors.Is(err, scheduling.ErrNoStaffAvailable), errors.Is(err, ErrNoStaffAvailable):
		return ErrNoStaffAvailable
	case errors.Is(err, scheduling.ErrSlotUnavailable), errors.Is(err, ErrSlotUnavailable):
		return ErrSlotUnavailable
	case errors.Is(err, errStaffBusy), errors.Is(err, bookingRepo.ErrSlotNotAvailable):
		return ErrSlotUnavailable
	case bookingRepo.IsExclusionViolation(err), txmanager.IsRetryable(err):
		return ErrSlotUnavailable
	case errors.Is(err, ErrInternal):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}

func noCandidateError(selector domain.StaffSelector) error {
	if selector.IsAny() {
		return ErrNoStaffAvailable
	}
	return ErrSlotUnavailable
}

// candidateStaff уникальные мастера со сменой, подходящие под выбор клиента
func candidateStaff(windows []domain.WorkingWindow, selector domain.StaffSelector) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0)
	for _, w := range windows {
		if !w.IsWorking || !selector.Matches(w.StaffID) {
			continue
		}
		if _, ok := seen[w.StaffID]; ok {
			continue
		}
		seen[w.StaffID] = struct{}{}
		result = append(result, w.StaffID)
	}
	return result
}

func staffName(windows []domain.WorkingWindow, staffID string) string {
	for _, w := range windows {
		if w.StaffID == staffID {
			return w.StaffName
		}
	}
	return ""
}

func buildItems(services []domain.Service) ([]domain.BookingItem, float64, int) {
	items := make([]domain.BookingItem, 0, len(services))
	var (
		total    float64
		duration int
	)
	for _, s := range services {
		items = append(items, domain.BookingItem{
			ServiceID:       s.ID,
			ServiceName:     s.Title,
			Price:           s.Price,
			DurationMinutes: s.DurationMinutes,
		})
		total += s.Price
		duration += s.DurationMinutes
	}
	return items, total, duration
}
