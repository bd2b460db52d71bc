package get_available_slots

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
)

// UseCase use case для получения свободных слотов записи
type UseCase struct {
	scheduleRepo ScheduleRepository
	bookingRepo  BookingRepository
	policies     PolicyResolver
	location     *time.Location
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger

	defaultDuration int
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	scheduleRepo ScheduleRepository,
	bookingRepo BookingRepository,
	policies PolicyResolver,
	location *time.Location,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		scheduleRepo: scheduleRepo,
		bookingRepo:  bookingRepo,
		policies:     policies,
		location:     location,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,

		defaultDuration: domain.DefaultDurationMinutes,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// WithDefaultDuration длительность услуги, когда клиент ее не указал
func (uc *UseCase) WithDefaultDuration(minutes int) *UseCase {
	if minutes > 0 && minutes <= domain.MinutesPerDay {
		uc.defaultDuration = minutes
	}
	return uc
}

// Execute выполняет use case получения свободных слотов
// Ошибки чтения расписания не возвращаются клиенту: ответ пустой и помечен Degraded
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: business=%s, date=%s, staff=%s, duration=%s",
		req.BusinessID, req.Date, req.StaffID, req.Duration)

	// 1. Валидация входных данных
	parsed, err := validateRequest(req, uc.defaultDuration)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	resp := &Response{
		Date:            parsed.date,
		Selector:        parsed.selector,
		DurationMinutes: parsed.duration,
		Slots:           []string{},
	}

	// 2. Прошедшая дата не требует обращения к БД
	now := uc.timeProvider.Now()
	if parsed.date.Before(scheduling.CivilDate(now, uc.location)) {
		uc.observe(resp)
		return resp, nil
	}

	// 3. Параметры сетки салона
	policy, err := uc.policies.Resolve(ctx, parsed.businessID)
	if err != nil {
		return uc.degraded(resp, "resolve policy", parsed.businessID, err), nil
	}

	// 4. Смены на день недели
	windows, err := uc.scheduleRepo.ListWindows(ctx, parsed.businessID, int(parsed.date.Weekday()))
	if err != nil {
		return uc.degraded(resp, "list windows", parsed.businessID, err), nil
	}
	if len(windows) == 0 {
		uc.observe(resp)
		return resp, nil
	}

	// 5. Занятость за сутки салона
	var staffIDs []string
	if !parsed.selector.IsAny() {
		staffIDs = []string{parsed.selector.StaffID}
	}
	from := scheduling.StartOfDay(parsed.date, 0, uc.location)
	to := scheduling.StartOfDay(parsed.date, domain.MinutesPerDay, uc.location)

	busy, err := uc.bookingRepo.ListBusy(ctx, parsed.businessID, staffIDs, from, to)
	if err != nil {
		return uc.degraded(resp, "list busy intervals", parsed.businessID, err), nil
	}

	// 6. Расчет
	slots, err := scheduling.ComputeAvailableSlots(scheduling.SlotQuery{
		Date:            parsed.date,
		Selector:        parsed.selector,
		DurationMinutes: parsed.duration,
		StepMinutes:     policy.SlotStepMinutes,
		BufferMinutes:   policy.MinNoticeMinutes,
		Now:             now,
		Location:        uc.location,
	}, windows, busy)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: invalid slot query: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	resp.Slots = slots
	uc.observe(resp)

	uc.logger.Info("GetAvailableSlots: found %d slots for business=%s on %s",
		len(slots), parsed.businessID, parsed.date.Format(domain.DateFormat))
	return resp, nil
}

func (uc *UseCase) degraded(resp *Response, step, businessID string, err error) *Response {
	uc.logger.Error("GetAvailableSlots: failed to %s for business=%s: %v", step, businessID, err)
	resp.Slots = []string{}
	resp.Degraded = true
	uc.observe(resp)
	return resp
}

func (uc *UseCase) observe(resp *Response) {
	if uc.metrics != nil {
		uc.metrics.ObserveAvailability(len(resp.Slots), resp.Degraded)
	}
}
