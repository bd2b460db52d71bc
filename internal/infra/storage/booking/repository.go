package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// codeExclusionViolation нарушение bookings_no_staff_overlap
const codeExclusionViolation = "23P01"

var bookingColumns = []string{
	"b.id",
	"b.business_id",
	"b.customer_id",
	"b.staff_id",
	"COALESCE(p.full_name, '')",
	"b.date",
	"b.start_time",
	"b.end_time",
	"b.status",
	"b.total_price",
	"b.payment_method",
	"b.customer_name",
	"b.customer_email",
	"b.customer_phone",
	"b.comment",
	"b.reminder_sent_at",
	"b.created_at",
	"b.updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает бронирование вместе с позициями услуг
// Должен вызываться внутри транзакции, чтобы бронирование не осталось без позиций.
// Пересечение с другой активной записью мастера отклоняется ограничением
// bookings_no_staff_overlap и возвращается как ErrSlotNotAvailable.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"business_id",
			"customer_id",
			"staff_id",
			"date",
			"start_time",
			"end_time",
			"status",
			"total_price",
			"payment_method",
			"customer_name",
			"customer_email",
			"customer_phone",
			"comment",
		).
		Values(
			booking.BusinessID,
			booking.CustomerID,
			booking.StaffID,
			booking.Date.Format(domain.DateFormat),
			booking.StartTime,
			booking.EndTime,
			booking.Status,
			booking.TotalPrice,
			booking.PaymentMethod,
			booking.CustomerName,
			booking.CustomerEmail,
			booking.CustomerPhone,
			booking.Comment,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		if IsExclusionViolation(err) {
			return nil, fmt.Errorf("%w: Create - staff %s is busy: %v", ErrSlotNotAvailable, booking.StaffID, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	if len(booking.Items) == 0 {
		return booking, nil
	}

	itemsInsert := psqlbuilder.Insert("booking_items").
		Columns("booking_id", "business_id", "service_id", "service_name", "price", "duration")
	for _, item := range booking.Items {
		itemsInsert = itemsInsert.Values(
			booking.ID,
			booking.BusinessID,
			item.ServiceID,
			item.ServiceName,
			item.Price,
			item.DurationMinutes,
		)
	}

	query, args, err = itemsInsert.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build items insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: Create - insert items: %w", ErrExecQuery, err)
	}

	return booking, nil
}

// GetByID получает бронирование по ID вместе с позициями
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.selectBookings().
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings, err := r.scanBookings(rows)
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, ErrBookingNotFound
	}

	if err := r.attachItems(ctx, bookings); err != nil {
		return nil, err
	}

	return bookings[0], nil
}

// ListByCustomer история записей клиента салона, сначала новые
// Email сравнивается без учета регистра
func (r *Repository) ListByCustomer(ctx context.Context, businessID, email string) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.selectBookings().
		Where(squirrel.Eq{"b.business_id": businessID}).
		Where(squirrel.Expr("lower(b.customer_email) = lower(?)", email)).
		OrderBy("b.start_time DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByCustomer - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByCustomer - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings, err := r.scanBookings(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, bookings); err != nil {
		return nil, err
	}

	return bookings, nil
}

// ListBusy активные интервалы мастеров салона, пересекающиеся с [from, to)
// Пустой staffIDs означает всех мастеров
func (r *Repository) ListBusy(ctx context.Context, businessID string, staffIDs []string, from, to time.Time) ([]domain.BusyInterval, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("staff_id", "start_time", "end_time").
		From("bookings").
		Where(squirrel.Eq{"business_id": businessID}).
		Where(squirrel.NotEq{"status": statusStrings(domain.NonBlockingStatuses)}).
		Where(squirrel.Lt{"start_time": to}).
		Where(squirrel.Gt{"end_time": from}).
		OrderBy("start_time ASC")

	if len(staffIDs) > 0 {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"staff_id": staffIDs})
	}

	// Внутри транзакции создания записи блокируем прочитанные строки
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListBusy - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBusy - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	busy := make([]domain.BusyInterval, 0)
	for rows.Next() {
		var interval domain.BusyInterval
		if err := rows.Scan(&interval.StaffID, &interval.Start, &interval.End); err != nil {
			return nil, fmt.Errorf("%w: ListBusy - scan row: %v", ErrScanRow, err)
		}
		busy = append(busy, interval)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListBusy - rows error: %v", ErrScanRow, err)
	}

	return busy, nil
}

// HasOverlap проверяет, есть ли у мастера активная запись, пересекающая [start, end)
func (r *Repository) HasOverlap(ctx context.Context, staffID string, start, end time.Time) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("bookings").
		Where(squirrel.Eq{"staff_id": staffID}).
		Where(squirrel.NotEq{"status": statusStrings(domain.NonBlockingStatuses)}).
		Where(squirrel.Lt{"start_time": end}).
		Where(squirrel.Gt{"end_time": start}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: HasOverlap - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("%w: HasOverlap - execute query: %w", ErrExecQuery, err)
	}

	return count > 0, nil
}

// LockStaff берет транзакционные advisory-блокировки на мастеров
// Блокировки берутся в отсортированном порядке, чтобы параллельные транзакции не взаимоблокировались
func (r *Repository) LockStaff(ctx context.Context, staffIDs []string) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return fmt.Errorf("%w: LockStaff", ErrTransaction)
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	ids := append([]string(nil), staffIDs...)
	sort.Strings(ids)

	for i, id := range ids {
		if i > 0 && ids[i-1] == id {
			continue
		}
		if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", id); err != nil {
			return fmt.Errorf("%w: LockStaff - lock staff %s: %w", ErrExecQuery, id, err)
		}
	}

	return nil
}

// Cancel переводит бронирование в cancelled, если оно еще не в терминальном статусе
func (r *Repository) Cancel(ctx context.Context, id string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": statusStrings(domain.CancellableStatuses)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrCannotCancel
	}

	return nil
}

// CompleteElapsed переводит подтвержденные записи, закончившиеся до now, в completed
// Один UPDATE: повторный и параллельный запуск безопасны
func (r *Repository) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCompleted).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"status": domain.StatusConfirmed}).
		Where(squirrel.Lt{"end_time": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CompleteElapsed - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: CompleteElapsed - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: CompleteElapsed - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

// ListPendingReminders подтвержденные записи с началом в [from, to), по которым еще не было напоминания
func (r *Repository) ListPendingReminders(ctx context.Context, from, to time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.selectBookings().
		Where(squirrel.Eq{"b.status": domain.StatusConfirmed}).
		Where(squirrel.Eq{"b.reminder_sent_at": nil}).
		Where(squirrel.GtOrEq{"b.start_time": from}).
		Where(squirrel.Lt{"b.start_time": to}).
		OrderBy("b.start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListPendingReminders - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListPendingReminders - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings, err := r.scanBookings(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, bookings); err != nil {
		return nil, err
	}

	return bookings, nil
}

// MarkReminderSent фиксирует отправку напоминания
func (r *Repository) MarkReminderSent(ctx context.Context, id string, sentAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("reminder_sent_at", sentAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkReminderSent - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: MarkReminderSent - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: MarkReminderSent - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// IsExclusionViolation сообщает, что запись отклонена ограничением на пересечение интервалов
func IsExclusionViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == codeExclusionViolation
}

func (r *Repository) selectBookings() squirrel.SelectBuilder {
	return psqlbuilder.Select(bookingColumns...).
		From("bookings b").
		LeftJoin("profiles p ON p.id = b.staff_id")
}

// attachItems догружает позиции услуг одним запросом
func (r *Repository) attachItems(ctx context.Context, bookings []*domain.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	byID := make(map[string]*domain.Booking, len(bookings))
	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		byID[b.ID] = b
		ids = append(ids, b.ID)
	}

	query, args, err := psqlbuilder.Select("booking_id", "service_id", "service_name", "price", "duration").
		From("booking_items").
		Where(squirrel.Eq{"booking_id": ids}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: attachItems - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: attachItems - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bookingID string
			item      domain.BookingItem
		)
		if err := rows.Scan(&bookingID, &item.ServiceID, &item.ServiceName, &item.Price, &item.DurationMinutes); err != nil {
			return fmt.Errorf("%w: attachItems - scan row: %v", ErrScanRow, err)
		}
		if b, ok := byID[bookingID]; ok {
			b.Items = append(b.Items, item)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: attachItems - rows error: %v", ErrScanRow, err)
	}

	return nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		var booking domain.Booking

		err := rows.Scan(
			&booking.ID,
			&booking.BusinessID,
			&booking.CustomerID,
			&booking.StaffID,
			&booking.StaffName,
			&booking.Date,
			&booking.StartTime,
			&booking.EndTime,
			&booking.Status,
			&booking.TotalPrice,
			&booking.PaymentMethod,
			&booking.CustomerName,
			&booking.CustomerEmail,
			&booking.CustomerPhone,
			&booking.Comment,
			&booking.ReminderSentAt,
			&booking.CreatedAt,
			&booking.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}

		bookings = append(bookings, &booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

func statusStrings(statuses []domain.BookingStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}
