package schedule

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

// Repository репозиторий рабочих смен мастеров
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория смен
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListWindows рабочие смены активных мастеров салона на день недели
// Время смены возвращается в минутах от полуночи, 24:00 превращается в 1440
func (r *Repository) ListWindows(ctx context.Context, businessID string, dayOfWeek int) ([]domain.WorkingWindow, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"s.staff_id",
		"p.full_name",
		"s.day_of_week",
		"EXTRACT(EPOCH FROM s.start_time)::int / 60",
		"EXTRACT(EPOCH FROM s.end_time)::int / 60",
		"EXTRACT(EPOCH FROM s.break_start)::int / 60",
		"EXTRACT(EPOCH FROM s.break_end)::int / 60",
		"s.is_working",
	).
		From("staff_schedules s").
		Join("profiles p ON p.id = s.staff_id").
		Where(squirrel.Eq{"s.business_id": businessID}).
		Where(squirrel.Eq{"s.day_of_week": dayOfWeek}).
		Where(squirrel.Eq{"s.is_working": true}).
		Where(squirrel.Eq{"p.is_active": true}).
		OrderBy("s.staff_id ASC", "s.start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListWindows - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListWindows - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	windows := make([]domain.WorkingWindow, 0)
	for rows.Next() {
		var (
			window     domain.WorkingWindow
			breakStart sql.NullInt64
			breakEnd   sql.NullInt64
		)

		err := rows.Scan(
			&window.StaffID,
			&window.StaffName,
			&window.DayOfWeek,
			&window.StartMinute,
			&window.EndMinute,
			&breakStart,
			&breakEnd,
			&window.IsWorking,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListWindows - scan row: %v", ErrScanRow, err)
		}

		if breakStart.Valid && breakEnd.Valid {
			window.BreakStart = ptr.Ptr(int(breakStart.Int64))
			window.BreakEnd = ptr.Ptr(int(breakEnd.Int64))
		}

		windows = append(windows, window)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListWindows - rows error: %v", ErrScanRow, err)
	}

	return windows, nil
}
