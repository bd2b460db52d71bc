package catalog

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// Repository репозиторий каталога услуг
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория услуг
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetActiveByIDs активные услуги салона из списка ids
// Отсутствующие и неактивные услуги в результат не попадают
func (r *Repository) GetActiveByIDs(ctx context.Context, businessID string, ids []string) ([]domain.Service, error) {
	if len(ids) == 0 {
		return []domain.Service{}, nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"business_id",
		"title",
		"price",
		"duration",
		"is_active",
	).
		From("services").
		Where(squirrel.Eq{"business_id": businessID}).
		Where(squirrel.Eq{"id": ids}).
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("title ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByIDs - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	services := make([]domain.Service, 0, len(ids))
	for rows.Next() {
		var service domain.Service
		err := rows.Scan(
			&service.ID,
			&service.BusinessID,
			&service.Title,
			&service.Price,
			&service.DurationMinutes,
			&service.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetActiveByIDs - scan row: %v", ErrScanRow, err)
		}
		services = append(services, service)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetActiveByIDs - rows error: %v", ErrScanRow, err)
	}

	return services, nil
}
