package staff

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// Repository репозиторий мастеров салона
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория мастеров
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListActive активные мастера салона в алфавитном порядке
func (r *Repository) ListActive(ctx context.Context, businessID string) ([]domain.Staff, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"business_id",
		"full_name",
		"role",
		"avatar_url",
		"is_active",
	).
		From("profiles").
		Where(squirrel.Eq{"business_id": businessID}).
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("full_name ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActive - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	staff := make([]domain.Staff, 0)
	for rows.Next() {
		var member domain.Staff
		err := rows.Scan(
			&member.ID,
			&member.BusinessID,
			&member.FullName,
			&member.Role,
			&member.AvatarURL,
			&member.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListActive - scan row: %v", ErrScanRow, err)
		}
		staff = append(staff, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActive - rows error: %v", ErrScanRow, err)
	}

	return staff, nil
}
