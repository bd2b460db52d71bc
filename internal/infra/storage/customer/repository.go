package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// Repository репозиторий клиентов салона
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория клиентов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Upsert создает клиента или обновляет имя и телефон существующего
// Клиент уникален по паре (business_id, email), email хранится в нижнем регистре
func (r *Repository) Upsert(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	customer.Email = strings.ToLower(strings.TrimSpace(customer.Email))

	query, args, err := psqlbuilder.Insert("customers").
		Columns("business_id", "email", "full_name", "phone").
		Values(customer.BusinessID, customer.Email, customer.FullName, customer.Phone).
		Suffix("ON CONFLICT (business_id, email) DO UPDATE SET " +
			"full_name = EXCLUDED.full_name, phone = EXCLUDED.phone, updated_at = NOW() " +
			"RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&customer.ID); err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %w", ErrExecQuery, err)
	}

	return customer, nil
}

// GetByEmail получает клиента салона по email
func (r *Repository) GetByEmail(ctx context.Context, businessID, email string) (*domain.Customer, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "business_id", "email", "full_name", "phone").
		From("customers").
		Where(squirrel.Eq{"business_id": businessID}).
		Where(squirrel.Eq{"email": strings.ToLower(strings.TrimSpace(email))}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByEmail - build select query: %v", ErrBuildQuery, err)
	}

	var customer domain.Customer
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&customer.ID,
		&customer.BusinessID,
		&customer.Email,
		&customer.FullName,
		&customer.Phone,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByEmail - scan customer: %v", ErrScanRow, err)
	}

	return &customer, nil
}
