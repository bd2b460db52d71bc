package subscription

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// Repository репозиторий web-push подписок
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория подписок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Upsert сохраняет подписку; повторная регистрация того же браузера обновляет user agent
func (r *Repository) Upsert(ctx context.Context, sub *domain.PushSubscription) (*domain.PushSubscription, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	sub.Email = strings.ToLower(strings.TrimSpace(sub.Email))

	query, args, err := psqlbuilder.Insert("push_subscriptions").
		Columns("business_id", "user_email", "customer_id", "user_agent", "subscription").
		Values(sub.BusinessID, sub.Email, sub.CustomerID, sub.UserAgent, []byte(sub.Subscription)).
		Suffix("ON CONFLICT (business_id, user_email, subscription) DO UPDATE SET " +
			"user_agent = EXCLUDED.user_agent, customer_id = COALESCE(EXCLUDED.customer_id, push_subscriptions.customer_id) " +
			"RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&sub.ID, &sub.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %w", ErrExecQuery, err)
	}

	return sub, nil
}

// ListByEmail подписки клиента салона
func (r *Repository) ListByEmail(ctx context.Context, businessID, email string) ([]domain.PushSubscription, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"business_id",
		"user_email",
		"customer_id",
		"user_agent",
		"subscription",
		"created_at",
	).
		From("push_subscriptions").
		Where(squirrel.Eq{"business_id": businessID}).
		Where(squirrel.Eq{"user_email": strings.ToLower(strings.TrimSpace(email))}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByEmail - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByEmail - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	subs := make([]domain.PushSubscription, 0)
	for rows.Next() {
		var (
			sub     domain.PushSubscription
			payload []byte
		)
		err := rows.Scan(
			&sub.ID,
			&sub.BusinessID,
			&sub.Email,
			&sub.CustomerID,
			&sub.UserAgent,
			&payload,
			&sub.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByEmail - scan row: %v", ErrScanRow, err)
		}
		sub.Subscription = payload
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByEmail - rows error: %v", ErrScanRow, err)
	}

	return subs, nil
}

// Delete удаляет подписку, например после ответа 410 от push-шлюза
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("push_subscriptions").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSubscriptionNotFound
	}

	return nil
}
