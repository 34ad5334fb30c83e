package client

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/serenity-spa/booking-agent/internal/domain"
	"github.com/serenity-spa/booking-agent/pkg/psqlbuilder"
	"github.com/serenity-spa/booking-agent/pkg/txmanager"
)

// DBExecutor абстракция над *sql.DB для поддержки транзакций из контекста
type DBExecutor = txmanager.Executor

// Repository репозиторий для работы с клиентами студии
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория клиентов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetOrCreate возвращает клиента по телефону, создавая пустой профиль при первом
// обращении. Телефон нормализуется перед поиском.
func (r *Repository) GetOrCreate(ctx context.Context, phone string) (*domain.Client, error) {
	normalized := domain.NormalizePhone(phone)

	existing, err := r.GetByPhone(ctx, normalized)
	if err == nil {
		return existing, nil
	}
	if err != ErrClientNotFound {
		return nil, err
	}

	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("clients").
		Columns("phone", "preferences").
		Values(normalized, []byte("{}")).
		Suffix("ON CONFLICT (phone) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetOrCreate - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: GetOrCreate - execute insert: %v", ErrExecQuery, err)
	}

	return r.GetByPhone(ctx, normalized)
}

// GetByPhone получает клиента по нормализованному телефону
func (r *Repository) GetByPhone(ctx context.Context, phone string) (*domain.Client, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"phone",
		"name",
		"email",
		"preferences",
		"appointment_count",
		"total_spent",
		"created_at",
		"updated_at",
	).
		From("clients").
		Where(squirrel.Eq{"phone": domain.NormalizePhone(phone)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByPhone - build select query: %v", ErrBuildQuery, err)
	}

	var client domain.Client
	var preferences []byte
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&client.Phone,
		&client.Name,
		&client.Email,
		&preferences,
		&client.AppointmentCount,
		&client.TotalSpent,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByPhone - scan client: %v", ErrScanRow, err)
	}

	if len(preferences) > 0 {
		if err := json.Unmarshal(preferences, &client.Preferences); err != nil {
			return nil, fmt.Errorf("%w: GetByPhone - decode preferences: %v", ErrScanRow, err)
		}
	}
	client.CreatedAt = createdAt.Time
	client.UpdatedAt = updatedAt.Time
	return &client, nil
}

// Update сохраняет профиль клиента (имя, email, предпочтения, счетчики)
func (r *Repository) Update(ctx context.Context, client *domain.Client) error {
	executor := txmanager.GetExecutor(ctx, r.db)

	preferences, err := json.Marshal(client.Preferences)
	if err != nil {
		return fmt.Errorf("%w: Update - encode preferences: %v", ErrBuildQuery, err)
	}

	query, args, err := psqlbuilder.Update("clients").
		Set("name", client.Name).
		Set("email", client.Email).
		Set("preferences", preferences).
		Set("appointment_count", client.AppointmentCount).
		Set("total_spent", client.TotalSpent).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"phone": client.Phone}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - rows affected: %v", ErrExecQuery, err)
	}
	if affected == 0 {
		return ErrClientNotFound
	}
	return nil
}

// RecordBooking увеличивает счетчики клиента после успешного создания записи
func (r *Repository) RecordBooking(ctx context.Context, phone string, price float64) error {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("clients").
		Set("appointment_count", squirrel.Expr("appointment_count + 1")).
		Set("total_spent", squirrel.Expr("total_spent + ?", price)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"phone": domain.NormalizePhone(phone)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: RecordBooking - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: RecordBooking - execute update: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: RecordBooking - rows affected: %v", ErrExecQuery, err)
	}
	if affected == 0 {
		return ErrClientNotFound
	}
	return nil
}
