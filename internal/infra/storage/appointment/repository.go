package appointment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/serenity-spa/booking-agent/internal/domain"
	"github.com/serenity-spa/booking-agent/pkg/psqlbuilder"
	"github.com/serenity-spa/booking-agent/pkg/txmanager"
	"github.com/serenity-spa/booking-agent/pkg/types"
)

var appointmentColumns = []string{
	"id",
	"client_phone",
	"service_key",
	"date",
	"start_time",
	"duration_minutes",
	"price",
	"deposit_amount",
	"payment_status",
	"status",
	"payment_ref",
	"notes",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с записями на сеансы
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись. ID генерируется здесь (uuid), если не задан.
// Если в контексте есть активная транзакция, использует её - так проверка
// занятости слота и вставка выполняются в одной сериализуемой транзакции.
func (r *Repository) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"id",
			"client_phone",
			"service_key",
			"date",
			"start_time",
			"duration_minutes",
			"price",
			"deposit_amount",
			"payment_status",
			"status",
			"payment_ref",
			"notes",
		).
		Values(
			appt.ID,
			appt.ClientPhone,
			appt.ServiceKey,
			appt.Date,
			appt.StartTime,
			appt.DurationMinutes,
			appt.Price,
			appt.DepositAmount,
			appt.PaymentStatus,
			appt.Status,
			appt.PaymentRef,
			appt.Notes,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time
	return appt, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	appt, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %v", ErrScanRow, err)
	}
	return appt, nil
}

// GetByPhone получает все записи клиента, новые первыми
func (r *Repository) GetByPhone(ctx context.Context, phone string) ([]*domain.Appointment, error) {
	builder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"client_phone": phone}).
		OrderBy("date DESC, start_time DESC")

	return r.queryAppointments(ctx, builder, "GetByPhone")
}

// AppointmentsOn получает все неотмененные записи на дату в хронологическом порядке.
// Используется движком доступности: результат всегда отражает последнюю
// зафиксированную мутацию.
func (r *Repository) AppointmentsOn(ctx context.Context, date time.Time) ([]*domain.Appointment, error) {
	builder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"date": date}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		OrderBy("start_time ASC")

	return r.queryAppointments(ctx, builder, "AppointmentsOn")
}

// GetByDateRange получает неотмененные записи в диапазоне дат (включительно)
func (r *Repository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Appointment, error) {
	builder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.GtOrEq{"date": start}).
		Where(squirrel.LtOrEq{"date": end}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		OrderBy("date ASC, start_time ASC")

	return r.queryAppointments(ctx, builder, "GetByDateRange")
}

// Overlaps проверяет, пересекается ли интервал [start, start+duration) с какой-либо
// неотмененной записью на дату. Интервалы полуоткрытые: граничащие записи не считаются
// пересечением.
func (r *Repository) Overlaps(ctx context.Context, date time.Time, start types.TimeString, durationMinutes int) (bool, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	end, err := start.AddMinutes(durationMinutes)
	if err != nil {
		return false, fmt.Errorf("%w: Overlaps - compute interval end: %v", ErrBuildQuery, err)
	}

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("appointments").
		Where(squirrel.Eq{"date": date}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		Where(squirrel.Expr("start_time < ?", end)).
		Where(squirrel.Expr("start_time + make_interval(mins => duration_minutes) > ?", start)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: Overlaps - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("%w: Overlaps - execute query: %v", ErrExecQuery, err)
	}
	return count > 0, nil
}

// GetUpcoming получает все предстоящие записи (pending/confirmed, начиная с сегодня)
func (r *Repository) GetUpcoming(ctx context.Context, now time.Time) ([]*domain.Appointment, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	builder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"status": []domain.AppointmentStatus{domain.StatusPending, domain.StatusConfirmed}}).
		Where(squirrel.Or{
			squirrel.Gt{"date": today},
			squirrel.And{
				squirrel.Eq{"date": today},
				squirrel.Gt{"start_time": types.NewTimeString(now)},
			},
		}).
		OrderBy("date ASC, start_time ASC")

	return r.queryAppointments(ctx, builder, "GetUpcoming")
}

// GetByPaymentRef находит запись по платежной ссылке Stripe
func (r *Repository) GetByPaymentRef(ctx context.Context, paymentRef string) (*domain.Appointment, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"payment_ref": paymentRef}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByPaymentRef - build select query: %v", ErrBuildQuery, err)
	}

	appt, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByPaymentRef - scan appointment: %v", ErrScanRow, err)
	}
	return appt, nil
}

// UpdateStatus обновляет статус записи
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.AppointmentStatus) error {
	return r.update(ctx, id, map[string]interface{}{"status": status}, "UpdateStatus")
}

// SetPaymentRef сохраняет платежную ссылку для записи
func (r *Repository) SetPaymentRef(ctx context.Context, id, paymentRef string) error {
	return r.update(ctx, id, map[string]interface{}{"payment_ref": paymentRef}, "SetPaymentRef")
}

// MarkDepositPaid помечает депозит оплаченным и подтверждает запись
func (r *Repository) MarkDepositPaid(ctx context.Context, id, paymentRef string) error {
	return r.update(ctx, id, map[string]interface{}{
		"payment_status": domain.PaymentDepositPaid,
		"status":         domain.StatusConfirmed,
		"payment_ref":    paymentRef,
	}, "MarkDepositPaid")
}

// Cancel помечает запись отмененной (терминальный статус, запись не удаляется)
func (r *Repository) Cancel(ctx context.Context, id string) error {
	return r.update(ctx, id, map[string]interface{}{"status": domain.StatusCancelled}, "Cancel")
}

// Reschedule переносит запись на новую дату и время
func (r *Repository) Reschedule(ctx context.Context, id string, date time.Time, start types.TimeString) error {
	return r.update(ctx, id, map[string]interface{}{
		"date":       date,
		"start_time": start,
	}, "Reschedule")
}

func (r *Repository) update(ctx context.Context, id string, set map[string]interface{}, op string) error {
	executor := txmanager.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Update("appointments").Where(squirrel.Eq{"id": id})
	for column, value := range set {
		builder = builder.Set(column, value)
	}
	builder = builder.Set("updated_at", squirrel.Expr("NOW()"))

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - rows affected: %v", ErrExecQuery, op, err)
	}
	if affected == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *Repository) queryAppointments(ctx context.Context, builder squirrel.SelectBuilder, op string) ([]*domain.Appointment, error) {
	executor := txmanager.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	appointments := make([]*domain.Appointment, 0)
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan appointment: %v", ErrScanRow, op, err)
		}
		appointments = append(appointments, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows iteration: %v", ErrExecQuery, op, err)
	}
	return appointments, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var appt domain.Appointment
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&appt.ID,
		&appt.ClientPhone,
		&appt.ServiceKey,
		&appt.Date,
		&appt.StartTime,
		&appt.DurationMinutes,
		&appt.Price,
		&appt.DepositAmount,
		&appt.PaymentStatus,
		&appt.Status,
		&appt.PaymentRef,
		&appt.Notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time
	return &appt, nil
}
