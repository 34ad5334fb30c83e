package bookings

import (
	"context"
	"time"

	"github.com/serenity-spa/booking-agent/internal/domain"
	"github.com/serenity-spa/booking-agent/internal/service/scheduler"
	"github.com/serenity-spa/booking-agent/pkg/types"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	GetByPhone(ctx context.Context, phone string) ([]*domain.Appointment, error)
	GetByPaymentRef(ctx context.Context, paymentRef string) (*domain.Appointment, error)
	GetUpcoming(ctx context.Context, now time.Time) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status domain.AppointmentStatus) error
	SetPaymentRef(ctx context.Context, id, paymentRef string) error
	MarkDepositPaid(ctx context.Context, id, paymentRef string) error
	Cancel(ctx context.Context, id string) error
	Reschedule(ctx context.Context, id string, date time.Time, start types.TimeString) error
}

// ClientRepository интерфейс репозитория клиентов
type ClientRepository interface {
	GetOrCreate(ctx context.Context, phone string) (*domain.Client, error)
	RecordBooking(ctx context.Context, phone string, price float64) error
}

// SlotValidator валидация запроса на бронирование и расчет депозита
type SlotValidator interface {
	Validate(ctx context.Context, dateStr, timeStr, serviceKey string) (*scheduler.ValidationResult, error)
	Deposit(serviceKey string, price float64) float64
}

// PaymentClient клиент платежей для возвратов депозитов
type PaymentClient interface {
	Enabled() bool
	Refund(sessionID string, amount float64) error
}

// TransactionManager интерфейс для управления транзакциями.
// DoSerializable выполняет функцию в транзакции уровня SERIALIZABLE:
// повторная валидация слота и вставка записи видят одно состояние базы,
// и два конкурирующих бронирования одного слота не зафиксируются оба.
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени
type RealTimeProvider struct{}

func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
