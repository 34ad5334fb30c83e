package conversation

import (
	"context"
	"time"

	"github.com/serenity-spa/booking-agent/internal/domain"
	"github.com/serenity-spa/booking-agent/internal/integrations/stripepay"
	"github.com/serenity-spa/booking-agent/internal/nlu"
	"github.com/serenity-spa/booking-agent/internal/service/scheduler"
	"github.com/serenity-spa/booking-agent/pkg/types"
)

// MessageParser разбор сообщений клиента на намерения и данные
type MessageParser interface {
	ClassifyIntent(message string) nlu.Intent
	Extract(message string) nlu.Extracted
	ExtractDate(message string) string
	ExtractTime(message string) string
}

// SlotScheduler движок доступности слотов
type SlotScheduler interface {
	FreeSlots(ctx context.Context, date time.Time) ([]types.TimeString, error)
	AvailableDates(ctx context.Context, horizonDays int) ([]time.Time, error)
	Validate(ctx context.Context, dateStr, timeStr, serviceKey string) (*scheduler.ValidationResult, error)
	Deposit(serviceKey string, price float64) float64
}

// BookingService операции над записями
type BookingService interface {
	Create(ctx context.Context, phone, serviceKey, dateStr, timeStr, notes string) (*domain.Appointment, *scheduler.ValidationResult, error)
	GetByPhone(ctx context.Context, phone string) ([]*domain.Appointment, error)
	Cancel(ctx context.Context, id string) (float64, error)
	Reschedule(ctx context.Context, id, dateStr, timeStr string) (*scheduler.ValidationResult, error)
	RefundAmount(appt *domain.Appointment) float64
	SetPaymentRef(ctx context.Context, id, paymentRef string) error
}

// ClientStore хранилище профилей клиентов
type ClientStore interface {
	GetOrCreate(ctx context.Context, phone string) (*domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
}

// DepositPayments создание платежных сессий для депозитов
type DepositPayments interface {
	Enabled() bool
	CreateDepositSession(appointmentID string, amount float64, clientEmail string) (*stripepay.CheckoutLink, error)
}

// Assistant генеративный ассистент для реплик вне сценария бронирования.
// nil-значение означает, что ассистент выключен.
type Assistant interface {
	GenerateReply(ctx context.Context, phone, userMessage string, cfg *domain.BusinessConfig, stage string) (string, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
