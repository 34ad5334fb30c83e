package scheduler

import (
	"context"
	"time"

	"github.com/serenity-spa/booking-agent/internal/domain"
	"github.com/serenity-spa/booking-agent/pkg/types"
)

// AppointmentStore интерфейс хранилища записей, который нужен планировщику.
// Чтения всегда отражают последнюю зафиксированную мутацию: движок ничего не кэширует.
type AppointmentStore interface {
	// AppointmentsOn возвращает все неотмененные записи на дату
	AppointmentsOn(ctx context.Context, date time.Time) ([]*domain.Appointment, error)

	// Overlaps проверяет, пересекается ли интервал [start, start+duration)
	// с какой-либо неотмененной записью на дату
	Overlaps(ctx context.Context, date time.Time, start types.TimeString, durationMinutes int) (bool, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
