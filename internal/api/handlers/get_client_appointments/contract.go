package get_client_appointments

import (
	"context"

	"github.com/serenity-spa/booking-agent/internal/domain"
)

type BookingService interface {
	GetByPhone(ctx context.Context, phone string) ([]*domain.Appointment, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
