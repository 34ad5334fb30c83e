package admin_upcoming

import (
	"context"

	"github.com/serenity-spa/booking-agent/internal/domain"
)

type BookingService interface {
	GetUpcoming(ctx context.Context) ([]*domain.Appointment, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
