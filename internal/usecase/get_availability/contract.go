package get_availability

import (
	"context"
	"time"

	"github.com/serenity-spa/booking-agent/pkg/types"
)

// SlotScheduler движок доступности слотов
type SlotScheduler interface {
	FreeSlots(ctx context.Context, date time.Time) ([]types.TimeString, error)
	AvailableDates(ctx context.Context, horizonDays int) ([]time.Time, error)
	IsBusinessDay(date time.Time) bool
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
