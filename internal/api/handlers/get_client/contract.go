package get_client

import (
	"context"

	"github.com/serenity-spa/booking-agent/internal/domain"
)

type ClientStorage interface {
	GetByPhone(ctx context.Context, phone string) (*domain.Client, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
