package get_availability

import (
	"context"
	"fmt"
	"time"

	"github.com/serenity-spa/booking-agent/internal/domain"
)

// UseCase use case получения доступности слотов
type UseCase struct {
	scheduler SlotScheduler
	logger    Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(scheduler SlotScheduler, logger Logger) *UseCase {
	return &UseCase{
		scheduler: scheduler,
		logger:    logger,
	}
}

// Execute возвращает свободные слоты на дату или, без даты, список доступных дат.
// Слоты пересчитываются при каждом вызове и отражают последнюю зафиксированную
// мутацию записей.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.Date == "" {
		return uc.availableDates(ctx, req.HorizonDays)
	}

	date, err := time.Parse(domain.DateFormat, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, req.Date)
	}

	slots, err := uc.scheduler.FreeSlots(ctx, date)
	if err != nil {
		uc.logger.Error("GetAvailability: free slots failed for %s: %v", req.Date, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	out := make([]string, 0, len(slots))
	for _, slot := range slots {
		out = append(out, slot.String())
	}

	return &Response{
		Date:  req.Date,
		Open:  uc.scheduler.IsBusinessDay(date),
		Slots: out,
	}, nil
}

func (uc *UseCase) availableDates(ctx context.Context, horizonDays int) (*Response, error) {
	dates, err := uc.scheduler.AvailableDates(ctx, horizonDays)
	if err != nil {
		uc.logger.Error("GetAvailability: available dates failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	out := make([]string, 0, len(dates))
	for _, date := range dates {
		out = append(out, date.Format(domain.DateFormat))
	}

	return &Response{Open: true, AvailableDates: out}, nil
}
