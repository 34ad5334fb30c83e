package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/serenity-spa/booking-agent/internal/domain"
	"github.com/serenity-spa/booking-agent/pkg/types"
)

// Service движок доступности и валидации слотов.
// Чистая логика поверх статической бизнес-конфигурации и хранилища записей;
// ничего не кэширует и ничего не мутирует.
type Service struct {
	store        AppointmentStore
	cfg          *domain.BusinessConfig
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр планировщика
func NewService(store AppointmentStore, cfg *domain.BusinessConfig, logger Logger) *Service {
	return &Service{
		store:        store,
		cfg:          cfg,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// ValidationResult результат валидации запроса на бронирование.
// OK=false сопровождается типизированной причиной и человекочитаемым сообщением;
// для занятого слота дополнительно заполняются альтернативы.
type ValidationResult struct {
	OK           bool
	Reason       RejectReason
	Message      string
	Service      domain.ServiceInfo
	When         time.Time
	Alternatives []types.TimeString
}

// IsBusinessDay возвращает true, если студия работает в этот день недели
func (s *Service) IsBusinessDay(date time.Time) bool {
	return !s.cfg.Hours.ForWeekday(date.Weekday()).Closed
}

// BusinessHours возвращает часы работы на дату.
// ok=false для выходных дней.
func (s *Service) BusinessHours(date time.Time) (domain.DayHours, bool) {
	hours := s.cfg.Hours.ForWeekday(date.Weekday())
	if hours.Closed {
		return domain.DayHours{Closed: true}, false
	}
	return hours, true
}

// FreeSlots возвращает свободные слоты на дату в хронологическом порядке.
// Для выходного дня возвращает пустой список. Пересчитывается при каждом
// вызове: мутации записей видны немедленно.
func (s *Service) FreeSlots(ctx context.Context, date time.Time) ([]types.TimeString, error) {
	hours, ok := s.BusinessHours(date)
	if !ok {
		return []types.TimeString{}, nil
	}

	appts, err := s.store.AppointmentsOn(ctx, date)
	if err != nil {
		s.logger.Error("FreeSlots: failed to load appointments for %s: %v", date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: load appointments: %v", ErrInternal, err)
	}

	slots, err := freeSlots(hours, s.cfg.Policy.SlotDurationMinutes, appts)
	if err != nil {
		return nil, fmt.Errorf("%w: compute free slots: %v", ErrInternal, err)
	}
	return slots, nil
}

// AvailableDates возвращает даты следующих horizonDays дней (начиная с завтра),
// в которые студия открыта и есть хотя бы один свободный слот
func (s *Service) AvailableDates(ctx context.Context, horizonDays int) ([]time.Time, error) {
	if horizonDays <= 0 {
		horizonDays = domain.DefaultHorizonDays
	}

	now := s.timeProvider.Now()
	today := dateOnly(now)

	dates := make([]time.Time, 0, horizonDays)
	for i := 1; i <= horizonDays; i++ {
		date := today.AddDate(0, 0, i)
		if !s.IsBusinessDay(date) {
			continue
		}
		slots, err := s.FreeSlots(ctx, date)
		if err != nil {
			return nil, err
		}
		if len(slots) > 0 {
			dates = append(dates, date)
		}
	}
	return dates, nil
}

// SuggestAlternatives возвращает до count свободных слотов, ближайших к
// запрошенному времени. Если запрошенное время само свободно, возвращает его одно.
func (s *Service) SuggestAlternatives(ctx context.Context, date time.Time, requested types.TimeString, count int) ([]types.TimeString, error) {
	if count <= 0 {
		count = domain.DefaultAlternativeCount
	}

	slots, err := s.FreeSlots(ctx, date)
	if err != nil {
		return nil, err
	}

	alternatives, err := nearestSlots(slots, requested, count)
	if err != nil {
		return nil, fmt.Errorf("%w: rank alternatives: %v", ErrInternal, err)
	}
	return alternatives, nil
}

// Validate проверяет запрос на бронирование (date "YYYY-MM-DD", timeOfDay "HH:MM",
// ключ услуги) и возвращает либо принятие, либо первую по порядку причину отказа.
//
// Порядок проверок - контракт: услуга, формат даты/времени, выходной день,
// окно бронирования, часы работы, занятость слота. Ошибка возвращается только
// при сбое хранилища.
func (s *Service) Validate(ctx context.Context, dateStr, timeStr, serviceKey string) (*ValidationResult, error) {
	// 1. Услуга должна существовать в каталоге
	svc, ok := s.cfg.Service(serviceKey)
	if !ok {
		return reject(ReasonUnknownService,
			fmt.Sprintf("Service %q is not available. Please choose from our available services.", serviceKey)), nil
	}

	// 2. Дата и время должны парситься.
	// Дата интерпретируется в зоне часов сервиса: сравнение с окном бронирования
	// ниже должно идти в одной зоне с now, иначе граница min_advance смещается
	// на величину смещения зоны.
	now := s.timeProvider.Now()
	date, err := time.ParseInLocation(domain.DateFormat, dateStr, now.Location())
	if err != nil {
		return reject(ReasonMalformedDateTime,
			"Invalid date or time format. Please use YYYY-MM-DD for date and HH:MM for time (e.g. 2025-01-15 14:30)."), nil
	}
	startTime, err := types.NewTimeStringFromString(timeStr)
	if err != nil {
		return reject(ReasonMalformedDateTime,
			"Invalid date or time format. Please use YYYY-MM-DD for date and HH:MM for time (e.g. 2025-01-15 14:30)."), nil
	}

	startMin, err := startTime.Minutes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	when := date.Add(time.Duration(startMin) * time.Minute)

	// 3. Рабочий день
	if !s.IsBusinessDay(date) {
		return reject(ReasonClosedDay,
			fmt.Sprintf("We're closed on %s. Please choose a different day.", date.Weekday())), nil
	}

	// 4. Окно бронирования: now+minAdvance <= when <= now+maxAdvance, обе границы включительно
	minTime := now.Add(time.Duration(s.cfg.Policy.MinAdvanceHours) * time.Hour)
	maxTime := now.AddDate(0, 0, s.cfg.Policy.MaxAdvanceDays)
	if when.Before(minTime) || when.After(maxTime) {
		return reject(ReasonOutsideBookingWindow,
			fmt.Sprintf("Appointments must be booked %d hours to %d days in advance.",
				s.cfg.Policy.MinAdvanceHours, s.cfg.Policy.MaxAdvanceDays)), nil
	}

	// 5. Часы работы: время в [open, close)
	hours, _ := s.BusinessHours(date)
	if startTime.IsBefore(hours.Open) || !startTime.IsBefore(hours.Close) {
		return reject(ReasonOutsideBusinessHours,
			fmt.Sprintf("Appointment time must be between %s and %s on business days.", hours.Open, hours.Close)), nil
	}

	// 6. Слот не должен пересекаться с существующими записями
	overlaps, err := s.store.Overlaps(ctx, date, startTime, svc.DurationMinutes)
	if err != nil {
		s.logger.Error("Validate: overlap check failed for %s %s: %v", dateStr, timeStr, err)
		return nil, fmt.Errorf("%w: overlap check: %v", ErrInternal, err)
	}
	if overlaps {
		alternatives, err := s.SuggestAlternatives(ctx, date, startTime, domain.DefaultAlternativeCount)
		if err != nil {
			return nil, err
		}
		result := reject(ReasonSlotUnavailable,
			"This time slot is not available. Please choose a different time.")
		result.Alternatives = alternatives
		result.Service = svc
		result.When = when
		return result, nil
	}

	return &ValidationResult{OK: true, Service: svc, When: when}, nil
}

func reject(reason RejectReason, message string) *ValidationResult {
	return &ValidationResult{OK: false, Reason: reason, Message: message}
}

// dateOnly обнуляет время, оставляя только календарную дату
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
